// Package daemon implements spec.md §4.7's daemon mode: a long-running
// process that, on a configurable schedule, sweeps active lineages for
// staleness-policy GitHub sync and runs the auto-archival compactor
// pass. It introduces no new invariant — both sweeps terminate in a
// single call back into internal/service and internal/compactor.
package daemon

import (
	"context"
	"fmt"
	"net/http"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dexcli/dex/internal/compactor"
	"github.com/dexcli/dex/internal/config"
	"github.com/dexcli/dex/internal/metrics"
	"github.com/dexcli/dex/internal/model"
	"github.com/dexcli/dex/internal/service"
	"github.com/dexcli/dex/internal/store"
)

// Daemon owns a cron scheduler driving two sweeps against a single
// project's service and compactor, plus the /metrics HTTP endpoint
// when metrics.addr is configured — the daemon is the long-running
// process a scrape target expects, unlike a one-shot CLI invocation.
type Daemon struct {
	svc        *service.Service
	compactor  *compactor.Compactor
	store      *store.Store
	cron       *cron.Cron
	log        *zap.Logger
	metrics    *metrics.Collector
	metricsSrv *http.Server
}

// New builds a Daemon. cfg supplies the two sweep intervals in
// internal/config.ParseDuration's grammar. m and addr may be left nil/""
// to disable the /metrics endpoint.
func New(svc *service.Service, cmp *compactor.Compactor, st *store.Store, cfg config.DaemonConfig, log *zap.Logger, m *metrics.Collector, metricsAddr string) (*Daemon, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Daemon{svc: svc, compactor: cmp, store: st, cron: cron.New(), log: log, metrics: m}

	if cfg.SyncInterval != "" {
		spec, err := everySpec(cfg.SyncInterval)
		if err != nil {
			return nil, err
		}
		if _, err := d.cron.AddFunc(spec, d.runSyncSweep); err != nil {
			return nil, model.Internal("schedule sync sweep", err)
		}
	}
	if cfg.ArchiveInterval != "" {
		spec, err := everySpec(cfg.ArchiveInterval)
		if err != nil {
			return nil, err
		}
		if _, err := d.cron.AddFunc(spec, d.runArchiveSweep); err != nil {
			return nil, model.Internal("schedule archive sweep", err)
		}
	}

	if m != nil && metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		d.metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux}
	}
	return d, nil
}

// Start launches the cron scheduler and, if configured, the /metrics
// HTTP server. It returns immediately; both run in their own
// goroutines until Stop is called.
func (d *Daemon) Start() {
	d.log.Info("daemon starting", zap.Int("entries", len(d.cron.Entries())))
	d.cron.Start()

	if d.metricsSrv != nil {
		go func() {
			if err := d.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				d.log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		d.log.Info("metrics endpoint listening", zap.String("addr", d.metricsSrv.Addr))
	}
}

// Stop halts the scheduler and the metrics server, waiting for any
// running job to finish.
func (d *Daemon) Stop() {
	<-d.cron.Stop().Done()
	if d.metricsSrv != nil {
		if err := d.metricsSrv.Shutdown(context.Background()); err != nil {
			d.log.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
	d.log.Info("daemon stopped")
}

// runSyncSweep dispatches a GitHub sync attempt for every top-level
// lineage root; the staleness policy (on_change vs max_age) is
// evaluated per-root inside internal/githubsync.Protocol.Dispatch.
func (d *Daemon) runSyncSweep() {
	set, err := d.store.Read()
	if err != nil {
		d.log.Warn("sync sweep: read failed", zap.Error(err))
		return
	}
	for id, t := range set {
		if t.ParentID != nil {
			continue
		}
		if err := d.svc.SyncRoot(context.Background(), id); err != nil {
			d.log.Warn("sync sweep: dispatch failed", zap.String("root_id", id), zap.Error(err))
		}
	}
}

// runArchiveSweep runs the compactor's auto policy (minAgeDays,
// keepRecentCount) across every eligible lineage.
func (d *Daemon) runArchiveSweep() {
	records, err := d.compactor.AutoSweep(context.Background())
	if err != nil {
		d.log.Warn("archive sweep failed", zap.Error(err))
		return
	}
	d.log.Info("archive sweep complete", zap.Int("archived", len(records)))
}

// everySpec turns a config.ParseDuration-grammar string into a cron
// "@every" descriptor, robfig/cron's own interval-schedule syntax.
func everySpec(s string) (string, error) {
	d, err := config.ParseDuration(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("@every %s", d.String()), nil
}
