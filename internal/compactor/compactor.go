// Package compactor implements spec.md §4.7's archival compactor: it
// moves a completed lineage's root out of the active store into the
// append-only archive log, in a two-step append-then-rewrite transfer
// that keeps the active store's invariants intact even if the process
// dies mid-transfer.
package compactor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dexcli/dex/internal/archive"
	"github.com/dexcli/dex/internal/graph"
	"github.com/dexcli/dex/internal/ids"
	"github.com/dexcli/dex/internal/metrics"
	"github.com/dexcli/dex/internal/model"
	"github.com/dexcli/dex/internal/store"
)

const (
	defaultMinAgeDays     = 90
	defaultKeepRecentCount = 50
)

// Compactor implements service.Archiver and the bulk/auto sweeps
// spec.md §4.7 and the daemon need.
type Compactor struct {
	store   *store.Store
	archive *archive.Log
	log     *zap.Logger
	metrics *metrics.Collector

	minAgeDays      int
	keepRecentCount int
}

// New builds a Compactor. minAgeDays/keepRecentCount of 0 fall back to
// spec.md §4.7's defaults (90 days, 50 tasks).
func New(st *store.Store, log *archive.Log, zapLog *zap.Logger, m *metrics.Collector, minAgeDays, keepRecentCount int) *Compactor {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if minAgeDays <= 0 {
		minAgeDays = defaultMinAgeDays
	}
	if keepRecentCount <= 0 {
		keepRecentCount = defaultKeepRecentCount
	}
	return &Compactor{store: st, archive: log, log: zapLog, metrics: m, minAgeDays: minAgeDays, keepRecentCount: keepRecentCount}
}

// ArchiveRoot implements service.Archiver: an explicit, single-lineage
// archive request. Only eligibility rules (a)/(b)/(c) apply — no age or
// keepRecentCount filter, since those are bulk/auto-only.
func (c *Compactor) ArchiveRoot(ctx context.Context, rootID string) (*model.ArchivedTask, error) {
	set, err := c.store.Read()
	if err != nil {
		return nil, err
	}
	t, ok := set[rootID]
	if !ok {
		return nil, model.NotFound("task not found: " + rootID)
	}
	if !isEligible(set, rootID) {
		return nil, model.PreconditionFailed(
			"task " + rootID + " is not archivable: its lineage is not fully completed")
	}

	rec := toArchivedTask(set, t)
	if err := c.transfer(set, []*model.ArchivedTask{rec}); err != nil {
		c.metrics.RecordArchive("error")
		return nil, err
	}
	c.metrics.RecordArchive("ok")
	c.log.Info("archived lineage", zap.String("root_id", rootID))
	return rec, nil
}

// BulkOptions configures Bulk: OlderThan is spec.md §4.7's `{Nd|Nw|Nm}`
// grammar (months approximated as 30 days). Completed ignores age and
// archives every eligible completed root. Except excludes specific ids.
type BulkOptions struct {
	OlderThan string
	Except    []string
	Completed bool
}

// Bulk implements the `--older-than`/`--except`/`--completed` sweep.
func (c *Compactor) Bulk(ctx context.Context, opts BulkOptions) ([]*model.ArchivedTask, error) {
	set, err := c.store.Read()
	if err != nil {
		return nil, err
	}

	var minAge time.Duration
	if !opts.Completed {
		if opts.OlderThan == "" {
			return nil, model.ValidationFailed("--older-than or --completed is required")
		}
		minAge, err = parseBulkAge(opts.OlderThan)
		if err != nil {
			return nil, err
		}
	}
	except := map[string]bool{}
	for _, id := range opts.Except {
		except[id] = true
	}

	candidates := topLevelRoots(set)
	eligible, err := c.scanEligible(ctx, set, candidates)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var records []*model.ArchivedTask
	for _, rootID := range eligible {
		if except[rootID] {
			continue
		}
		t := set[rootID]
		if !opts.Completed {
			completedAt := t.CompletedAt
			if completedAt == nil {
				continue
			}
			ts, err := ids.ParseTime(*completedAt)
			if err != nil || now.Sub(ts) < minAge {
				continue
			}
		}
		records = append(records, toArchivedTask(set, t))
	}

	if len(records) == 0 {
		return nil, nil
	}
	if err := c.transfer(set, records); err != nil {
		c.metrics.RecordArchive("error")
		return nil, err
	}
	c.metrics.RecordArchive("ok")
	c.log.Info("bulk archived", zap.Int("count", len(records)))
	return records, nil
}

// AutoSweep is the policy the daemon runs on a schedule: every eligible
// root at least minAgeDays old, excluding the keepRecentCount most
// recently completed roots (spec.md §4.7's bulk/auto-only filter).
func (c *Compactor) AutoSweep(ctx context.Context) ([]*model.ArchivedTask, error) {
	set, err := c.store.Read()
	if err != nil {
		return nil, err
	}

	candidates := topLevelRoots(set)
	eligible, err := c.scanEligible(ctx, set, candidates)
	if err != nil {
		return nil, err
	}

	sort.Slice(eligible, func(i, j int) bool {
		return completedAtOf(set[eligible[i]]) > completedAtOf(set[eligible[j]])
	})
	if len(eligible) > c.keepRecentCount {
		eligible = eligible[c.keepRecentCount:]
	} else {
		eligible = nil
	}

	cutoff := time.Now().AddDate(0, 0, -c.minAgeDays)
	var records []*model.ArchivedTask
	for _, rootID := range eligible {
		t := set[rootID]
		if t.CompletedAt == nil {
			continue
		}
		ts, err := ids.ParseTime(*t.CompletedAt)
		if err != nil || ts.After(cutoff) {
			continue
		}
		records = append(records, toArchivedTask(set, t))
	}

	if len(records) == 0 {
		return nil, nil
	}
	if err := c.transfer(set, records); err != nil {
		c.metrics.RecordArchive("error")
		return nil, err
	}
	c.metrics.RecordArchive("ok")
	c.log.Info("auto-archived", zap.Int("count", len(records)))
	return records, nil
}

// scanEligible evaluates every candidate root independently via
// errgroup: each check is a pure read over the immutable snapshot, so
// parallelizing here never touches shared mutable state.
func (c *Compactor) scanEligible(ctx context.Context, set model.TaskSet, candidates []string) ([]string, error) {
	results := make([]bool, len(candidates))
	g, _ := errgroup.WithContext(ctx)
	for i, rootID := range candidates {
		i, rootID := i, rootID
		g.Go(func() error {
			results[i] = isEligible(set, rootID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var eligible []string
	for i, ok := range results {
		if ok {
			eligible = append(eligible, candidates[i])
		}
	}
	return eligible, nil
}

// transfer implements the two-step append-then-rewrite: append first,
// then remove every archived lineage from the active store. A failure
// after the append but before the rewrite leaves a duplicate archive
// record, which internal/archive's latest-wins read path already
// tolerates.
func (c *Compactor) transfer(set model.TaskSet, records []*model.ArchivedTask) error {
	if err := c.archive.Append(records); err != nil {
		return err
	}
	for _, rec := range records {
		for _, id := range append([]string{rec.ID}, graph.Descendants(set, rec.ID)...) {
			delete(set, id)
			graph.CleanupTaskReferences(set, id)
		}
	}
	return c.store.Write(set)
}

func topLevelRoots(set model.TaskSet) []string {
	var out []string
	for id, t := range set {
		if t.ParentID == nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func completedAtOf(t *model.Task) string {
	if t == nil || t.CompletedAt == nil {
		return ""
	}
	return *t.CompletedAt
}

// isEligible implements spec.md §4.7's rule (a)/(b)/(c): completed,
// every descendant completed, no incomplete ancestor.
func isEligible(set model.TaskSet, rootID string) bool {
	t, ok := set[rootID]
	if !ok || !t.Completed {
		return false
	}
	for _, d := range graph.Descendants(set, rootID) {
		if c, ok := set[d]; ok && !c.Completed {
			return false
		}
	}
	for _, a := range graph.Ancestors(set, rootID) {
		if anc, ok := set[a]; ok && !anc.Completed {
			return false
		}
	}
	return true
}

// toArchivedTask projects a Task (plus its direct children, inlined as
// archived_children) into the compacted ArchivedTask shape.
func toArchivedTask(set model.TaskSet, t *model.Task) *model.ArchivedTask {
	rec := &model.ArchivedTask{
		ID:          t.ID,
		ParentID:    t.ParentID,
		Name:        t.Name,
		Description: t.Description,
		Result:      t.Result,
		ArchivedAt:  ids.Now(),
		Metadata:    t.Metadata,
	}
	if t.CompletedAt != nil {
		rec.CompletedAt = *t.CompletedAt
	}
	priority := t.Priority
	rec.OriginalPriority = &priority

	for _, childID := range t.Children {
		c, ok := set[childID]
		if !ok {
			continue
		}
		rec.ArchivedChildren = append(rec.ArchivedChildren, model.ArchivedChildSummary{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Result:      c.Result,
		})
	}
	return rec
}

// parseBulkAge implements the archive-specific duration grammar
// `^\d+(d|w|m)$`, distinct from internal/config.ParseDuration's
// `s|m|h|d|w|mo` grammar: here `m` means 30-day months, not minutes.
func parseBulkAge(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, model.ValidationFailed("invalid --older-than value: " + s)
	}
	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return 0, model.ValidationFailed("invalid --older-than value: " + s)
	}
	switch unit {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * 30 * 24 * time.Hour, nil
	default:
		return 0, model.ValidationFailed(fmt.Sprintf("invalid --older-than unit %q: expected d, w, or m", string(unit)))
	}
}
