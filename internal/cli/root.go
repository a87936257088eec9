// Package cli implements spec.md's CLI boundary: a thin cobra command
// layer over internal/service, internal/compactor, and
// internal/githubsync. No command contains domain logic; every RunE
// is a flag-to-input translation followed by one core call.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dexcli/dex/internal/archive"
	"github.com/dexcli/dex/internal/compactor"
	"github.com/dexcli/dex/internal/config"
	"github.com/dexcli/dex/internal/githubsync"
	"github.com/dexcli/dex/internal/logging"
	"github.com/dexcli/dex/internal/metrics"
	"github.com/dexcli/dex/internal/model"
	"github.com/dexcli/dex/internal/service"
	"github.com/dexcli/dex/internal/store"
)

// app bundles the wired dependencies every command needs. Built lazily
// on first use so commands that don't touch the store (e.g. a future
// `dex version`) don't pay for it.
type app struct {
	cfg       *config.Config
	store     *store.Store
	archive   *archive.Log
	svc       *service.Service
	compactor *compactor.Compactor
	sync      *githubsync.Protocol
	owner     string
	repo      string
	log       *zap.Logger
	metrics   *metrics.Collector
}

var projectDir string

// NewRootCommand builds the dex command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dex",
		Short:         "A local-first task tracker with a GitHub Issues mirror",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&projectDir, "dir", ".", "project root directory (holds .dex/ and .dex/config.toml)")

	root.AddCommand(
		newCreateCmd(),
		newListCmd(),
		newGetCmd(),
		newSearchCmd(),
		newUpdateCmd(),
		newCompleteCmd(),
		newStartCmd(),
		newDeleteCmd(),
		newArchiveCmd(),
		newSyncCmd(),
		newImportCmd(),
		newDaemonCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the command tree and maps a returned error to spec.md
// §6's process exit codes: 0 success, 1 user error, 2 storage/IO
// failure, 3 remote sync failure.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dex:", err)
		return exitCodeFor(err)
	}
	return 0
}

func exitCodeFor(err error) int {
	merr, ok := err.(*model.Error)
	if !ok {
		return 1
	}
	switch merr.Kind {
	case model.KindDataCorruption, model.KindStorageIO:
		return 2
	case model.KindGitHubAuth, model.KindGitHubTransport, model.KindGitHubRateLimit:
		return 3
	default:
		return 1
	}
}

func newApp() (*app, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	storeDir := filepath.Join(projectDir, ".dex")
	st, err := store.Open(storeDir)
	if err != nil {
		return nil, err
	}
	archiveLog, err := archive.Open(storeDir)
	if err != nil {
		return nil, err
	}

	var m *metrics.Collector
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	var syncProto *githubsync.Protocol
	var owner, repo string
	if cfg.Sync.GitHub.Enabled {
		token, err := githubsync.ResolveToken(os.Getenv, cfg.Sync.GitHub.TokenEnv)
		if err != nil {
			return nil, err
		}
		owner, repo, err = detectRemote(projectDir, cfg.Sync.GitHub)
		if err != nil {
			return nil, err
		}
		client := githubsync.NewClient(token, owner, repo, log)
		syncProto = githubsync.New(client, st, cfg.Sync.GitHub, log, m)
	}

	cmp := compactor.New(st, archiveLog, log, m, 0, 0)
	var syncer service.GitHubSyncer
	if syncProto != nil {
		syncer = syncProto
	}
	svc := service.New(st, syncer, cmp, log, m)

	return &app{
		cfg:       cfg,
		store:     st,
		archive:   archiveLog,
		svc:       svc,
		compactor: cmp,
		sync:      syncProto,
		owner:     owner,
		repo:      repo,
		log:       log,
		metrics:   m,
	}, nil
}
