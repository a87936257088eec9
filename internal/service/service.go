// Package service implements spec.md §4.5's task service: the single
// transactional façade over storage. Every mutating operation follows
// read → validate → mutate in memory (maintaining every invariant in
// spec.md §3.2) → write → post-commit side effects (GitHub sync, archive
// log append). The service is the only writer to the active store
// (spec.md §5).
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dexcli/dex/internal/graph"
	"github.com/dexcli/dex/internal/ids"
	"github.com/dexcli/dex/internal/metrics"
	"github.com/dexcli/dex/internal/model"
	"github.com/dexcli/dex/internal/store"
)

// GitHubSyncer dispatches a post-commit sync attempt for rootID's
// lineage. Implemented by internal/githubsync.Protocol. Failures are
// logged as warnings by the service and never propagate to the caller
// of the mutating operation (spec.md §4.6, §7).
type GitHubSyncer interface {
	Dispatch(ctx context.Context, set model.TaskSet, rootID string) error
}

// Archiver performs the eligibility check and compacted transfer for a
// single lineage root. Implemented by internal/compactor.Compactor.
type Archiver interface {
	ArchiveRoot(ctx context.Context, rootID string) (*model.ArchivedTask, error)
}

// Service is the transactional façade over a single project's store.
type Service struct {
	store    *store.Store
	sync     GitHubSyncer
	archiver Archiver
	log      *zap.Logger
	metrics  *metrics.Collector
}

// New constructs a Service. sync and archiver may be nil: sync dispatch
// and the archive operation are then no-ops / errors respectively.
func New(st *store.Store, sync GitHubSyncer, archiver Archiver, log *zap.Logger, m *metrics.Collector) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{store: st, sync: sync, archiver: archiver, log: log, metrics: m}
}

// txn reads the store, lets fn mutate it in place (fn returns the root id
// whose lineage should be considered for post-commit sync, or "" for
// none), writes the result, and dispatches sync. Mirrors the sequential
// read→validate→mutate→write→post-commit pipeline spec.md §5 requires.
func (s *Service) txn(ctx context.Context, op string, fn func(model.TaskSet) (string, *model.Task, error)) (*model.Task, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveOperationDuration(op, time.Since(start).Seconds())
	}()

	set, err := s.store.Read()
	if err != nil {
		s.metrics.RecordOperation(op, "error")
		return nil, err
	}

	rootID, result, err := fn(set)
	if err != nil {
		s.metrics.RecordOperation(op, "error")
		return nil, err
	}

	if err := s.store.Write(set); err != nil {
		s.metrics.RecordOperation(op, "error")
		return nil, err
	}

	s.metrics.RecordOperation(op, "ok")
	s.metrics.SetActiveTasks(len(set))
	s.log.Info("task service operation",
		zap.String("op", op),
		zap.String("task_id", result.ID),
		zap.Duration("duration", time.Since(start)),
	)

	if s.sync != nil && rootID != "" {
		if err := s.sync.Dispatch(ctx, set, rootID); err != nil {
			s.log.Warn("github sync failed, local write is authoritative",
				zap.String("root_id", rootID), zap.Error(err))
		}
	}

	return result, nil
}

// CreateInput is the partial-update-shaped input to Create.
type CreateInput struct {
	ID          string // optional externally supplied id (import path)
	ParentID    *string
	Name        string
	Description string
	Priority    *int
	BlockedBy   []string
}

// Create validates and inserts a new task, per spec.md §4.5.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Task, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, model.ValidationFailed("name is required")
	}
	priority := 1
	if in.Priority != nil {
		if *in.Priority < 0 || *in.Priority > 100 {
			return nil, model.ValidationFailed("priority must be in [0, 100]")
		}
		priority = *in.Priority
	}

	return s.txn(ctx, "create", func(set model.TaskSet) (string, *model.Task, error) {
		id := in.ID
		if id != "" {
			if _, exists := set[id]; exists {
				return "", nil, model.AlreadyExists("task already exists: " + id)
			}
		} else {
			var err error
			for {
				id, err = ids.Generate()
				if err != nil {
					return "", nil, model.Internal("generate id", err)
				}
				if _, exists := set[id]; !exists {
					break
				}
			}
		}

		parentID := ""
		if in.ParentID != nil {
			parentID = *in.ParentID
			parent, ok := set[parentID]
			if !ok {
				return "", nil, model.ReferenceMissing("parent task not found: " + parentID)
			}
			if graph.DepthFromParent(set, parentID)+1 > 3 {
				return "", nil, model.DepthExceeded("creating under " + parentID + " would exceed the 3-level depth cap")
			}
			_ = parent
		}

		now := ids.Now()
		t := &model.Task{
			ID:          id,
			Name:        in.Name,
			Description: in.Description,
			Priority:    priority,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if parentID != "" {
			t.ParentID = &parentID
		}
		set[id] = t
		if parentID != "" {
			if err := graph.SyncParentChild(set, id, "", parentID); err != nil {
				return "", nil, err
			}
		}

		for _, blockerID := range in.BlockedBy {
			if _, ok := set[blockerID]; !ok {
				return "", nil, model.ReferenceMissing("blocker task not found: " + blockerID)
			}
			if graph.WouldCreateBlockingCycle(set, blockerID, id) {
				return "", nil, model.CycleWouldForm("adding blocker " + blockerID + " would create a cycle")
			}
			if err := graph.SyncAddBlocker(set, blockerID, id); err != nil {
				return "", nil, err
			}
		}

		return rootOf(set, t), t, nil
	})
}

// SyncRoot dispatches a GitHub sync attempt for rootID outside of any
// mutating operation — the daemon's staleness sweep calls this on a
// schedule rather than waiting for the next user-initiated mutation.
// A nil sync configuration makes this a no-op, matching txn's own
// post-commit dispatch.
func (s *Service) SyncRoot(ctx context.Context, rootID string) error {
	if s.sync == nil {
		return nil
	}
	set, err := s.store.Read()
	if err != nil {
		return err
	}
	if _, ok := set[rootID]; !ok {
		return nil
	}
	return s.sync.Dispatch(ctx, set, rootID)
}

// rootOf returns the root id of t's lineage (the topmost ancestor, or
// t.ID if t is already a root).
func rootOf(set model.TaskSet, t *model.Task) string {
	chain := graph.Ancestors(set, t.ID)
	if len(chain) == 0 {
		return t.ID
	}
	return chain[0]
}
