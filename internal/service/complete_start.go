package service

import (
	"context"

	"github.com/dexcli/dex/internal/graph"
	"github.com/dexcli/dex/internal/ids"
	"github.com/dexcli/dex/internal/model"
)

// Complete marks id completed. Pre-condition: no pending descendants,
// else PreconditionFailed. StartedAt is backfilled to now if it was
// never set, so a task completed without an explicit start still
// carries a duration (spec.md §4.5).
func (s *Service) Complete(ctx context.Context, id string, result string, metadata *model.Metadata) (*model.Task, error) {
	return s.txn(ctx, "complete", func(set model.TaskSet) (string, *model.Task, error) {
		t, ok := set[id]
		if !ok {
			return "", nil, model.NotFound("task not found: " + id)
		}
		if t.Completed {
			return "", nil, model.PreconditionFailed("task already completed")
		}
		if graph.HasIncompleteChildren(set, t) {
			return "", nil, model.PreconditionFailed(
				"task has incomplete children", "complete all children first")
		}

		now := ids.Now()
		if t.StartedAt == nil {
			t.StartedAt = &now
		}
		t.Completed = true
		t.CompletedAt = &now
		t.Result = result
		if metadata != nil {
			t.Metadata = metadata
		}
		t.UpdatedAt = now
		return rootOf(set, t), t, nil
	})
}

// StartOptions configures the start operation's force-restart behavior.
type StartOptions struct {
	Force bool
}

// Start transitions id to in-progress, setting StartedAt. A completed
// task cannot be started (PreconditionFailed); restarting an
// already-started task requires Force, else AlreadyStarted.
func (s *Service) Start(ctx context.Context, id string, opts StartOptions) (*model.Task, error) {
	return s.txn(ctx, "start", func(set model.TaskSet) (string, *model.Task, error) {
		t, ok := set[id]
		if !ok {
			return "", nil, model.NotFound("task not found: " + id)
		}
		if t.Completed {
			return "", nil, model.PreconditionFailed("cannot start a completed task", "un-complete it first")
		}
		if t.StartedAt != nil && !opts.Force {
			return "", nil, model.AlreadyStarted(
				"task already started", "pass force to restart the timer")
		}
		now := ids.Now()
		t.StartedAt = &now
		t.UpdatedAt = now
		return rootOf(set, t), t, nil
	})
}
