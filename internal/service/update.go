package service

import (
	"context"

	"github.com/dexcli/dex/internal/graph"
	"github.com/dexcli/dex/internal/ids"
	"github.com/dexcli/dex/internal/model"
)

// UpdateInput carries partial-update semantics: a nil pointer field (or a
// nil slice) leaves that attribute unchanged. ParentID uses a
// double-pointer-free convention: ParentIDSet indicates the caller wants
// to change ParentID (to the value in ParentID, which may itself be nil
// to move the task to root).
type UpdateInput struct {
	Name        *string
	Description *string
	Priority    *int
	Metadata    *model.Metadata
	Completed   *bool
	Result      *string
	StartedAt   *string

	ParentIDSet bool
	ParentID    *string

	AddBlockedBy    []string
	RemoveBlockedBy []string

	// Delete routes a CLI-level delete:true field to the Delete operation.
	Delete bool
}

// Update applies a partial update to id, per spec.md §4.5.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Task, error) {
	if in.Delete {
		return s.Delete(ctx, id)
	}

	return s.txn(ctx, "update", func(set model.TaskSet) (string, *model.Task, error) {
		t, ok := set[id]
		if !ok {
			return "", nil, model.NotFound("task not found: " + id)
		}

		if in.Name != nil {
			if *in.Name == "" {
				return "", nil, model.ValidationFailed("name cannot be empty")
			}
			t.Name = *in.Name
		}
		if in.Description != nil {
			t.Description = *in.Description
		}
		if in.Priority != nil {
			if *in.Priority < 0 || *in.Priority > 100 {
				return "", nil, model.ValidationFailed("priority must be in [0, 100]")
			}
			t.Priority = *in.Priority
		}
		if in.Metadata != nil {
			t.Metadata = in.Metadata
		}
		if in.Result != nil {
			t.Result = *in.Result
		}
		if in.StartedAt != nil {
			t.StartedAt = in.StartedAt
		}

		if in.ParentIDSet {
			if err := applyParentChange(set, t, in.ParentID); err != nil {
				return "", nil, err
			}
		}

		for _, blockerID := range in.AddBlockedBy {
			if _, ok := set[blockerID]; !ok {
				return "", nil, model.ReferenceMissing("blocker task not found: " + blockerID)
			}
			if graph.WouldCreateBlockingCycle(set, blockerID, t.ID) {
				return "", nil, model.CycleWouldForm("adding blocker " + blockerID + " would create a cycle")
			}
			if err := graph.SyncAddBlocker(set, blockerID, t.ID); err != nil {
				return "", nil, err
			}
		}
		for _, blockerID := range in.RemoveBlockedBy {
			graph.SyncRemoveBlocker(set, blockerID, t.ID)
		}

		if in.Completed != nil {
			if *in.Completed && !t.Completed {
				if graph.HasIncompleteChildren(set, t) {
					return "", nil, model.PreconditionFailed(
						"task has incomplete children", "complete all children first")
				}
				now := ids.Now()
				t.CompletedAt = &now
				t.Completed = true
			} else if !*in.Completed && t.Completed {
				t.Completed = false
				t.CompletedAt = nil
			}
		}

		t.UpdatedAt = ids.Now()
		return rootOf(set, t), t, nil
	})
}

// applyParentChange validates a re-parent (non-self, non-descendant,
// depth bound including the moved subtree's own depth) then rewires the
// parent/child edges.
func applyParentChange(set model.TaskSet, t *model.Task, newParentID *string) error {
	newParent := ""
	if newParentID != nil {
		newParent = *newParentID
	}

	if newParent != "" {
		if newParent == t.ID {
			return model.CycleWouldForm("a task cannot be its own parent")
		}
		if _, ok := set[newParent]; !ok {
			return model.ReferenceMissing("parent task not found: " + newParent)
		}
		if graph.IsDescendant(set, newParent, t.ID) {
			return model.CycleWouldForm("cannot re-parent " + t.ID + " under its own descendant " + newParent)
		}
		newDepth := graph.DepthFromParent(set, newParent) + 1
		if newDepth+graph.MaxDescendantDepth(set, t.ID) > 3 {
			return model.DepthExceeded("re-parenting would push a descendant past the 3-level depth cap")
		}
	}

	oldParent := ""
	if t.ParentID != nil {
		oldParent = *t.ParentID
	}
	if err := graph.SyncParentChild(set, t.ID, oldParent, newParent); err != nil {
		return err
	}
	if newParent == "" {
		t.ParentID = nil
	} else {
		t.ParentID = &newParent
	}
	return nil
}
