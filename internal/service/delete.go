package service

import (
	"context"

	"github.com/dexcli/dex/internal/graph"
	"github.com/dexcli/dex/internal/model"
)

// Delete removes id and its whole descendant cascade from the store,
// cleaning up every dangling children/blockedBy/blocks reference left on
// the remaining tasks (spec.md §4.5, testable property 8 / scenario S5).
func (s *Service) Delete(ctx context.Context, id string) (*model.Task, error) {
	result, err := s.txn(ctx, "delete", func(set model.TaskSet) (string, *model.Task, error) {
		root, ok := set[id]
		if !ok {
			return "", nil, model.NotFound("task not found: " + id)
		}

		// Snapshot the root before mutating — callers get back the
		// pre-deletion state of the root task.
		deleted := root.Clone()

		toRemove := append([]string{id}, graph.Descendants(set, id)...)

		parentOfRoot := ""
		if root.ParentID != nil {
			parentOfRoot = *root.ParentID
		}

		for _, rid := range toRemove {
			delete(set, rid)
		}
		for _, rid := range toRemove {
			graph.CleanupTaskReferences(set, rid)
		}

		rootID := ""
		if parentOfRoot != "" {
			rootID = rootOfSnapshot(set, parentOfRoot)
		}
		return rootID, deleted, nil
	})
	return result, err
}

func rootOfSnapshot(set model.TaskSet, id string) string {
	chain := graph.Ancestors(set, id)
	if len(chain) == 0 {
		return id
	}
	return chain[0]
}

