package service

import (
	"github.com/dexcli/dex/internal/archive"
	"github.com/dexcli/dex/internal/graph"
	"github.com/dexcli/dex/internal/model"
)

// Get returns a single active task by id.
func (s *Service) Get(id string) (*model.Task, error) {
	set, err := s.store.Read()
	if err != nil {
		return nil, err
	}
	t, ok := set[id]
	if !ok {
		return nil, model.NotFound("task not found: " + id)
	}
	return t, nil
}

// GetWithArchive returns an active task, falling back to the archive
// log if id is not in the active set (spec.md §4.6).
func (s *Service) GetWithArchive(id string, log *archive.Log) (*model.Task, *model.ArchivedTask, error) {
	set, err := s.store.Read()
	if err != nil {
		return nil, nil, err
	}
	if t, ok := set[id]; ok {
		return t, nil, nil
	}
	if log == nil {
		return nil, nil, model.NotFound("task not found: " + id)
	}
	rec, err := log.GetArchived(id)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, model.NotFound("task not found: " + id)
	}
	return nil, rec, nil
}

// GetChildren returns id's direct children.
func (s *Service) GetChildren(id string) ([]*model.Task, error) {
	set, err := s.store.Read()
	if err != nil {
		return nil, err
	}
	t, ok := set[id]
	if !ok {
		return nil, model.NotFound("task not found: " + id)
	}
	children := make([]*model.Task, 0, len(t.Children))
	for _, cid := range t.Children {
		if c, ok := set[cid]; ok {
			children = append(children, c)
		}
	}
	graph.SortTasks(children)
	return children, nil
}

// GetAncestors returns id's ancestor chain, root first.
func (s *Service) GetAncestors(id string) ([]*model.Task, error) {
	set, err := s.store.Read()
	if err != nil {
		return nil, err
	}
	if _, ok := set[id]; !ok {
		return nil, model.NotFound("task not found: " + id)
	}
	chain := graph.Ancestors(set, id)
	out := make([]*model.Task, 0, len(chain))
	for _, aid := range chain {
		out = append(out, set[aid])
	}
	return out, nil
}

// GetIncompleteBlockers returns id's blockers that are not yet completed.
func (s *Service) GetIncompleteBlockers(id string) ([]*model.Task, error) {
	set, err := s.store.Read()
	if err != nil {
		return nil, err
	}
	t, ok := set[id]
	if !ok {
		return nil, model.NotFound("task not found: " + id)
	}
	blockers := make([]*model.Task, 0, len(t.BlockedBy))
	for _, bid := range graph.IncompleteBlockers(set, t) {
		if b, ok := set[bid]; ok {
			blockers = append(blockers, b)
		}
	}
	graph.SortTasks(blockers)
	return blockers, nil
}

// GetBlockedTasks returns the tasks that id directly blocks.
func (s *Service) GetBlockedTasks(id string) ([]*model.Task, error) {
	set, err := s.store.Read()
	if err != nil {
		return nil, err
	}
	t, ok := set[id]
	if !ok {
		return nil, model.NotFound("task not found: " + id)
	}
	blocked := make([]*model.Task, 0, len(t.Blocks))
	for _, bid := range t.Blocks {
		if b, ok := set[bid]; ok {
			blocked = append(blocked, b)
		}
	}
	graph.SortTasks(blocked)
	return blocked, nil
}
