package service

import (
	"strings"

	"github.com/dexcli/dex/internal/archive"
	"github.com/dexcli/dex/internal/graph"
	"github.com/dexcli/dex/internal/model"
)

// ListFilter selects which active tasks List returns. The zero value
// matches every task.
type ListFilter struct {
	Completed  *bool // nil: either; true: only completed; false: only pending
	Ready      bool  // only pending tasks with no incomplete blockers and no incomplete children
	Blocked    bool  // only tasks with at least one incomplete blocker
	InProgress bool  // only tasks with StartedAt set and not completed
	Query      string
	ParentID   *string // non-nil restricts to direct children of this id ("" means root tasks)
}

// List returns active tasks matching filter, sorted by priority then
// creation time (spec.md §4.5).
func (s *Service) List(filter ListFilter) ([]*model.Task, error) {
	set, err := s.store.Read()
	if err != nil {
		return nil, err
	}

	s.metrics.SetActiveTasks(len(set))

	matches := make([]*model.Task, 0, len(set))
	for _, t := range set {
		if !matchesFilter(set, t, filter) {
			continue
		}
		matches = append(matches, t)
	}
	graph.SortTasks(matches)
	return matches, nil
}

func matchesFilter(set model.TaskSet, t *model.Task, filter ListFilter) bool {
	if filter.Completed != nil && t.Completed != *filter.Completed {
		return false
	}
	if filter.ParentID != nil {
		parent := ""
		if t.ParentID != nil {
			parent = *t.ParentID
		}
		if parent != *filter.ParentID {
			return false
		}
	}
	if filter.Ready && !graph.IsReady(set, t) {
		return false
	}
	if filter.Blocked && !graph.IsBlocked(set, t) {
		return false
	}
	if filter.InProgress && (t.StartedAt == nil || t.Completed) {
		return false
	}
	if filter.Query != "" && !taskMatchesQuery(t, filter.Query) {
		return false
	}
	return true
}

func taskMatchesQuery(t *model.Task, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// SearchResult pairs an active or archived match with which set it
// came from, so callers can render a single unified result list.
type SearchResult struct {
	Task     *model.Task
	Archived *model.ArchivedTask
}

// Search combines an active-set query with an archive substring search
// (spec.md §4.6), since completed work that has since been compacted
// away is no longer in List's domain.
func (s *Service) Search(query string, log *archive.Log) ([]SearchResult, error) {
	active, err := s.List(ListFilter{Query: query})
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(active))
	for _, t := range active {
		results = append(results, SearchResult{Task: t})
	}

	if log != nil {
		archived, err := log.List(query)
		if err != nil {
			return nil, err
		}
		for _, rec := range archived {
			results = append(results, SearchResult{Archived: rec})
		}
	}
	return results, nil
}
