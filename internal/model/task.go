// Package model defines the task graph's core entities: Task, ArchivedTask,
// and the metadata shapes that travel between the active store, the
// archive log, and the GitHub mirror.
package model

import "time"

// Task is the fundamental unit of the active store. Depth in the parent
// forest is capped at three levels (root, mid, leaf) and every edge is
// kept on both endpoints so neighbor lookups stay O(1).
type Task struct {
	ID          string    `json:"id"`
	ParentID    *string   `json:"parent_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Priority    int       `json:"priority"`
	Completed   bool      `json:"completed"`
	StartedAt   *string   `json:"started_at,omitempty"`
	CompletedAt *string   `json:"completed_at,omitempty"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
	Result      string    `json:"result,omitempty"`
	Metadata    *Metadata `json:"metadata,omitempty"`

	BlockedBy []string `json:"blocked_by,omitempty"`
	Blocks    []string `json:"blocks,omitempty"`
	Children  []string `json:"children,omitempty"`

	// Tags are local-only labels, independent of GitHub label sync.
	Tags []string `json:"tags,omitempty"`
	// Notes is an append-only local activity log, distinct from Result.
	Notes []Note `json:"notes,omitempty"`
}

// Note is one entry in a task's local activity log.
type Note struct {
	At   string `json:"at"`
	Text string `json:"text"`
}

// Metadata holds the optional nested records a task may carry: its GitHub
// mirror state and the commit that produced or closed it.
type Metadata struct {
	GitHub *GitHubMeta `json:"github,omitempty"`
	Commit *CommitMeta `json:"commit,omitempty"`
}

// GitHubMeta ties a local task lineage root to a single remote issue.
type GitHubMeta struct {
	IssueNumber int    `json:"issueNumber"`
	IssueURL    string `json:"issueUrl,omitempty"`
	Repo        string `json:"repo,omitempty"`
}

// CommitMeta optionally records the commit associated with a task.
type CommitMeta struct {
	SHA       string `json:"sha"`
	Message   string `json:"message,omitempty"`
	Branch    string `json:"branch,omitempty"`
	URL       string `json:"url,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ArchivedTask is the compacted, terminal form a Task takes once its whole
// lineage has closed and been archived. It discards blockedBy/blocks/
// children and every timestamp but completed_at.
type ArchivedTask struct {
	ID          string    `json:"id"`
	ParentID    *string   `json:"parent_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Result      string    `json:"result,omitempty"`
	CompletedAt string    `json:"completed_at"`
	ArchivedAt  string    `json:"archived_at"`
	Metadata    *Metadata `json:"metadata,omitempty"`

	ArchivedChildren []ArchivedChildSummary `json:"archived_children,omitempty"`

	// OriginalPriority is display-only context; no invariant depends on it.
	OriginalPriority *int `json:"original_priority,omitempty"`
}

// ArchivedChildSummary is the inline rollup of a direct child, kept on the
// archived root for quick display without a second lookup.
type ArchivedChildSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Result      string `json:"result,omitempty"`
}

// TaskSet is the in-memory active store: a mapping from id to Task. All
// of internal/graph's pure functions operate over a TaskSet.
type TaskSet map[string]*Task

// IsDescendantTag distinguishes a Task from an ArchivedTask when both are
// handled through a common pointer: ArchivedTask always carries ArchivedAt.
func (a *ArchivedTask) IsDescendantTag() bool { return a.ArchivedAt != "" }

// Clone returns a deep-enough copy of t for callers that mutate edges
// in place without touching the caller's copy (graph package operations
// expect mutable tasks from a store snapshot, not aliases into it).
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	clone.ParentID = clonePtr(t.ParentID)
	clone.StartedAt = clonePtr(t.StartedAt)
	clone.CompletedAt = clonePtr(t.CompletedAt)
	clone.BlockedBy = append([]string(nil), t.BlockedBy...)
	clone.Blocks = append([]string(nil), t.Blocks...)
	clone.Children = append([]string(nil), t.Children...)
	clone.Tags = append([]string(nil), t.Tags...)
	clone.Notes = append([]Note(nil), t.Notes...)
	if t.Metadata != nil {
		m := *t.Metadata
		clone.Metadata = &m
	}
	return &clone
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// FormatTimestamp is a thin seam so callers that need a timestamp independent of the
// clock package (e.g. tests constructing fixtures) aren't forced to import
// internal/ids just for time.Now().UTC() formatting.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
