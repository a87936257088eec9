// Package graph implements spec.md §4.2's pure functions over an
// in-memory task set: ancestry, descendants, cycle detection across both
// the parent graph and the blocker graph, depth, and readiness. Every
// function here is a full scan — the store is small (typically <10^4
// tasks), so no index is maintained.
package graph

import (
	"sort"

	"github.com/dexcli/dex/internal/model"
)

// Ancestors returns the chain from root to immediate parent of id, in that
// order. id itself is not included.
func Ancestors(set model.TaskSet, id string) []string {
	var chain []string
	cur := set[id]
	for cur != nil && cur.ParentID != nil {
		parent := *cur.ParentID
		chain = append(chain, parent)
		cur = set[parent]
	}
	// chain was built child-to-root; reverse to root-to-parent.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Descendants returns a depth-first walk of the parent graph below id.
func Descendants(set model.TaskSet, id string) []string {
	var out []string
	var walk func(string)
	walk = func(cur string) {
		t, ok := set[cur]
		if !ok {
			return
		}
		for _, child := range t.Children {
			out = append(out, child)
			walk(child)
		}
	}
	walk(id)
	return out
}

// DepthFromParent returns the length of the chain above parentID, plus
// one — the slot a new child of parentID would occupy. An empty
// parentID (root slot) is depth 0.
func DepthFromParent(set model.TaskSet, parentID string) int {
	if parentID == "" {
		return 0
	}
	return len(Ancestors(set, parentID)) + 1
}

// MaxDescendantDepth returns the longest chain below id (0 if id is a leaf).
func MaxDescendantDepth(set model.TaskSet, id string) int {
	t, ok := set[id]
	if !ok || len(t.Children) == 0 {
		return 0
	}
	max := 0
	for _, child := range t.Children {
		if d := MaxDescendantDepth(set, child) + 1; d > max {
			max = d
		}
	}
	return max
}

// IsDescendant reports whether a is below b in the parent forest.
func IsDescendant(set model.TaskSet, a, b string) bool {
	for _, anc := range Ancestors(set, a) {
		if anc == b {
			return true
		}
	}
	return false
}

// WouldCreateBlockingCycle reports whether adding blockerID to blockedID's
// BlockedBy would create a cycle, by checking reachability across both
// BlockedBy and Blocks edges from blockerID back to blockedID.
func WouldCreateBlockingCycle(set model.TaskSet, blockerID, blockedID string) bool {
	if blockerID == blockedID {
		return true
	}
	visited := map[string]bool{}
	var walk func(string) bool
	walk = func(cur string) bool {
		if cur == blockedID {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
		t, ok := set[cur]
		if !ok {
			return false
		}
		for _, next := range t.BlockedBy {
			if walk(next) {
				return true
			}
		}
		for _, next := range t.Blocks {
			if walk(next) {
				return true
			}
		}
		return false
	}
	return walk(blockerID)
}

// IncompleteBlockers returns the members of task.BlockedBy whose referent
// is not completed (or missing — callers validate dangling-free separately).
func IncompleteBlockers(set model.TaskSet, task *model.Task) []string {
	var out []string
	for _, id := range task.BlockedBy {
		if b, ok := set[id]; !ok || !b.Completed {
			out = append(out, id)
		}
	}
	return out
}

// HasIncompleteChildren reports whether any child of task is not completed.
func HasIncompleteChildren(set model.TaskSet, task *model.Task) bool {
	for _, id := range task.Children {
		if c, ok := set[id]; ok && !c.Completed {
			return true
		}
	}
	return false
}

// IsBlocked reports whether task has any incomplete blocker.
func IsBlocked(set model.TaskSet, task *model.Task) bool {
	return len(IncompleteBlockers(set, task)) > 0
}

// IsReady reports whether task is pending, unblocked, and has no
// incomplete children.
func IsReady(set model.TaskSet, task *model.Task) bool {
	return !task.Completed && !IsBlocked(set, task) && !HasIncompleteChildren(set, task)
}

// SyncParentChild updates Children on old and new parents when child's
// ParentID moves from oldParent to newParent (either may be empty,
// meaning root). It fails with ReferenceMissing if newParent is set but
// not present in set.
func SyncParentChild(set model.TaskSet, childID, oldParent, newParent string) error {
	if newParent != "" {
		if _, ok := set[newParent]; !ok {
			return model.ReferenceMissing("parent task not found: " + newParent)
		}
	}
	if oldParent != "" {
		if p, ok := set[oldParent]; ok {
			p.Children = removeString(p.Children, childID)
		}
	}
	if newParent != "" {
		p := set[newParent]
		if !containsString(p.Children, childID) {
			p.Children = append(p.Children, childID)
		}
	}
	return nil
}

// SyncAddBlocker maintains both sides of a blocking edge: blocked gains
// blocker in BlockedBy, blocker gains blocked in Blocks.
func SyncAddBlocker(set model.TaskSet, blockerID, blockedID string) error {
	blocker, ok := set[blockerID]
	if !ok {
		return model.ReferenceMissing("blocker task not found: " + blockerID)
	}
	blocked, ok := set[blockedID]
	if !ok {
		return model.ReferenceMissing("blocked task not found: " + blockedID)
	}
	if !containsString(blocked.BlockedBy, blockerID) {
		blocked.BlockedBy = append(blocked.BlockedBy, blockerID)
	}
	if !containsString(blocker.Blocks, blockedID) {
		blocker.Blocks = append(blocker.Blocks, blockedID)
	}
	return nil
}

// SyncRemoveBlocker is the inverse of SyncAddBlocker; missing edges are a
// no-op on each side.
func SyncRemoveBlocker(set model.TaskSet, blockerID, blockedID string) {
	if blocked, ok := set[blockedID]; ok {
		blocked.BlockedBy = removeString(blocked.BlockedBy, blockerID)
	}
	if blocker, ok := set[blockerID]; ok {
		blocker.Blocks = removeString(blocker.Blocks, blockedID)
	}
}

// CleanupTaskReferences removes id from every Children, BlockedBy, and
// Blocks slice of the remaining tasks in set. Used after a task is
// removed (delete cascade, archival transfer).
func CleanupTaskReferences(set model.TaskSet, id string) {
	for _, t := range set {
		t.Children = removeString(t.Children, id)
		t.BlockedBy = removeString(t.BlockedBy, id)
		t.Blocks = removeString(t.Blocks, id)
	}
}

// SortTasks orders tasks by priority ascending, ties broken by created_at
// ascending (stable) — the tie-break and sort order spec.md §4.2 and §4.5
// require for list().
func SortTasks(tasks []*model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority < tasks[j].Priority
		}
		return tasks[i].CreatedAt < tasks[j].CreatedAt
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
