package graph

import (
	"testing"

	"github.com/dexcli/dex/internal/model"
)

func strp(s string) *string { return &s }

func newTask(id string, parent *string) *model.Task {
	return &model.Task{ID: id, ParentID: parent, Name: id, CreatedAt: id}
}

func chainSet() model.TaskSet {
	set := model.TaskSet{}
	set["e"] = newTask("e", nil)
	set["t"] = newTask("t", strp("e"))
	set["s"] = newTask("s", strp("t"))
	set["e"].Children = []string{"t"}
	set["t"].Children = []string{"s"}
	return set
}

func TestAncestors(t *testing.T) {
	t.Parallel()
	set := chainSet()
	got := Ancestors(set, "s")
	want := []string{"e", "t"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Ancestors(s) = %v, want %v", got, want)
	}
	if len(Ancestors(set, "e")) != 0 {
		t.Fatalf("Ancestors(e) should be empty for a root")
	}
}

func TestDescendants(t *testing.T) {
	t.Parallel()
	set := chainSet()
	got := Descendants(set, "e")
	if len(got) != 2 || got[0] != "t" || got[1] != "s" {
		t.Fatalf("Descendants(e) = %v", got)
	}
}

func TestDepthFromParent(t *testing.T) {
	t.Parallel()
	set := chainSet()
	if d := DepthFromParent(set, ""); d != 0 {
		t.Fatalf("DepthFromParent(root) = %d, want 0", d)
	}
	if d := DepthFromParent(set, "e"); d != 1 {
		t.Fatalf("DepthFromParent(e) = %d, want 1", d)
	}
	if d := DepthFromParent(set, "s"); d != 3 {
		t.Fatalf("DepthFromParent(s) = %d, want 3", d)
	}
}

func TestIsDescendant(t *testing.T) {
	t.Parallel()
	set := chainSet()
	if !IsDescendant(set, "s", "e") {
		t.Fatal("IsDescendant(s, e) = false, want true")
	}
	if IsDescendant(set, "e", "s") {
		t.Fatal("IsDescendant(e, s) = true, want false")
	}
}

func TestWouldCreateBlockingCycle(t *testing.T) {
	t.Parallel()
	set := model.TaskSet{
		"a": newTask("a", nil),
		"b": newTask("b", nil),
		"c": newTask("c", nil),
	}
	// B blockedBy A; C blockedBy B.
	if err := SyncAddBlocker(set, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := SyncAddBlocker(set, "b", "c"); err != nil {
		t.Fatal(err)
	}
	// A blockedBy C would close the cycle A -> (blocks) B -> (blocks) C -> (blockedBy edge to A).
	if !WouldCreateBlockingCycle(set, "c", "a") {
		t.Fatal("WouldCreateBlockingCycle(c, a) = false, want true (S4)")
	}
	// A already blocks C through B; the walk follows both edge directions,
	// so a direct A -> C edge is rejected as well.
	if !WouldCreateBlockingCycle(set, "a", "c") {
		t.Fatal("WouldCreateBlockingCycle(a, c) = false, want true")
	}
	if !WouldCreateBlockingCycle(set, "a", "a") {
		t.Fatal("WouldCreateBlockingCycle(a, a) = false, want true (no self-blocking)")
	}
}

func TestReadyBlockedAndIncompleteChildren(t *testing.T) {
	t.Parallel()
	set := model.TaskSet{
		"a": newTask("a", nil),
		"b": newTask("b", nil),
	}
	if err := SyncAddBlocker(set, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if !IsBlocked(set, set["b"]) {
		t.Fatal("b should be blocked by a")
	}
	if IsReady(set, set["b"]) {
		t.Fatal("b should not be ready while blocked")
	}
	if !IsReady(set, set["a"]) {
		t.Fatal("a should be ready: no blockers, no children")
	}
	set["a"].Completed = true
	SyncRemoveBlocker(set, "a", "b")
	if IsBlocked(set, set["b"]) {
		t.Fatal("b should no longer be blocked after removing the edge")
	}
	if !IsReady(set, set["b"]) {
		t.Fatal("b should be ready once unblocked")
	}
}

func TestSyncParentChildReferenceMissing(t *testing.T) {
	t.Parallel()
	set := model.TaskSet{"a": newTask("a", nil)}
	err := SyncParentChild(set, "child", "", "missing-parent")
	if err == nil {
		t.Fatal("expected ReferenceMissing error for a nonexistent parent")
	}
	me, ok := err.(*model.Error)
	if !ok || me.Kind != model.KindReferenceMissing {
		t.Fatalf("error = %v, want ReferenceMissing", err)
	}
}

func TestCleanupTaskReferences(t *testing.T) {
	t.Parallel()
	set := chainSet()
	x := newTask("x", nil)
	set["x"] = x
	if err := SyncAddBlocker(set, "s", "x"); err != nil {
		t.Fatal(err)
	}
	CleanupTaskReferences(set, "s")
	if containsString(set["t"].Children, "s") {
		t.Fatal("s should be removed from t.Children")
	}
	if containsString(set["x"].BlockedBy, "s") {
		t.Fatal("s should be removed from x.BlockedBy")
	}
}

func TestSortTasksPriorityThenCreatedAt(t *testing.T) {
	t.Parallel()
	tasks := []*model.Task{
		{ID: "late-high", Priority: 5, CreatedAt: "2026-01-02T00:00:00.000Z"},
		{ID: "early-low", Priority: 1, CreatedAt: "2026-01-01T00:00:00.000Z"},
		{ID: "early-high", Priority: 5, CreatedAt: "2026-01-01T00:00:00.000Z"},
	}
	SortTasks(tasks)
	want := []string{"early-low", "early-high", "late-high"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("SortTasks()[%d] = %s, want %s", i, tasks[i].ID, id)
		}
	}
}
