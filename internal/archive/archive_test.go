package archive

import (
	"testing"

	"github.com/dexcli/dex/internal/model"
)

func TestAppendAndGetArchived(t *testing.T) {
	t.Parallel()
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	rec := &model.ArchivedTask{ID: "abc12345", Name: "done", CompletedAt: "x", ArchivedAt: "y"}
	if err := l.Append([]*model.ArchivedTask{rec}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	got, err := l.GetArchived("abc12345")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "done" {
		t.Fatalf("GetArchived() = %+v", got)
	}
	if miss, _ := l.GetArchived("missing1"); miss != nil {
		t.Fatalf("GetArchived() for a missing id = %+v, want nil", miss)
	}
}

func TestDuplicateIDKeepsLatest(t *testing.T) {
	t.Parallel()
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Append([]*model.ArchivedTask{{ID: "abc12345", Name: "first", ArchivedAt: "1"}}); err != nil {
		t.Fatal(err)
	}
	if err := l.Append([]*model.ArchivedTask{{ID: "abc12345", Name: "second", ArchivedAt: "2"}}); err != nil {
		t.Fatal(err)
	}
	got, err := l.GetArchived("abc12345")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "second" {
		t.Fatalf("GetArchived() = %q, want the most recently appended record", got.Name)
	}
	all, err := l.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("List() returned %d records for one id, want 1 (dedup)", len(all))
	}
}

func TestListSubstringMatch(t *testing.T) {
	t.Parallel()
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	recs := []*model.ArchivedTask{
		{ID: "abc12345", Name: "Fix Login Bug", ArchivedAt: "1"},
		{ID: "def67890", Name: "Update docs", ArchivedAt: "1"},
	}
	if err := l.Append(recs); err != nil {
		t.Fatal(err)
	}
	got, err := l.List("login")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "abc12345" {
		t.Fatalf("List(login) = %+v", got)
	}
}
