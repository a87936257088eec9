package cli

import (
	"strings"
	"testing"
)

// testDirs holds one project directory per test, so every run call made
// by the same test sees the tasks its earlier calls created.
var testDirs = map[*testing.T]string{}

// run executes the root command against the calling test's project
// directory (fresh for each test, shared by all of that test's run
// calls) and returns combined stdout and the error, mirroring
// kelos-dev-kelos's cmd.SetArgs/cmd.Execute() harness pattern.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir, ok := testDirs[t]
	if !ok {
		dir = t.TempDir()
		testDirs[t] = dir
	}
	root := NewRootCommand()
	out := &strings.Builder{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"--dir", dir}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	out, err := run(t, "create", "write tests")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "write tests") {
		t.Fatalf("create output missing name: %q", out)
	}

	id := strings.Fields(out)[0]
	out, err = run(t, "get", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, "write tests") {
		t.Fatalf("get output missing name: %q", out)
	}
}

func TestGetUnknownIDReturnsNotFound(t *testing.T) {
	_, err := run(t, "get", "nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestListExcludesCompletedTasksByDefault(t *testing.T) {
	out, err := run(t, "create", "only task")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := strings.Fields(out)[0]
	if _, err := run(t, "complete", id); err != nil {
		t.Fatalf("complete: %v", err)
	}

	out, err = run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "0 task(s)") {
		t.Fatalf("expected bare list to exclude completed tasks, got %q", out)
	}

	out, err = run(t, "list", "--all")
	if err != nil {
		t.Fatalf("list --all: %v", err)
	}
	if !strings.Contains(out, "1 task(s)") {
		t.Fatalf("expected list --all to include the completed task, got %q", out)
	}
}

func TestListReportsZeroTasksOnEmptyStore(t *testing.T) {
	out, err := run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "0 task(s)") {
		t.Fatalf("expected empty task count, got %q", out)
	}
}

func TestCompleteRequiresTaskID(t *testing.T) {
	_, err := run(t, "complete")
	if err == nil {
		t.Fatal("expected error when no id given")
	}
}

func TestDeleteUnknownIDReturnsError(t *testing.T) {
	_, err := run(t, "delete", "ghost")
	if err == nil {
		t.Fatal("expected error deleting an unknown task")
	}
}

func TestSyncWithoutGitHubEnabledIsRejected(t *testing.T) {
	out, err := run(t, "create", "needs sync")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := strings.Fields(out)[0]

	_, err = run(t, "sync", id)
	if err == nil {
		t.Fatal("expected error when GitHub sync is disabled")
	}
}

func TestImportWithoutGitHubEnabledIsRejected(t *testing.T) {
	_, err := run(t, "import", "#1")
	if err == nil {
		t.Fatal("expected error when GitHub sync is disabled")
	}
}

func TestConfigInitThenShowRoundTrip(t *testing.T) {
	if _, err := run(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	out, err := run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "label_prefix") {
		t.Fatalf("config show output missing the initialized keys: %q", out)
	}
}

func TestArchiveBulkRequiresOlderThanOrCompleted(t *testing.T) {
	out, err := run(t, "archive")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !strings.Contains(out, "Usage") && !strings.Contains(out, "archive") {
		t.Fatalf("expected usage help, got %q", out)
	}
}

func TestCompleteTaskWithIncompleteChildFails(t *testing.T) {
	out, err := run(t, "create", "parent task")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	parentID := strings.Fields(out)[0]

	if _, err := run(t, "create", "child task", "--parent", parentID); err != nil {
		t.Fatalf("create child: %v", err)
	}

	if _, err := run(t, "complete", parentID); err == nil {
		t.Fatal("expected error completing a parent with an incomplete child")
	}
}

func TestStartThenCompleteSucceeds(t *testing.T) {
	out, err := run(t, "create", "standalone task")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := strings.Fields(out)[0]

	if _, err := run(t, "start", id); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err = run(t, "complete", id, "--result", "done")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, "completed") {
		t.Fatalf("expected completed status in output, got %q", out)
	}
}

func TestArchiveCompletedLineage(t *testing.T) {
	out, err := run(t, "create", "archivable task")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := strings.Fields(out)[0]

	if _, err := run(t, "complete", id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	out, err = run(t, "archive", id)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !strings.Contains(out, "archived") {
		t.Fatalf("expected archived confirmation, got %q", out)
	}
}
