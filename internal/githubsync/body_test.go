package githubsync

import (
	"strings"
	"testing"

	"github.com/dexcli/dex/internal/model"
)

func buildLineage() (model.TaskSet, *model.Task) {
	rootID := "root-1"
	childID := "child-1"
	grandchildID := "grandchild-1"

	root := &model.Task{
		ID:          rootID,
		Name:        "Ship the release",
		Description: "Cut v1.0 and announce it.",
		Priority:    2,
		Children:    []string{childID},
		CreatedAt:   "2026-01-01T00:00:00Z",
		UpdatedAt:   "2026-01-01T00:00:00Z",
	}
	child := &model.Task{
		ID:        childID,
		ParentID:  &rootID,
		Name:      "Write changelog",
		Completed: true,
		Result:    "Changelog merged in #42",
		Children:  []string{grandchildID},
		CreatedAt: "2026-01-02T00:00:00Z",
		UpdatedAt: "2026-01-03T00:00:00Z",
	}
	grandchild := &model.Task{
		ID:        grandchildID,
		ParentID:  &childID,
		Name:      "Proofread",
		CreatedAt: "2026-01-02T00:00:00Z",
		UpdatedAt: "2026-01-02T00:00:00Z",
	}

	set := model.TaskSet{rootID: root, childID: child, grandchildID: grandchild}
	return set, root
}

func TestEncodeIssueBodyContainsSection(t *testing.T) {
	set, root := buildLineage()
	body := EncodeIssueBody(set, root)
	if !strings.Contains(body, "## Tasks") {
		t.Fatalf("expected a ## Tasks section, got:\n%s", body)
	}
	if !strings.Contains(body, root.Description) {
		t.Errorf("expected root description in body")
	}
	if !strings.Contains(body, "Write changelog") {
		t.Errorf("expected child name in body")
	}
	if !strings.Contains(body, "Proofread") {
		t.Errorf("expected grandchild name in body")
	}
}

func TestEncodeDecodeIssueBodyRoundTrip(t *testing.T) {
	set, root := buildLineage()
	body := EncodeIssueBody(set, root)

	parsed := DecodeIssueBody(body)
	if parsed.RootID != root.ID {
		t.Errorf("expected root id %q, got %q", root.ID, parsed.RootID)
	}
	if len(parsed.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(parsed.Subtasks))
	}

	byID := map[string]subtaskView{}
	for _, s := range parsed.Subtasks {
		byID[s.ID] = s
	}

	child, ok := byID["child-1"]
	if !ok {
		t.Fatalf("expected child-1 in parsed subtasks")
	}
	if child.Name != "Write changelog" {
		t.Errorf("expected name 'Write changelog', got %q", child.Name)
	}
	if !child.Completed {
		t.Errorf("expected child to be completed")
	}
	if child.Result != "Changelog merged in #42" {
		t.Errorf("expected result preserved, got %q", child.Result)
	}

	grandchild, ok := byID["grandchild-1"]
	if !ok {
		t.Fatalf("expected grandchild-1 in parsed subtasks")
	}
	if grandchild.ParentID != "child-1" {
		t.Errorf("expected parent 'child-1', got %q", grandchild.ParentID)
	}
}

func TestDecodeIssueBodySkipsBlocksWithoutID(t *testing.T) {
	body := "Some prose\n\n## Tasks\n\n<details>\n<summary>[ ] <b>No id here</b></summary>\n\n### Description\nfoo\n</details>\n"
	parsed := DecodeIssueBody(body)
	if len(parsed.Subtasks) != 0 {
		t.Errorf("expected 0 subtasks for a block with no id comment, got %d", len(parsed.Subtasks))
	}
}

func TestDecodeIssueBodyAcceptsLegacySummaryFormat(t *testing.T) {
	body := "## Task Details\n\n<details>\n<summary>[x] Legacy task</summary>\n<!-- dex:subtask:id:legacy-1 -->\n<!-- dex:subtask:parent: -->\n### Description\nold format\n</details>\n"
	parsed := DecodeIssueBody(body)
	if len(parsed.Subtasks) != 1 {
		t.Fatalf("expected 1 subtask, got %d", len(parsed.Subtasks))
	}
	if parsed.Subtasks[0].Name != "Legacy task" {
		t.Errorf("expected legacy summary name parsed, got %q", parsed.Subtasks[0].Name)
	}
	if !parsed.Subtasks[0].Completed {
		t.Errorf("expected legacy [x] to mark completed")
	}
}
