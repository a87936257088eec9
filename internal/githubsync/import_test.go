package githubsync

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dexcli/dex/internal/config"
	"github.com/dexcli/dex/internal/model"
)

func TestImportMaterializesRootAndSubtasks(t *testing.T) {
	body := "Ship it.\n\n<!-- dex:task:id:remote-root -->\n\n## Tasks\n\n" +
		"<details>\n<summary>[ ] <b>Write changelog</b></summary>\n" +
		"<!-- dex:subtask:id:remote-child -->\n<!-- dex:subtask:parent:remote-root -->\n<!-- dex:subtask:priority:2 -->\n" +
		"### Description\nUpdate CHANGELOG.md\n</details>\n"

	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"number": 10,
			"title":  "Ship the release",
			"body":   body,
			"state":  "open",
			"html_url": "https://github.com/acme/widgets/issues/10",
		})
	})
	defer srv.Close()

	p := New(c, nil, config.GitHubSyncConfig{Enabled: true, LabelPrefix: "dex"}, nil, nil)
	set := model.TaskSet{}

	result, err := p.Import(context.Background(), set, "acme", "widgets", 10)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported tasks, got %d", result.Imported)
	}

	root := set[result.RootID]
	if root.Name != "Ship the release" {
		t.Errorf("expected root name from issue title, got %q", root.Name)
	}
	if root.Metadata == nil || root.Metadata.GitHub == nil || root.Metadata.GitHub.IssueNumber != 10 {
		t.Fatalf("expected root to carry github metadata")
	}

	childLocalID := result.TaskIDs["remote-child"]
	child := set[childLocalID]
	if child == nil {
		t.Fatalf("expected child to be materialized")
	}
	if child.ParentID == nil || *child.ParentID != result.RootID {
		t.Errorf("expected child's parent to be the new root id")
	}
	if child.Priority != 2 {
		t.Errorf("expected priority 2 from embedded metadata, got %d", child.Priority)
	}
	if root.Children[0] != childLocalID {
		t.Errorf("expected root.Children to list the new child id")
	}
}

func TestParseIssueRefBareNumber(t *testing.T) {
	owner, repo, n, err := ParseIssueRef("#42", "acme", "widgets")
	if err != nil {
		t.Fatalf("ParseIssueRef: %v", err)
	}
	if owner != "acme" || repo != "widgets" || n != 42 {
		t.Errorf("got (%s, %s, %d)", owner, repo, n)
	}
}

func TestParseIssueRefNumberWithoutHash(t *testing.T) {
	owner, repo, n, err := ParseIssueRef("42", "acme", "widgets")
	if err != nil {
		t.Fatalf("ParseIssueRef: %v", err)
	}
	if owner != "acme" || repo != "widgets" || n != 42 {
		t.Errorf("got (%s, %s, %d)", owner, repo, n)
	}
}

func TestParseIssueRefOwnerRepo(t *testing.T) {
	owner, repo, n, err := ParseIssueRef("other/repo#7", "acme", "widgets")
	if err != nil {
		t.Fatalf("ParseIssueRef: %v", err)
	}
	if owner != "other" || repo != "repo" || n != 7 {
		t.Errorf("got (%s, %s, %d)", owner, repo, n)
	}
}

func TestParseIssueRefFullURL(t *testing.T) {
	owner, repo, n, err := ParseIssueRef("https://github.com/other/repo/issues/7", "acme", "widgets")
	if err != nil {
		t.Fatalf("ParseIssueRef: %v", err)
	}
	if owner != "other" || repo != "repo" || n != 7 {
		t.Errorf("got (%s, %s, %d)", owner, repo, n)
	}
}

func TestParseIssueRefInvalid(t *testing.T) {
	if _, _, _, err := ParseIssueRef("not an issue ref", "acme", "widgets"); err == nil {
		t.Fatalf("expected an error for an unrecognized reference")
	}
}
