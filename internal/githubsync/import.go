package githubsync

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dexcli/dex/internal/graph"
	"github.com/dexcli/dex/internal/ids"
	"github.com/dexcli/dex/internal/model"
)

// issueRefRE accepts the three reference forms spec.md §4.6 names: a
// bare "#123", an "owner/repo#123" cross-repo reference, or a full
// issue URL.
var issueRefRE = regexp.MustCompile(`^(?:(?:https?://github\.com/)?([\w.\-]+)/([\w.\-]+)/issues/(\d+)|([\w.\-]+)/([\w.\-]+)#(\d+)|#?(\d+))$`)

// ParseIssueRef resolves one of the three accepted forms against the
// client's own owner/repo when the reference doesn't name one.
func ParseIssueRef(ref, defaultOwner, defaultRepo string) (owner, repo string, number int, err error) {
	ref = strings.TrimSpace(ref)
	m := issueRefRE.FindStringSubmatch(ref)
	if m == nil {
		return "", "", 0, model.ValidationFailed("unrecognized issue reference: " + ref)
	}
	switch {
	case m[1] != "":
		owner, repo, number = m[1], m[2], mustAtoi(m[3])
	case m[4] != "":
		owner, repo, number = m[4], m[5], mustAtoi(m[6])
	default:
		owner, repo, number = defaultOwner, defaultRepo, mustAtoi(m[7])
	}
	return owner, repo, number, nil
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ImportResult reports the local ids Import produced, keyed by the
// remote embedded id each task carried (empty string maps to the root
// when the issue body embedded no dex:task:id comment).
type ImportResult struct {
	RootID   string
	TaskIDs  map[string]string // embedded id -> local id
	Imported int
}

// Import materializes an issue (and its embedded subtasks) into set as
// a new lineage, per spec.md §4.6's import path. It never looks at an
// existing local mirror — UpdateFromRemote refreshes the root of an
// already-imported lineage instead. set is mutated in place; the caller is responsible for
// persisting it.
func (p *Protocol) Import(ctx context.Context, set model.TaskSet, owner, repo string, issueNumber int) (*ImportResult, error) {
	client := p.client
	if owner != "" && (owner != client.owner || repo != client.repo) {
		client = &Client{gh: p.client.gh, limiter: p.client.limiter, owner: owner, repo: repo, log: p.log}
	}

	issue, err := client.GetIssue(ctx, issueNumber)
	if err != nil {
		return nil, err
	}
	parsed := DecodeIssueBody(issue.GetBody())

	now := ids.Now()
	rootID, err := ids.Generate()
	if err != nil {
		return nil, model.Internal("generate id", err)
	}

	priority := 1
	if v, ok := parsed.RootMeta["priority"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			priority = n
		}
	} else if n, ok := parsePriorityLabel(existingLabelNames(issue), p.labelPrefix()); ok {
		priority = n
	}

	root := &model.Task{
		ID:          rootID,
		Name:        issue.GetTitle(),
		Description: parsed.Prose,
		Priority:    priority,
		Completed:   issue.GetState() == "closed",
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata: &model.Metadata{
			GitHub: &model.GitHubMeta{IssueNumber: issueNumber, IssueURL: issue.GetHTMLURL(), Repo: fmt.Sprintf("%s/%s", client.owner, client.repo)},
		},
	}
	if root.Completed {
		root.CompletedAt = &now
	}
	set[rootID] = root

	result := &ImportResult{RootID: rootID, TaskIDs: map[string]string{parsed.RootID: rootID}, Imported: 1}

	// Two passes: allocate a local id for every embedded subtask first, so
	// every parent reference maps to the local id of the subtask it names.
	// The second pass links in list order: a subtask listed before its
	// parent fails with ReferenceMissing. EncodeIssueBody always lists a
	// parent before its children.
	for _, sub := range parsed.Subtasks {
		localID, err := ids.Generate()
		if err != nil {
			return nil, model.Internal("generate id", err)
		}
		for set[localID] != nil {
			if localID, err = ids.Generate(); err != nil {
				return nil, model.Internal("generate id", err)
			}
		}
		result.TaskIDs[sub.ID] = localID
	}

	for _, sub := range parsed.Subtasks {
		localID := result.TaskIDs[sub.ID]
		parentLocal, ok := result.TaskIDs[sub.ParentID]
		if !ok || parentLocal == "" {
			parentLocal = rootID
		}
		// The depth cap holds for imported lineages too: a subtask whose
		// resolved parent is already at depth 2 (root's grandchild)
		// attaches to the root instead of nesting further.
		if graph.DepthFromParent(set, parentLocal)+1 > 3 {
			parentLocal = rootID
		}

		t := &model.Task{
			ID:          localID,
			ParentID:    &parentLocal,
			Name:        sub.Name,
			Description: sub.Description,
			Priority:    sub.Priority,
			Completed:   sub.Completed,
			Result:      sub.Result,
			CreatedAt:   orDefault(sub.CreatedAt, now),
			UpdatedAt:   orDefault(sub.UpdatedAt, now),
		}
		if sub.StartedAt != "" {
			startedAt := sub.StartedAt
			t.StartedAt = &startedAt
		}
		if sub.CompletedAt != "" {
			completedAt := sub.CompletedAt
			t.CompletedAt = &completedAt
		}
		if sub.CommitSHA != "" {
			t.Metadata = &model.Metadata{Commit: &model.CommitMeta{SHA: sub.CommitSHA}}
		}
		set[localID] = t
		if err := graph.SyncParentChild(set, localID, "", parentLocal); err != nil {
			return nil, err
		}
		result.Imported++
	}

	p.cache.Set(rootID, issueNumber)
	return result, nil
}

// UpdateFromRemote re-reads the issue linked to rootID and refreshes
// the root task's own fields (name, description, open/closed state).
// Subtask content is addressed by re-running Import against a fresh
// lineage; spec.md §4.6 treats the local store as authoritative for
// subtask structure once imported, so this only reconciles the one
// thing GitHub stays the source of truth for: the root issue itself.
func (p *Protocol) UpdateFromRemote(ctx context.Context, set model.TaskSet, rootID string) error {
	root, ok := set[rootID]
	if !ok || root.Metadata == nil || root.Metadata.GitHub == nil {
		return model.ReferenceMissing("task has no linked GitHub issue: " + rootID)
	}
	issue, err := p.client.GetIssue(ctx, root.Metadata.GitHub.IssueNumber)
	if err != nil {
		return err
	}
	parsed := DecodeIssueBody(issue.GetBody())

	root.Name = issue.GetTitle()
	root.Description = parsed.Prose
	root.Completed = issue.GetState() == "closed"
	root.UpdatedAt = ids.Now()
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
