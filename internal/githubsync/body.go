// Package githubsync implements spec.md §4.6: a root task and its
// whole descendant lineage map to a single GitHub issue, with
// subtasks embedded in the issue body rather than as separate issues.
package githubsync

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dexcli/dex/internal/model"
)

const metaPrefixTask = "dex:task"
const metaPrefixSubtask = "dex:subtask"

// sectionHeaders lists the recognized "## ..." headers in preference
// order; the latter two are legacy forms a reader must still accept.
var sectionHeaders = []string{"## Tasks", "## Subtasks", "## Task Tree", "## Task Details"}

var metaCommentRE = regexp.MustCompile(`<!--\s*([a-zA-Z0-9_.\-]+:[a-zA-Z0-9_.\-]+):([a-zA-Z0-9_\-]+):(.*?)\s*-->`)
var detailsBlockRE = regexp.MustCompile(`(?s)<details>(.*?)</details>`)
var summaryNewRE = regexp.MustCompile(`(?s)<summary>\s*(✅|✓)?\s*\[([ x])\]?\s*<b>(.*?)</b>\s*</summary>`)
var summaryLegacyRE = regexp.MustCompile(`(?s)<summary>\s*\[([ x])\]\s*(.*?)\s*</summary>`)
var descriptionSectionRE = regexp.MustCompile(`(?s)###\s*Description\s*\n(.*?)(?:\n###|\z)`)
var resultSectionRE = regexp.MustCompile(`(?s)###\s*Result\s*\n(.*?)(?:\n###|\z)`)

// subtaskView is the flat representation of one <details> block, in
// either the issue-body encoding or a decoded parse result.
type subtaskView struct {
	ID          string
	ParentID    string
	Name        string
	Priority    int
	Completed   bool
	CreatedAt   string
	UpdatedAt   string
	StartedAt   string
	CompletedAt string
	CommitSHA   string
	Description string
	Result      string
}

// EncodeIssueBody renders root and its full descendant lineage
// (already sorted root-first is not required; ordering is derived from
// ParentID/Children) as a single issue body per spec.md §4.6.
func EncodeIssueBody(set model.TaskSet, root *model.Task) string {
	var b strings.Builder
	b.WriteString(root.Description)
	b.WriteString("\n\n")
	for _, c := range metaCommentsForTask(metaPrefixTask, root) {
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("\n## Tasks\n\n")

	descendants := orderedDescendants(set, root.ID)
	for _, t := range descendants {
		b.WriteString(renderSubtaskBlock(t))
		b.WriteString("\n")
	}
	return b.String()
}

func orderedDescendants(set model.TaskSet, rootID string) []*model.Task {
	var out []*model.Task
	var walk func(string)
	walk = func(id string) {
		t, ok := set[id]
		if !ok {
			return
		}
		children := append([]string(nil), t.Children...)
		sort.Strings(children)
		for _, cid := range children {
			if c, ok := set[cid]; ok {
				out = append(out, c)
				walk(cid)
			}
		}
	}
	walk(rootID)
	return out
}

func renderSubtaskBlock(t *model.Task) string {
	var b strings.Builder
	mark := " "
	if t.Completed {
		mark = "x"
	}
	b.WriteString("<details>\n")
	fmt.Fprintf(&b, "<summary>[%s] <b>%s</b></summary>\n", mark, escapeHTML(t.Name))

	parentID := ""
	if t.ParentID != nil {
		parentID = *t.ParentID
	}
	fields := []struct{ key, val string }{
		{"id", t.ID},
		{"parent", parentID},
		{"priority", strconv.Itoa(t.Priority)},
		{"completed", strconv.FormatBool(t.Completed)},
		{"created_at", t.CreatedAt},
		{"updated_at", t.UpdatedAt},
		{"started_at", derefOr(t.StartedAt, "null")},
		{"completed_at", derefOr(t.CompletedAt, "null")},
	}
	if t.Metadata != nil && t.Metadata.Commit != nil {
		fields = append(fields, struct{ key, val string }{"commit_sha", t.Metadata.Commit.SHA})
	}
	for _, f := range fields {
		fmt.Fprintf(&b, "<!-- %s:%s:%s -->\n", metaPrefixSubtask, f.key, encodeValue(f.val))
	}

	b.WriteString("\n### Description\n")
	b.WriteString(t.Description)
	b.WriteString("\n\n### Result\n")
	b.WriteString(t.Result)
	b.WriteString("\n</details>\n")
	return b.String()
}

func metaCommentsForTask(prefix string, t *model.Task) []string {
	var out []string
	if t.Metadata != nil && t.Metadata.GitHub != nil {
		out = append(out, fmt.Sprintf("<!-- %s:issue_number:%s -->", prefix, encodeValue(strconv.Itoa(t.Metadata.GitHub.IssueNumber))))
	}
	out = append(out, fmt.Sprintf("<!-- %s:id:%s -->", prefix, encodeValue(t.ID)))
	out = append(out, fmt.Sprintf("<!-- %s:priority:%s -->", prefix, encodeValue(strconv.Itoa(t.Priority))))
	return out
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// ParsedIssueBody is the decoded form of an issue body: the root's
// prose and metadata, plus a flat list of subtasks (parent ids refer
// to other entries in the same list or to the root).
type ParsedIssueBody struct {
	Prose       string
	RootID      string
	RootMeta    map[string]string
	Subtasks    []subtaskView
}

// DecodeIssueBody parses an issue body per spec.md §4.6's parsing
// rules: locate the first recognized section header (prose precedes
// it), then scan every <details>...</details> block.
func DecodeIssueBody(body string) ParsedIssueBody {
	headerIdx, headerLen := -1, 0
	for _, h := range sectionHeaders {
		if idx := strings.Index(body, h); idx != -1 && (headerIdx == -1 || idx < headerIdx) {
			headerIdx = idx
			headerLen = len(h)
		}
	}

	prologue := body
	if headerIdx != -1 {
		prologue = body[:headerIdx]
	}

	rootMeta := map[string]string{}
	for _, m := range metaCommentRE.FindAllStringSubmatch(prologue, -1) {
		if m[1] != metaPrefixTask {
			continue
		}
		rootMeta[m[2]] = decodeValue(m[3])
	}
	prose := strings.TrimSpace(metaCommentRE.ReplaceAllString(prologue, ""))

	var rest string
	if headerIdx != -1 {
		rest = body[headerIdx+headerLen:]
	}

	var subtasks []subtaskView
	for _, block := range detailsBlockRE.FindAllStringSubmatch(rest, -1) {
		content := block[1]
		sub, ok := parseSubtaskBlock(content)
		if !ok {
			continue // blocks without an id comment are skipped
		}
		subtasks = append(subtasks, sub)
	}

	return ParsedIssueBody{
		Prose:    prose,
		RootID:   rootMeta["id"],
		RootMeta: rootMeta,
		Subtasks: subtasks,
	}
}

func parseSubtaskBlock(content string) (subtaskView, bool) {
	meta := map[string]string{}
	for _, m := range metaCommentRE.FindAllStringSubmatch(content, -1) {
		if m[1] != metaPrefixSubtask {
			continue
		}
		meta[m[2]] = decodeValue(m[3])
	}
	id, ok := meta["id"]
	if !ok || id == "" {
		return subtaskView{}, false
	}

	sub := subtaskView{
		ID:          id,
		ParentID:    meta["parent"],
		CreatedAt:   meta["created_at"],
		UpdatedAt:   meta["updated_at"],
		CommitSHA:   meta["commit_sha"],
	}
	if v := meta["priority"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			sub.Priority = n
		}
	}
	completedMeta, hasCompletedMeta := meta["completed"]
	sub.Completed = completedMeta == "true"
	if v := meta["started_at"]; v != "" && v != "null" {
		sub.StartedAt = v
	}
	if v := meta["completed_at"]; v != "" && v != "null" {
		sub.CompletedAt = v
	}

	if m := summaryNewRE.FindStringSubmatch(content); m != nil {
		sub.Name = unescapeHTML(strings.TrimSpace(m[3]))
		if !hasCompletedMeta {
			sub.Completed = m[2] == "x"
		}
	} else if m := summaryLegacyRE.FindStringSubmatch(content); m != nil {
		sub.Name = unescapeHTML(strings.TrimSpace(m[2]))
		if !hasCompletedMeta {
			sub.Completed = m[1] == "x"
		}
	}

	if m := descriptionSectionRE.FindStringSubmatch(content); m != nil {
		sub.Description = strings.TrimSpace(m[1])
	}
	if m := resultSectionRE.FindStringSubmatch(content); m != nil {
		sub.Result = strings.TrimSpace(m[1])
	}

	return sub, true
}

func unescapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}
