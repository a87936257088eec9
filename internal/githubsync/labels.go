package githubsync

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/dexcli/dex/internal/model"
)

// existingLabelNames flattens an issue's label objects to plain names.
func existingLabelNames(issue *github.Issue) []string {
	out := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		out = append(out, l.GetName())
	}
	return out
}

// buildLabels implements spec.md §4.6's label management: the
// configured prefix, a priority label, and a completion label.
// Remote-only labels the caller already has on the issue are merged in
// by the dispatcher — this only computes the dex-owned subset.
func buildLabels(prefix string, root *model.Task) []string {
	if prefix == "" {
		prefix = "dex"
	}
	state := "pending"
	if root.Completed {
		state = "completed"
	}
	return []string{
		prefix,
		fmt.Sprintf("%s:priority-%d", prefix, root.Priority),
		fmt.Sprintf("%s:%s", prefix, state),
	}
}

// mergeLabels keeps every existing label that isn't dex-owned (i.e.
// doesn't start with prefix) and appends the freshly computed dex
// labels, so remote-only labels survive a sync.
func mergeLabels(existing []string, prefix string, fresh []string) []string {
	out := make([]string, 0, len(existing)+len(fresh))
	for _, l := range existing {
		if !strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	out = append(out, fresh...)
	return out
}

// parsePriorityLabel extracts n from "{prefix}:priority-{n}", used by
// the importer when no dex:task: metadata comment is present.
func parsePriorityLabel(labels []string, prefix string) (int, bool) {
	want := prefix + ":priority-"
	for _, l := range labels {
		if strings.HasPrefix(l, want) {
			if n, err := strconv.Atoi(strings.TrimPrefix(l, want)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
