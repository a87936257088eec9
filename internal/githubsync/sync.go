package githubsync

import (
	"context"
	"time"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"

	"github.com/dexcli/dex/internal/config"
	"github.com/dexcli/dex/internal/ids"
	"github.com/dexcli/dex/internal/metrics"
	"github.com/dexcli/dex/internal/model"
	"github.com/dexcli/dex/internal/store"
)

// Protocol implements service.GitHubSyncer: one call to Dispatch
// mirrors rootID's whole lineage to a single GitHub issue (Import and
// UpdateFromRemote cover the other direction),
// per spec.md §4.6.
type Protocol struct {
	client *Client
	store  *store.Store
	cache  *IdentificationCache
	cfg    config.GitHubSyncConfig
	log    *zap.Logger
	metrics *metrics.Collector
}

// New builds a Protocol. The identification cache starts empty and is
// populated lazily on first use within a process lifetime.
func New(client *Client, st *store.Store, cfg config.GitHubSyncConfig, log *zap.Logger, m *metrics.Collector) *Protocol {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Protocol{
		client:  client,
		store:   st,
		cache:   NewIdentificationCache(0),
		cfg:     cfg,
		log:     log,
		metrics: m,
	}
}

// Dispatch implements service.GitHubSyncer. It is a post-commit hook:
// set already reflects the committed mutation. rootID empty means the
// whole lineage was removed (a delete of a root task); nothing to sync.
func (p *Protocol) Dispatch(ctx context.Context, set model.TaskSet, rootID string) error {
	if !p.cfg.Enabled || rootID == "" {
		return nil
	}
	root, ok := set[rootID]
	if !ok {
		return nil
	}

	due, err := p.isDue(root)
	if err != nil {
		return err
	}
	if !due {
		return nil
	}

	correlationID := ids.NewCorrelationID()
	log := p.log.With(zap.String("correlation_id", correlationID), zap.String("root_id", rootID))

	issueNumber, err := p.resolveIssueNumber(ctx, root)
	if err != nil {
		p.metrics.RecordSync("error")
		return err
	}

	req := p.buildIssueRequest(set, root)

	var issue *github.Issue
	if issueNumber == 0 {
		issue, err = p.client.CreateIssue(ctx, req)
		if err != nil {
			p.metrics.RecordSync("error")
			return err
		}
		issueNumber = issue.GetNumber()
		p.cache.Set(rootID, issueNumber)
		if err := p.persistIssueNumber(rootID, issueNumber, issue.GetHTMLURL()); err != nil {
			log.Warn("failed to persist issue number locally", zap.Error(err))
		}
	} else {
		existing, err := p.client.GetIssue(ctx, issueNumber)
		if err != nil {
			p.metrics.RecordSync("error")
			return err
		}
		merged := mergeLabels(existingLabelNames(existing), p.labelPrefix(), buildLabels(p.labelPrefix(), root))
		req.Labels = &merged
		if _, err = p.client.EditIssue(ctx, issueNumber, req); err != nil {
			p.metrics.RecordSync("error")
			return err
		}
	}

	if err := p.markSynced(); err != nil {
		log.Warn("failed to update sync-state", zap.Error(err))
	}
	p.metrics.RecordSync("ok")
	log.Info("github sync dispatched", zap.Int("issue_number", issueNumber))
	return nil
}

// resolveIssueNumber implements the identification-cache lookup order:
// metadata already on the task, else the cache (rebuilt from the
// remote label listing on first miss), else 0 meaning "create".
func (p *Protocol) resolveIssueNumber(ctx context.Context, root *model.Task) (int, error) {
	if root.Metadata != nil && root.Metadata.GitHub != nil && root.Metadata.GitHub.IssueNumber != 0 {
		return root.Metadata.GitHub.IssueNumber, nil
	}
	if n, ok := p.cache.Get(root.ID); ok {
		return n, nil
	}
	if err := p.rebuildCache(ctx); err != nil {
		return 0, err
	}
	if n, ok := p.cache.Get(root.ID); ok {
		return n, nil
	}
	return 0, nil
}

func (p *Protocol) rebuildCache(ctx context.Context) error {
	prefix := p.labelPrefix()
	issues, err := p.client.ListLabeledIssues(ctx, prefix)
	if err != nil {
		return err
	}
	p.cache.Clear()
	for _, issue := range issues {
		parsed := DecodeIssueBody(issue.GetBody())
		if parsed.RootID != "" {
			p.cache.Set(parsed.RootID, issue.GetNumber())
		}
	}
	return nil
}

func (p *Protocol) buildIssueRequest(set model.TaskSet, root *model.Task) *github.IssueRequest {
	prefix := p.labelPrefix()
	labels := buildLabels(prefix, root)
	body := EncodeIssueBody(set, root)
	state := "open"
	if root.Completed {
		state = "closed"
	}
	return &github.IssueRequest{
		Title:  github.String(root.Name),
		Body:   github.String(body),
		Labels: &labels,
		State:  github.String(state),
	}
}

func (p *Protocol) labelPrefix() string {
	if p.cfg.LabelPrefix == "" {
		return "dex"
	}
	return p.cfg.LabelPrefix
}

// persistIssueNumber writes the newly minted issue number back onto
// root's metadata in the active store — a second, idempotent write
// distinct from the mutating operation's own commit (spec.md §4.6:
// "the remote issue number is stored back on the root's metadata.github").
func (p *Protocol) persistIssueNumber(rootID string, issueNumber int, issueURL string) error {
	set, err := p.store.Read()
	if err != nil {
		return err
	}
	t, ok := set[rootID]
	if !ok {
		return nil
	}
	if t.Metadata == nil {
		t.Metadata = &model.Metadata{}
	}
	t.Metadata.GitHub = &model.GitHubMeta{IssueNumber: issueNumber, IssueURL: issueURL}
	return p.store.Write(set)
}

// isDue implements the on_change / max_age dispatch policy.
func (p *Protocol) isDue(root *model.Task) (bool, error) {
	if p.cfg.Auto.OnChange || p.cfg.Auto.MaxAge == "" {
		return true, nil
	}
	maxAge, err := config.ParseDuration(p.cfg.Auto.MaxAge)
	if err != nil {
		return false, model.ValidationFailed("invalid sync.github.auto.max_age: " + err.Error())
	}
	state, err := p.store.ReadSyncState()
	if err != nil {
		return false, err
	}
	if state.LastSync == nil {
		return true, nil
	}
	last, err := ids.ParseTime(*state.LastSync)
	if err != nil {
		return true, nil
	}
	return time.Since(last) > maxAge, nil
}

func (p *Protocol) markSynced() error {
	now := ids.Now()
	return p.store.WriteSyncState(&store.SyncState{LastSync: &now})
}
