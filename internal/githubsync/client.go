package githubsync

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dexcli/dex/internal/model"
)

// Client wraps go-github's IssuesService behind the rate-limited,
// error-mapped surface Protocol's dispatch and import paths use,
// grounded on jra3-linear-fuse's internal/api.Client: a private
// *rate.Limiter gates every call before GitHub's own secondary rate
// limiting would respond 403.
type Client struct {
	gh      *github.Client
	limiter *rate.Limiter
	owner   string
	repo    string
	log     *zap.Logger
}

// NewClient builds a Client for owner/repo using token for auth. The
// limiter allows a sustained 5 requests/sec with bursts of up to 20;
// reads and writes share the same limiter.
func NewClient(token, owner, repo string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	gh := github.NewClient(httpClient).WithAuthToken(token)
	return &Client{
		gh:      gh,
		limiter: rate.NewLimiter(rate.Limit(5), 20),
		owner:   owner,
		repo:    repo,
		log:     log,
	}
}

// SetBaseURL points the client at a different API root, for tests.
func (c *Client) SetBaseURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	c.gh.BaseURL = u
	return nil
}

// ResolveToken implements spec.md §4.6's token acquisition order: the
// configured environment variable, then the `gh auth token` helper.
func ResolveToken(getenv func(string) string, tokenEnv string) (string, error) {
	if tokenEnv == "" {
		tokenEnv = "GITHUB_TOKEN"
	}
	if tok := getenv(tokenEnv); tok != "" {
		return tok, nil
	}
	out, err := exec.Command("gh", "auth", "token").Output()
	if err == nil {
		if tok := strings.TrimSpace(string(out)); tok != "" {
			return tok, nil
		}
	}
	return "", model.GitHubAuth("no GitHub token available", err)
}

// ListLabeledIssues fetches every issue carrying label, paginating
// 100/page and following each response's next-page link until there is
// none (spec.md §4.6's identification cache build step).
func (c *Client) ListLabeledIssues(ctx context.Context, label string) ([]*github.Issue, error) {
	var all []*github.Issue
	opts := &github.IssueListByRepoOptions{
		Labels:      []string{label},
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, model.GitHubTransport("rate limit wait cancelled", err)
		}
		issues, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, mapError(err, resp)
		}
		all = append(all, issues...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetIssue fetches a single issue by number.
func (c *Client) GetIssue(ctx context.Context, number int) (*github.Issue, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, model.GitHubTransport("rate limit wait cancelled", err)
	}
	issue, resp, err := c.gh.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, mapError(err, resp)
	}
	return issue, nil
}

// CreateIssue creates a new issue.
func (c *Client) CreateIssue(ctx context.Context, req *github.IssueRequest) (*github.Issue, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, model.GitHubTransport("rate limit wait cancelled", err)
	}
	issue, resp, err := c.gh.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return nil, mapError(err, resp)
	}
	return issue, nil
}

// EditIssue updates an existing issue.
func (c *Client) EditIssue(ctx context.Context, number int, req *github.IssueRequest) (*github.Issue, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, model.GitHubTransport("rate limit wait cancelled", err)
	}
	issue, resp, err := c.gh.Issues.Edit(ctx, c.owner, c.repo, number, req)
	if err != nil {
		return nil, mapError(err, resp)
	}
	return issue, nil
}

// mapError implements spec.md §4.6's transport error mapping: 401 →
// GitHubAuth, 403 with rate-limit headers → GitHubRateLimit, 5xx or
// network failure → GitHubTransport. go-github's typed errors never
// leak past this boundary.
func mapError(err error, resp *github.Response) *model.Error {
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return model.GitHubRateLimit("GitHub rate limit exceeded", err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return model.GitHubRateLimit("GitHub secondary rate limit triggered", err)
	}

	if resp != nil && resp.Response != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return model.GitHubAuth("GitHub rejected the token", err)
		case http.StatusForbidden:
			if resp.Rate.Remaining == 0 {
				return model.GitHubRateLimit("GitHub rate limit exceeded", err)
			}
			return model.GitHubAuth("GitHub denied access", err)
		default:
			if resp.StatusCode >= 500 {
				return model.GitHubTransport("GitHub server error", err)
			}
		}
	}
	return model.GitHubTransport("GitHub request failed", err)
}
