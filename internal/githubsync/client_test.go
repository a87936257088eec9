package githubsync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/dexcli/dex/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := NewClient("test-token", "acme", "widgets", zap.NewNop())
	if err := c.SetBaseURL(srv.URL + "/"); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}
	return c, srv
}

func TestListLabeledIssuesPaginates(t *testing.T) {
	calls := 0
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, r.URL.Path))
			_ = json.NewEncoder(w).Encode([]map[string]any{{"number": 1}})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{"number": 2}})
	})
	defer srv.Close()

	issues, err := c.ListLabeledIssues(context.Background(), "dex")
	if err != nil {
		t.Fatalf("ListLabeledIssues: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues across pages, got %d", len(issues))
	}
}

func TestCreateIssue(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"number": 99})
	})
	defer srv.Close()

	issue, err := c.CreateIssue(context.Background(), nil)
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if issue.GetNumber() != 99 {
		t.Errorf("expected issue number 99, got %d", issue.GetNumber())
	}
}

func TestMapErrorUnauthorized(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Bad credentials"})
	})
	defer srv.Close()

	_, err := c.GetIssue(context.Background(), 1)
	if err == nil {
		t.Fatalf("expected an error")
	}
	merr, ok := err.(*model.Error)
	if !ok {
		t.Fatalf("expected *model.Error, got %T", err)
	}
	if !merr.Is(model.GitHubAuth("", nil)) {
		t.Errorf("expected GitHubAuth kind, got %v", merr.Kind)
	}
}

func TestMapErrorServerError(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "boom"})
	})
	defer srv.Close()

	_, err := c.GetIssue(context.Background(), 1)
	merr, ok := err.(*model.Error)
	if !ok {
		t.Fatalf("expected *model.Error, got %T", err)
	}
	if !merr.Is(model.GitHubTransport("", nil)) {
		t.Errorf("expected GitHubTransport kind, got %v", merr.Kind)
	}
}

func TestResolveTokenFromEnv(t *testing.T) {
	env := map[string]string{"GITHUB_TOKEN": "secret-token"}
	tok, err := ResolveToken(func(k string) string { return env[k] }, "")
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if tok != "secret-token" {
		t.Errorf("expected 'secret-token', got %q", tok)
	}
}

func TestResolveTokenCustomEnvVar(t *testing.T) {
	env := map[string]string{"MY_GH_TOKEN": "custom-token"}
	tok, err := ResolveToken(func(k string) string { return env[k] }, "MY_GH_TOKEN")
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if tok != "custom-token" {
		t.Errorf("expected 'custom-token', got %q", tok)
	}
}
