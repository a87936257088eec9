package githubsync

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dexcli/dex/internal/config"
	"github.com/dexcli/dex/internal/model"
	"github.com/dexcli/dex/internal/store"
)

func newTestProtocol(t *testing.T, cfg config.GitHubSyncConfig, handler http.HandlerFunc) (*Protocol, *store.Store) {
	t.Helper()
	c, srv := newTestClient(t, handler)
	t.Cleanup(srv.Close)
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return New(c, st, cfg, nil, nil), st
}

func TestDispatchSkipsWhenDisabled(t *testing.T) {
	called := false
	p, st := newTestProtocol(t, config.GitHubSyncConfig{Enabled: false}, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	root := &model.Task{ID: "root-1", Name: "Task"}
	set := model.TaskSet{"root-1": root}
	if err := st.Write(set); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := p.Dispatch(context.Background(), set, "root-1"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if called {
		t.Errorf("expected no GitHub call when sync is disabled")
	}
}

func TestDispatchCreatesIssueAndPersistsNumber(t *testing.T) {
	p, st := newTestProtocol(t, config.GitHubSyncConfig{Enabled: true, LabelPrefix: "dex", Auto: config.AutoConfig{OnChange: true}},
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"number":   55,
					"html_url": "https://github.com/acme/widgets/issues/55",
				})
				return
			}
			_ = json.NewEncoder(w).Encode([]map[string]any{})
		})

	root := &model.Task{ID: "root-1", Name: "Ship it", Priority: 1}
	set := model.TaskSet{"root-1": root}
	if err := st.Write(set); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := p.Dispatch(context.Background(), set, "root-1"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	refreshed, err := st.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got := refreshed["root-1"]
	if got.Metadata == nil || got.Metadata.GitHub == nil || got.Metadata.GitHub.IssueNumber != 55 {
		t.Fatalf("expected issue number 55 persisted, got %+v", got.Metadata)
	}

	state, err := st.ReadSyncState()
	if err != nil {
		t.Fatalf("ReadSyncState: %v", err)
	}
	if state.LastSync == nil {
		t.Errorf("expected lastSync to be set after a successful dispatch")
	}
}

func TestDispatchSkipsWhenRootMissing(t *testing.T) {
	p, _ := newTestProtocol(t, config.GitHubSyncConfig{Enabled: true}, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("expected no GitHub call when root is missing from set")
	})
	if err := p.Dispatch(context.Background(), model.TaskSet{}, "missing"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
}

func TestBuildIssueRequestClosesCompletedRoot(t *testing.T) {
	p, _ := newTestProtocol(t, config.GitHubSyncConfig{LabelPrefix: "dex"}, nil)
	root := &model.Task{ID: "root-1", Name: "Done task", Completed: true}
	set := model.TaskSet{"root-1": root}
	req := p.buildIssueRequest(set, root)
	if req.GetState() != "closed" {
		t.Errorf("expected closed state, got %q", req.GetState())
	}
}
