package cli

import (
	"os/exec"
	"regexp"
	"strings"

	"github.com/dexcli/dex/internal/config"
	"github.com/dexcli/dex/internal/model"
)

// remoteRE matches both SSH ("git@github.com:owner/repo.git") and HTTPS
// ("https://github.com/owner/repo.git") GitHub remote URL forms.
var remoteRE = regexp.MustCompile(`github\.com[:/]([\w.\-]+)/([\w.\-]+?)(?:\.git)?$`)

// detectRemote resolves owner/repo for GitHub sync: an explicit
// sync.github.owner/repo config override wins, else the project's
// "origin" git remote is parsed.
func detectRemote(projectDir string, cfg config.GitHubSyncConfig) (string, string, error) {
	if cfg.Owner != "" && cfg.Repo != "" {
		return cfg.Owner, cfg.Repo, nil
	}
	out, err := exec.Command("git", "-C", projectDir, "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", model.ValidationFailed(
			"could not detect a GitHub remote",
			"set sync.github.owner and sync.github.repo in config, or add a git remote named 'origin'")
	}
	m := remoteRE.FindStringSubmatch(strings.TrimSpace(string(out)))
	if m == nil {
		return "", "", model.ValidationFailed("origin remote is not a github.com URL: " + strings.TrimSpace(string(out)))
	}
	return m[1], m[2], nil
}
