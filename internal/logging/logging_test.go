package logging

import (
	"testing"

	"github.com/dexcli/dex/internal/config"
)

func TestNewBuildsLoggerForEveryLevel(t *testing.T) {
	t.Parallel()
	for _, level := range []string{"debug", "info", "warn", "error", "", "bogus"} {
		l, err := New(config.LogConfig{Level: level, Format: "console"})
		if err != nil {
			t.Fatalf("New(level=%q) error = %v", level, err)
		}
		if l == nil {
			t.Fatalf("New(level=%q) returned nil logger", level)
		}
	}
}

func TestNewSupportsJSONFormat(t *testing.T) {
	t.Parallel()
	l, err := New(config.LogConfig{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if l == nil {
		t.Fatal("New() returned nil logger")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()
	if got := parseLevel("not-a-level"); got != parseLevel("info") {
		t.Errorf("parseLevel(bogus) = %v, want info level", got)
	}
}
