package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/journeyline/journeyline/pkg/config"
	"github.com/journeyline/journeyline/pkg/observability"
	"github.com/journeyline/journeyline/pkg/render/position"
)

// newTestCLI returns a CLI whose config and cache lookups stay inside
// temporary directories.
func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvConfig, "")

	var buf bytes.Buffer
	return New(&buf, log.InfoLevel), &buf
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	c, _ := newTestCLI(t)
	root := c.RootCommand()

	want := []string{"browse", "cache", "compile", "completion", "render", "serve"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestLoadConfig(t *testing.T) {
	c, buf := newTestCLI(t)
	path := writeTestFile(t, t.TempDir(), "config.toml", `
[layout]
orientation = "vertical"

[cache]
backend = "none"

[mystery]
key = 1
`)
	c.ConfigPath = path

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Layout.Orientation != position.Vertical {
		t.Errorf("orientation = %q, want vertical", cfg.Layout.Orientation)
	}
	if cfg.Layout.HorizontalSpacing != position.DefaultConfig().HorizontalSpacing {
		t.Error("unset layout fields should keep defaults")
	}
	if !strings.Contains(buf.String(), "unknown config key") {
		t.Errorf("expected unknown key warning, got %q", buf.String())
	}

	again, _ := c.loadConfig()
	if again != cfg {
		t.Error("config should be loaded once")
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	c, _ := newTestCLI(t)
	c.ConfigPath = filepath.Join(t.TempDir(), "absent.toml")
	if _, err := c.loadConfig(); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestSetLogLevelInstallsHooks(t *testing.T) {
	t.Cleanup(observability.Reset)
	c, buf := newTestCLI(t)

	c.SetLogLevel(LogDebug)
	observability.Cache().OnCacheMiss(context.Background(), "layout")

	if !strings.Contains(buf.String(), "cache miss") {
		t.Errorf("debug level should log cache events, got %q", buf.String())
	}
}

func TestNewRunnerNoCache(t *testing.T) {
	c, _ := newTestCLI(t)
	r, err := c.newRunner(context.Background(), true)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer r.Close()
	if r.Store != nil {
		t.Error("runner should have no store")
	}
}
