package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	"github.com/matzehuels/bnbsearch/pkg/config"
	"github.com/matzehuels/bnbsearch/pkg/knapsack"
	"github.com/matzehuels/bnbsearch/pkg/runner"
)

// executeCLI runs args against c's root command.
func executeCLI(c *CLI, args ...string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestSolveLogsProgressLine(t *testing.T) {
	_, problem := sandbox(t)
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	if err := executeCLI(c, "solve", "--json", problem); err != nil {
		t.Fatalf("solve: %v", err)
	}

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, "Solved camping (") {
			line = l
		}
	}
	if line == "" {
		t.Fatalf("no progress line in log output:\n%s", buf.String())
	}
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("progress line lacks a timestamp: %q", line)
	}
}

func TestDebugLevelReportsConfigFile(t *testing.T) {
	dir, problem := sandbox(t)
	cfgDir := filepath.Join(dir, "config", appName)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := "[history]\nbackend = \"none\"\n"
	if err := os.WriteFile(filepath.Join(cfgDir, configFile), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		debug bool
		want  bool
	}{
		{"info level", false, false},
		{"debug level", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(&buf, LogInfo)
			if tt.debug {
				c.SetLogLevel(LogDebug)
			}
			if err := executeCLI(c, "solve", "--json", problem); err != nil {
				t.Fatalf("solve: %v", err)
			}
			if got := strings.Contains(buf.String(), "using config"); got != tt.want {
				t.Errorf("config path logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunnerUsesCommandLogger(t *testing.T) {
	cfg := config.Defaults()
	cfg.Cache.Backend = config.CacheNone
	cfg.History.Backend = config.HistoryNone
	c := New(io.Discard, LogInfo)

	var buf bytes.Buffer
	cmdLogger := newLogger(&buf, LogInfo)
	ctx := withLogger(context.Background(), cmdLogger)

	r, err := c.newRunner(ctx, cfg)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer r.Close(ctx)
	if r.Logger != cmdLogger {
		t.Fatal("runner should log through the logger attached to the context")
	}

	p, err := knapsack.Parse([]byte(campingTOML))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Solve(ctx, p, bnb.DefaultConfig(), runner.Options{}); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !strings.Contains(buf.String(), "search finished") {
		t.Errorf("search log should reach the command logger:\n%s", buf.String())
	}

	fallback, err := c.newRunner(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer fallback.Close(ctx)
	if fallback.Logger != c.Logger {
		t.Error("runner should fall back to the CLI logger")
	}
}
