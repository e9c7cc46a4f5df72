package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("catalog ready")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} INFO catalog ready\n$`).Match(buf.Bytes()) {
		t.Errorf("log line = %q", buf.String())
	}
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		debug bool
		info  bool
	}{
		{"default", LogInfo, false, true},
		{"verbose", LogDebug, true, true},
		{"editor running", LogError, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(&buf, LogInfo)
			c.SetLogLevel(tt.level)

			c.Logger.Debug("mounted canvas")
			if got := bytes.Contains(buf.Bytes(), []byte("mounted canvas")); got != tt.debug {
				t.Errorf("debug logged = %v, want %v", got, tt.debug)
			}
			c.Logger.Info("saved schematic")
			if got := bytes.Contains(buf.Bytes(), []byte("saved schematic")); got != tt.info {
				t.Errorf("info logged = %v, want %v", got, tt.info)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := &progress{logger: newLogger(&buf, LogInfo), start: time.Now().Add(-1500 * time.Millisecond)}
	p.done("exported feed.png")

	if !regexp.MustCompile(`exported feed\.png \(1\.5\d*s\)`).Match(buf.Bytes()) {
		t.Errorf("progress line = %q", buf.String())
	}
}

func TestLoadCatalogReportsProgress(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	defs, err := c.loadCatalog(context.Background())
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if defs.Len() != 5 {
		t.Fatalf("Len = %d, want the 5 built-in definitions", defs.Len())
	}
	if !regexp.MustCompile(`INFO 5 definitions loaded \(\d+(\.\d+)?(ns|µs|ms|s)\)`).Match(buf.Bytes()) {
		t.Errorf("log = %q", buf.String())
	}
}

func TestCommandContextLogger(t *testing.T) {
	c, _ := newTestCLI(t)

	var seen *log.Logger
	whoami := func() *cobra.Command {
		return &cobra.Command{
			Use: "whoami",
			RunE: func(cmd *cobra.Command, args []string) error {
				seen = loggerFromContext(cmd.Context())
				return nil
			},
		}
	}

	root := c.RootCommand()
	root.AddCommand(whoami())
	root.SetArgs([]string{"whoami"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if seen != c.Logger {
		t.Error("subcommand did not receive the CLI logger")
	}

	// Run outside the root command, nothing attaches a logger.
	seen = nil
	bare := whoami()
	bare.SetArgs([]string{})
	if err := bare.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if seen != log.Default() {
		t.Error("bare command should fall back to the default logger")
	}
}
