package fittrack

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so package-level flag vars
// do not leak between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type cliEnv struct {
	dbPath     string
	configPath string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	return cliEnv{
		dbPath:     filepath.Join(dir, "fittrack.db"),
		configPath: filepath.Join(dir, "config.yaml"),
	}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--db", e.dbPath, "--config", e.configPath}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func (e cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("fittrack %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestRootHelp(t *testing.T) {
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--help"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected help output")
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	env := newCLIEnv(t)
	for i := 0; i < 2; i++ {
		out := env.mustRun(t, "init")
		if !strings.Contains(out, "Initialized fittrack database") {
			t.Fatalf("init run %d: unexpected output %q", i+1, out)
		}
		wroteConfig := strings.Contains(out, "Wrote default config")
		if wroteConfig != (i == 0) {
			t.Fatalf("init run %d: config written=%v", i+1, wroteConfig)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun(t, "version")
	if !strings.HasPrefix(out, "fittrack ") || !strings.Contains(out, "go: go") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestInvalidLogLevelFlag(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "--log-level", "chatty", "version"); err == nil {
		t.Fatalf("expected invalid log level error")
	}
}
