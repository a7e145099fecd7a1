package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig lays down a config file whose paths all live under a
// fresh temp directory and returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
users_dir = %q
log_dir = %q
database_path = %q
bind = "127.0.0.1:0"
`,
		filepath.Join(base, "users"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "picvoice.db"))
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	output, err := runCommand(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, want := range []string{"serve", "status", "images", "tags", "annotations"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in help output:\n%s", want, output)
		}
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("expected target path in output: %s", output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file written: %v", err)
	}

	// Initializing again without --overwrite refuses.
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init to fail without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite init failed: %v", err)
	}
}

func TestConfigValidateWithFile(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(output, "Configuration valid") {
		t.Fatalf("unexpected validate output: %s", output)
	}
	if !strings.Contains(output, cfgPath) {
		t.Fatalf("expected resolved config path in output: %s", output)
	}
}

func TestConfigShowRendersSettings(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"Users Dir", "Account Email", "127.0.0.1:0"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in show output:\n%s", want, output)
		}
	}
}

func TestImagesListEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "images", "list")
	if err != nil {
		t.Fatalf("images list failed: %v", err)
	}
	if !strings.Contains(output, "No images found") {
		t.Fatalf("unexpected output: %s", output)
	}
}

func TestTagLifecycleThroughCLI(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output, err := runCommand(t, "--config", cfgPath, "tags", "add", "holiday", "--color", "#112233")
	if err != nil {
		t.Fatalf("tags add failed: %v", err)
	}
	if !strings.Contains(output, `Created tag "holiday"`) {
		t.Fatalf("unexpected add output: %s", output)
	}

	output, err = runCommand(t, "--config", cfgPath, "tags", "list")
	if err != nil {
		t.Fatalf("tags list failed: %v", err)
	}
	if !strings.Contains(output, "holiday") || !strings.Contains(output, "#112233") {
		t.Fatalf("unexpected list output: %s", output)
	}

	output, err = runCommand(t, "--config", cfgPath, "tags", "rm", "1")
	if err != nil {
		t.Fatalf("tags rm failed: %v", err)
	}
	if !strings.Contains(output, "Deleted tag 1") {
		t.Fatalf("unexpected rm output: %s", output)
	}

	if _, err := runCommand(t, "--config", cfgPath, "tags", "rm", "1"); err == nil {
		t.Fatal("expected rm of missing tag to fail")
	}
}

func TestAnnotationsRemoveMissing(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCommand(t, "--config", cfgPath, "annotations", "rm", "42"); err == nil {
		t.Fatal("expected missing annotation to fail")
	}
}

func TestStatsCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)
	output, err := runCommand(t, "--config", cfgPath, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	for _, want := range []string{"Images", "Annotations", "Tags"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in stats output:\n%s", want, output)
		}
	}
}
