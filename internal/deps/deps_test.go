package deps

import (
	"os"
	"path/filepath"
	"testing"

	"picvoice/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for blank command: %#v", results[2])
	}
}

func TestRequirementsUseConfiguredEncoder(t *testing.T) {
	cfg := config.Default()
	cfg.Encoder.Binary = "custom-encoder"

	reqs := Requirements(&cfg)
	if len(reqs) != 1 {
		t.Fatalf("expected one requirement, got %d", len(reqs))
	}
	if reqs[0].Command != "custom-encoder" {
		t.Fatalf("expected configured binary, got %q", reqs[0].Command)
	}
	if reqs[0].Optional {
		t.Fatal("encoder is a hard requirement")
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "Encoder", Available: false},
		{Name: "Extra", Available: false, Optional: true},
		{Name: "Fine", Available: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "Encoder" {
		t.Fatalf("unexpected missing set %v", missing)
	}
}
