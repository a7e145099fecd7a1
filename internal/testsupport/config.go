// Package testsupport provides shared helpers for picvoice tests:
// temp-dir configurations, store constructors, fixture files, and stub
// encoder binaries placed on PATH.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"picvoice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.UsersDir = filepath.Join(base, "users")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.DatabasePath = filepath.Join(base, "picvoice.db")
	cfgVal.Paths.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAccountEmail overrides the seeded account email on the test config.
func WithAccountEmail(email string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Account.Email = email
	}
}

// WithVideoTimeout overrides the combined-output encode timeout (seconds).
func WithVideoTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.VideoTimeout = seconds
	}
}

// WithStubEncoder writes a stub ffmpeg executable that exits successfully
// after creating its output file (the final argument), and prepends its
// directory to PATH.
func WithStubEncoder() ConfigOption {
	return func(b *configBuilder) {
		writeEncoderStub(b.t, b.baseDir, b.cfg, "#!/bin/sh\nfor arg in \"$@\"; do last=\"$arg\"; done\n: > \"$last\"\nexit 0\n")
	}
}

// WithFailingEncoder writes a stub ffmpeg executable that exits with a
// non-zero status, and prepends its directory to PATH.
func WithFailingEncoder() ConfigOption {
	return func(b *configBuilder) {
		writeEncoderStub(b.t, b.baseDir, b.cfg, "#!/bin/sh\nexit 1\n")
	}
}

// WithHangingEncoder writes a stub ffmpeg executable that sleeps well past
// any test timeout, for exercising the kill-on-timeout path.
func WithHangingEncoder() ConfigOption {
	return func(b *configBuilder) {
		writeEncoderStub(b.t, b.baseDir, b.cfg, "#!/bin/sh\nexec sleep 300\n")
	}
}

func writeEncoderStub(t testing.TB, baseDir string, cfg *config.Config, script string) {
	t.Helper()
	binDir := filepath.Join(baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write encoder stub: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	cfg.Encoder.Binary = "ffmpeg"
}
