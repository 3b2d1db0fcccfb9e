package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mosaic/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The media root and its orientation subdirectories exist on return.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.MediaDir = filepath.Join(base, "media")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Auth.Secret = "test-secret"
	cfgVal.Pipeline.QueueSize = 16
	cfgVal.Watcher.SettleMS = 20

	if err := cfgVal.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

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

// WithUser adds an account to the test config.
func WithUser(name, password, role, filter string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Auth.Users == nil {
			b.cfg.Auth.Users = make(map[string]config.User)
		}
		b.cfg.Auth.Users[name] = config.User{Password: password, Role: role, Filter: filter}
	}
}

// WithGuest enables guest sessions with the given filter expression.
func WithGuest(filter string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Auth.Guest = config.Guest{Enabled: true, Filter: filter}
	}
}

// WithLabels sets the configured label tooltips.
func WithLabels(labels map[string]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.UI.Labels = labels
	}
}

// WithQueueSize overrides the mutation queue capacity.
func WithQueueSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.QueueSize = n
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default mosaic external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.MediaDir)
}
