package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mosaic/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.MediaDir != filepath.Join(tempHome, "media") {
		t.Fatalf("unexpected media dir: %q", cfg.Paths.MediaDir)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "mosaic", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Server.Bind != "127.0.0.1:8462" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if !cfg.Server.Gzip {
		t.Fatal("expected gzip enabled by default")
	}
	if cfg.Pipeline.QueueSize != 1024 {
		t.Fatalf("unexpected queue size: %d", cfg.Pipeline.QueueSize)
	}
	if !cfg.Thumbnails.Enabled || cfg.Thumbnails.Quality != 4 {
		t.Fatalf("unexpected thumbnail defaults: %+v", cfg.Thumbnails)
	}
	if !cfg.Watcher.Enabled || cfg.Watcher.SettleMS != 500 {
		t.Fatalf("unexpected watcher defaults: %+v", cfg.Watcher)
	}
	if !cfg.Auth.GeneratedSecret {
		t.Fatal("expected ephemeral secret for empty auth.secret")
	}
	if cfg.Auth.Secret == "" || cfg.Auth.Secret == "change-me" {
		t.Fatalf("unexpected secret: %q", cfg.Auth.Secret)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{
		cfg.Paths.MediaDir,
		cfg.Paths.LogDir,
		filepath.Join(cfg.Paths.MediaDir, "square"),
		filepath.Join(cfg.Paths.MediaDir, "landscape"),
		filepath.Join(cfg.Paths.MediaDir, "portrait"),
	} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mosaic.toml")

	contents := `
[paths]
media_dir = "` + tempDir + `"

[server]
bind = "0.0.0.0:9000"
base_path = "mosaic/"
gzip = false

[auth]
secret = "topsecret"
token_ttl_hours = 2

[auth.users.alice]
password = "pw"
role = "Admin"

[auth.guest]
enabled = true
filter = " !👎 "

[ui]
title = "Shelf"

[ui.labels]
"🥗" = "wholesome"

[[ui.grid.landscape]]
cols = 2
rows = 1

[[ui.grid.landscape]]
cols = 0
rows = 0

[pipeline]
queue_size = 64
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.MediaDir != tempDir {
		t.Fatalf("unexpected media dir: %q", cfg.Paths.MediaDir)
	}
	if cfg.Server.Bind != "0.0.0.0:9000" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.Server.BasePath != "/mosaic" {
		t.Fatalf("expected normalized base path /mosaic, got %q", cfg.Server.BasePath)
	}
	if cfg.Server.Gzip {
		t.Fatal("expected gzip disabled by override")
	}
	if cfg.Auth.Secret != "topsecret" || cfg.Auth.GeneratedSecret {
		t.Fatalf("expected configured secret kept, got %+v", cfg.Auth)
	}
	alice, ok := cfg.Auth.Users["alice"]
	if !ok {
		t.Fatal("expected user alice")
	}
	if alice.Role != "admin" {
		t.Fatalf("expected role normalized to admin, got %q", alice.Role)
	}
	if !cfg.Auth.Guest.Enabled || cfg.Auth.Guest.Filter != "!👎" {
		t.Fatalf("unexpected guest config: %+v", cfg.Auth.Guest)
	}
	if cfg.UI.Title != "Shelf" {
		t.Fatalf("unexpected title: %q", cfg.UI.Title)
	}
	if cfg.UI.Labels["🥗"] != "wholesome" {
		t.Fatalf("unexpected labels: %v", cfg.UI.Labels)
	}
	grid := cfg.UI.Grid["landscape"]
	if len(grid) != 2 || grid[0].Cols != 2 || grid[1].Cols != 0 {
		t.Fatalf("unexpected grid: %+v", grid)
	}
	if cfg.Pipeline.QueueSize != 64 {
		t.Fatalf("unexpected queue size: %d", cfg.Pipeline.QueueSize)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "mosaic.toml")
	contents := "[server]\nbind = \"127.0.0.1:8000\"\nbogus = true\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "change-me") {
		t.Fatalf("sample config missing placeholder secret: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Server.Bind != "127.0.0.1:8462" {
		t.Fatalf("unexpected sample bind: %q", cfg.Server.Bind)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Auth.Secret = "s"
		return cfg
	}

	cfg := valid()
	cfg.Server.Bind = "no-port"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bind without port")
	}

	cfg = valid()
	cfg.Auth.TokenTTLHours = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero token ttl")
	}

	cfg = valid()
	cfg.Auth.Users = map[string]config.User{"bob": {Password: "pw", Role: "owner"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown role")
	}

	cfg = valid()
	cfg.Auth.Users = map[string]config.User{"bob": {Role: "user"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty password")
	}

	cfg = valid()
	cfg.UI.Grid = map[string][]config.GridCell{"diagonal": {{Cols: 1, Rows: 1}}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown grid orientation")
	}

	cfg = valid()
	cfg.Pipeline.QueueSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero queue size")
	}

	cfg = valid()
	cfg.Thumbnails.Quality = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range thumbnail quality")
	}
}
