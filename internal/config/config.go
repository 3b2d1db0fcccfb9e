package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	MediaDir    string `toml:"media_dir"`
	LogDir      string `toml:"log_dir"`
	FrontendDir string `toml:"frontend_dir"`
}

// Server contains HTTP listener configuration.
type Server struct {
	Bind               string `toml:"bind"`
	BasePath           string `toml:"base_path"`
	Gzip               bool   `toml:"gzip"`
	LoginRatePerMinute int    `toml:"login_rate_per_minute"`
}

// User describes one configured account.
type User struct {
	Password string `toml:"password"`
	Role     string `toml:"role"`
	Filter   string `toml:"filter"`
}

// Guest controls password-less guest sessions.
type Guest struct {
	Enabled bool   `toml:"enabled"`
	Filter  string `toml:"filter"`
}

// Auth contains token signing and account configuration.
type Auth struct {
	Secret        string          `toml:"secret"`
	TokenTTLHours int             `toml:"token_ttl_hours"`
	Users         map[string]User `toml:"users"`
	Guest         Guest           `toml:"guest"`

	// GeneratedSecret is set when Secret was empty or the sample placeholder
	// and an ephemeral one was generated in its place.
	GeneratedSecret bool `toml:"-"`
}

// GridCell describes one cell of an orientation's mosaic layout. A cell with
// Cols == 0 is a filler slot and is serialized to clients as null.
type GridCell struct {
	Cols int `toml:"cols" json:"cols"`
	Rows int `toml:"rows" json:"rows"`
}

// UI contains presentation settings passed through to the frontend.
type UI struct {
	Title           string                `toml:"title"`
	PrimaryColor    string                `toml:"primary_color"`
	BackgroundColor string                `toml:"background_color"`
	Backgrounds     map[string]string     `toml:"backgrounds"`
	Labels          map[string]string     `toml:"labels"`
	Presets         map[string]string     `toml:"presets"`
	Grid            map[string][]GridCell `toml:"grid"`
}

// Pipeline contains mutation queue configuration.
type Pipeline struct {
	QueueSize int `toml:"queue_size"`
}

// Thumbnails contains poster generation configuration.
type Thumbnails struct {
	Enabled       bool `toml:"enabled"`
	Quality       int  `toml:"quality"`
	MaxConcurrent int  `toml:"max_concurrent"`
}

// Catalog contains media-info cache configuration.
type Catalog struct {
	Enabled bool `toml:"enabled"`
}

// Watcher contains library watch configuration.
type Watcher struct {
	Enabled  bool `toml:"enabled"`
	SettleMS int  `toml:"settle_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Mosaic.
//
// Configuration sections by subsystem:
//   - Paths: media library root, log directory, optional frontend override
//   - Server: bind address, base path, compression, login rate limit
//   - Auth: token secret and TTL, accounts, guest access
//   - UI: titles, colors, label tooltips, presets, mosaic grid layouts
//   - Pipeline: mutation queue sizing
//   - Thumbnails: poster generation quality and concurrency
//   - Catalog: media-info cache toggle
//   - Watcher: live library registration
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Server     Server     `toml:"server"`
	Auth       Auth       `toml:"auth"`
	UI         UI         `toml:"ui"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Thumbnails Thumbnails `toml:"thumbnails"`
	Catalog    Catalog    `toml:"catalog"`
	Watcher    Watcher    `toml:"watcher"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mosaic/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: unknown keys:\n%s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/mosaic/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mosaic.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Orientations lists the fixed media subdirectories in scan order.
var Orientations = []string{"square", "landscape", "portrait"}

// EnsureDirectories creates required directories for daemon operation.
// Orientation subdirectories are created on a best-effort basis so the daemon
// can run when external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.MediaDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	for _, orientation := range Orientations {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(filepath.Join(c.Paths.MediaDir, orientation), 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for thumbnail generation.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
