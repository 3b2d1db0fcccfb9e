package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	if err := c.normalizeAuth(); err != nil {
		return err
	}
	c.normalizeUI()
	c.normalizePipeline()
	c.normalizeThumbnails()
	c.normalizeWatcher()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.FrontendDir) != "" {
		if c.Paths.FrontendDir, err = expandPath(c.Paths.FrontendDir); err != nil {
			return fmt.Errorf("paths.frontend_dir: %w", err)
		}
	} else {
		c.Paths.FrontendDir = ""
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	base := strings.TrimSpace(c.Server.BasePath)
	base = strings.TrimRight(base, "/")
	if base != "" && !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	c.Server.BasePath = base
	if c.Server.LoginRatePerMinute <= 0 {
		c.Server.LoginRatePerMinute = defaultLoginRatePerMinute
	}
}

func (c *Config) normalizeAuth() error {
	c.Auth.Secret = strings.TrimSpace(c.Auth.Secret)
	if c.Auth.Secret == "" || c.Auth.Secret == placeholderSecret {
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("auth.secret: %w", err)
		}
		c.Auth.Secret = secret
		c.Auth.GeneratedSecret = true
	}
	if c.Auth.TokenTTLHours <= 0 {
		c.Auth.TokenTTLHours = defaultTokenTTLHours
	}
	for name, user := range c.Auth.Users {
		user.Role = strings.ToLower(strings.TrimSpace(user.Role))
		if user.Role == "" {
			user.Role = "user"
		}
		user.Filter = strings.TrimSpace(user.Filter)
		c.Auth.Users[name] = user
	}
	c.Auth.Guest.Filter = strings.TrimSpace(c.Auth.Guest.Filter)
	return nil
}

func (c *Config) normalizeUI() {
	c.UI.Title = strings.TrimSpace(c.UI.Title)
	if c.UI.Title == "" {
		c.UI.Title = defaultTitle
	}
	c.UI.PrimaryColor = strings.TrimSpace(c.UI.PrimaryColor)
	if c.UI.PrimaryColor == "" {
		c.UI.PrimaryColor = defaultPrimaryColor
	}
	c.UI.BackgroundColor = strings.TrimSpace(c.UI.BackgroundColor)
	if c.UI.BackgroundColor == "" {
		c.UI.BackgroundColor = defaultBackgroundColor
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.QueueSize <= 0 {
		c.Pipeline.QueueSize = defaultQueueSize
	}
}

func (c *Config) normalizeThumbnails() {
	if c.Thumbnails.Quality <= 0 {
		c.Thumbnails.Quality = defaultThumbnailQuality
	}
	if c.Thumbnails.Quality > 31 {
		c.Thumbnails.Quality = 31
	}
	if c.Thumbnails.MaxConcurrent <= 0 {
		c.Thumbnails.MaxConcurrent = defaultThumbnailWorkers
	}
}

func (c *Config) normalizeWatcher() {
	if c.Watcher.SettleMS <= 0 {
		c.Watcher.SettleMS = defaultWatcherSettleMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
