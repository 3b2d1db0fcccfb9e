package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable. Filter expressions are not
// checked here; they can only be parsed against a loaded library and are
// verified at daemon start.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateUI(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateThumbnails(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		return errors.New("paths.media_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind must be host:port: %w", err)
	}
	if c.Server.LoginRatePerMinute <= 0 {
		return errors.New("server.login_rate_per_minute must be positive")
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.TokenTTLHours <= 0 {
		return errors.New("auth.token_ttl_hours must be positive")
	}
	for name, user := range c.Auth.Users {
		if strings.TrimSpace(name) == "" {
			return errors.New("auth.users contains an empty username")
		}
		if user.Password == "" {
			return fmt.Errorf("auth.users.%s.password must be set", name)
		}
		switch user.Role {
		case "admin", "user":
		default:
			return fmt.Errorf("auth.users.%s.role must be admin or user", name)
		}
	}
	return nil
}

func (c *Config) validateUI() error {
	for orientation := range c.UI.Grid {
		if !validOrientation(orientation) {
			return fmt.Errorf("ui.grid.%s: unknown orientation", orientation)
		}
		for i, cell := range c.UI.Grid[orientation] {
			if cell.Cols < 0 || cell.Rows < 0 {
				return fmt.Errorf("ui.grid.%s[%d]: cols and rows must be >= 0", orientation, i)
			}
		}
	}
	for orientation := range c.UI.Backgrounds {
		if !validOrientation(orientation) {
			return fmt.Errorf("ui.backgrounds.%s: unknown orientation", orientation)
		}
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.QueueSize <= 0 {
		return errors.New("pipeline.queue_size must be positive")
	}
	return nil
}

func (c *Config) validateThumbnails() error {
	if c.Thumbnails.Quality < 1 || c.Thumbnails.Quality > 31 {
		return errors.New("thumbnails.quality must be between 1 and 31")
	}
	if c.Thumbnails.MaxConcurrent <= 0 {
		return errors.New("thumbnails.max_concurrent must be positive")
	}
	return nil
}

func validOrientation(name string) bool {
	for _, orientation := range Orientations {
		if name == orientation {
			return true
		}
	}
	return false
}
