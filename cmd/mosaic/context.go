package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mosaic/internal/config"
	"mosaic/internal/labels"
	"mosaic/internal/library"
	"mosaic/internal/logging"
)

// commandContext carries shared state between the root command and its
// subcommands, loading configuration lazily so commands that do not need
// it (for example "config init") never touch the filesystem.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := ""
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loadLibrary scans the media tree for the offline commands. Scan warnings
// (corrupt sidecars, unreadable directories) go to stderr so they do not
// pollute table or JSON output on stdout.
func (c *commandContext) loadLibrary() (*labels.Store, library.Stats, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, library.Stats{}, err
	}
	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, library.Stats{}, err
	}
	return library.Scan(cfg, logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
