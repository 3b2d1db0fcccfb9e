package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"mosaic/internal/daemon"
	"mosaic/internal/logging"
)

func newServeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mosaic daemon in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmdCtx)
		},
	}
}

func runServe(parent context.Context, cmdCtx *commandContext) error {
	signalCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "mosaicd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("shutdown signal received")
	d.Stop()
	return nil
}

func writePIDFile(path string) error {
	pid := strconv.Itoa(os.Getpid())
	return os.WriteFile(path, []byte(pid+"\n"), 0o644)
}
