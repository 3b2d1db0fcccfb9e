package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"mosaic/internal/auth"
	"mosaic/internal/catalog"
	"mosaic/internal/config"
	"mosaic/internal/deps"
	"mosaic/internal/labels"
	"mosaic/internal/library"
	"mosaic/internal/logging"
	"mosaic/internal/media"
	"mosaic/internal/persist"
	"mosaic/internal/query"
	"mosaic/internal/server"
)

// Daemon owns the background services and enforces single-instance
// execution over a library.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	store    *labels.Store
	catalog  *catalog.Store
	pipeline *persist.Pipeline
	watcher  *library.Watcher
	server   *server.Server

	running atomic.Bool
}

// New constructs a daemon for the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires a configuration")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "mosaicd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and brings the services up in order:
// scan, catalog, pipeline, watcher, HTTP. A failure part-way tears down
// whatever already started and releases the lock.
func (d *Daemon) Start(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		d.running.Store(false)
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		d.running.Store(false)
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		d.running.Store(false)
		return fmt.Errorf("another mosaic daemon is already running (lock %s)", d.lockPath)
	}

	if err := d.startServices(ctx); err != nil {
		d.teardown()
		if unlockErr := d.lock.Unlock(); unlockErr != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(unlockErr))
		}
		d.running.Store(false)
		return err
	}

	d.logger.Info("mosaic daemon started",
		slog.String("addr", d.server.Addr()),
		slog.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) startServices(ctx context.Context) error {
	if d.cfg.Auth.GeneratedSecret {
		d.logger.Warn("auth secret was generated for this run; sessions will not survive a restart")
	}
	for _, status := range deps.CheckSystemDeps(d.cfg) {
		if status.Available {
			d.logger.Debug("dependency available",
				slog.String("binary", status.Name),
				slog.String("command", status.Command))
			continue
		}
		d.logger.Warn("optional dependency missing",
			slog.String("binary", status.Name),
			slog.String("detail", status.Detail),
			slog.String("purpose", status.Description))
	}

	store, stats, err := library.Scan(d.cfg, d.logger)
	if err != nil {
		return fmt.Errorf("scan library: %w", err)
	}
	d.store = store
	d.logger.Info("library loaded",
		slog.Int("items", store.Len()),
		slog.Int("labels", stats.Labels),
		slog.Int("records", stats.Records),
		slog.Int("skipped", stats.Skipped))

	if err := d.checkFilters(); err != nil {
		return err
	}

	if d.cfg.Catalog.Enabled {
		cat, err := catalog.Open(d.cfg)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		d.catalog = cat
	}

	d.pipeline = persist.New(d.cfg, d.store, d.logger)
	if err := d.pipeline.Start(ctx); err != nil {
		return err
	}

	if d.cfg.Watcher.Enabled {
		d.watcher = library.NewWatcher(d.cfg, d.store, d.logger)
		if err := d.watcher.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
	}

	prober := media.NewProber(d.cfg, d.catalog, d.logger)
	thumbs := media.NewThumbnailer(d.cfg, d.logger)
	d.server = server.New(d.cfg, d.store, d.pipeline, prober, thumbs, auth.NewService(d.cfg), d.logger)
	if err := d.server.Start(ctx); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}
	return nil
}

// checkFilters evaluates configured account and guest filters against the
// loaded library so a typo fails startup instead of every request.
func (d *Daemon) checkFilters() error {
	snap := d.store.Snapshot()
	for name, user := range d.cfg.Auth.Users {
		if strings.TrimSpace(user.Filter) == "" {
			continue
		}
		if _, err := query.Evaluate(user.Filter, snap); err != nil {
			return fmt.Errorf("filter for user %q: %w", name, err)
		}
	}
	if d.cfg.Auth.Guest.Enabled && strings.TrimSpace(d.cfg.Auth.Guest.Filter) != "" {
		if _, err := query.Evaluate(d.cfg.Auth.Guest.Filter, snap); err != nil {
			return fmt.Errorf("guest filter: %w", err)
		}
	}
	return nil
}

// Stop shuts the services down in reverse start order and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.CompareAndSwap(true, false) {
		return
	}

	d.teardown()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.logger.Info("mosaic daemon stopped")
}

// teardown stops whatever is running. HTTP goes first so no new mutations
// arrive while the pipeline drains its final flush.
func (d *Daemon) teardown() {
	if d.server != nil {
		d.server.Stop()
		d.server = nil
	}
	if d.watcher != nil {
		d.watcher.Stop()
		d.watcher = nil
	}
	if d.pipeline != nil {
		d.pipeline.Stop()
		d.pipeline = nil
	}
	if d.catalog != nil {
		if err := d.catalog.Close(); err != nil {
			d.logger.Warn("failed to close catalog", logging.Error(err))
		}
		d.catalog = nil
	}
}

// Running reports whether Start has succeeded and Stop has not yet run.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Addr returns the HTTP listener address while the daemon is running.
func (d *Daemon) Addr() string {
	if srv := d.server; srv != nil {
		return srv.Addr()
	}
	return ""
}
