package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	"mosaic/internal/catalog"
	"mosaic/internal/config"
	"mosaic/internal/logging"
	"mosaic/internal/media/ffprobe"
)

// Prober answers media-info lookups from the catalog cache, probing with
// ffprobe only when an item has no fresh row.
type Prober struct {
	catalog  *catalog.Store
	mediaDir string
	binary   string
	sem      *semaphore.Weighted
	logger   *slog.Logger
	enabled  bool
}

// NewProber wires the prober against a catalog store. A nil store, a
// disabled [catalog] section, or a missing ffprobe binary all disable
// probing; Info then reports no metadata for every item.
func NewProber(cfg *config.Config, cat *catalog.Store, logger *slog.Logger) *Prober {
	log := logging.NewComponentLogger(logger, "prober")
	workers := int64(cfg.Thumbnails.MaxConcurrent)
	if workers < 1 {
		workers = 1
	}

	p := &Prober{
		catalog:  cat,
		mediaDir: cfg.Paths.MediaDir,
		binary:   cfg.FFprobeBinary(),
		sem:      semaphore.NewWeighted(workers),
		logger:   log,
	}
	if !cfg.Catalog.Enabled || cat == nil {
		return p
	}
	if _, err := exec.LookPath(p.binary); err != nil {
		log.Warn("catalog disabled, ffprobe not found", logging.Error(err))
		return p
	}
	p.enabled = true
	return p
}

// Enabled reports whether lookups can produce metadata.
func (p *Prober) Enabled() bool {
	return p.enabled
}

// Info returns cached metadata for the item, probing and caching first when
// the stored row is missing or stale. A disabled prober returns nil with no
// error.
func (p *Prober) Info(ctx context.Context, item string) (*catalog.MediaInfo, error) {
	if !p.enabled {
		return nil, nil
	}

	path := filepath.Join(p.mediaDir, filepath.FromSlash(item))
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}

	cached, err := p.catalog.Get(ctx, item)
	if err != nil {
		return nil, err
	}
	if cached.Matches(fi.Size(), fi.ModTime()) {
		return cached, nil
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	result, err := ffprobe.Inspect(ctx, p.binary, path)
	if err != nil {
		return nil, err
	}

	info := &catalog.MediaInfo{
		Item:     item,
		Duration: result.DurationSeconds(),
		FileSize: fi.Size(),
		FileMod:  fi.ModTime(),
		ProbedAt: time.Now().UTC(),
	}
	if vs := result.FirstVideoStream(); vs != nil {
		info.Width = vs.Width
		info.Height = vs.Height
		info.Codec = vs.CodecName
	}

	// A cache write failure costs a re-probe next time, not the response.
	if err := p.catalog.Upsert(ctx, info); err != nil {
		p.logger.Warn("cannot cache probe result",
			logging.String(logging.FieldItem, item),
			logging.Error(err))
	}
	return info, nil
}
