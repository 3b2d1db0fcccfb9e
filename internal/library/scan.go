package library

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mosaic/internal/config"
	"mosaic/internal/labels"
	"mosaic/internal/logging"
	"mosaic/internal/metrics"
	"mosaic/internal/sidecar"
)

// VideoExt is the only file extension registered as a library item.
const VideoExt = ".mp4"

// Stats summarizes a completed scan.
type Stats struct {
	// Items counts registered videos per orientation.
	Items map[string]int
	// Labels is the label count after loading, including configured ones.
	Labels int
	// Records is the number of sidecar record files loaded.
	Records int
	// Skipped is the number of corrupt sidecar records ignored.
	Skipped int
}

// Total returns the number of items across all orientations.
func (s Stats) Total() int {
	total := 0
	for _, n := range s.Items {
		total += n
	}
	return total
}

// Scan walks the orientation directories under the media root and builds a
// label store from the videos and sidecar records found there. Labels from
// the config's [ui.labels] section are registered first so they can be
// queried before their first assignment. A missing orientation directory is
// skipped; a corrupt record is logged and ignored in full.
func Scan(cfg *config.Config, logger *slog.Logger) (*labels.Store, Stats, error) {
	log := logging.NewComponentLogger(logger, "library")

	if _, err := os.Stat(cfg.Paths.MediaDir); err != nil {
		return nil, Stats{}, fmt.Errorf("media directory: %w", err)
	}

	store := labels.NewStore()
	stats := Stats{Items: make(map[string]int)}

	for name := range cfg.UI.Labels {
		if _, err := store.RegisterLabel(name); err != nil {
			log.Warn("skipping configured label",
				logging.String(logging.FieldLabel, name),
				logging.Error(err))
		}
	}

	for _, orientation := range config.Orientations {
		dir := filepath.Join(cfg.Paths.MediaDir, orientation)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug("orientation directory missing", logging.String(logging.FieldPath, dir))
				continue
			}
			return nil, Stats{}, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), VideoExt) {
				continue
			}
			id := orientation + "/" + entry.Name()
			store.RegisterItem(id)
			stats.Items[orientation]++

			loaded, err := loadRecord(store, cfg.Paths.MediaDir, id)
			if err != nil {
				var formatErr *sidecar.FormatError
				if errors.As(err, &formatErr) {
					log.Warn("skipping corrupt record",
						logging.String(logging.FieldItem, id),
						logging.Error(err))
					stats.Skipped++
					continue
				}
				return nil, Stats{}, err
			}
			if loaded {
				stats.Records++
			}
		}
	}

	stats.Labels = len(store.Labels())
	metrics.SetLibrarySize(store.Len(), stats.Labels)
	return store, stats, nil
}

// loadRecord applies the item's sidecar record to the store. It reports
// whether a record file existed. Decode errors bubble up as FormatError so
// the caller can discard the record without aborting the scan.
func loadRecord(store *labels.Store, mediaDir, id string) (bool, error) {
	path := sidecar.PathFor(filepath.Join(mediaDir, filepath.FromSlash(id)))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read record %s: %w", path, err)
	}

	rec, err := sidecar.Decode(string(data))
	if err != nil {
		return false, err
	}
	for _, a := range rec {
		name, err := store.RegisterLabel(a.Label)
		if err != nil {
			return false, fmt.Errorf("record %s: %w", path, err)
		}
		if err := store.SetValue(id, name, a.Value); err != nil {
			return false, fmt.Errorf("record %s: %w", path, err)
		}
	}
	return true, nil
}

// ItemOrientation returns the orientation prefix of an item id, or "" when
// the id has none.
func ItemOrientation(id string) string {
	orientation, _, ok := strings.Cut(id, "/")
	if !ok {
		return ""
	}
	for _, known := range config.Orientations {
		if orientation == known {
			return orientation
		}
	}
	return ""
}
