package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"mosaic/internal/config"
	"mosaic/internal/logging"
	"mosaic/internal/metrics"
)

// PosterExt is the thumbnail file extension.
const PosterExt = ".jpg"

// PosterPath returns the poster location for a video path: the video path
// with its extension replaced by ".jpg".
func PosterPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + PosterExt
}

// Thumbnailer generates first-frame poster images on demand. Concurrent
// requests for the same poster share one ffmpeg invocation; distinct
// posters are capped by the configured worker count.
type Thumbnailer struct {
	binary  string
	quality int
	sem     *semaphore.Weighted
	group   singleflight.Group
	logger  *slog.Logger
	enabled bool
}

// NewThumbnailer builds a thumbnailer from config. A disabled [thumbnails]
// section or a missing ffmpeg binary disables generation; Ensure then
// reports no poster for every video.
func NewThumbnailer(cfg *config.Config, logger *slog.Logger) *Thumbnailer {
	log := logging.NewComponentLogger(logger, "thumbs")
	workers := int64(cfg.Thumbnails.MaxConcurrent)
	if workers < 1 {
		workers = 1
	}

	t := &Thumbnailer{
		binary:  cfg.FFmpegBinary(),
		quality: cfg.Thumbnails.Quality,
		sem:     semaphore.NewWeighted(workers),
		logger:  log,
	}
	if !cfg.Thumbnails.Enabled {
		return t
	}
	if _, err := exec.LookPath(t.binary); err != nil {
		log.Warn("thumbnails disabled, ffmpeg not found", logging.Error(err))
		return t
	}
	t.enabled = true
	return t
}

// Enabled reports whether posters can be generated.
func (t *Thumbnailer) Enabled() bool {
	return t.enabled
}

// Ensure returns the poster path for the video, generating it first when it
// does not exist yet. A disabled thumbnailer returns "" with no error.
func (t *Thumbnailer) Ensure(ctx context.Context, videoPath string) (string, error) {
	if !t.enabled {
		return "", nil
	}

	poster := PosterPath(videoPath)
	if _, err := os.Stat(poster); err == nil {
		return poster, nil
	}

	_, err, _ := t.group.Do(poster, func() (any, error) {
		if err := t.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer t.sem.Release(1)

		// Another request may have finished this poster while we waited.
		if _, err := os.Stat(poster); err == nil {
			return nil, nil
		}
		return nil, t.generate(ctx, videoPath, poster)
	})
	if err != nil {
		return "", err
	}
	return poster, nil
}

func (t *Thumbnailer) generate(ctx context.Context, videoPath, poster string) error {
	cmd := exec.CommandContext(ctx, t.binary,
		"-y",
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", strconv.Itoa(t.quality),
		poster,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		metrics.RecordThumbnail("error")
		return fmt.Errorf("generate poster: %w: %s", err, strings.TrimSpace(string(output)))
	}
	metrics.RecordThumbnail("ok")
	t.logger.Debug("generated poster", logging.String(logging.FieldPath, poster))
	return nil
}
