package server

import (
	"context"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mosaic/internal/auth"
	"mosaic/internal/labels"
	"mosaic/internal/library"
	"mosaic/internal/logging"
	"mosaic/internal/media"
	"mosaic/internal/metrics"
	"mosaic/internal/query"
)

const (
	defaultPlaylistLimit = 10
	maxPlaylistLimit     = 100
	enrichWorkers        = 4
)

// videoEntry is one playlist item. Poster stays null until a thumbnail
// exists; probe fields are omitted entirely when the catalog is off.
type videoEntry struct {
	ID       string            `json:"id"`
	URL      string            `json:"url"`
	Poster   *string           `json:"poster"`
	Cats     map[string]string `json:"cats"`
	Duration float64           `json:"duration,omitempty"`
	Width    int               `json:"width,omitempty"`
	Height   int               `json:"height,omitempty"`
}

type playlistResponse struct {
	Categories []string     `json:"categories"`
	Videos     []videoEntry `json:"videos"`
}

type countResponse struct {
	Portrait  int `json:"portrait"`
	Square    int `json:"square"`
	Landscape int `json:"landscape"`
	Total     int `json:"total"`
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	orientation := params.Get("orientation")
	expr := params.Get("expr")
	limit := parseLimit(params.Get("limit"))

	snap := s.store.Snapshot()
	ids, err := s.matchingItems(snap, composeFilter(accountFilter(r), expr))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if orientation != "" {
		ids = filterOrientation(ids, orientation)
	}

	selected := sample(ids, limit)
	videos := s.enrich(r.Context(), selected)

	categories := snap.Labels()
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, playlistResponse{Categories: categories, Videos: videos})
}

func (s *Server) handleSearchCount(w http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("expr")

	snap := s.store.Snapshot()
	ids, err := s.matchingItems(snap, composeFilter(accountFilter(r), expr))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	var counts countResponse
	for _, id := range ids {
		switch library.ItemOrientation(id) {
		case "portrait":
			counts.Portrait++
		case "square":
			counts.Square++
		case "landscape":
			counts.Landscape++
		}
		counts.Total++
	}
	writeJSON(w, http.StatusOK, counts)
}

// accountFilter returns the filter expression bound to the session, if any.
func accountFilter(r *http.Request) string {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		return identity.Filter
	}
	return ""
}

// composeFilter joins an account filter and a request expression so the
// account filter can never be widened by the request: both sides are
// parenthesized and intersected.
func composeFilter(filter, expr string) string {
	filter = strings.TrimSpace(filter)
	expr = strings.TrimSpace(expr)
	switch {
	case filter == "":
		return expr
	case expr == "":
		return filter
	default:
		return "(" + filter + ").(" + expr + ")"
	}
}

// matchingItems resolves the composed filter to item ids. An empty filter
// means the whole library.
func (s *Server) matchingItems(snap *labels.Snapshot, composed string) ([]string, error) {
	if composed == "" {
		return snap.Items(), nil
	}
	start := time.Now()
	ids, err := query.Match(composed, snap)
	if err != nil {
		metrics.ObserveQuery("invalid", time.Since(start).Seconds())
		return nil, err
	}
	metrics.ObserveQuery("ok", time.Since(start).Seconds())
	return ids, nil
}

func filterOrientation(ids []string, orientation string) []string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if library.ItemOrientation(id) == orientation {
			kept = append(kept, id)
		}
	}
	return kept
}

// sample draws up to limit ids without replacement. The input slice is never
// modified; it may alias snapshot internals.
func sample(ids []string, limit int) []string {
	if len(ids) <= limit {
		return slices.Clone(ids)
	}
	shuffled := slices.Clone(ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:limit]
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultPlaylistLimit
	}
	return min(limit, maxPlaylistLimit)
}

// enrich builds the response entries, generating posters and probing media
// in parallel. Media failures degrade the entry rather than the request.
func (s *Server) enrich(ctx context.Context, ids []string) []videoEntry {
	videos := make([]videoEntry, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)
	for i, id := range ids {
		g.Go(func() error {
			videos[i] = s.buildVideo(gctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return videos
}

func (s *Server) buildVideo(ctx context.Context, id string) videoEntry {
	entry := videoEntry{
		ID:   id,
		URL:  s.cfg.Server.BasePath + "/data/" + id,
		Cats: map[string]string{},
	}
	if record, err := s.store.Record(id); err == nil {
		for _, a := range record {
			entry.Cats[a.Label] = a.Value.String()
		}
	}

	videoPath := filepath.Join(s.cfg.Paths.MediaDir, filepath.FromSlash(id))
	if poster, err := s.thumbs.Ensure(ctx, videoPath); err != nil {
		logging.WithContext(ctx, s.logger).Warn("poster generation failed",
			logging.String(logging.FieldItem, id),
			logging.Error(err))
	} else if poster != "" {
		url := s.cfg.Server.BasePath + "/data/" + media.PosterPath(id)
		entry.Poster = &url
	}

	if info, err := s.prober.Info(ctx, id); err != nil {
		logging.WithContext(ctx, s.logger).Warn("media probe failed",
			logging.String(logging.FieldItem, id),
			logging.Error(err))
	} else if info != nil {
		entry.Duration = info.Duration
		entry.Width = info.Width
		entry.Height = info.Height
	}
	return entry
}
