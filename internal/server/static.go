package server

import (
	"net/http"
	"os"
	"path/filepath"

	"mosaic/internal/logging"
)

// mountStatic wires media and frontend serving. Media is always served; the
// frontend pages mount only when a frontend directory is configured and
// present, so the daemon can run headless behind a separate UI deployment.
func (s *Server) mountStatic(mux *http.ServeMux) {
	mediaFiles := http.StripPrefix("/data/", http.FileServer(http.Dir(s.cfg.Paths.MediaDir)))
	s.handle(mux, "GET /data/", mediaFiles)

	frontend := s.cfg.Paths.FrontendDir
	if frontend == "" {
		return
	}
	if info, err := os.Stat(frontend); err != nil || !info.IsDir() {
		s.logger.Warn("frontend directory missing, serving API only",
			logging.String(logging.FieldPath, frontend))
		return
	}

	s.handle(mux, "GET /{$}", servePage(filepath.Join(frontend, "index.html")))
	s.handle(mux, "GET /view", servePage(filepath.Join(frontend, "player.html")))
	s.handle(mux, "GET /static/", http.FileServer(http.Dir(frontend)))
}

func servePage(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	})
}
