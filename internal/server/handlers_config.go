package server

import (
	"net/http"

	"mosaic/internal/config"
)

type uiGridCell struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

type uiConfigResponse struct {
	Title           string                   `json:"title"`
	PrimaryColor    string                   `json:"primaryColor"`
	BackgroundColor string                   `json:"backgroundColor"`
	Backgrounds     map[string]string        `json:"backgrounds"`
	GuestEnabled    bool                     `json:"guestEnabled"`
	Categories      map[string]string        `json:"categories"`
	Presets         map[string]string        `json:"presets"`
	Grid            map[string][]*uiGridCell `json:"grid"`
	BasePath        string                   `json:"basePath"`
}

// handleUIConfig serves the public frontend configuration. It is the one
// unauthenticated API route: the login page needs it before any session
// exists, so nothing sensitive may ever be added here.
func (s *Server) handleUIConfig(w http.ResponseWriter, _ *http.Request) {
	ui := s.cfg.UI

	// Every registered label appears, with the configured tooltip or "".
	categories := make(map[string]string)
	for _, name := range s.store.Labels() {
		categories[name] = ui.Labels[name]
	}

	writeJSON(w, http.StatusOK, uiConfigResponse{
		Title:           ui.Title,
		PrimaryColor:    ui.PrimaryColor,
		BackgroundColor: ui.BackgroundColor,
		Backgrounds:     orEmpty(ui.Backgrounds),
		GuestEnabled:    s.auth.GuestEnabled(),
		Categories:      categories,
		Presets:         orEmpty(ui.Presets),
		Grid:            gridJSON(ui.Grid),
		BasePath:        s.cfg.Server.BasePath,
	})
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// gridJSON converts grid layouts to their wire shape, where a filler cell
// (Cols == 0) becomes null.
func gridJSON(grid map[string][]config.GridCell) map[string][]*uiGridCell {
	out := make(map[string][]*uiGridCell, len(grid))
	for orientation, cells := range grid {
		row := make([]*uiGridCell, len(cells))
		for i, cell := range cells {
			if cell.Cols == 0 {
				continue
			}
			row[i] = &uiGridCell{Cols: cell.Cols, Rows: cell.Rows}
		}
		out[orientation] = row
	}
	return out
}
