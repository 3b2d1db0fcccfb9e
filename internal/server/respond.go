package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"mosaic/internal/labels"
	"mosaic/internal/logging"
	"mosaic/internal/persist"
	"mosaic/internal/query"
)

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// An encode failure here means the client hung up mid-response.
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps domain errors onto API statuses. Query input errors keep
// their message verbatim so the frontend can show the offset and excerpt;
// anything unrecognized is logged and hidden behind a generic 500.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case query.IsInputError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case labels.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, persist.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "shutting down")
	default:
		logging.WithContext(r.Context(), s.logger).Error("request failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a small request body into dst, rejecting unknown garbage
// early with a bounded reader.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(dst)
}
