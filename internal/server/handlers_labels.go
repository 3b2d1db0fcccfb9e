package server

import (
	"net/http"

	"mosaic/internal/labels"
	"mosaic/internal/logging"
)

// pathItem reassembles the item id from its two path segments. Library items
// are always registered as orientation/filename.
func pathItem(r *http.Request) string {
	return r.PathValue("orientation") + "/" + r.PathValue("file")
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	names := s.store.Labels()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleVideoCategoriesGet(w http.ResponseWriter, r *http.Request) {
	item := pathItem(r)
	record, err := s.store.Record(item)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	cats := make(map[string]string, len(record))
	for _, a := range record {
		cats[a.Label] = a.Value.String()
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleVideoCategoriesPost(w http.ResponseWriter, r *http.Request) {
	item := pathItem(r)
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := s.store.Index(item); !ok {
		s.writeFailure(w, r, &labels.NotFoundError{Kind: "item", Name: item})
		return
	}

	// Validate the whole batch up front so a bad entry cannot half-apply it.
	type assignment struct {
		label string
		value labels.Value
	}
	batch := make([]assignment, 0, len(req))
	for rawLabel, rawValue := range req {
		name := labels.Normalize(rawLabel)
		if err := labels.ValidateName(name); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		value, err := labels.ParseValue(rawValue)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		batch = append(batch, assignment{label: name, value: value})
	}

	for _, a := range batch {
		if err := s.pipeline.Set(item, a.label, a.value); err != nil {
			s.writeFailure(w, r, err)
			return
		}
	}
	// Wait for the persister so the caller reads its own write on the next
	// request and the sidecar is durable before we acknowledge.
	if err := s.pipeline.Flush(r.Context()); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	logging.WithContext(r.Context(), s.logger).Info("labels updated",
		logging.String(logging.FieldItem, item),
		logging.Int(logging.FieldCount, len(batch)))
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
