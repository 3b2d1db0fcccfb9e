package server_test

import (
	"net/http"
	"os"
	"slices"
	"strings"
	"testing"

	"mosaic/internal/sidecar"
	"mosaic/internal/testsupport"
)

func TestCategoriesEmptyLibraryReturnsArray(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice", "hunter2")

	resp := h.request(t, http.MethodGet, "/api/categories", nil)
	wantStatus(t, resp, http.StatusOK)

	var names []string
	decodeBody(t, resp, &names)
	if names == nil {
		t.Fatal("categories serialized as null, want []")
	}
	if len(names) != 0 {
		t.Errorf("categories = %v, want empty", names)
	}
}

func TestCategoriesListRegistrationOrder(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"🥗", "👎", "🎬"} {
		if _, err := h.store.RegisterLabel(name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	h.login(t, "bob", "swordfish")

	resp := h.request(t, http.MethodGet, "/api/categories", nil)
	wantStatus(t, resp, http.StatusOK)

	var names []string
	decodeBody(t, resp, &names)
	want := []string{"🥗", "👎", "🎬"}
	if !slices.Equal(names, want) {
		t.Errorf("categories = %v, want %v", names, want)
	}
}

func TestVideoCategoriesRoundTrip(t *testing.T) {
	h := newHarness(t)
	videoPath := testsupport.WriteVideo(t, h.cfg, "square/dinner.mp4")
	h.store.RegisterItem("square/dinner.mp4")
	for _, name := range []string{"🥗", "👎"} {
		if _, err := h.store.RegisterLabel(name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	h.login(t, "alice", "hunter2")

	resp := h.request(t, http.MethodPost, "/api/video/square/dinner.mp4/categories", map[string]string{
		"🥗": "YES",
		"👎": "NO",
	})
	wantStatus(t, resp, http.StatusOK)
	var ack struct {
		OK bool `json:"ok"`
	}
	decodeBody(t, resp, &ack)
	if !ack.OK {
		t.Error("expected ok acknowledgement")
	}

	got := h.request(t, http.MethodGet, "/api/video/square/dinner.mp4/categories", nil)
	wantStatus(t, got, http.StatusOK)
	var cats map[string]string
	decodeBody(t, got, &cats)
	if cats["🥗"] != "YES" || cats["👎"] != "NO" {
		t.Errorf("cats = %v, want 🥗=YES 👎=NO", cats)
	}

	// The acknowledgement implies the sidecar is already on disk.
	record, err := os.ReadFile(sidecar.PathFor(videoPath))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if string(record) != "+🥗-👎" {
		t.Errorf("sidecar = %q, want %q", record, "+🥗-👎")
	}
}

func TestVideoCategoriesUnsetClears(t *testing.T) {
	h := newHarness(t)
	videoPath := testsupport.WriteVideo(t, h.cfg, "square/dinner.mp4")
	h.store.RegisterItem("square/dinner.mp4")
	h.login(t, "alice", "hunter2")

	resp := h.request(t, http.MethodPost, "/api/video/square/dinner.mp4/categories", map[string]string{
		"🥗": "YES",
	})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = h.request(t, http.MethodPost, "/api/video/square/dinner.mp4/categories", map[string]string{
		"🥗": "UNSET",
	})
	wantStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	got := h.request(t, http.MethodGet, "/api/video/square/dinner.mp4/categories", nil)
	wantStatus(t, got, http.StatusOK)
	var cats map[string]string
	decodeBody(t, got, &cats)
	if len(cats) != 0 {
		t.Errorf("cats after unset = %v, want empty", cats)
	}

	record, err := os.ReadFile(sidecar.PathFor(videoPath))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if len(record) != 0 {
		t.Errorf("sidecar after unset = %q, want empty file", record)
	}
}

func TestVideoCategoriesPostRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	testsupport.WriteVideo(t, h.cfg, "square/dinner.mp4")
	h.store.RegisterItem("square/dinner.mp4")
	h.login(t, "bob", "swordfish")

	resp := h.request(t, http.MethodPost, "/api/video/square/dinner.mp4/categories", map[string]string{
		"🥗": "YES",
	})
	wantStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	// Reads stay open to every authenticated role.
	got := h.request(t, http.MethodGet, "/api/video/square/dinner.mp4/categories", nil)
	wantStatus(t, got, http.StatusOK)
	got.Body.Close()
}

func TestVideoCategoriesUnknownItem(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice", "hunter2")

	got := h.request(t, http.MethodGet, "/api/video/square/ghost.mp4/categories", nil)
	wantStatus(t, got, http.StatusNotFound)
	got.Body.Close()

	posted := h.request(t, http.MethodPost, "/api/video/square/ghost.mp4/categories", map[string]string{
		"🥗": "YES",
	})
	wantStatus(t, posted, http.StatusNotFound)
	posted.Body.Close()

	if h.store.Len() != 0 {
		t.Error("a rejected post must not register the item")
	}
}

func TestVideoCategoriesRejectsBadValue(t *testing.T) {
	h := newHarness(t)
	h.store.RegisterItem("square/dinner.mp4")
	h.login(t, "alice", "hunter2")

	resp := h.request(t, http.MethodPost, "/api/video/square/dinner.mp4/categories", map[string]string{
		"🥗": "YES",
		"👎": "MAYBE",
	})
	wantStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	// A rejected batch applies nothing, not even the valid entries.
	got := h.request(t, http.MethodGet, "/api/video/square/dinner.mp4/categories", nil)
	wantStatus(t, got, http.StatusOK)
	var cats map[string]string
	decodeBody(t, got, &cats)
	if len(cats) != 0 {
		t.Errorf("cats after rejected batch = %v, want empty", cats)
	}
}

func TestVideoCategoriesRejectsReservedLabel(t *testing.T) {
	h := newHarness(t)
	h.store.RegisterItem("square/dinner.mp4")
	h.login(t, "alice", "hunter2")

	resp := h.request(t, http.MethodPost, "/api/video/square/dinner.mp4/categories", map[string]string{
		"bad+name": "YES",
	})
	wantStatus(t, resp, http.StatusBadRequest)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	if !strings.Contains(body.Error, "reserved") {
		t.Errorf("error = %q, want mention of the reserved character", body.Error)
	}
}

func TestVideoCategoriesRejectsMalformedBody(t *testing.T) {
	h := newHarness(t)
	h.store.RegisterItem("square/dinner.mp4")
	h.login(t, "alice", "hunter2")

	req, err := http.NewRequest(http.MethodPost, h.ts.URL+"/api/video/square/dinner.mp4/categories",
		strings.NewReader("not json"))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		t.Fatalf("post malformed body: %v", err)
	}
	wantStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}
