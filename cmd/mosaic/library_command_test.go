package main

import (
	"encoding/json"
	"testing"

	"mosaic/internal/testsupport"
)

func TestLibraryCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCLILibrary(t, env)

	out, _, err := runCLI(t, []string{"library", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("library --json: %v", err)
	}

	var result struct {
		Items   map[string]int `json:"items"`
		Total   int            `json:"total"`
		Records int            `json:"records"`
		Skipped int            `json:"skipped"`
		Labels  []labelTally   `json:"labels"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode library output %q: %v", out, err)
	}

	if result.Total != 3 {
		t.Fatalf("total = %d, want 3", result.Total)
	}
	if result.Items["square"] != 2 || result.Items["landscape"] != 1 {
		t.Fatalf("items = %v, want square:2 landscape:1", result.Items)
	}
	if result.Records != 3 || result.Skipped != 0 {
		t.Fatalf("records = %d skipped = %d, want 3 and 0", result.Records, result.Skipped)
	}

	tallies := make(map[string]labelTally, len(result.Labels))
	for _, tally := range result.Labels {
		tallies[tally.Label] = tally
	}
	if got := tallies["🥗"]; got.Yes != 2 || got.No != 1 || got.Unset != 0 {
		t.Fatalf("🥗 tally = %+v, want yes:2 no:1 unset:0", got)
	}
	if got := tallies["👎"]; got.Yes != 1 || got.No != 0 || got.Unset != 2 {
		t.Fatalf("👎 tally = %+v, want yes:1 no:0 unset:2", got)
	}
}

func TestLibraryCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCLILibrary(t, env)

	out, _, err := runCLI(t, []string{"library"}, env.configPath)
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	requireContains(t, out, "square")
	requireContains(t, out, "total")
	requireContains(t, out, "🥗")
}

func TestLibraryCommandEmptyLibrary(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"library"}, env.configPath)
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	requireContains(t, out, "No labels registered.")
}

func TestLibraryCommandReportsSkippedRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCLILibrary(t, env)
	testsupport.WriteVideo(t, env.cfg, "square/broken.mp4")
	testsupport.WriteRecord(t, env.cfg, "square/broken.mp4", "++")

	out, _, err := runCLI(t, []string{"library", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("library --json: %v", err)
	}

	var result struct {
		Total   int `json:"total"`
		Skipped int `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode library output %q: %v", out, err)
	}
	if result.Total != 4 {
		t.Fatalf("total = %d, want 4 (a corrupt record must not hide the item)", result.Total)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", result.Skipped)
	}
}
