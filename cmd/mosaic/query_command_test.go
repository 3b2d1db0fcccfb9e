package main

import (
	"encoding/json"
	"testing"

	"mosaic/internal/testsupport"
)

func seedCLILibrary(t *testing.T, env *cliTestEnv) {
	t.Helper()
	testsupport.WriteVideo(t, env.cfg, "square/a.mp4")
	testsupport.WriteRecord(t, env.cfg, "square/a.mp4", "+🥗")
	testsupport.WriteVideo(t, env.cfg, "square/b.mp4")
	testsupport.WriteRecord(t, env.cfg, "square/b.mp4", "-🥗+👎")
	testsupport.WriteVideo(t, env.cfg, "landscape/c.mp4")
	testsupport.WriteRecord(t, env.cfg, "landscape/c.mp4", "+🥗")
}

func TestQueryCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCLILibrary(t, env)

	out, _, err := runCLI(t, []string{"query", "🥗", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("query --json: %v", err)
	}

	var result struct {
		Expression string   `json:"expression"`
		Matches    []string `json:"matches"`
		Count      int      `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode query output %q: %v", out, err)
	}
	if result.Expression != "🥗" {
		t.Fatalf("expression = %q, want 🥗", result.Expression)
	}
	if result.Count != 2 || len(result.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", result)
	}
	want := map[string]bool{"square/a.mp4": true, "landscape/c.mp4": true}
	for _, id := range result.Matches {
		if !want[id] {
			t.Fatalf("unexpected match %q in %v", id, result.Matches)
		}
	}
}

func TestQueryCommandTable(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCLILibrary(t, env)

	out, _, err := runCLI(t, []string{"query", "👎"}, env.configPath)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	requireContains(t, out, "b.mp4")
	requireContains(t, out, "1 of 3 items match")
}

func TestQueryCommandOrientationFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCLILibrary(t, env)

	out, _, err := runCLI(t, []string{"query", "🥗", "--orientation", "landscape", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("query --orientation: %v", err)
	}

	var result struct {
		Matches []string `json:"matches"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode query output %q: %v", out, err)
	}
	if len(result.Matches) != 1 || result.Matches[0] != "landscape/c.mp4" {
		t.Fatalf("matches = %v, want [landscape/c.mp4]", result.Matches)
	}
}

func TestQueryCommandNoMatches(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCLILibrary(t, env)

	out, _, err := runCLI(t, []string{"query", "🥗.👎"}, env.configPath)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	requireContains(t, out, "No matches.")
}

func TestQueryCommandBadExpressionFails(t *testing.T) {
	env := setupCLITestEnv(t)
	seedCLILibrary(t, env)

	_, _, err := runCLI(t, []string{"query", "(🥗"}, env.configPath)
	if err == nil {
		t.Fatal("expected unbalanced expression to fail")
	}
	requireContains(t, err.Error(), "query:")
}

func TestQueryCommandEmptyLibraryFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"query", "🥗"}, env.configPath)
	if err == nil {
		t.Fatal("expected query against an empty library to fail")
	}
}
