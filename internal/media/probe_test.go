package media_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mosaic/internal/logging"
	"mosaic/internal/media"
	"mosaic/internal/testsupport"
)

const probePayload = `{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","width":1080,"height":1080}],"format":{"duration":"4.2","nb_streams":1}}`

func stubFFprobe(t *testing.T, callLog string) {
	t.Helper()

	script := "#!/bin/sh\necho x >> \"" + callLog + "\"\nprintf '%s' '" + probePayload + "'\n"
	stubBinary(t, "ffprobe", script)
}

func countCalls(t *testing.T, callLog string) int {
	t.Helper()

	data, err := os.ReadFile(callLog)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatalf("read call log: %v", err)
	}
	return strings.Count(string(data), "x")
}

func TestInfoProbesOnceThenServesCache(t *testing.T) {
	callLog := filepath.Join(t.TempDir(), "calls")
	stubFFprobe(t, callLog)
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	prober := media.NewProber(cfg, cat, logging.NewNop())
	if !prober.Enabled() {
		t.Fatal("expected prober to be enabled")
	}

	testsupport.WriteVideo(t, cfg, "square/a.mp4")
	ctx := context.Background()

	first, err := prober.Info(ctx, "square/a.mp4")
	if err != nil {
		t.Fatalf("first Info failed: %v", err)
	}
	if first == nil || first.Duration != 4.2 || first.Width != 1080 || first.Height != 1080 {
		t.Fatalf("unexpected info: %#v", first)
	}
	if first.Codec != "h264" {
		t.Fatalf("codec = %q, want h264", first.Codec)
	}

	second, err := prober.Info(ctx, "square/a.mp4")
	if err != nil {
		t.Fatalf("second Info failed: %v", err)
	}
	if second == nil || second.Duration != 4.2 {
		t.Fatalf("unexpected cached info: %#v", second)
	}
	if got := countCalls(t, callLog); got != 1 {
		t.Fatalf("ffprobe invoked %d times, want 1", got)
	}
}

func TestInfoReprobesChangedFile(t *testing.T) {
	callLog := filepath.Join(t.TempDir(), "calls")
	stubFFprobe(t, callLog)
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	prober := media.NewProber(cfg, cat, logging.NewNop())

	path := testsupport.WriteVideo(t, cfg, "square/a.mp4")
	ctx := context.Background()

	if _, err := prober.Info(ctx, "square/a.mp4"); err != nil {
		t.Fatalf("first Info failed: %v", err)
	}
	// Different size marks the cached row stale.
	testsupport.WriteFile(t, path, 256)
	if _, err := prober.Info(ctx, "square/a.mp4"); err != nil {
		t.Fatalf("second Info failed: %v", err)
	}

	if got := countCalls(t, callLog); got != 2 {
		t.Fatalf("ffprobe invoked %d times, want 2", got)
	}
}

func TestProberDisabledWithoutCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	prober := media.NewProber(cfg, nil, logging.NewNop())
	if prober.Enabled() {
		t.Fatal("expected prober to be disabled")
	}

	testsupport.WriteVideo(t, cfg, "square/a.mp4")
	info, err := prober.Info(context.Background(), "square/a.mp4")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info != nil {
		t.Fatalf("expected nil info, got %#v", info)
	}
}

func TestProberDisabledWithoutBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	prober := media.NewProber(cfg, cat, logging.NewNop())
	if prober.Enabled() {
		t.Fatal("expected prober to be disabled")
	}
}

func TestInfoMissingVideoFails(t *testing.T) {
	callLog := filepath.Join(t.TempDir(), "calls")
	stubFFprobe(t, callLog)
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	prober := media.NewProber(cfg, cat, logging.NewNop())

	if _, err := prober.Info(context.Background(), "square/ghost.mp4"); err == nil {
		t.Fatal("expected error for missing video")
	}
}
