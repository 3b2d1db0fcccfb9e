package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mosaic/internal/config"
	"mosaic/internal/sidecar"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteVideo seeds a placeholder video file for the given item id
// ("orientation/name.mp4") under the config's media root.
func WriteVideo(t testing.TB, cfg *config.Config, id string) string {
	t.Helper()

	path := filepath.Join(cfg.Paths.MediaDir, filepath.FromSlash(id))
	WriteFile(t, path, 64)
	return path
}

// WriteRecord writes raw sidecar text for the given item id. The text is not
// validated, so tests can seed corrupt records.
func WriteRecord(t testing.TB, cfg *config.Config, id, text string) string {
	t.Helper()

	path := sidecar.PathFor(filepath.Join(cfg.Paths.MediaDir, filepath.FromSlash(id)))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write record %s: %v", path, err)
	}
	return path
}
