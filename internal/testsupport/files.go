package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with size bytes of filler. A size of zero
// creates an empty file.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if size < 0 {
		size = 0
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteVideo creates <videoDir>/<category>/<name> large enough to pass the
// default inventory size filter and returns its path.
func WriteVideo(t testing.TB, videoDir, category, name string) string {
	t.Helper()

	path := filepath.Join(videoDir, category, name)
	WriteFile(t, path, 2048)
	return path
}
