package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
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
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Touch creates each path (and its parent directory) with a single byte.
func Touch(t testing.TB, paths ...string) {
	t.Helper()
	for _, path := range paths {
		WriteFile(t, path, 1)
	}
}

// ObservationStem builds an EK60-style timestamp key, e.g.
// SaKe2017-D20170720-T120000.
func ObservationStem(prefix, date string, hour, minute int) string {
	return fmt.Sprintf("%s-D%s-T%02d%02d00", prefix, date, hour, minute)
}

// ReadFile returns the file content or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
