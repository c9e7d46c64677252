package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// useWorkingDir points the getwd seam at dir for the duration of the test.
func useWorkingDir(t *testing.T, dir string) {
	t.Helper()
	orig := getwd
	getwd = func() (string, error) { return dir, nil }
	t.Cleanup(func() { getwd = orig })
}

func useInitInput(t *testing.T, input string) {
	t.Helper()
	orig := initInput
	initInput = strings.NewReader(input)
	t.Cleanup(func() { initInput = orig })
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
