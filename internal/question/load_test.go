package question

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"enemeval/internal/failure"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestLoadDirSkipsMalformedLines verifies bad lines are logged and skipped.
func TestLoadDirSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.jsonl", `{"id": "b1"}`+"\n")
	writeFile(t, dir, "a.jsonl", `{"id": "a1"}`+"\n\n{not json}\n[1,2]\n"+`{"id": "a2"}`+"\n")
	writeFile(t, dir, "notes.txt", `{"id": "ignored"}`)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	records, err := LoadDir(dir, LoadOptions{}, logger)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	var ids []string
	for _, rec := range records {
		ids = append(ids, Normalize(rec).ID)
	}
	if got := strings.Join(ids, ","); got != "a1,a2,b1" {
		t.Fatalf("expected a1,a2,b1 got %s", got)
	}
	if records[1].Line != 5 || records[1].SourceFile != "a.jsonl" {
		t.Fatalf("unexpected provenance: %+v", records[1])
	}
	if count := strings.Count(logs.String(), "skipping malformed line"); count != 2 {
		t.Fatalf("expected 2 warnings, got %d: %s", count, logs.String())
	}
}

// TestLoadDirKeepsRecordsBeforeOversizedLine verifies a too-long line only
// drops the rest of its file.
func TestLoadDirKeepsRecordsBeforeOversizedLine(t *testing.T) {
	orig := maxLineBytes
	maxLineBytes = 64 * 1024
	t.Cleanup(func() { maxLineBytes = orig })

	dir := t.TempDir()
	huge := `{"id": "x", "question": "` + strings.Repeat("a", 128*1024) + `"}`
	writeFile(t, dir, "a.jsonl", `{"id": "a1"}`+"\n"+`{"id": "a2"}`+"\n"+huge+"\n"+`{"id": "a3"}`+"\n")
	writeFile(t, dir, "b.jsonl", `{"id": "b1"}`+"\n")

	var logs bytes.Buffer
	records, err := LoadDir(dir, LoadOptions{}, slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	var ids []string
	for _, rec := range records {
		ids = append(ids, Normalize(rec).ID)
	}
	if got := strings.Join(ids, ","); got != "a1,a2,b1" {
		t.Fatalf("expected a1,a2,b1 got %s", got)
	}
	if !strings.Contains(logs.String(), "stopped reading question file") || !strings.Contains(logs.String(), "kept=2") {
		t.Fatalf("expected a warning for a.jsonl, got %s", logs.String())
	}
}

// TestLoadDirMissing verifies a missing directory is a config error.
func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), LoadOptions{}, nil)
	if !failure.Is(err, failure.Config) {
		t.Fatalf("expected config error, got %v", err)
	}
}

// TestDecodeSynthesizesIDs verifies the opt-in id policy uses file name and line.
func TestDecodeSynthesizesIDs(t *testing.T) {
	input := `{"id": "q1"}` + "\n" + `{"question": "sem id"}` + "\n"
	records, err := Decode(strings.NewReader(input), "prova.jsonl", LoadOptions{SynthesizeIDs: true}, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if records[0].SyntheticID != "" {
		t.Fatalf("did not expect synthetic id for q1")
	}
	if records[1].SyntheticID != "prova.jsonl:2" {
		t.Fatalf("expected prova.jsonl:2, got %q", records[1].SyntheticID)
	}

	records, err = Decode(strings.NewReader(input), "prova.jsonl", LoadOptions{}, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if Normalize(records[1]).ID != "" {
		t.Fatalf("expected missing id without synthesis")
	}
}
