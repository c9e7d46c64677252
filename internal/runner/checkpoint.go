package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"enemeval/internal/failure"
)

// DefaultCheckpointEvery is how many questions a run processes between checkpoint writes.
const DefaultCheckpointEvery = 10

// DefaultCheckpointPath is the checkpoint file name used when none is configured.
const DefaultCheckpointPath = "progresso_resolucao.json"

// Checkpoint is the durable snapshot of a run in progress.
type Checkpoint struct {
	Processed int      `json:"total_processadas"`
	Total     int      `json:"total_questoes"`
	Results   []Result `json:"resultados"`
}

// LoadCheckpoint reads a checkpoint file. A missing file returns an error
// matching os.ErrNotExist; undecodable content is a Parse error.
func LoadCheckpoint(path string) (Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, failure.Wrap(failure.Parse, "decode checkpoint "+path, err)
	}
	return cp, nil
}

// WriteCheckpoint replaces the checkpoint at path. The content is written to
// a temporary file in the same directory and renamed over the target.
func WriteCheckpoint(path string, cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
