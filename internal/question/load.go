package question

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"enemeval/internal/failure"
)

// FilePattern matches question source files inside a directory.
const FilePattern = "*.jsonl"

// maxLineBytes caps a single JSONL line.
var maxLineBytes = 16 << 20

// LoadOptions controls how records are read.
type LoadOptions struct {
	// SynthesizeIDs assigns "<file>:<line>" to records without id/number so
	// that they can be skipped on resume.
	SynthesizeIDs bool
}

// ListFiles returns the question files in dir in lexical order.
func ListFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, failure.Wrap(failure.Config, "open questions dir", err)
	}
	if !info.IsDir() {
		return nil, failure.New(failure.Config, "open questions dir", fmt.Sprintf("%s is not a directory", dir))
	}
	files, err := filepath.Glob(filepath.Join(dir, FilePattern))
	if err != nil {
		return nil, fmt.Errorf("list question files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir reads every question file in dir. Unreadable files and malformed
// lines are logged and skipped. A file that fails part way keeps the records
// read before the failure.
func LoadDir(dir string, opts LoadOptions, logger *slog.Logger) ([]Record, error) {
	logger = orDiscard(logger)
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, path := range files {
		loaded, err := LoadFile(path, opts, logger)
		if err != nil {
			logger.Warn("stopped reading question file", "file", filepath.Base(path), "kept", len(loaded), "error", err)
		}
		records = append(records, loaded...)
	}
	return records, nil
}

// LoadFile reads one newline-delimited JSON file.
func LoadFile(path string, opts LoadOptions, logger *slog.Logger) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return Decode(file, filepath.Base(path), opts, orDiscard(logger))
}

// Decode reads records from r, tagging each with name.
func Decode(r io.Reader, name string, opts LoadOptions, logger *slog.Logger) ([]Record, error) {
	logger = orDiscard(logger)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []Record
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		fields, err := decodeObject(line)
		if err != nil {
			logger.Warn("skipping malformed line",
				"file", name,
				"line", lineNum,
				"error", failure.Wrap(failure.Parse, "decode record", err),
			)
			continue
		}
		rec := Record{Fields: fields, SourceFile: name, Line: lineNum}
		if opts.SynthesizeIDs {
			if _, ok := firstPresent(fields, idKeys); !ok {
				rec.SyntheticID = name + ":" + strconv.Itoa(lineNum)
			}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("read %s: %w", name, err)
	}
	return records, nil
}

func decodeObject(line []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(line))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("record is not a JSON object")
	}
	if decoder.More() {
		return nil, errors.New("trailing data after record")
	}
	return fields, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
