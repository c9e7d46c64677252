package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"enemeval/internal/runner"
)

const (
	// GlobalFile is the run-wide statistics file.
	GlobalFile = "relatorio_geral.json"
	// MarkdownFile is the human-readable summary.
	MarkdownFile = "RELATORIO_TREINAMENTO.md"
)

// Paths lists the files written by Write.
type Paths struct {
	Dir      string
	Areas    []string
	Training []string
	Global   string
	Markdown string
}

// All returns every written file in write order.
func (p Paths) All() []string {
	out := make([]string, 0, len(p.Areas)+len(p.Training)+2)
	for i := range p.Areas {
		out = append(out, p.Areas[i], p.Training[i])
	}
	return append(out, p.Global, p.Markdown)
}

// AreaFile returns the per-area report file name.
func AreaFile(area string) string {
	return "relatorio_" + fileToken(area) + ".json"
}

// TrainingFile returns the per-area training data file name.
func TrainingFile(area string) string {
	return "dados_treinamento_" + fileToken(area) + ".json"
}

// fileToken lower-cases an area label and replaces path separators so the
// name stays inside the reports dir.
func fileToken(area string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, strings.ToLower(area))
}

type areaFile struct {
	Stats   AreaReport      `json:"estatisticas"`
	Results []runner.Result `json:"resultados"`
}

// Write aggregates results and writes the per-area, global and markdown
// reports into dir, creating it when needed. Existing files are replaced.
func Write(dir string, results []runner.Result, now time.Time) (GlobalReport, Paths, error) {
	paths := Paths{Dir: dir}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return GlobalReport{}, paths, fmt.Errorf("create reports dir: %w", err)
	}
	global, groups := aggregate(results)
	for _, group := range groups {
		stats := global.ByArea[group.area]
		areaPath := filepath.Join(dir, AreaFile(group.area))
		if err := writeJSON(areaPath, areaFile{Stats: stats, Results: group.results}); err != nil {
			return global, paths, err
		}
		trainingPath := filepath.Join(dir, TrainingFile(group.area))
		if err := writeJSON(trainingPath, trainingRecords(group.area, group.results)); err != nil {
			return global, paths, err
		}
		paths.Areas = append(paths.Areas, areaPath)
		paths.Training = append(paths.Training, trainingPath)
	}

	paths.Global = filepath.Join(dir, GlobalFile)
	if err := writeJSON(paths.Global, global); err != nil {
		return global, paths, err
	}
	paths.Markdown = filepath.Join(dir, MarkdownFile)
	markdown := renderMarkdown(global, groups, now)
	if err := os.WriteFile(paths.Markdown, []byte(markdown), 0o644); err != nil {
		return global, paths, fmt.Errorf("write %s: %w", MarkdownFile, err)
	}
	return global, paths, nil
}

// LoadGlobal reads relatorio_geral.json from dir.
func LoadGlobal(dir string) (GlobalReport, error) {
	data, err := os.ReadFile(filepath.Join(dir, GlobalFile))
	if err != nil {
		return GlobalReport{}, fmt.Errorf("read global report: %w", err)
	}
	var global GlobalReport
	if err := json.Unmarshal(data, &global); err != nil {
		return GlobalReport{}, fmt.Errorf("decode global report: %w", err)
	}
	if global.ByArea == nil {
		global.ByArea = map[string]AreaReport{}
	}
	global.Areas = global.SortedAreas()
	return global, nil
}

func writeJSON(path string, value any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
