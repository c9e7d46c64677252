package question

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

const topTopicLimit = 20

// DatasetStats summarizes a directory of question files.
type DatasetStats struct {
	TotalQuestions int            `json:"total_questoes"`
	TotalFiles     int            `json:"total_arquivos"`
	ByYear         map[string]int `json:"por_ano"`
	ByArea         map[string]int `json:"por_area"`
	ByDifficulty   map[string]int `json:"por_dificuldade"`
	TopTopics      map[string]int `json:"top_temas"`
	Fields         []string       `json:"campos_presentes"`
	Files          []FileStats    `json:"estatisticas_por_arquivo"`
	Summary        FileSummary    `json:"estatisticas_gerais"`
}

// FileStats describes a single source file.
type FileStats struct {
	File      string         `json:"arquivo"`
	Questions int            `json:"questoes"`
	SizeMB    float64        `json:"tamanho_mb"`
	Years     map[string]int `json:"anos"`
	Areas     map[string]int `json:"areas"`
}

// FileSummary aggregates question counts across files.
type FileSummary struct {
	Mean   float64 `json:"media_questoes_por_arquivo"`
	Median float64 `json:"mediana_questoes_por_arquivo"`
	Min    int     `json:"min_questoes"`
	Max    int     `json:"max_questoes"`
}

// TopicCount pairs a topic with its frequency.
type TopicCount struct {
	Topic string
	Count int
}

// Analyze counts questions in dir by year, raw area, topic and difficulty.
func Analyze(dir string, logger *slog.Logger) (DatasetStats, error) {
	logger = orDiscard(logger)
	files, err := ListFiles(dir)
	if err != nil {
		return DatasetStats{}, err
	}
	stats := DatasetStats{
		TotalFiles:   len(files),
		ByYear:       map[string]int{},
		ByArea:       map[string]int{},
		ByDifficulty: map[string]int{},
	}
	topics := map[string]int{}
	fields := map[string]struct{}{}

	for _, path := range files {
		records, err := LoadFile(path, LoadOptions{}, logger)
		if err != nil {
			logger.Warn("stopped reading question file", "file", filepath.Base(path), "kept", len(records), "error", err)
			if len(records) == 0 {
				continue
			}
		}
		fileStats := FileStats{
			File:      filepath.Base(path),
			Questions: len(records),
			Years:     map[string]int{},
			Areas:     map[string]int{},
		}
		if info, err := os.Stat(path); err == nil {
			fileStats.SizeMB = float64(info.Size()) / (1024 * 1024)
		}
		for _, rec := range records {
			year := valueOrUnknown(rec.Fields, yearKeys)
			area := valueOrUnknown(rec.Fields, areaKeys)
			fileStats.Years[year]++
			fileStats.Areas[area]++
			stats.ByYear[year]++
			stats.ByArea[area]++
			topics[valueOrUnknown(rec.Fields, topicKeys)]++
			stats.ByDifficulty[valueOrUnknown(rec.Fields, difficultyKeys)]++
			for key := range rec.Fields {
				fields[key] = struct{}{}
			}
		}
		stats.TotalQuestions += len(records)
		stats.Files = append(stats.Files, fileStats)
	}

	stats.TopTopics = map[string]int{}
	for _, tc := range RankTopics(topics, topTopicLimit) {
		stats.TopTopics[tc.Topic] = tc.Count
	}
	stats.Fields = make([]string, 0, len(fields))
	for key := range fields {
		stats.Fields = append(stats.Fields, key)
	}
	sort.Strings(stats.Fields)
	sort.Slice(stats.Files, func(i, j int) bool { return stats.Files[i].File < stats.Files[j].File })
	stats.Summary = summarizeFiles(stats.Files)
	return stats, nil
}

// RankTopics returns up to limit topics by descending count, ties by name.
func RankTopics(counts map[string]int, limit int) []TopicCount {
	ranked := make([]TopicCount, 0, len(counts))
	for topic, count := range counts {
		ranked = append(ranked, TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Topic < ranked[j].Topic
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// WriteStats writes stats as indented JSON.
func WriteStats(path string, stats DatasetStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func summarizeFiles(files []FileStats) FileSummary {
	if len(files) == 0 {
		return FileSummary{}
	}
	counts := make([]int, 0, len(files))
	total := 0
	for _, f := range files {
		counts = append(counts, f.Questions)
		total += f.Questions
	}
	sort.Ints(counts)
	summary := FileSummary{
		Mean: float64(total) / float64(len(counts)),
		Min:  counts[0],
		Max:  counts[len(counts)-1],
	}
	mid := len(counts) / 2
	if len(counts)%2 == 1 {
		summary.Median = float64(counts[mid])
	} else {
		summary.Median = float64(counts[mid-1]+counts[mid]) / 2
	}
	return summary
}

func valueOrUnknown(fields map[string]any, keys []string) string {
	if value := stringField(fields, keys); value != "" {
		return value
	}
	return AreaUnknown
}
