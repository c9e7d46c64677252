package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"enemeval/internal/duckdb"
	"enemeval/internal/runner"
)

// fixtureConfig defines the JSON config for generating a DuckDB fixture.
type fixtureConfig struct {
	Name             string   `json:"name"`
	Runs             int      `json:"runs"`
	QuestionsPerArea int      `json:"questions_per_area"`
	Areas            []string `json:"areas"`
	// CorrectPercent and FailEvery shape the synthetic verdicts.
	CorrectPercent int `json:"correct_percent"`
	FailEvery      int `json:"fail_every"`
}

var defaultAreas = []string{"LINGUAGENS", "HUMANAS", "NATUREZA", "MATEMATICA"}

func main() {
	configPath := flag.String("config", "", "path to fixture config JSON")
	outPath := flag.String("out", "", "output duckdb file path")
	flag.Parse()
	if *configPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: generate_fixture --config <path> --out <duckdb file>")
		os.Exit(2)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(dirOf(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir output dir: %v\n", err)
		os.Exit(1)
	}
	if err := removeIfExists(*outPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := generateFixture(ctx, *outPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "generate fixture: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (fixtureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixtureConfig{}, err
	}
	var cfg fixtureConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fixtureConfig{}, err
	}
	if len(cfg.Areas) == 0 {
		cfg.Areas = defaultAreas
	}
	if cfg.Runs <= 0 || cfg.QuestionsPerArea <= 0 {
		return fixtureConfig{}, fmt.Errorf("runs and questions_per_area must be positive")
	}
	if cfg.CorrectPercent < 0 || cfg.CorrectPercent > 100 {
		return fixtureConfig{}, fmt.Errorf("correct_percent must be within 0..100")
	}
	return cfg, nil
}

func generateFixture(ctx context.Context, path string, cfg fixtureConfig) error {
	db, err := duckdb.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	startTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	total := cfg.QuestionsPerArea * len(cfg.Areas)
	for i := 0; i < cfg.Runs; i++ {
		started := startTime.Add(time.Duration(i) * time.Hour)
		runID := runner.FormatRunID(started, deterministicSuffix(cfg.Name, i))
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO runs (run_id, started_at, finished_at, model, total_questions, processed, interrupted)
			 VALUES (?, ?, ?, ?, ?, ?, FALSE)`,
			runID, started, started.Add(time.Duration(total)*time.Second), "fixture-"+cfg.Name, total, total,
		); err != nil {
			return fmt.Errorf("insert run %s: %w", runID, err)
		}
		if err := appendResults(conn, runID, i, cfg); err != nil {
			return fmt.Errorf("append results for %s: %w", runID, err)
		}
	}
	return nil
}

// appendResults bulk-loads one run's results, interleaving areas.
func appendResults(conn *sql.Conn, runID string, runIndex int, cfg fixtureConfig) error {
	appender, err := newResultsAppender(conn)
	if err != nil {
		return err
	}
	seq := 0
	for q := 0; q < cfg.QuestionsPerArea; q++ {
		for _, area := range cfg.Areas {
			questionID := fmt.Sprintf("%s-%03d", area, q+1)
			expected := letters[q%len(letters)]
			var response, errText, verdict any
			switch {
			case cfg.FailEvery > 0 && (seq+1)%cfg.FailEvery == 0:
				errText = "fixture: request failed"
			case (seq*37+runIndex*11)%100 < cfg.CorrectPercent:
				response, verdict = "Resposta: "+expected, true
			default:
				wrong := letters[(q+1)%len(letters)]
				response, verdict = "Resposta: "+wrong, false
			}
			if err := appender.AppendRow(
				runID, int32(seq), questionID, deterministicID("question", seq), "fixture_"+cfg.Name+".jsonl",
				area, expected, response, errText, verdict,
			); err != nil {
				_ = appender.Close()
				return err
			}
			seq++
		}
	}
	return appender.Close()
}

var letters = []string{"A", "B", "C", "D", "E"}
