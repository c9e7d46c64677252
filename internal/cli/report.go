package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"enemeval/internal/duckdb"
	"enemeval/internal/report"
	"enemeval/internal/runner"
)

// runReport builds the handler for the report command.
func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .enemeval/config.yml)")
		checkpoint := fs.String("checkpoint", "", "Checkpoint file to rebuild reports from")
		reportsDir := fs.String("reports", "", "Reports directory")
		dbPath := fs.String("db", "", "Print area summaries stored in a DuckDB file")
		runID := fs.String("run", "", "Run id for --db (default: latest run)")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if strings.TrimSpace(*runID) != "" && strings.TrimSpace(*dbPath) == "" {
			fmt.Fprintln(stderr, "--run requires --db")
			return ExitUsage
		}

		if path := strings.TrimSpace(*dbPath); path != "" {
			return printStoredSummaries(path, strings.TrimSpace(*runID), stdout, stderr)
		}

		cfg, _, err := loadRunConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		checkpointPath := cfg.Checkpoint
		if value := strings.TrimSpace(*checkpoint); value != "" {
			if checkpointPath, err = filepath.Abs(value); err != nil {
				fmt.Fprintf(stderr, "Failed to resolve checkpoint: %v\n", err)
				return ExitError
			}
		}
		outDir := cfg.ReportsDir
		if value := strings.TrimSpace(*reportsDir); value != "" {
			if outDir, err = filepath.Abs(value); err != nil {
				fmt.Fprintf(stderr, "Failed to resolve reports dir: %v\n", err)
				return ExitError
			}
		}

		cp, err := runner.LoadCheckpoint(checkpointPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(stderr, "❌ Checkpoint not found: %s\n", checkpointPath)
			} else {
				fmt.Fprintf(stderr, "❌ %v\n", err)
			}
			return ExitError
		}
		if len(cp.Results) == 0 {
			fmt.Fprintln(stderr, "❌ Nenhum resultado gerado!")
			return ExitError
		}
		global, paths, err := report.Write(outDir, cp.Results, nowFunc())
		if err != nil {
			fmt.Fprintf(stderr, "❌ Erro ao gerar relatórios: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Rebuilt reports for %d of %d questions from %s\n", len(cp.Results), cp.Total, checkpointPath)
		printReportSummary(stdout, global, paths)
		return ExitOK
	}
}

func printStoredSummaries(path, runID string, stdout, stderr io.Writer) int {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(stderr, "Database not found: %v\n", err)
		return ExitError
	}
	ctx := context.Background()
	db, err := duckdb.Open(ctx, path)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return ExitError
	}
	defer db.Close()

	if runID == "" {
		runID, err = duckdb.LatestRunID(ctx, db)
		if err != nil {
			fmt.Fprintf(stderr, "❌ %v\n", err)
			return ExitError
		}
	}
	summaries, err := duckdb.AreaSummaries(ctx, db, runID)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return ExitError
	}
	if len(summaries) == 0 {
		fmt.Fprintf(stderr, "❌ No results stored for run %s\n", runID)
		return ExitError
	}
	fmt.Fprintf(stdout, "Run %s\n", runID)
	fmt.Fprintf(stdout, "%-12s %8s %8s %8s %8s %8s %9s\n", "Área", "Total", "Acertos", "Erros", "S/Resp", "Falhas", "Taxa")
	for _, s := range summaries {
		fmt.Fprintf(stdout, "%-12s %8d %8d %8d %8d %8d %8.2f%%\n", s.Area, s.Total, s.Correct, s.Incorrect, s.Unanswered, s.Failures, s.Accuracy)
	}
	return ExitOK
}
