package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"enemeval/internal/report"
	"enemeval/internal/reportserver"
)

// serveReport is a test seam for running the report server.
var serveReport = reportserver.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		addr := fs.String("addr", "127.0.0.1:5000", "Address to listen on")
		configPath := fs.String("config", "", "Path to config file (default: search for .enemeval/config.yml)")
		dbPath := fs.String("db", "", "Expose a DuckDB results file for download")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 1 {
			fmt.Fprintln(stderr, "Too many arguments")
			return ExitUsage
		}
		if *addr == "" {
			fmt.Fprintln(stderr, "Missing --addr")
			return ExitUsage
		}

		reportsDir := fs.Arg(0)
		if reportsDir == "" {
			cfg, _, err := loadRunConfig(*configPath)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
				return ExitError
			}
			reportsDir = cfg.ReportsDir
		}
		if _, err := os.Stat(filepath.Join(reportsDir, report.GlobalFile)); err != nil {
			fmt.Fprintf(stderr, "Reports not found: %v\n", err)
			return ExitError
		}
		if *dbPath != "" {
			if _, err := os.Stat(*dbPath); err != nil {
				fmt.Fprintf(stderr, "Database not found: %v\n", err)
				return ExitError
			}
		}

		cfg := reportserver.Config{
			Addr:       *addr,
			ReportsDir: reportsDir,
			DBPath:     *dbPath,
		}
		ctx, stop := notifyContext(context.Background())
		defer stop()
		fmt.Fprintf(stdout, "Serving reports at http://%s\n", cfg.Addr)
		if err := serveReport(ctx, cfg); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
