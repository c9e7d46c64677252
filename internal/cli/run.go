package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"enemeval/internal/agent"
	"enemeval/internal/config"
	"enemeval/internal/duckdb"
	"enemeval/internal/failure"
	"enemeval/internal/question"
	"enemeval/internal/report"
	"enemeval/internal/runner"
	"enemeval/internal/spec"
	"enemeval/internal/ui/live"
)

// Test seams for the run command.
var (
	runBatch         = runner.Run
	newRunID         = runner.NewRunID
	newClientFactory = func(cfg agent.ClientConfig, src agent.CredentialSources) agent.Factory {
		return agent.NewFactory(cfg, src, nil)
	}
	notifyContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	}
	startLiveUI = func(stdout io.Writer, opts live.Options) liveUI {
		return live.Start(stdout, opts)
	}
	nowFunc = time.Now
)

// liveUI is the part of live.Controller the run command drives.
type liveUI interface {
	runner.RunObserver
	Close()
	Wait()
}

type runFlags struct {
	configPath string
	delay      string
	resume     bool
	questions  string
	checkpoint string
	reports    string
	db         string
	ui         string
	apiKey     string
	logPath    string
	verbose    bool
	noColor    bool
}

// runRun builds the handler for the run command.
func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		var opts runFlags
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: search for .enemeval/config.yml)")
		fs.StringVar(&opts.delay, "delay", "", "Pause between model calls, e.g. 500ms or 0.5 (seconds)")
		fs.BoolVar(&opts.resume, "resume", false, "Continue from the checkpoint file")
		fs.StringVar(&opts.questions, "questions", "", "Directory with *.jsonl question files")
		fs.StringVar(&opts.checkpoint, "checkpoint", "", "Checkpoint file")
		fs.StringVar(&opts.reports, "reports", "", "Reports directory")
		fs.StringVar(&opts.db, "db", "", "Record the run in a DuckDB file")
		fs.StringVar(&opts.ui, "ui", "", "UI mode: auto|live|plain")
		fs.StringVar(&opts.apiKey, "api-key", "", "Maritaca API key (default: environment or .env)")
		fs.StringVar(&opts.logPath, "log", "", "Write log records to a file instead of stderr")
		fs.BoolVar(&opts.verbose, "verbose", false, "Verbose logging")
		fs.BoolVar(&opts.noColor, "no-color", false, "Disable ANSI colors")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, _, err := loadRunConfig(opts.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		if err := applyRunFlags(&cfg, fs, opts); err != nil {
			fmt.Fprintf(stderr, "Invalid arguments: %v\n", err)
			return ExitUsage
		}
		if err := config.Validate(&cfg); err != nil {
			fmt.Fprintf(stderr, "Invalid config:\n%v\n", err)
			return ExitError
		}

		decision, err := resolveUIMode(cfg.UI, opts.verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid arguments: %v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		logOut := stderr
		if strings.TrimSpace(opts.logPath) != "" {
			file, err := openLogFile(opts.logPath)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to open log file: %v\n", err)
				return ExitError
			}
			defer func() { _ = file.Close() }()
			logOut = file
		}
		level := slog.LevelInfo
		if opts.verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

		printBanner(stdout, "🎓 RESOLUÇÃO COMPLETA DAS QUESTÕES DO ENEM")
		records, err := question.LoadDir(cfg.QuestionsDir, question.LoadOptions{SynthesizeIDs: cfg.SynthesizeMissingIDs}, logger)
		if err != nil {
			fmt.Fprintf(stderr, "❌ %v\n", err)
			return ExitError
		}
		questions := question.NormalizeAll(records)
		if len(questions) == 0 {
			fmt.Fprintln(stderr, "❌ Nenhuma questão encontrada!")
			return ExitError
		}
		fmt.Fprintf(stdout, "✅ %d questões carregadas de %s\n\n", len(questions), cfg.QuestionsDir)

		runID, err := newRunID()
		if err != nil {
			fmt.Fprintf(stderr, "Run failed: %v\n", err)
			return ExitError
		}

		ctx, stop := notifyContext(context.Background())
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var observer runner.RunObserver
		var ui liveUI
		if decision.useLive {
			// The live UI owns the terminal in raw mode, so ctrl+c arrives as a
			// key press rather than SIGINT.
			ui = startLiveUI(stdout, live.Options{NoColor: opts.noColor, OnInterrupt: cancel})
			observer = ui
		} else if !opts.verbose {
			observer = newPlainObserver(stdout)
		}

		clientCfg := config.ClientConfig(cfg)
		outcome, runErr := runBatch(ctx, runner.RunParams{
			RunID:          runID,
			Questions:      questions,
			CheckpointPath: cfg.Checkpoint,
			Resume:         cfg.Resume,
			Delay:          config.Delay(cfg),
			Observer:       observer,
			Logger:         logger,
			Verbose:        opts.verbose,
			VerboseWriter:  stderr,
			NoColor:        opts.noColor,
		}, runner.RunDependencies{
			NewClient: newClientFactory(clientCfg, config.CredentialSources(cfg, opts.apiKey)),
		})
		if ui != nil {
			ui.Close()
			ui.Wait()
		}

		if runErr != nil && !failure.Is(runErr, failure.Interrupt) {
			fmt.Fprintf(stderr, "❌ Erro: %v\n", runErr)
			return ExitError
		}

		if cfg.Store.DuckDB != "" {
			if err := recordRun(cfg.Store.DuckDB, clientCfg.Model, outcome); err != nil {
				fmt.Fprintf(stderr, "⚠️  Failed to record run in %s: %v\n", cfg.Store.DuckDB, err)
				if runErr == nil {
					return ExitError
				}
			}
		}

		if runErr != nil {
			fmt.Fprintln(stderr, "\n⚠️  Processamento interrompido pelo usuário")
			fmt.Fprintln(stderr, "💡 Use --resume na próxima execução para retomar")
			return ExitInterrupted
		}

		if len(outcome.Results) == 0 {
			fmt.Fprintln(stderr, "❌ Nenhum resultado gerado!")
			return ExitError
		}
		global, paths, err := report.Write(cfg.ReportsDir, outcome.Results, nowFunc())
		if err != nil {
			fmt.Fprintf(stderr, "❌ Erro ao gerar relatórios: %v\n", err)
			return ExitError
		}
		printReportSummary(stdout, global, paths)
		return ExitOK
	}
}

// applyRunFlags copies explicitly set flags over the loaded config. Paths
// given on the command line resolve against the working directory.
func applyRunFlags(cfg *spec.Config, fs *flag.FlagSet, opts runFlags) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "delay":
			var d time.Duration
			if d, err = parseDelay(opts.delay); err == nil {
				cfg.Delay = d.String()
			}
		case "resume":
			cfg.Resume = opts.resume
		case "questions":
			cfg.QuestionsDir, err = filepath.Abs(opts.questions)
		case "checkpoint":
			cfg.Checkpoint, err = filepath.Abs(opts.checkpoint)
		case "reports":
			cfg.ReportsDir, err = filepath.Abs(opts.reports)
		case "db":
			cfg.Store.DuckDB, err = filepath.Abs(opts.db)
		case "ui":
			cfg.UI = opts.ui
		}
	})
	return err
}

// parseDelay accepts a Go duration or a plain number of seconds.
func parseDelay(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("delay must be >= 0")
		}
		return d, nil
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q", value)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("delay must be >= 0")
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

func recordRun(path, model string, outcome runner.Outcome) error {
	ctx := context.Background()
	db, err := duckdb.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()
	return duckdb.RecordRun(ctx, db, duckdb.RunRecord{
		RunID:       outcome.RunID,
		StartedAt:   outcome.StartedAt,
		FinishedAt:  outcome.FinishedAt,
		Model:       model,
		Total:       outcome.Total,
		Processed:   len(outcome.Results),
		Interrupted: outcome.Interrupted,
	}, outcome.Results)
}

func printBanner(w io.Writer, title string) {
	rule := strings.Repeat("=", 80)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

func printReportSummary(w io.Writer, global report.GlobalReport, paths report.Paths) {
	printBanner(w, "✅ PROCESSAMENTO CONCLUÍDO")
	fmt.Fprintln(w, "📊 Resumo Final:")
	for _, area := range global.SortedAreas() {
		stats := global.ByArea[area]
		fmt.Fprintf(w, "   %s: %.2f%% de acerto (%d/%d)\n", area, stats.Accuracy, stats.Correct, stats.Correct+stats.Incorrect)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "📁 Relatórios salvos em: %s\n", paths.Dir)
}
