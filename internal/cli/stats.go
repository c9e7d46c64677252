package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"enemeval/internal/question"
)

// DefaultStatsFile is where the stats command writes its JSON output.
const DefaultStatsFile = "estatisticas_provas_enem.json"

const statsTopTopics = 10

// runStats builds the handler for the stats command.
func runStats(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .enemeval/config.yml)")
		questionsDir := fs.String("questions", "", "Directory with *.jsonl question files")
		output := fs.String("output", "", "Output file (default: "+DefaultStatsFile+" in the working directory)")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, _, err := loadRunConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		dir := cfg.QuestionsDir
		if value := strings.TrimSpace(*questionsDir); value != "" {
			dir = value
		}
		outPath := strings.TrimSpace(*output)
		if outPath == "" {
			wd, err := getwd()
			if err != nil {
				fmt.Fprintf(stderr, "Failed to resolve output: %v\n", err)
				return ExitError
			}
			outPath = filepath.Join(wd, DefaultStatsFile)
		}

		logger := slog.New(slog.NewTextHandler(stderr, nil))
		stats, err := question.Analyze(dir, logger)
		if err != nil {
			fmt.Fprintf(stderr, "❌ %v\n", err)
			return ExitError
		}
		if err := question.WriteStats(outPath, stats); err != nil {
			fmt.Fprintf(stderr, "❌ %v\n", err)
			return ExitError
		}

		printBanner(stdout, "📊 ESTATÍSTICAS DAS PROVAS DO ENEM")
		fmt.Fprintf(stdout, "Total de arquivos: %d\n", stats.TotalFiles)
		fmt.Fprintf(stdout, "Total de questões: %d\n", stats.TotalQuestions)
		if stats.TotalFiles > 0 {
			fmt.Fprintf(stdout, "Média por arquivo: %.1f (mediana %.1f, min %d, max %d)\n",
				stats.Summary.Mean, stats.Summary.Median, stats.Summary.Min, stats.Summary.Max)
		}
		printCounts(stdout, "📅 Por ano:", stats.ByYear, 0)
		printCounts(stdout, "📚 Por área:", stats.ByArea, 0)
		printCounts(stdout, "🎯 Por dificuldade:", stats.ByDifficulty, 0)
		printCounts(stdout, fmt.Sprintf("🏷️  Top %d temas:", statsTopTopics), stats.TopTopics, statsTopTopics)
		fmt.Fprintf(stdout, "\n✅ Estatísticas salvas em: %s\n", outPath)
		return ExitOK
	}
}

// printCounts lists counts by descending frequency.
func printCounts(w io.Writer, title string, counts map[string]int, limit int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, tc := range question.RankTopics(counts, limit) {
		fmt.Fprintf(w, "   %s: %d\n", tc.Topic, tc.Count)
	}
}
