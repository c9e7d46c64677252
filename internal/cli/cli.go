package cli

import (
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
	// ExitInterrupted follows the shell convention for SIGINT.
	ExitInterrupted = 130
)

// Command is a CLI subcommand.
type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

// Run dispatches args to a subcommand and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  enemeval <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"enemeval <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func runNotImplemented(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fmt.Fprintf(stderr, "enemeval %s is not implemented yet\n", cmd.Name)
		return ExitError
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	if runner == nil {
		cmd.Run = runNotImplemented(cmd)
	} else {
		cmd.Run = runner(cmd)
	}
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold .enemeval/config.yml", []string{
		"enemeval init [--config <path>] [--yes]",
	}, runInit),
	command("validate", "Validate .enemeval/config.yml", []string{
		"enemeval validate [--config <path>]",
	}, runValidate),
	command("run", "Solve every question with the model and write reports", []string{
		"enemeval run [--resume] [--delay 500ms] [--questions <dir>] [--checkpoint <file>]",
		"             [--reports <dir>] [--db <file.duckdb>] [--ui auto|live|plain] [--api-key <key>]",
		"             [--log <file>] [--verbose] [--no-color] [--config <path>]",
	}, runRun),
	command("report", "Rebuild reports from a checkpoint without calling the model", []string{
		"enemeval report [--checkpoint <file>] [--reports <dir>] [--config <path>]",
		"enemeval report --db <file.duckdb> [--run <run-id>]",
	}, runReport),
	command("stats", "Summarize the question dataset", []string{
		"enemeval stats [--questions <dir>] [--output <file>] [--config <path>]",
	}, runStats),
	command("serve", "Serve the reports dashboard", []string{
		"enemeval serve [--addr 127.0.0.1:5000] [--db <file.duckdb>] [--config <path>] [<reports-dir>]",
	}, runServe),
}
