package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"enemeval/internal/agent"
	"enemeval/internal/config"
)

// initInput allows tests to override stdin for init prompts.
var initInput io.Reader = os.Stdin

// runInit builds the handler for the init command.
func runInit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: .enemeval/config.yml in the git root or working directory)")
		yes := flags.Bool("yes", false, "Accept every default without prompting")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		wd, err := getwd()
		if err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}

		var target, gitRoot string
		if value := strings.TrimSpace(*configPath); value != "" {
			abs, err := filepath.Abs(value)
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
				return ExitError
			}
			target = abs
			gitRoot = discoverGitRoot(config.RootFromConfigPath(target))
		} else {
			gitRoot = discoverGitRoot(wd)
			root := gitRoot
			if root == "" {
				root = wd
			}
			target = config.ConfigPath(root)
		}
		configDir := filepath.Dir(target)
		projectRoot := config.RootFromConfigPath(target)

		if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
			fmt.Fprintf(stderr, "Init failed: config directory %q is not a directory\n", configDir)
			return ExitError
		}
		if _, err := os.Stat(target); err == nil {
			fmt.Fprintf(stderr, "Init failed: config file already exists at %q\n", target)
			return ExitError
		} else if !os.IsNotExist(err) {
			fmt.Fprintf(stderr, "Init failed: stat config file: %v\n", err)
			return ExitError
		}

		questionsDir := config.DefaultQuestionsDir
		addGitignore := gitRoot != ""
		if !*yes {
			in := initInput
			if in == nil {
				in = os.Stdin
			}
			reader := bufio.NewReader(in)

			confirm, err := promptYesNo(reader, stdout, fmt.Sprintf("Initialize enemeval config in %s?", configDir), true)
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
				return ExitError
			}
			if !confirm {
				fmt.Fprintln(stderr, "Init cancelled.")
				return ExitError
			}
			if questionsDir, err = promptString(reader, stdout, "Questions folder", config.DefaultQuestionsDir); err != nil {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
				return ExitError
			}
			if gitRoot != "" {
				if addGitignore, err = promptYesNo(reader, stdout, "Add checkpoint, reports and .env to .gitignore?", true); err != nil {
					fmt.Fprintf(stderr, "Init failed: %v\n", err)
					return ExitError
				}
			}
		}

		if err := config.Scaffold(target, questionsDir); err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(stdout, "Wrote %s\n", target)

		if addGitignore {
			generated := config.Default(projectRoot)
			added, err := addGitignoreEntries(gitRoot,
				generated.Checkpoint,
				generated.ReportsDir,
				filepath.Join(projectRoot, agent.DefaultDotenvPath),
			)
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: update .gitignore: %v\n", err)
				return ExitError
			}
			if len(added) > 0 {
				fmt.Fprintf(stdout, "Updated %s (%s)\n", filepath.Join(gitRoot, ".gitignore"), strings.Join(added, ", "))
			}
		}
		return ExitOK
	}
}

// discoverGitRoot walks up from startDir to the nearest directory holding
// .git, returning empty when there is none.
func discoverGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
