package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"enemeval/internal/config"
)

func TestInitCommandCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	useWorkingDir(t, dir)
	configPath := filepath.Join(dir, ".enemeval", "config.yml")

	var out, err bytes.Buffer
	code := Run([]string{"init", "--config", configPath, "--yes"}, &out, &err)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, err.String())
	}
	if !strings.Contains(out.String(), "Wrote "+configPath) {
		t.Fatalf("expected output to include writes, got %q", out.String())
	}
	cfg, loadErr := config.Load(configPath)
	if loadErr != nil {
		t.Fatalf("load scaffolded config: %v", loadErr)
	}
	if cfg.QuestionsDir != filepath.Join(dir, "provas") {
		t.Fatalf("unexpected questions dir %s", cfg.QuestionsDir)
	}
	if _, statErr := os.Stat(filepath.Join(dir, ".gitignore")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no .gitignore outside a git repo")
	}
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".enemeval", "config.yml")
	writeTestFile(t, configPath, "version: 1\n")

	var out, err bytes.Buffer
	code := Run([]string{"init", "--config", configPath, "--yes"}, &out, &err)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no stdout output, got %q", out.String())
	}
	if !strings.Contains(err.String(), "already exists") {
		t.Fatalf("expected overwrite warning, got %q", err.String())
	}
	if got := readTestFile(t, configPath); got != "version: 1\n" {
		t.Fatalf("config was overwritten: %q", got)
	}
}

func TestInitCommandPromptsInGitRepo(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	writeTestFile(t, filepath.Join(dir, ".gitignore"), "node_modules\n.env")
	nested := filepath.Join(dir, "sub")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	useWorkingDir(t, nested)
	useInitInput(t, "y\nquestoes\n\n")

	var out, err bytes.Buffer
	code := Run([]string{"init"}, &out, &err)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, err.String())
	}
	configPath := config.ConfigPath(dir)
	cfg, loadErr := config.Load(configPath)
	if loadErr != nil {
		t.Fatalf("load: %v", loadErr)
	}
	if cfg.QuestionsDir != filepath.Join(dir, "questoes") {
		t.Fatalf("unexpected questions dir %s", cfg.QuestionsDir)
	}
	gitignore := readTestFile(t, filepath.Join(dir, ".gitignore"))
	want := "node_modules\n.env\nprogresso_resolucao.json\nrelatorios_treinamento\n"
	if gitignore != want {
		t.Fatalf("unexpected .gitignore:\n%s", gitignore)
	}
}

func TestInitCommandCancelled(t *testing.T) {
	dir := t.TempDir()
	useWorkingDir(t, dir)
	useInitInput(t, "n\n")

	var out, err bytes.Buffer
	code := Run([]string{"init"}, &out, &err)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(err.String(), "Init cancelled.") {
		t.Fatalf("expected cancellation, got %q", err.String())
	}
	if _, statErr := os.Stat(config.ConfigPath(dir)); !os.IsNotExist(statErr) {
		t.Fatalf("expected no config file")
	}
}

func TestAddGitignoreEntries(t *testing.T) {
	root := t.TempDir()
	added, err := addGitignoreEntries(root, filepath.Join(root, "out", "reports"), "./ckpt.json")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if strings.Join(added, ",") != "out/reports,ckpt.json" {
		t.Fatalf("unexpected entries %v", added)
	}
	added, err = addGitignoreEntries(root, "ckpt.json")
	if err != nil || len(added) != 0 {
		t.Fatalf("expected no new entries, got %v %v", added, err)
	}
	if _, err := addGitignoreEntries(root, filepath.Join(filepath.Dir(root), "elsewhere")); err == nil {
		t.Fatalf("expected error for a path outside the root")
	}
}
