package main

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/Cadenza/pkg/markov"
)

// runCLI executes the root command with a config and database inside dir and returns stdout.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	root := newRootCmd(a)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "cadenza.json"),
		"--db", filepath.Join(dir, "cadenza.db"),
	}, args...))
	err := root.Execute()
	a.close()
	return stdout.String(), err
}

// mustRunCLI is runCLI for commands that must succeed.
func mustRunCLI(t *testing.T, dir, stdin string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dir, stdin, args...)
	if err != nil {
		t.Fatalf("cadenza %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestCorpusAddShowList(t *testing.T) {
	dir := t.TempDir()

	out := mustRunCLI(t, dir, "C G Am F\n", "corpus", "add", "pop")
	if out != "pop: 4 chords, 4 distinct\n" {
		t.Errorf("add output = %q", out)
	}

	file := filepath.Join(dir, "blues.txt")
	if err := os.WriteFile(file, []byte("# twelve bar\nC7 F7 C7 C7\nF7 F7 C7 C7\nG7 F7 C7 G7\n"), 0644); err != nil {
		t.Fatalf("failed to write progression file: %v", err)
	}
	mustRunCLI(t, dir, "", "corpus", "add", "blues", file)

	if out = mustRunCLI(t, dir, "", "corpus", "show", "pop"); out != "C G Am F\n" {
		t.Errorf("show output = %q", out)
	}
	if out = mustRunCLI(t, dir, "", "corpus", "list"); out != "pop\nblues\n" {
		t.Errorf("list output = %q", out)
	}

	out = mustRunCLI(t, dir, "", "corpus", "stats")
	if !strings.Contains(out, "blues") || !strings.Contains(out, "vocabulary: 7 chords") {
		t.Errorf("stats output missing data:\n%s", out)
	}
}

func TestCorpusRemove(t *testing.T) {
	dir := t.TempDir()
	mustRunCLI(t, dir, "C G Am F", "corpus", "add", "pop")
	mustRunCLI(t, dir, "Em B7", "corpus", "add", "minor")

	mustRunCLI(t, dir, "", "corpus", "remove", "--prune", "minor")

	if out := mustRunCLI(t, dir, "", "corpus", "list"); out != "pop\n" {
		t.Errorf("list after remove = %q", out)
	}
	if out := mustRunCLI(t, dir, "", "corpus", "prune"); out != "pruned 0 chords\n" {
		t.Errorf("prune after remove --prune = %q", out)
	}

	_, err := runCLI(t, dir, "", "corpus", "remove", "minor")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows removing a missing progression, got %v", err)
	}
}

func TestCorpusExportImport(t *testing.T) {
	dir := t.TempDir()
	mustRunCLI(t, dir, "Dm7 G7 CM7", "corpus", "add", "ii-V-I")

	exported := filepath.Join(dir, "export.json")
	mustRunCLI(t, dir, "", "corpus", "export", "ii-V-I", exported)

	other := t.TempDir()
	if out := mustRunCLI(t, other, "", "corpus", "import", exported); out != "imported ii-V-I\n" {
		t.Errorf("import output = %q", out)
	}
	if out := mustRunCLI(t, other, "", "corpus", "show", "ii-V-I"); out != "Dm7 G7 CM7\n" {
		t.Errorf("show after import = %q", out)
	}

	stdout := mustRunCLI(t, dir, "", "corpus", "export", "ii-V-I")
	if !strings.Contains(stdout, `"name": "ii-V-I"`) {
		t.Errorf("export to stdout = %q", stdout)
	}
}

func TestGenerateCommands(t *testing.T) {
	dir := t.TempDir()
	// Every chord has exactly one successor, so the output does not depend on the seed.
	mustRunCLI(t, dir, "C G Am F", "corpus", "add", "pop")

	testCases := []struct {
		name     string
		args     []string
		expected string
	}{
		{"generate", []string{"generate", "pop", "--start", "C", "--count", "5"}, "C G Am F C G\n"},
		{"interpolate", []string{"interpolate", "pop", "--left", "G", "--right", "C", "--span", "2"}, "G Am F C\n"},
		{"loop", []string{"loop", "pop", "--start", "Am", "--length", "4"}, "Am F C G\n"},
		{"numbered", []string{"loop", "pop", "--start", "C", "--length", "4", "-o", "numbered"}, "1. C\n2. G\n3. Am\n4. F\n"},
		{"inline", []string{"generate", "pop", "--start", "F", "-n", "1", "-o", "{{.Mode}} {{.Chords | join \",\"}}"}, "generate F,C"},
		{"loop mode", []string{"loop", "pop", "--start", "C", "--length", "4", "-o", "{{.Mode}}"}, "loop"},
		{"interpolate mode", []string{"interpolate", "pop", "--left", "G", "--right", "C", "-o", "{{.Mode}}"}, "interpolate"},
		{"infinite temperature", []string{"generate", "pop", "--start", "C", "-n", "3", "--temperature", "inf"}, "C G Am F\n"},
		{"corpus template", []string{"generate", "pop", "--start", "F", "-n", "0", "-o", "{{corpus \"pop\" | join \"-\"}}"}, "C-G-Am-F"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if out := mustRunCLI(t, dir, "", tc.args...); out != tc.expected {
				t.Errorf("got %q, want %q", out, tc.expected)
			}
		})
	}
}

func TestGenerateErrors(t *testing.T) {
	dir := t.TempDir()
	mustRunCLI(t, dir, "C G Am F", "corpus", "add", "pop")

	testCases := []struct {
		name string
		args []string
		want error
	}{
		{"unreachable loop", []string{"loop", "pop", "--start", "C", "--length", "3"}, markov.ErrZeroProbabilityPath},
		{"unknown chord", []string{"generate", "pop", "--start", "Bb"}, markov.ErrUnknownChord},
		{"negative span", []string{"interpolate", "pop", "--left", "C", "--right", "F", "--span", "-1"}, markov.ErrInvalidRange},
		{"missing progression", []string{"generate", "jazz", "--start", "C"}, sql.ErrNoRows},
		{"nan temperature", []string{"generate", "pop", "--start", "C", "--temperature", "NaN"}, markov.ErrInvalidRange},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCLI(t, dir, "", tc.args...)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := runCLI(t, dir, "", "generate", "pop"); err == nil {
		t.Error("expected an error without --start, got nil")
	}
	if _, err := runCLI(t, dir, "", "generate", "pop", "--start", "H"); err == nil {
		t.Error("expected an error for an invalid start chord, got nil")
	}
}

func TestGenerateFromFileIsReproducible(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "jazz.txt")
	if err := os.WriteFile(file, []byte("Dm7 G7 CM7 Am7 Dm7 G7 Em7 A7 Dm7 G7 CM7 C7 FM7 Fm7 Em7 A7"), 0644); err != nil {
		t.Fatalf("failed to write progression file: %v", err)
	}

	args := []string{"generate", file, "--file", "--start", "Dm7", "-n", "32", "--seed", "42"}
	first := mustRunCLI(t, dir, "", args...)
	second := mustRunCLI(t, dir, "", args...)
	if first != second {
		t.Errorf("same seed produced different output:\n%s\n%s", first, second)
	}

	greedy := mustRunCLI(t, dir, "", "generate", file, "--file", "--start", "C7", "-n", "3", "--temperature", "0")
	if greedy != "C7 FM7 Fm7 Em7\n" {
		t.Errorf("temperature 0 output = %q", greedy)
	}
}

func TestTemplatesCommand(t *testing.T) {
	out := mustRunCLI(t, t.TempDir(), "", "templates")
	for _, want := range []string{"plain (default)\n", "numbered\n", "verbose\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("templates output missing %q:\n%s", want, out)
		}
	}
}
