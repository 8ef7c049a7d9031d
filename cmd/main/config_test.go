package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadenza.json")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if !configEqual(config, DefaultConfig()) {
		t.Errorf("LoadConfig() on a missing file did not return defaults: %+v", config)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config was not written: %v", err)
	}
	var written Config
	if err = json.Unmarshal(data, &written); err != nil {
		t.Fatalf("written config is not valid json: %v", err)
	}
	if !configEqual(&written, DefaultConfig()) {
		t.Errorf("written config differs from defaults:\n%s", data)
	}
}

func TestLoadConfigKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadenza.json")
	if err := os.WriteFile(path, []byte(`{"cli_config": {"log_level": "debug"}, "template_config": {"default": "numbered"}}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.CLI.LogLevel != "debug" || config.Templates.Default != "numbered" {
		t.Errorf("values from file not applied: %+v %+v", config.CLI, config.Templates)
	}
	if config.CLI.DatabasePath != "./cadenza.db" || config.Generation.Temperature != 1.0 {
		t.Errorf("defaults lost for fields missing from file: %+v %+v", config.CLI, config.Generation)
	}
	if config.Templates.MaxRepeat != 1024 {
		t.Errorf("template defaults lost: %+v", config.Templates)
	}
}

func TestLoadConfigNullSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadenza.json")
	data := `{"cli_config": null, "generation_config": null, "tokenizer_config": null, "template_config": null}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(envDatabase, "env.db")
	t.Setenv(envTemperature, "0.5")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.CLI == nil || config.Generation == nil || config.Tokenizer == nil || config.Templates == nil {
		t.Fatalf("null sections were not replaced with defaults: %+v", config)
	}
	if !configEqual(config, DefaultConfig()) {
		t.Errorf("null sections differ from defaults: %+v", config)
	}
	if err = config.applyEnv(); err != nil {
		t.Fatalf("applyEnv() failed: %v", err)
	}
	if config.CLI.DatabasePath != "env.db" || config.Generation.Temperature != 0.5 {
		t.Errorf("environment not applied: %+v %+v", config.CLI, config.Generation)
	}
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadenza.json")
	if err := os.WriteFile(path, []byte(`{"cli_config": `), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for a malformed config, got nil")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(envDatabase, "/tmp/other.db")
	t.Setenv(envLogLevel, "error")
	t.Setenv(envTemperature, "0.5")

	config := DefaultConfig()
	if err := config.applyEnv(); err != nil {
		t.Fatalf("applyEnv() failed: %v", err)
	}
	if config.CLI.DatabasePath != "/tmp/other.db" || config.CLI.LogLevel != "error" || config.Generation.Temperature != 0.5 {
		t.Errorf("environment not applied: %+v %+v", config.CLI, config.Generation)
	}

	t.Setenv(envTemperature, "warm")
	if err := DefaultConfig().applyEnv(); err == nil {
		t.Error("expected an error for a non-numeric temperature, got nil")
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(envConfigPath, "")
	if got := configPath(""); got != defaultConfigPath {
		t.Errorf("configPath() = %q, want %q", got, defaultConfigPath)
	}
	t.Setenv(envConfigPath, "/etc/cadenza.json")
	if got := configPath(""); got != "/etc/cadenza.json" {
		t.Errorf("configPath() = %q, want the env value", got)
	}
	if got := configPath("./flag.json"); got != "./flag.json" {
		t.Errorf("configPath() = %q, want the flag value", got)
	}
}

func TestDotEnvAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// Registered so the variable godotenv sets is removed again after the test.
	t.Setenv(envLogLevel, "")
	_ = os.Unsetenv(envLogLevel)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(envLogLevel+"=debug\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	out := mustRunCLI(t, dir, "", "config", "show")
	if !strings.Contains(out, `"log_level": "debug"`) {
		t.Errorf(".env value not applied:\n%s", out)
	}

	out = mustRunCLI(t, dir, "", "--log-level", "error", "config", "show")
	if !strings.Contains(out, `"log_level": "error"`) {
		t.Errorf("flag did not override .env:\n%s", out)
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cadenza.json")

	mustRunCLI(t, dir, "", "config", "init")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config init did not write %s: %v", path, err)
	}

	if err := os.WriteFile(path, []byte(`{"cli_config": {"log_level": "debug"}}`), 0644); err != nil {
		t.Fatalf("failed to edit config: %v", err)
	}
	if _, err := runCLI(t, dir, "", "config", "init"); err == nil {
		t.Fatal("expected config init to refuse overwriting an edited file")
	}

	mustRunCLI(t, dir, "", "config", "init", "--force")
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if !configEqual(config, DefaultConfig()) {
		t.Errorf("config init --force did not restore defaults: %+v", config.CLI)
	}
}

func TestNewTokenizerFromConfig(t *testing.T) {
	config := DefaultConfig()
	config.Tokenizer.Separator = " | "
	tokenizer, err := config.newTokenizer()
	if err != nil {
		t.Fatalf("newTokenizer() failed: %v", err)
	}
	if tokenizer.Separator() != " | " {
		t.Errorf("separator = %q", tokenizer.Separator())
	}

	config.Tokenizer.SplitRegex = "[unclosed"
	if _, err = config.newTokenizer(); err == nil {
		t.Error("expected an error for an invalid split regex, got nil")
	}
}

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
	}
	for input, want := range testCases {
		if got := parseLogLevel(input); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
