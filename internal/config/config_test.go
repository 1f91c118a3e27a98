package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), t.TempDir(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Default()
	if *cfg != want {
		t.Errorf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	root := t.TempDir()

	cfg := Default()
	cfg.AI.Provider = ProviderOpenAI
	cfg.AI.Model = "gpt-4o-mini"
	cfg.Verification.StrictMode = true
	if err := Write(Path(root), cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}

	t.Setenv("PLANFIRST_AI_MODEL", "gpt-4.1")
	t.Setenv("PLANFIRST_AI_TIMEOUT", "90s")

	loaded, err := Load(viper.New(), root, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loaded.AI.Provider != ProviderOpenAI {
		t.Errorf("provider from file: got %q", loaded.AI.Provider)
	}
	if !loaded.Verification.StrictMode {
		t.Error("strictMode from file should be true")
	}
	if loaded.AI.Model != "gpt-4.1" {
		t.Errorf("env should override file model, got %q", loaded.AI.Model)
	}
	if loaded.AI.Timeout != 90*time.Second {
		t.Errorf("timeout: got %v", loaded.AI.Timeout)
	}
	if !loaded.Verification.SaveReport {
		t.Error("saveReport default should survive")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("PLANFIRST_LOGGING_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PLANFIRST_LOGGING_LEVEL") })

	cfg, err := Load(viper.New(), root, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level from .env: got %q", cfg.Logging.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit file must exist", func(t *testing.T) {
		_, err := Load(viper.New(), t.TempDir(), "/does/not/exist.yaml")
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("invalid provider", func(t *testing.T) {
		root := t.TempDir()
		path := Path(root)
		os.MkdirAll(filepath.Dir(path), 0755)
		os.WriteFile(path, []byte("ai:\n  provider: gemini\n"), 0644)

		_, err := Load(viper.New(), root, "")
		if err == nil || !strings.Contains(err.Error(), "invalid config") {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		root := t.TempDir()
		path := Path(root)
		os.MkdirAll(filepath.Dir(path), 0755)
		os.WriteFile(path, []byte("ai: [unclosed"), 0644)

		if _, err := Load(viper.New(), root, ""); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	if got := APIKey(ProviderOpenAI); got != "sk-openai" {
		t.Errorf("openai key: got %q", got)
	}
	if got := APIKey(ProviderAnthropic); got != "sk-ant" {
		t.Errorf("anthropic key: got %q", got)
	}
	if got := APIKey(ProviderClaudeCLI); got != "" {
		t.Errorf("claude-cli needs no key, got %q", got)
	}
}
