package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanAPIKey(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"sk-or-123":      "sk-or-123",
		"[sk-or-123]":    "sk-or-123",
		" [sk-or-123] ":  "sk-or-123",
		"":               "",
		"[[sk]-or-123]]": "sk-or-123",
	}
	for in, want := range cases {
		if got := CleanAPIKey(in); got != want {
			t.Fatalf("CleanAPIKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(apiKeyEnv, "")
	t.Setenv(baseURLEnv, "")
	t.Setenv(modelEnv, "")

	cfg := Load("")

	if cfg.LLM.BaseURL != defaultBaseURL {
		t.Fatalf("unexpected base url: %s", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model != defaultModel {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Fatalf("unexpected llm timeout: %v", cfg.LLM.Timeout)
	}
	if cfg.Extractor.Timeout != 30*time.Second {
		t.Fatalf("unexpected extractor timeout: %v", cfg.Extractor.Timeout)
	}
	if cfg.Extractor.MinBodyLength != 100 || cfg.Extractor.MaxContentLength != 10000 {
		t.Fatalf("unexpected extractor limits: %+v", cfg.Extractor)
	}
	if cfg.LLM.MaxPromptLength != 8000 {
		t.Fatalf("unexpected prompt limit: %d", cfg.LLM.MaxPromptLength)
	}
	if cfg.LLM.APIKey != "" {
		t.Fatalf("expected empty api key, got %q", cfg.LLM.APIKey)
	}
	if cfg.Telegram.Enabled() {
		t.Fatal("telegram must be disabled without token and chat")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "referent.yaml")
	raw := []byte(`
server:
  addr: ":8081"
extractor:
  timeout: 5s
  readabilityFallback: true
llm:
  model: "openai/gpt-4o-mini"
  apiKey: "[from-file]"
  outputLanguage: "English"
telegram:
  botToken: "123:abc"
  chatId: "@referent"
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, "")
	t.Setenv(apiKeyEnv, "[from-env]")
	t.Setenv(baseURLEnv, "http://localhost:9999/v1")
	t.Setenv(modelEnv, "")

	cfg := Load(path)

	if cfg.Server.Addr != ":8081" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Extractor.Timeout != 5*time.Second || !cfg.Extractor.ReadabilityFallback {
		t.Fatalf("unexpected extractor config: %+v", cfg.Extractor)
	}
	if cfg.Extractor.MinBodyLength != 100 {
		t.Fatalf("defaults lost after merge: %+v", cfg.Extractor)
	}
	if cfg.LLM.Model != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Fatalf("env key must win and be cleaned, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != "http://localhost:9999/v1" {
		t.Fatalf("unexpected base url: %s", cfg.LLM.BaseURL)
	}
	if cfg.LLM.OutputLanguage != "English" {
		t.Fatalf("unexpected output language: %s", cfg.LLM.OutputLanguage)
	}
	if !cfg.Telegram.Enabled() {
		t.Fatal("telegram should be enabled")
	}
}

func TestLoadBrokenFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(httpAddrEnv, "")

	cfg := Load(path)
	if cfg.Server.Addr != ":3000" {
		t.Fatalf("expected default addr, got %s", cfg.Server.Addr)
	}
}
