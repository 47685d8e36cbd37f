package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.BaseURL != "https://data.alpaca.markets" {
		t.Errorf("base url = %q", cfg.DataSource.BaseURL)
	}
	if cfg.Scan.Concurrency != 8 {
		t.Errorf("concurrency = %d, want 8", cfg.Scan.Concurrency)
	}
	if cfg.Schedule.DailyCron == "" {
		t.Error("expected a default daily cron")
	}
	if cfg.Database.SQLitePath == "" {
		t.Error("expected a default sqlite path")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
telegram:
  bot_token: file-token
  chat_id: file-chat
scan:
  concurrency: 4
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SCAN_CONCURRENCY", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("bot token = %q, env must win", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.ChatID != "file-chat" {
		t.Errorf("chat id = %q", cfg.Telegram.ChatID)
	}
	if cfg.Scan.Concurrency != 3 {
		t.Errorf("concurrency = %d, want 3", cfg.Scan.Concurrency)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure without telegram credentials")
	}

	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "chat"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	cfg.Scan.Concurrency = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure for negative concurrency")
	}
}
