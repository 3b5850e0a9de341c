package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "")
	t.Setenv("RECENT_LIMIT", "")

	cfg := Load()

	if cfg.LedgerBackend != "sheets" {
		t.Errorf("default backend = %q, want sheets", cfg.LedgerBackend)
	}
	if cfg.RecentLimit != 5 {
		t.Errorf("default recent limit = %d, want 5", cfg.RecentLimit)
	}
	if cfg.StateFile == "" {
		t.Error("default state file must not be empty")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "sqlite")
	t.Setenv("ALLOWED_USER_ID", "123456789")
	t.Setenv("RECENT_LIMIT", "10")

	cfg := Load()

	if cfg.LedgerBackend != "sqlite" {
		t.Errorf("backend = %q", cfg.LedgerBackend)
	}
	if cfg.AllowedUserID != 123456789 {
		t.Errorf("allowed user = %d", cfg.AllowedUserID)
	}
	if cfg.RecentLimit != 10 {
		t.Errorf("recent limit = %d", cfg.RecentLimit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.LedgerBackend = "redis" }, "invalid ledger backend"},
		{"sqlite without path", func(c *Config) {
			c.LedgerBackend = "sqlite"
			c.SQLiteDBPath = ""
		}, "SQLITE_DB_PATH"},
		{"empty state file", func(c *Config) { c.StateFile = "" }, "STATE_FILE"},
		{"zero recent limit", func(c *Config) { c.RecentLimit = 0 }, "recent limit"},
		{"huge recent limit", func(c *Config) { c.RecentLimit = 100 }, "recent limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTelegram(t *testing.T) {
	cfg := Load()
	if err := cfg.ValidateTelegram(); err == nil {
		t.Error("empty token and user must fail")
	}

	cfg.BotToken = "123:abc"
	cfg.AllowedUserID = 42
	if err := cfg.ValidateTelegram(); err != nil {
		t.Errorf("ValidateTelegram() = %v", err)
	}
}
