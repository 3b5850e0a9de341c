package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Telegram
	BotToken      string
	AllowedUserID int64

	// Ledger backend selection
	LedgerBackend string

	// Google Sheets
	SpreadsheetID string // optional override of the identity file
	OwnerEmail    string

	// Local state
	StateFile    string
	SQLiteDBPath string

	// Conversation
	RecentLimit int
}

func Load() *Config {
	return &Config{
		BotToken:      getEnv("BOT_TOKEN", ""),
		AllowedUserID: getEnvInt64("ALLOWED_USER_ID", 0),

		LedgerBackend: getEnv("LEDGER_BACKEND", "sheets"),

		SpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		OwnerEmail:    getEnv("OWNER_EMAIL", ""),

		StateFile:    getEnv("STATE_FILE", "./data/kopilka.json"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/kopilka.db"),

		RecentLimit: getEnvInt("RECENT_LIMIT", 5),
	}
}

// Validate checks the settings every binary needs. Telegram settings are
// checked separately because the provisioning CLI runs without them.
func (c *Config) Validate() error {
	var errs []string

	switch c.LedgerBackend {
	case "sheets", "sqlite", "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid ledger backend %q: must be one of sheets, sqlite, memory", c.LedgerBackend))
	}

	if c.LedgerBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLITE_DB_PATH cannot be empty when using the sqlite backend")
	}

	if c.StateFile == "" {
		errs = append(errs, "STATE_FILE cannot be empty")
	}

	if c.RecentLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid recent limit %d: must be at least 1", c.RecentLimit))
	} else if c.RecentLimit > 50 {
		errs = append(errs, fmt.Sprintf("invalid recent limit %d: must be at most 50", c.RecentLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateTelegram checks the settings the bot binary additionally requires.
func (c *Config) ValidateTelegram() error {
	var errs []string

	if strings.TrimSpace(c.BotToken) == "" {
		errs = append(errs, "BOT_TOKEN is required")
	}
	if c.AllowedUserID == 0 {
		errs = append(errs, "ALLOWED_USER_ID is required (the single allowed Telegram user)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
