// Package container wires the expense assistant's components together and
// owns their lifecycle.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	Database     DatabaseConfig
	Session      SessionConfig
	Extraction   ExtractionConfig
	Concur       ConcurConfig
	Lark         LarkConfig
	Storage      StorageConfig
	Taxonomy     TaxonomyConfig
	Conversation ConversationConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SessionConfig selects the session store.
type SessionConfig struct {
	// Driver is "memory" or "bolt"
	Driver   string
	BoltPath string

	// IdleTimeout after which the sweeper drops a session
	IdleTimeout time.Duration

	// SweepSchedule is a five-field cron expression
	SweepSchedule string
}

// ExtractionConfig holds receipt extraction provider settings.
type ExtractionConfig struct {
	// Provider is "openai", "gemini" or "chain" (openai then gemini)
	Provider    string
	PromptsPath string
	SchemaCheck bool

	OpenAIKey   string
	OpenAIURL   string
	OpenAIModel string

	GeminiKey   string
	GeminiModel string
}

// ConcurConfig holds expense backend settings.
type ConcurConfig struct {
	BaseURL         string
	AccessToken     string
	UserID          string
	UserLogin       string
	Timeout         time.Duration
	PaymentTypeID   string
	DefaultCurrency string
}

// LarkConfig holds the optional notification bot. Empty disables it.
type LarkConfig struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// StorageConfig holds receipt archive settings.
type StorageConfig struct {
	// BaseDir is the root of all stored files
	BaseDir string

	// ReceiptDir is relative to BaseDir
	ReceiptDir string
}

// TaxonomyConfig holds classifier settings.
type TaxonomyConfig struct {
	// AliasesPath optionally replaces the built-in alias table
	AliasesPath string
}

// ConversationConfig tunes the chat orchestrator.
type ConversationConfig struct {
	CallTimeout     time.Duration
	ReportListLimit int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "data/submissions.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Session: SessionConfig{
			Driver:        "memory",
			BoltPath:      "data/sessions.db",
			IdleTimeout:   30 * time.Minute,
			SweepSchedule: "*/5 * * * *",
		},
		Extraction: ExtractionConfig{
			Provider:    "openai",
			PromptsPath: "configs/prompts.yaml",
			SchemaCheck: true,
			OpenAIModel: "gpt-4o",
			GeminiModel: "gemini-1.5-pro",
		},
		Concur: ConcurConfig{
			BaseURL:         "https://us.api.concursolutions.com",
			Timeout:         30 * time.Second,
			DefaultCurrency: "USD",
		},
		Storage: StorageConfig{
			BaseDir:    "data",
			ReceiptDir: "receipts",
		},
		Conversation: ConversationConfig{
			CallTimeout:     30 * time.Second,
			ReportListLimit: 15,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Session.Driver {
	case "memory", "bolt":
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}

	switch c.Extraction.Provider {
	case "openai":
		if c.Extraction.OpenAIKey == "" {
			return fmt.Errorf("openai.api_key is required")
		}
	case "gemini":
		if c.Extraction.GeminiKey == "" {
			return fmt.Errorf("gemini.api_key is required")
		}
	case "chain":
		if c.Extraction.OpenAIKey == "" && c.Extraction.GeminiKey == "" {
			return fmt.Errorf("at least one extraction api key is required")
		}
	default:
		return fmt.Errorf("unknown extraction provider %q", c.Extraction.Provider)
	}

	if c.Concur.BaseURL == "" {
		return fmt.Errorf("concur.base_url is required")
	}
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	return nil
}
