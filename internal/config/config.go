package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Session      SessionConfig      `mapstructure:"session"`
	Extraction   ExtractionConfig   `mapstructure:"extraction"`
	OpenAI       OpenAIConfig       `mapstructure:"openai"`
	Gemini       GeminiConfig       `mapstructure:"gemini"`
	Concur       ConcurConfig       `mapstructure:"concur"`
	Lark         LarkConfig         `mapstructure:"lark"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Taxonomy     TaxonomyConfig     `mapstructure:"taxonomy"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Logger       LoggerConfig       `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
}

// DatabaseConfig holds the submission audit database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SessionConfig selects the session store and its idle sweep
type SessionConfig struct {
	Driver        string        `mapstructure:"driver"` // memory or bolt
	BoltPath      string        `mapstructure:"bolt_path"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

// ExtractionConfig selects the receipt extraction providers
type ExtractionConfig struct {
	Provider    string `mapstructure:"provider"` // openai, gemini or chain
	PromptsPath string `mapstructure:"prompts_path"`
	SchemaCheck bool   `mapstructure:"schema_check"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ConcurConfig holds expense backend configuration
type ConcurConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	AccessToken     string        `mapstructure:"access_token"`
	UserID          string        `mapstructure:"user_id"`
	UserLogin       string        `mapstructure:"user_login"`
	Timeout         time.Duration `mapstructure:"timeout"`
	PaymentTypeID   string        `mapstructure:"payment_type_id"`
	DefaultCurrency string        `mapstructure:"default_currency"`
}

// LarkConfig holds the optional report notification bot
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	ChatID    string `mapstructure:"chat_id"`
}

// StorageConfig holds receipt archive configuration
type StorageConfig struct {
	BaseDir    string `mapstructure:"base_dir"`
	ReceiptDir string `mapstructure:"receipt_dir"`
}

// TaxonomyConfig points at an optional alias table overriding the built-in one
type TaxonomyConfig struct {
	AliasesPath string `mapstructure:"aliases_path"`
}

// ConversationConfig tunes the chat orchestrator
type ConversationConfig struct {
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
	ReportListLimit int           `mapstructure:"report_list_limit"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads configPath, applies defaults and environment overrides, and
// validates the result. A .env file next to the working directory is
// loaded first when present; variables already set win.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.max_upload_size", 10<<20)

	v.SetDefault("database.path", "data/submissions.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	v.SetDefault("session.driver", "memory")
	v.SetDefault("session.bolt_path", "data/sessions.db")
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.sweep_schedule", "*/5 * * * *")

	v.SetDefault("extraction.provider", "openai")
	v.SetDefault("extraction.prompts_path", "configs/prompts.yaml")
	v.SetDefault("extraction.schema_check", true)

	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("gemini.model", "gemini-1.5-pro")

	v.SetDefault("concur.base_url", "https://us.api.concursolutions.com")
	v.SetDefault("concur.timeout", 30*time.Second)
	v.SetDefault("concur.default_currency", "USD")

	v.SetDefault("storage.base_dir", "data")
	v.SetDefault("storage.receipt_dir", "receipts")

	v.SetDefault("conversation.call_timeout", 30*time.Second)
	v.SetDefault("conversation.report_list_limit", 15)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds credentials and endpoints to their conventional names
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"openai.api_key":      "OPENAI_API_KEY",
		"openai.base_url":     "OPENAI_BASE_URL",
		"gemini.api_key":      "GEMINI_API_KEY",
		"concur.access_token": "CONCUR_ACCESS_TOKEN",
		"concur.base_url":     "CONCUR_BASE_URL",
		"concur.user_id":      "CONCUR_USER_ID",
		"concur.user_login":   "CONCUR_USER_LOGIN",
		"lark.app_id":         "LARK_APP_ID",
		"lark.app_secret":     "LARK_APP_SECRET",
		"lark.chat_id":        "LARK_CHAT_ID",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Session.Driver {
	case "memory":
	case "bolt":
		if c.Session.BoltPath == "" {
			return fmt.Errorf("session.bolt_path is required for the bolt driver")
		}
	default:
		return fmt.Errorf("session.driver must be memory or bolt, got %q", c.Session.Driver)
	}

	switch c.Extraction.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai.api_key is required")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini.api_key is required")
		}
	case "chain":
		if c.OpenAI.APIKey == "" && c.Gemini.APIKey == "" {
			return fmt.Errorf("openai.api_key or gemini.api_key is required")
		}
	default:
		return fmt.Errorf("extraction.provider must be openai, gemini or chain, got %q", c.Extraction.Provider)
	}
	if c.Extraction.PromptsPath == "" {
		return fmt.Errorf("extraction.prompts_path is required")
	}

	if c.Concur.BaseURL == "" {
		return fmt.Errorf("concur.base_url is required")
	}
	if c.Concur.AccessToken == "" {
		return fmt.Errorf("concur.access_token is required")
	}

	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	return nil
}
