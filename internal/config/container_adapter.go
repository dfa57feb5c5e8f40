package config

import (
	"github.com/akhil1198/ER/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Session: container.SessionConfig{
			Driver:        c.Session.Driver,
			BoltPath:      c.Session.BoltPath,
			IdleTimeout:   c.Session.IdleTimeout,
			SweepSchedule: c.Session.SweepSchedule,
		},
		Extraction: container.ExtractionConfig{
			Provider:    c.Extraction.Provider,
			PromptsPath: c.Extraction.PromptsPath,
			SchemaCheck: c.Extraction.SchemaCheck,
			OpenAIKey:   c.OpenAI.APIKey,
			OpenAIURL:   c.OpenAI.BaseURL,
			OpenAIModel: c.OpenAI.Model,
			GeminiKey:   c.Gemini.APIKey,
			GeminiModel: c.Gemini.Model,
		},
		Concur: container.ConcurConfig{
			BaseURL:         c.Concur.BaseURL,
			AccessToken:     c.Concur.AccessToken,
			UserID:          c.Concur.UserID,
			UserLogin:       c.Concur.UserLogin,
			Timeout:         c.Concur.Timeout,
			PaymentTypeID:   c.Concur.PaymentTypeID,
			DefaultCurrency: c.Concur.DefaultCurrency,
		},
		Lark: container.LarkConfig{
			AppID:     c.Lark.AppID,
			AppSecret: c.Lark.AppSecret,
			ChatID:    c.Lark.ChatID,
		},
		Storage: container.StorageConfig{
			BaseDir:    c.Storage.BaseDir,
			ReceiptDir: c.Storage.ReceiptDir,
		},
		Taxonomy: container.TaxonomyConfig{
			AliasesPath: c.Taxonomy.AliasesPath,
		},
		Conversation: container.ConversationConfig{
			CallTimeout:     c.Conversation.CallTimeout,
			ReportListLimit: c.Conversation.ReportListLimit,
		},
	}
}
