package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPrompts = `
receipt_extraction:
  temperature: 0.1
  max_tokens: 800
  system: "You read receipts."
  user_template: "Categories: {{join .Categories \", \"}}"
`

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()

	promptsPath := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(promptsPath, []byte(testPrompts), 0o644))

	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "db", "submissions.db")
	cfg.Session.BoltPath = filepath.Join(dir, "sessions.db")
	cfg.Extraction.PromptsPath = promptsPath
	cfg.Extraction.OpenAIKey = "sk-test"
	cfg.Extraction.OpenAIURL = "http://127.0.0.1:1/v1"
	cfg.Concur.AccessToken = "token"
	cfg.Storage.BaseDir = filepath.Join(dir, "files")
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), zap.NewNop())
	assert.Error(t, err, "default config has no api key")
}

func TestContainer_Lifecycle(t *testing.T) {
	for _, driver := range []string{"memory", "bolt"} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Session.Driver = driver

			c, err := NewContainer(cfg, zap.NewNop())
			require.NoError(t, err)
			assert.Nil(t, c.Services())

			require.NoError(t, c.Start(context.Background()))
			assert.True(t, c.Ready())
			assert.Error(t, c.Start(context.Background()), "second start")

			services := c.Services()
			require.NotNil(t, services)
			assert.NotNil(t, services.Chat)
			assert.NotNil(t, services.Catalog)
			assert.NotNil(t, services.Reports)
			assert.NotNil(t, services.Export)

			health := c.Health(context.Background())
			assert.True(t, health.Overall, "%+v", health.Components)
			assert.Equal(t, "openai", health.Components["extractor"].Message)
			assert.Equal(t, driver, health.Components["sessions"].Message)

			require.NoError(t, c.Close())
			assert.False(t, c.Ready())
			assert.Error(t, c.Close(), "second close")
			assert.Error(t, c.Start(context.Background()), "start after close")

			assert.False(t, c.Health(context.Background()).Overall)
		})
	}
}

func TestContainer_ChainProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Extraction.Provider = "chain"

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.Equal(t, "openai", c.Health(context.Background()).Components["extractor"].Message,
		"a chain with one configured provider collapses to that provider")
}

func TestContainer_StartFailsOnMissingPrompts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Extraction.PromptsPath = filepath.Join(t.TempDir(), "missing.yaml")

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)

	err = c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "external clients")
	assert.False(t, c.Ready())
}

func TestProvideSessionStore_UnknownDriver(t *testing.T) {
	_, err := ProvideSessionStore(&SessionConfig{Driver: "redis"}, zap.NewNop())
	assert.Error(t, err)
}
