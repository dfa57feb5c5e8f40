package openai

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/akhil1198/ER/internal/infrastructure/external/extraction"
)

// ExtractionPrompt is the receipt_extraction block of prompts.yaml
type ExtractionPrompt struct {
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	System       string  `yaml:"system"`
	UserTemplate string  `yaml:"user_template"`
}

// PromptConfig is the parsed prompts file with its user template compiled
type PromptConfig struct {
	ReceiptExtraction ExtractionPrompt `yaml:"receipt_extraction"`

	user *template.Template
}

// LoadPrompts reads and compiles the prompts file at path
func LoadPrompts(path string) (*PromptConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts %s: %w", path, err)
	}

	var cfg PromptConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse prompts %s: %w", path, err)
	}

	src := cfg.ReceiptExtraction.UserTemplate
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("prompts %s: receipt_extraction.user_template is empty", path)
	}
	cfg.user, err = template.New("receipt_extraction").
		Funcs(template.FuncMap{"join": extraction.Join}).
		Option("missingkey=error").
		Parse(src)
	if err != nil {
		return nil, fmt.Errorf("prompts %s: %w", path, err)
	}
	return &cfg, nil
}

// RenderUser fills the user template with the catalog vocabulary
func (p *PromptConfig) RenderUser(data extraction.PromptData) (string, error) {
	var sb strings.Builder
	if err := p.user.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render user prompt: %w", err)
	}
	return sb.String(), nil
}
