package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/infrastructure/external/extraction"
)

// Extractor implements port.Extractor using a vision chat model
type Extractor struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	system      string
	user        string
	strict      bool
	logger      *zap.Logger
}

var _ port.Extractor = (*Extractor)(nil)

// ExtractorConfig configures an Extractor
type ExtractorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	SchemaCheck bool
}

// NewExtractor renders the user prompt once and creates an Extractor
func NewExtractor(cfg ExtractorConfig, prompts *PromptConfig, data extraction.PromptData, logger *zap.Logger) (*Extractor, error) {
	user, err := prompts.RenderUser(data)
	if err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxTokens := prompts.ReceiptExtraction.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &Extractor{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: prompts.ReceiptExtraction.Temperature,
		maxTokens:   maxTokens,
		system:      prompts.ReceiptExtraction.System,
		user:        user,
		strict:      cfg.SchemaCheck,
		logger:      logger,
	}, nil
}

func (e *Extractor) Name() string {
	return "openai"
}

// Extract reads one receipt image and returns the fields it could find
func (e *Extractor) Extract(ctx context.Context, imageData []byte, mimeType string) (*expense.Record, error) {
	e.logger.Info("Extracting receipt with vision model",
		zap.String("model", e.model),
		zap.String("mime_type", mimeType),
		zap.Int("bytes", len(imageData)))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: e.system,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: e.user,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData)),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	rec, err := extraction.Parse(content, e.strict)
	if err != nil {
		e.logger.Error("Failed to parse OpenAI response",
			zap.Error(err),
			zap.String("content", content))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	e.logger.Info("Receipt extracted",
		zap.String("vendor", rec.Vendor),
		zap.String("expense_type", rec.ExpenseType),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return rec, nil
}
