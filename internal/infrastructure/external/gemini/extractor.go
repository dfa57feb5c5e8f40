package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/infrastructure/external/extraction"
)

const defaultModel = "gemini-1.5-pro"

// Extractor implements port.Extractor using Google Gemini
type Extractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
	prompt string
	strict bool
	logger *zap.Logger
}

var _ port.Extractor = (*Extractor)(nil)

// NewExtractor creates a Gemini extractor. prompt is sent after the image.
func NewExtractor(ctx context.Context, apiKey, modelName, prompt string, strict bool, logger *zap.Logger) (*Extractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = defaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	return &Extractor{
		client: client,
		model:  model,
		prompt: prompt,
		strict: strict,
		logger: logger,
	}, nil
}

func (g *Extractor) Name() string {
	return "gemini"
}

// Extract expects PNG or JPEG data; other formats go through the image
// normalizer first.
func (g *Extractor) Extract(ctx context.Context, imageData []byte, mimeType string) (*expense.Record, error) {
	parts := []genai.Part{
		genai.ImageData(imageFormat(mimeType), imageData),
		genai.Text(g.prompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		g.logger.Error("Gemini API call failed", zap.Error(err))
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	rec, err := extraction.Parse(text.String(), g.strict)
	if err != nil {
		g.logger.Error("Failed to parse Gemini response",
			zap.Error(err),
			zap.String("content", text.String()))
		return nil, fmt.Errorf("parsing receipt data: %w", err)
	}
	return rec, nil
}

// Close closes the Gemini client
func (g *Extractor) Close() error {
	return g.client.Close()
}

// imageFormat maps a MIME type to the suffix genai.ImageData expects
func imageFormat(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if f, ok := strings.CutPrefix(mimeType, "image/"); ok && f != "" {
		if f == "jpg" {
			return "jpeg"
		}
		return f
	}
	return "png"
}
