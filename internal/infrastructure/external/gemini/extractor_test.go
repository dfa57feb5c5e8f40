package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"image/png":   "png",
		"IMAGE/JPEG ": "jpeg",
		"image/jpg":   "jpeg",
		"image/":      "png",
		"":            "png",
		"text/plain":  "png",
	}
	for in, want := range tests {
		assert.Equal(t, want, imageFormat(in), "input %q", in)
	}
}

func TestNewExtractor_RequiresKey(t *testing.T) {
	_, err := NewExtractor(context.Background(), "", "", "prompt", false, zap.NewNop())
	assert.Error(t, err)
}
