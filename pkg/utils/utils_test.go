package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReceiptUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantMime string
		wantErr  error
	}{
		{"png", "receipt.png", 100, "image/png", nil},
		{"upper case jpeg", "IMG_001.JPEG", 100, "image/jpeg", nil},
		{"heic", "photo.heic", 100, "image/heic", nil},
		{"pdf", "invoice.pdf", 100, "application/pdf", nil},
		{"empty", "receipt.png", 0, "", ErrEmptyUpload},
		{"too large", "receipt.png", DefaultMaxReceiptSize + 1, "", ErrUploadTooLarge},
		{"unsupported", "notes.txt", 100, "", ErrUnsupportedUpload},
		{"no extension", "receipt", 100, "", ErrUnsupportedUpload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := ValidateReceiptUpload(tt.filename, tt.size, 0)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, mime)
		})
	}
}

func TestValidateReceiptUpload_CustomLimit(t *testing.T) {
	_, err := ValidateReceiptUpload("a.png", 11, 10)
	assert.ErrorIs(t, err, ErrUploadTooLarge)

	_, err = ValidateReceiptUpload("a.png", 10, 10)
	assert.NoError(t, err)
}

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, ValidateSessionID("abc-123_DEF"))
	assert.Error(t, ValidateSessionID(""))
	assert.Error(t, ValidateSessionID("../etc"))
	assert.Error(t, ValidateSessionID(strings.Repeat("a", 129)))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeString("  hello\x00 world\x1f "))
	assert.Equal(t, "", SanitizeString("\n\t"))
	assert.Equal(t, "Report Name: Q1\r\nPurpose:\tvisit", SanitizeString("Report Name: Q1\r\nPurpose:\tvisit\x0b"))
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	logger, err := NewLogger(LoggerConfig{Level: "debug", OutputPath: path, Format: "json", Service: "er"})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"service":"er"`)
}

func TestNewLogger_BadLevelFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "loud", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(0))
}
