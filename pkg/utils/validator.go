package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMaxReceiptSize caps a single uploaded receipt
const DefaultMaxReceiptSize int64 = 10 << 20

var (
	// ErrEmptyUpload is returned for zero-byte uploads
	ErrEmptyUpload = errors.New("uploaded file is empty")

	// ErrUploadTooLarge is returned when an upload exceeds the size limit
	ErrUploadTooLarge = errors.New("uploaded file is too large")

	// ErrUnsupportedUpload is returned for extensions outside ReceiptExtensions
	ErrUnsupportedUpload = errors.New("unsupported receipt file type")
)

// ReceiptExtensions lists accepted receipt extensions and their MIME types
var ReceiptExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".pdf":  "application/pdf",
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	sessionIDRe  = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,128}$`)
)

// ValidateReceiptUpload checks name and size of an uploaded receipt and
// returns the MIME type implied by its extension. maxSize <= 0 uses
// DefaultMaxReceiptSize.
func ValidateReceiptUpload(filename string, size, maxSize int64) (string, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxReceiptSize
	}
	if size <= 0 {
		return "", ErrEmptyUpload
	}
	if size > maxSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrUploadTooLarge, size, maxSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	mime, ok := ReceiptExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedUpload, ext)
	}
	return mime, nil
}

// ValidateSessionID accepts short ids made of letters, digits, '-' and '_'
func ValidateSessionID(id string) error {
	if !sessionIDRe.MatchString(id) {
		return fmt.Errorf("invalid session id: %q", id)
	}
	return nil
}

// SanitizeString removes control characters other than tab and line breaks,
// then trims surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}
