// Package imaging converts receipt uploads into images a vision model accepts.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
)

const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimePDF  = "application/pdf"
)

// ErrUnsupportedFormat is returned for data no decoder recognises
var ErrUnsupportedFormat = errors.New("unsupported receipt format")

// Normalizer renders PDFs and HEIC photos to PNG. PNG and JPEG pass through.
type Normalizer struct {
	logger *zap.Logger
}

var _ port.ImageNormalizer = (*Normalizer)(nil)

// NewNormalizer creates a new Normalizer
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize returns image bytes and their MIME type. The declared type is
// only a hint; the content is sniffed first.
func (n *Normalizer) Normalize(data []byte, mimeType string) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty upload", ErrUnsupportedFormat)
	}

	declared := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	sniffed := http.DetectContentType(data)

	switch {
	case sniffed == MimePNG || sniffed == MimeJPEG:
		return data, sniffed, nil
	case sniffed == MimePDF || declared == MimePDF:
		out, err := pdfToPNG(data)
		if err != nil {
			return nil, "", err
		}
		n.logger.Info("Rendered PDF receipt", zap.Int("bytes", len(out)))
		return out, MimePNG, nil
	case IsHEIC(data) || isHEICMimeType(declared):
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decoding HEIC image: %w", err)
		}
		out, err := encodePNG(img)
		if err != nil {
			return nil, "", err
		}
		n.logger.Info("Converted HEIC receipt", zap.Int("bytes", len(out)))
		return out, MimePNG, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, sniffed)
	}
	out, err := encodePNG(img)
	if err != nil {
		return nil, "", err
	}
	return out, MimePNG, nil
}

// pdfToPNG renders the first page; receipts are almost always one page
func pdfToPNG(data []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", ErrUnsupportedFormat)
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// IsHEIC reports whether data starts with an ftyp box of a HEIC/HEIF brand
func IsHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
