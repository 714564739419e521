// Package ocr turns input files into raw text for the extraction engine.
// Recognition itself is delegated: to local CLI tools (tesseract,
// pdftotext) or to remote APIs (Mistral OCR, Claude vision).
package ocr

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nameplate-cli/internal/config"
	"github.com/sells-group/nameplate-cli/internal/resilience"
)

// Extractor extracts raw text from a file.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Kind classifies an input file by extension.
type Kind int

const (
	KindUnsupported Kind = iota
	KindText
	KindDocument
	KindImage
)

var imageMediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// KindOf returns the input kind for path.
func KindOf(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".txt":
		return KindText
	case ext == ".pdf":
		return KindDocument
	case imageMediaTypes[ext] != "":
		return KindImage
	default:
		return KindUnsupported
	}
}

// Supported reports whether path has an extension the router can handle.
func Supported(path string) bool {
	return KindOf(path) != KindUnsupported
}

// mediaType returns the MIME type for an image path, or "".
func mediaType(path string) string {
	return imageMediaTypes[strings.ToLower(filepath.Ext(path))]
}

// Router dispatches each file to the extractor for its kind. Every call runs
// under its own timeout; the underlying process or request is released when
// the call returns.
type Router struct {
	Text     Extractor
	Document Extractor
	Image    Extractor
	Timeout  time.Duration
}

// ExtractText routes path by extension.
func (r *Router) ExtractText(ctx context.Context, path string) (string, error) {
	var next Extractor
	switch KindOf(path) {
	case KindText:
		next = r.Text
	case KindDocument:
		next = r.Document
	case KindImage:
		next = r.Image
	default:
		return "", eris.Errorf("ocr: unsupported file type %q", filepath.Ext(path))
	}
	if next == nil {
		return "", eris.Errorf("ocr: no extractor configured for %s", path)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	return next.ExtractText(ctx, path)
}

// NewExtractor builds the Router for the configured provider.
//
//	local:     tesseract for images, pdftotext for PDFs
//	mistral:   Mistral OCR for images and PDFs
//	anthropic: Claude vision for images, pdftotext for PDFs
//
// Plain .txt files are always read directly.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	r := &Router{
		Text:    NewPlainText(),
		Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}

	switch cfg.Provider {
	case "local", "":
		r.Image = NewTesseract(cfg.TesseractPath, cfg.Language)
		r.Document = NewPdfToText(cfg.PdfToTextPath)
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		m := NewLimited("mistral", NewMistralOCR(cfg.MistralKey, cfg.MistralModel), cfg.RequestsPerSecond, cfg.MaxAttempts).
			WithBreaker(newBreaker("mistral", cfg))
		r.Image = m
		r.Document = m
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, eris.New("ocr: anthropic provider requires anthropic_api_key")
		}
		r.Image = NewLimited("anthropic", NewClaudeOCR(cfg.AnthropicKey, cfg.AnthropicModel), cfg.RequestsPerSecond, cfg.MaxAttempts).
			WithBreaker(newBreaker("anthropic", cfg))
		r.Document = NewPdfToText(cfg.PdfToTextPath)
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}

	return r, nil
}

func newBreaker(name string, cfg config.OCRConfig) *resilience.Breaker {
	return resilience.NewBreaker(name, cfg.BreakerThreshold, time.Duration(cfg.BreakerCooldown)*time.Second)
}
