package ocr

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Tesseract recognizes images with the tesseract CLI. Each call spawns its
// own process, so concurrent calls share nothing.
type Tesseract struct {
	binPath  string
	language string
}

// NewTesseract creates a Tesseract extractor. Empty arguments select
// "tesseract" and "eng".
func NewTesseract(binPath, language string) *Tesseract {
	if binPath == "" {
		binPath = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &Tesseract{binPath: binPath, language: language}
}

// ExtractText runs `tesseract <image> stdout -l <lang>` and returns stdout.
func (t *Tesseract) ExtractText(ctx context.Context, imagePath string) (string, error) {
	start := time.Now()
	text, err := runCLI(ctx, t.binPath, "tesseract", imagePath, imagePath, "stdout", "-l", t.language)
	if err != nil {
		return "", err
	}
	zap.L().Debug("ocr: tesseract complete",
		zap.String("path", imagePath),
		zap.Int("bytes", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}
