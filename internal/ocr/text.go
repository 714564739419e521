package ocr

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// PlainText reads text files that already hold OCR output.
type PlainText struct{}

// NewPlainText creates a PlainText extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// ExtractText reads path and decodes it with DecodeText.
func (PlainText) ExtractText(_ context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	text, err := DecodeText(f)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: read %s", path)
	}
	return text, nil
}

// DecodeText reads r as UTF-8, honoring a UTF-8 or UTF-16 byte order mark.
// Invalid UTF-8 sequences become U+FFFD.
func DecodeText(r io.Reader) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", eris.Wrap(err, "ocr: decode text")
	}
	return string(data), nil
}
