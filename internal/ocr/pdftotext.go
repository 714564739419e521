package ocr

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
)

// PdfToText reads the text layer of PDFs using the pdftotext CLI tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// ExtractText runs pdftotext -layout on the given PDF and returns stdout.
// Layout mode keeps label and value on the same line where the PDF does.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	return runCLI(ctx, p.binPath, "pdftotext", pdfPath, "-layout", pdfPath, "-")
}

// runCLI runs an OCR command and returns its stdout. The process is bound to
// ctx and always reaped before returning.
func runCLI(ctx context.Context, bin, tool, path string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ocr: %s failed for %s: %s", tool, path, stderr.String())
	}

	return stdout.String(), nil
}
