package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nameplate-cli/internal/resilience"
)

const (
	defaultClaudeModel     = "claude-haiku-4-5-20251001"
	defaultClaudeMaxTokens = 2048

	transcribePrompt = "Transcribe all text in this image exactly as printed, line by line, " +
		"keeping labels and values on the lines where they appear. " +
		"Output only the transcription, with no commentary."
)

// ClaudeOCR transcribes images with a Claude vision model. Only the raw
// transcription is used; field extraction stays with the local engine.
type ClaudeOCR struct {
	client sdk.Client
	model  string
}

// NewClaudeOCR creates a ClaudeOCR extractor. If model is empty, the default
// is used. SDK-level retries are disabled; callers wrap it in Limited.
func NewClaudeOCR(apiKey, model string, opts ...option.RequestOption) *ClaudeOCR {
	if model == "" {
		model = defaultClaudeModel
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &ClaudeOCR{
		client: sdk.NewClient(opts...),
		model:  model,
	}
}

// ExtractText sends the image with a transcription instruction and returns
// the concatenated text blocks of the reply.
func (c *ClaudeOCR) ExtractText(ctx context.Context, imagePath string) (string, error) {
	mt := mediaType(imagePath)
	switch mt {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		return "", eris.Errorf("ocr: claude cannot read %s", imagePath)
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: read image %s", imagePath)
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: defaultClaudeMaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewImageBlockBase64(mt, base64.StdEncoding.EncodeToString(data)),
				sdk.NewTextBlock(transcribePrompt),
			),
		},
	})
	if err != nil {
		wrapped := eris.Wrap(err, "ocr: claude transcription")
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return "", resilience.NewTransientError(wrapped, apiErr.StatusCode)
		}
		return "", wrapped
	}

	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type != "text" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(b.Text)
	}

	zap.L().Debug("ocr: claude transcription complete",
		zap.String("path", imagePath),
		zap.String("model", c.model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)
	return sb.String(), nil
}
