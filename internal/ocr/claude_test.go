package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nameplate-cli/internal/resilience"
)

func TestClaudeOCR_DefaultModel(t *testing.T) {
	c := NewClaudeOCR("key", "")
	assert.Equal(t, defaultClaudeModel, c.model)
}

func TestClaudeOCR_ExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content []struct {
					Type   string `json:"type"`
					Text   string `json:"text"`
					Source struct {
						Type      string `json:"type"`
						MediaType string `json:"media_type"`
						Data      string `json:"data"`
					} `json:"source"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		require.Len(t, body.Messages, 1)
		require.Len(t, body.Messages[0].Content, 2)
		assert.Equal(t, "image", body.Messages[0].Content[0].Type)
		assert.Equal(t, "image/png", body.Messages[0].Content[0].Source.MediaType)
		assert.NotEmpty(t, body.Messages[0].Content[0].Source.Data)
		assert.Equal(t, "text", body.Messages[0].Content[1].Type)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [
				{"type": "text", "text": "Model Number: RX-9"},
				{"type": "text", "text": "S/N: 5521"}
			],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 120, "output_tokens": 12}
		}`)) //nolint:errcheck
	}))
	defer srv.Close()

	imgPath := writeTempFile(t, "plate.png", []byte{0x89, 'P', 'N', 'G'})

	c := NewClaudeOCR("test-key", "test-model", option.WithBaseURL(srv.URL))
	text, err := c.ExtractText(context.Background(), imgPath)
	require.NoError(t, err)
	assert.Equal(t, "Model Number: RX-9\nS/N: 5521", text)
}

func TestClaudeOCR_OverloadedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	imgPath := writeTempFile(t, "plate.png", []byte{0x89, 'P', 'N', 'G'})

	c := NewClaudeOCR("test-key", "test-model", option.WithBaseURL(srv.URL))
	_, err := c.ExtractText(context.Background(), imgPath)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), "claude transcription")
}

func TestClaudeOCR_BadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad image"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	imgPath := writeTempFile(t, "plate.png", []byte{0x89, 'P', 'N', 'G'})

	c := NewClaudeOCR("test-key", "test-model", option.WithBaseURL(srv.URL))
	_, err := c.ExtractText(context.Background(), imgPath)
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}

func TestClaudeOCR_UnsupportedImageType(t *testing.T) {
	imgPath := writeTempFile(t, "plate.tiff", []byte("II*"))
	_, err := NewClaudeOCR("key", "").ExtractText(context.Background(), imgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude cannot read")
}

func TestClaudeOCR_FileNotFound(t *testing.T) {
	_, err := NewClaudeOCR("key", "").ExtractText(context.Background(), "/nonexistent/plate.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read image")
}
