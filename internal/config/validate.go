package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the settings a command mode depends on. Modes: "extract"
// (OCR + extraction, URL downloads), "batch" (OCR + extraction over a
// directory), "text" (extraction only), "serve" (HTTP API) and "store" (run
// history only).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "text":
	case "extract":
		problems = append(problems, c.validateOCR()...)
		if c.Fetch.MaxMB <= 0 {
			problems = append(problems, "fetch.max_mb must be > 0")
		}
	case "batch":
		problems = append(problems, c.validateOCR()...)
	case "serve":
		problems = append(problems, c.validateOCR()...)
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.MaxUploadMB <= 0 {
			problems = append(problems, "server.max_upload_mb must be > 0")
		}
	case "store":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 64 {
		problems = append(problems, fmt.Sprintf("batch.max_concurrent must be between 1 and 64, got %d", c.Batch.MaxConcurrent))
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateOCR() []string {
	var problems []string
	switch c.OCR.Provider {
	case "local", "":
	case "mistral":
		if c.OCR.MistralKey == "" {
			problems = append(problems, "ocr.mistral_api_key is required for provider mistral")
		}
	case "anthropic":
		if c.OCR.AnthropicKey == "" {
			problems = append(problems, "ocr.anthropic_api_key is required for provider anthropic")
		}
	default:
		problems = append(problems, fmt.Sprintf("ocr.provider must be local, mistral or anthropic, got %q", c.OCR.Provider))
	}
	if c.OCR.MaxAttempts < 1 {
		problems = append(problems, "ocr.max_attempts must be >= 1")
	}
	if c.OCR.RequestsPerSecond < 0 {
		problems = append(problems, "ocr.requests_per_second must be >= 0")
	}
	return problems
}
