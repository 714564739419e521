package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Fields FieldsConfig `yaml:"fields" mapstructure:"fields"`
	OCR    OCRConfig    `yaml:"ocr" mapstructure:"ocr"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// FieldsConfig points at the field configuration file. An empty path selects
// the built-in nameplate fields.
type FieldsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OCRConfig configures text recognition for images and PDFs.
type OCRConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	TesseractPath     string  `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	Language          string  `yaml:"language" mapstructure:"language"`
	PdfToTextPath     string  `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey        string  `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel      string  `yaml:"mistral_model" mapstructure:"mistral_model"`
	AnthropicKey      string  `yaml:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	AnthropicModel    string  `yaml:"anthropic_model" mapstructure:"anthropic_model"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	MaxAttempts       int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BreakerThreshold  int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldown   int     `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// FetchConfig configures downloading of http(s) inputs before OCR.
type FetchConfig struct {
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxMB          int64   `yaml:"max_mb" mapstructure:"max_mb"`
	MaxAttempts    int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	RequestsPerSec float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxUploadMB    int64    `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// BatchConfig configures directory processing.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NAMEPLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fields.path", "")
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.mistral_api_key", "")
	v.SetDefault("ocr.mistral_model", "pixtral-large-latest")
	v.SetDefault("ocr.anthropic_api_key", "")
	v.SetDefault("ocr.anthropic_model", "claude-haiku-4-5-20251001")
	v.SetDefault("ocr.requests_per_second", 2.0)
	v.SetDefault("ocr.max_attempts", 3)
	v.SetDefault("ocr.timeout_secs", 120)
	v.SetDefault("ocr.breaker_threshold", 5)
	v.SetDefault("ocr.breaker_cooldown_secs", 30)
	v.SetDefault("fetch.user_agent", "nameplate-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_mb", 20)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.requests_per_second", 5.0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "nameplate.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("batch.max_concurrent", 4)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
