// Package config loads the settings shared by every function in this module.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/pelletier/go-toml/v2"
)

// LLM providers.
const (
	ProviderVertex    = "vertex"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Question store backends.
const (
	BackendFirestore = "firestore"
	BackendBadger    = "badger"
)

// Config is the root configuration. Every field can be set from a TOML file
// and most can be overridden by an environment variable.
type Config struct {
	ProjectID string        `toml:"project_id"`
	Region    string        `toml:"region"`
	LLM       LLMConfig     `toml:"llm"`
	OCR       OCRConfig     `toml:"ocr"`
	Render    RenderConfig  `toml:"render"`
	Store     StoreConfig   `toml:"store"`
	Ingest    IngestConfig  `toml:"ingest"`
	Upload    UploadConfig  `toml:"upload"`
	Logging   LoggingConfig `toml:"logging"`
}

type LLMConfig struct {
	Provider string `toml:"provider"` // "vertex", "gemini" or "anthropic"
	Model    string `toml:"model"`    // empty selects the provider default
	Timeout  string `toml:"timeout"`  // e.g. "120s"
	// RateLimit is the allowed completions per second. Zero disables limiting.
	RateLimit       float64 `toml:"rate_limit"`
	MaxTokens       int     `toml:"max_tokens"`
	GoogleAPIKey    string  `toml:"google_api_key"`
	AnthropicAPIKey string  `toml:"anthropic_api_key"`
}

type OCRConfig struct {
	Language    string `toml:"language"`
	Concurrency int    `toml:"concurrency"` // 1 keeps strict page order
	PageSegMode int    `toml:"page_seg_mode"`
	EngineMode  int    `toml:"engine_mode"`
	// Whitelist restricts recognised characters. Empty allows every character.
	Whitelist string `toml:"whitelist"`
}

type RenderConfig struct {
	Scale        float64 `toml:"scale"`
	MaxDimension int     `toml:"max_dimension"` // pixels, 0 = no cap
	StagingDir   string  `toml:"staging_dir"`   // empty uses os.TempDir()
}

type StoreConfig struct {
	Backend    string `toml:"backend"` // "firestore" or "badger"
	Collection string `toml:"collection"`
	BadgerPath string `toml:"badger_path"`
}

type IngestConfig struct {
	ResultsBucket         string `toml:"results_bucket"`
	ExtractionsCollection string `toml:"extractions_collection"`
}

type UploadConfig struct {
	MaxMB int `toml:"max_mb"`
}

type LoggingConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// NewDefaultConfig returns the configuration used when no file is present.
func NewDefaultConfig() *Config {
	return &Config{
		Region: "us-central1",
		LLM: LLMConfig{
			Provider:  ProviderVertex,
			Timeout:   "120s",
			MaxTokens: 8192,
		},
		OCR: OCRConfig{
			Language:    "eng",
			Concurrency: 1,
			PageSegMode: 3, // fully automatic, no OSD
			EngineMode:  1, // LSTM only
		},
		Render: RenderConfig{
			Scale:        2.0,
			MaxDimension: 0,
		},
		Store: StoreConfig{
			Backend:    BackendFirestore,
			Collection: "questions",
			BadgerPath: "./data/questions",
		},
		Ingest: IngestConfig{
			ExtractionsCollection: "extractions",
		},
		Upload:  UploadConfig{MaxMB: 10},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Info("Config file not found, using defaults.", "path", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by CONFIG_FILE, if any.
func LoadFromEnv() (*Config, error) {
	return Load(gcp.GetEnv("CONFIG_FILE", ""))
}

func applyEnvOverrides(cfg *Config) {
	cfg.ProjectID = gcp.GetEnv("PROJECT_ID", cfg.ProjectID)
	cfg.Region = gcp.GetEnv("VERTEX_AI_REGION", cfg.Region)

	cfg.LLM.Provider = gcp.GetEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.Model = gcp.GetEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.Timeout = gcp.GetEnv("LLM_TIMEOUT", cfg.LLM.Timeout)
	cfg.LLM.GoogleAPIKey = gcp.GetEnv("GOOGLE_API_KEY", cfg.LLM.GoogleAPIKey)
	cfg.LLM.AnthropicAPIKey = gcp.GetEnv("ANTHROPIC_API_KEY", cfg.LLM.AnthropicAPIKey)
	envFloat("LLM_RATE_LIMIT", &cfg.LLM.RateLimit)

	cfg.OCR.Language = gcp.GetEnv("OCR_LANGUAGE", cfg.OCR.Language)
	cfg.OCR.Whitelist = gcp.GetEnv("OCR_WHITELIST", cfg.OCR.Whitelist)
	envInt("OCR_CONCURRENCY", &cfg.OCR.Concurrency)
	envInt("OCR_PAGE_SEG_MODE", &cfg.OCR.PageSegMode)
	envInt("OCR_ENGINE_MODE", &cfg.OCR.EngineMode)

	envFloat("RENDER_SCALE", &cfg.Render.Scale)
	cfg.Render.StagingDir = gcp.GetEnv("STAGING_DIR", cfg.Render.StagingDir)

	cfg.Store.Backend = gcp.GetEnv("STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.Collection = gcp.GetEnv("FIRESTORE_COLLECTION", cfg.Store.Collection)
	cfg.Store.BadgerPath = gcp.GetEnv("BADGER_PATH", cfg.Store.BadgerPath)

	cfg.Ingest.ResultsBucket = gcp.GetEnv("RESULTS_BUCKET", cfg.Ingest.ResultsBucket)
	cfg.Ingest.ExtractionsCollection = gcp.GetEnv("EXTRACTIONS_COLLECTION", cfg.Ingest.ExtractionsCollection)

	envInt("MAX_UPLOAD_MB", &cfg.Upload.MaxMB)
	cfg.Logging.Level = gcp.GetEnv("LOG_LEVEL", cfg.Logging.Level)
}

func envInt(key string, dst *int) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring invalid integer environment variable.", "key", key, "value", raw)
		return
	}
	*dst = v
}

func envFloat(key string, dst *float64) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("Ignoring invalid number environment variable.", "key", key, "value", raw)
		return
	}
	*dst = v
}

// Validate rejects settings the functions cannot run with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderVertex, ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if d, err := time.ParseDuration(c.LLM.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("llm timeout must be a positive duration, got %q", c.LLM.Timeout)
	}
	if c.LLM.RateLimit < 0 {
		return fmt.Errorf("llm rate limit must not be negative, got %v", c.LLM.RateLimit)
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render scale must be positive, got %v", c.Render.Scale)
	}
	if c.Render.MaxDimension < 0 {
		return fmt.Errorf("render max dimension must not be negative, got %d", c.Render.MaxDimension)
	}
	if c.OCR.Concurrency < 1 {
		return fmt.Errorf("ocr concurrency must be at least 1, got %d", c.OCR.Concurrency)
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return fmt.Errorf("ocr page_seg_mode must be between 0 and 13, got %d", c.OCR.PageSegMode)
	}
	if c.OCR.EngineMode < 0 || c.OCR.EngineMode > 3 {
		return fmt.Errorf("ocr engine_mode must be between 0 and 3, got %d", c.OCR.EngineMode)
	}
	switch c.Store.Backend {
	case BackendFirestore, BackendBadger:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Upload.MaxMB <= 0 {
		return fmt.Errorf("upload max_mb must be positive, got %d", c.Upload.MaxMB)
	}
	return nil
}

// LLMTimeout returns the parsed completion deadline. Validate guarantees it
// parses.
func (c *Config) LLMTimeout() time.Duration {
	d, _ := time.ParseDuration(c.LLM.Timeout)
	return d
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxMB) << 20
}

// SlogLevel maps the configured level name to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
