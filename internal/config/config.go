package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all backend settings, loaded from the environment with an
// optional .env file for local development.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:"127.0.0.1:8787"`
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"http://localhost:5173"`

	DBPath  string `envconfig:"DB_PATH" default:"./data/mods.db"`
	ModsDir string `envconfig:"MODS_DIR" default:"./mods"`

	WorkshopAPIURL    string        `envconfig:"WORKSHOP_API_URL" default:"https://api.steampowered.com"`
	WorkshopAPIKey    string        `envconfig:"WORKSHOP_API_KEY" default:""`
	WorkshopBatchSize int           `envconfig:"WORKSHOP_BATCH_SIZE" default:"100"`
	WorkshopDelay     time.Duration `envconfig:"WORKSHOP_BATCH_DELAY" default:"1s"`

	TranslationEndpoint string `envconfig:"TRANSLATION_ENDPOINT" default:"http://127.0.0.1:8845"`
	TranslationModel    string `envconfig:"TRANSLATION_MODEL" default:"Helsinki-NLP/opus-mt-zh-en"`
	SourceLang          string `envconfig:"SOURCE_LANG" default:"zh"`
	TargetLang          string `envconfig:"TARGET_LANG" default:"en"`

	// CacheTTLDays bounds raw cache entries; RetranslateTTLDays bounds how
	// long a mod's stored translation is trusted before the sync re-requests
	// it. They share a default but are tuned independently.
	CacheTTLDays       int `envconfig:"CACHE_TTL_DAYS" default:"30"`
	RetranslateTTLDays int `envconfig:"RETRANSLATE_TTL_DAYS" default:"30"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if strings.TrimSpace(c.ModsDir) == "" {
		return fmt.Errorf("MODS_DIR is required")
	}
	if c.WorkshopBatchSize < 1 || c.WorkshopBatchSize > 100 {
		return fmt.Errorf("WORKSHOP_BATCH_SIZE must be between 1 and 100")
	}
	if c.CacheTTLDays < 1 {
		return fmt.Errorf("CACHE_TTL_DAYS must be >= 1")
	}
	if c.RetranslateTTLDays < 1 {
		return fmt.Errorf("RETRANSLATE_TTL_DAYS must be >= 1")
	}
	return nil
}

// CacheTTL returns the raw translation cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLDays) * 24 * time.Hour
}

// RetranslateTTL returns the mod-level staleness window as a duration.
func (c *Config) RetranslateTTL() time.Duration {
	return time.Duration(c.RetranslateTTLDays) * 24 * time.Hour
}
