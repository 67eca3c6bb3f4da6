package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtimport/internal/dedup"
)

// FileName is the config file inside a project directory.
const FileName = "stmtimport.yaml"

// Config represents the top-level stmtimport.yaml configuration.
type Config struct {
	Import ImportConfig `yaml:"import"`
	Dedup  DedupConfig  `yaml:"dedup"`
	AI     AIConfig     `yaml:"ai"`
	Log    LogConfig    `yaml:"log"`
	Git    GitConfig    `yaml:"git"`
}

// ImportConfig controls how statement files are picked up.
type ImportConfig struct {
	MoveProcessed bool   `yaml:"move_processed"`
	Mapping       string `yaml:"mapping,omitempty"` // forced CSV layout, e.g. "date=0,description=1,amount=2"
}

// DedupConfig tunes fuzzy duplicate detection.
type DedupConfig struct {
	Tolerance     float64 `yaml:"tolerance"`
	MinTolerance  float64 `yaml:"min_tolerance"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// AIConfig points the PDF extractor at an OpenAI-compatible endpoint.
type AIConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"`
	JSONMode  bool          `yaml:"json_mode"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a stmtimport.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDir loads <dir>/stmtimport.yaml, falling back to defaults when the
// file does not exist.
func LoadDir(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			MoveProcessed: true,
		},
		Dedup: DedupConfig{
			Tolerance:     0.05,
			MinTolerance:  1.00,
			MinSimilarity: 0.6,
		},
		AI: AIConfig{
			Enabled:   false,
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
			JSONMode:  true,
			CacheTTL:  24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Statement Importer",
			AuthorEmail: "import@stmtimport.local",
		},
	}
}

// Validate rejects settings the pipeline cannot use.
func (c *Config) Validate() error {
	d := c.Dedup
	if d.Tolerance < 0 || d.MinTolerance < 0 {
		return fmt.Errorf("dedup tolerances must not be negative")
	}
	if d.MinSimilarity < 0 || d.MinSimilarity > 1 {
		return fmt.Errorf("dedup min_similarity must be between 0 and 1, got %v", d.MinSimilarity)
	}
	return nil
}

// DedupOptions converts the dedup section for the deduplicator.
func (c *Config) DedupOptions() dedup.Options {
	return dedup.Options{
		Tolerance:     decimal.NewFromFloat(c.Dedup.Tolerance),
		MinTolerance:  decimal.NewFromFloat(c.Dedup.MinTolerance),
		MinSimilarity: c.Dedup.MinSimilarity,
	}
}

// APIKey returns the AI API key from the environment variable named by
// ai.api_key_env. A .env file in dir, if present, is loaded first; variables
// already set in the environment win.
func (c *Config) APIKey(dir string) (string, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("loading .env: %w", err)
	}
	if c.AI.APIKeyEnv == "" {
		return "", errors.New("ai.api_key_env is not set")
	}
	key := os.Getenv(c.AI.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is empty", c.AI.APIKeyEnv)
	}
	return key, nil
}
