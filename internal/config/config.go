// Package config loads mindvault settings from a YAML file, MINDVAULT_*
// environment variables and a .env file, and resolves the Google API key.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "mindvault.yaml"

// EnvPrefix prefixes every environment override, e.g. MINDVAULT_STORE_BACKEND.
const EnvPrefix = "MINDVAULT"

// ErrMissingAPIKey is returned when a hosted provider is configured but no
// Google API key could be found.
var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY not found in secret files, config secrets, or environment")

type Config struct {
	DataDir     string        `yaml:"data_dir" envconfig:"DATA_DIR"`
	JournalPath string        `yaml:"journal_path" envconfig:"JOURNAL_PATH"`
	Store       StoreConfig   `yaml:"store" envconfig:"STORE"`
	LLM         LLMConfig     `yaml:"llm" envconfig:"LLM"`
	Embed       EmbedConfig   `yaml:"embed" envconfig:"EMBED"`
	Session     SessionConfig `yaml:"session" envconfig:"SESSION"`
	Server      ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Log         LogConfig     `yaml:"log" envconfig:"LOG"`
	Secrets     SecretsConfig `yaml:"secrets" ignored:"true"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" envconfig:"BACKEND"` // sqlite | flat
	Path    string `yaml:"path" envconfig:"PATH"`
}

type LLMConfig struct {
	Provider string `yaml:"provider" envconfig:"PROVIDER"` // gemini | openai | ollama | deepseek | ark
	Model    string `yaml:"model" envconfig:"MODEL"`
	BaseURL  string `yaml:"base_url" envconfig:"BASE_URL"`
	APIKey   string `yaml:"api_key" envconfig:"API_KEY"`
}

type EmbedConfig struct {
	Provider string `yaml:"provider" envconfig:"PROVIDER"` // gemini | ollama
	Model    string `yaml:"model" envconfig:"MODEL"`
	URL      string `yaml:"url" envconfig:"URL"`
}

type SessionConfig struct {
	Backend  string        `yaml:"backend" envconfig:"BACKEND"` // memory | redis
	RedisURL string        `yaml:"redis_url" envconfig:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" envconfig:"TTL"`
}

type ServerConfig struct {
	Addr      string  `yaml:"addr" envconfig:"ADDR"`
	RateLimit float64 `yaml:"rate_limit" envconfig:"RATE_LIMIT"` // chat requests per second per client, 0 disables
}

type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"` // json | console
}

// SecretsConfig is the application secret store section of the config file.
type SecretsConfig struct {
	GoogleAPIKey string `yaml:"google_api_key"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Store:   StoreConfig{Backend: "sqlite"},
		LLM:     LLMConfig{Provider: "gemini", Model: "gemini-1.5-flash"},
		Embed:   EmbedConfig{Provider: "gemini"},
		Session: SessionConfig{Backend: "memory", TTL: 24 * time.Hour},
		Server:  ServerConfig{Addr: ":8501", RateLimit: 2},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

func defaultDataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "mindvault")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mindvault"
	}
	return filepath.Join(home, ".mindvault")
}

// Load reads .env, the YAML file at path and the environment, in that order
// of increasing precedence. An empty path reads DefaultPath if it exists.
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// Finalize fills derived paths, resolves the Google API key and validates the
// result. Call it after flags have been applied.
func (c *Config) Finalize() error {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.JournalPath == "" {
		c.JournalPath = filepath.Join(c.DataDir, "journal.txt")
	}
	if c.Store.Path == "" {
		switch c.Store.Backend {
		case "flat":
			c.Store.Path = filepath.Join(c.DataDir, "index.jsonl")
		default:
			c.Store.Path = filepath.Join(c.DataDir, "mindvault.db")
		}
	}

	switch c.Store.Backend {
	case "", "sqlite", "flat":
	default:
		return fmt.Errorf("store.backend must be sqlite or flat, got %q", c.Store.Backend)
	}
	switch c.Session.Backend {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("session.backend must be memory or redis, got %q", c.Session.Backend)
	}
	if c.Session.Backend == "redis" && c.Session.RedisURL == "" {
		return errors.New("session.redis_url is required for the redis session backend")
	}

	c.Secrets.GoogleAPIKey = ResolveAPIKey(c.Secrets.GoogleAPIKey)
	if c.NeedsGoogleKey() && c.Secrets.GoogleAPIKey == "" {
		return ErrMissingAPIKey
	}
	if isGemini(c.LLM.Provider) && c.LLM.APIKey == "" {
		c.LLM.APIKey = c.Secrets.GoogleAPIKey
	}
	return nil
}

// NeedsGoogleKey reports whether generation or embedding uses Gemini.
func (c *Config) NeedsGoogleKey() bool {
	return isGemini(c.LLM.Provider) || isGemini(c.Embed.Provider)
}

func isGemini(provider string) bool {
	return provider == "" || strings.EqualFold(provider, "gemini")
}
