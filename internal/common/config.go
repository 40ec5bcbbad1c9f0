package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" yaml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server" yaml:"server"`
	Storage     StorageConfig   `toml:"storage" yaml:"storage"`
	Logging     LoggingConfig   `toml:"logging" yaml:"logging"`
	LLM         LLMConfig       `toml:"llm" yaml:"llm"`
	Finnhub     FinnhubConfig   `toml:"finnhub" yaml:"finnhub"`
	Alpaca      AlpacaConfig    `toml:"alpaca" yaml:"alpaca"`
	Collector   CollectorConfig `toml:"collector" yaml:"collector"`
	Retrieval   RetrievalConfig `toml:"retrieval" yaml:"retrieval"`
	Pipeline    PipelineConfig  `toml:"pipeline" yaml:"pipeline"`
	Scheduler   SchedulerConfig `toml:"scheduler" yaml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host" yaml:"host"`
	// AllowedOrigin restricts websocket upgrades; empty allows all (development)
	AllowedOrigin string `toml:"allowed_origin" yaml:"allowed_origin"`
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite" yaml:"sqlite"`
	Badger BadgerConfig `toml:"badger" yaml:"badger"`
}

// SQLiteConfig represents the relational/vector store configuration
type SQLiteConfig struct {
	Path               string `toml:"path" yaml:"path" validate:"required"`
	EmbeddingDimension int    `toml:"embedding_dimension" yaml:"embedding_dimension" validate:"gt=0"`
	BusyTimeout        string `toml:"busy_timeout" yaml:"busy_timeout"`
}

// BadgerConfig represents the audit-trail store configuration
type BadgerConfig struct {
	Path           string `toml:"path" yaml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup" yaml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" yaml:"level"`   // "debug", "info", "warn", "error"
	Output []string `toml:"output" yaml:"output"` // "stdout", "file"
}

// LLMProvider identifies which cloud LLM backs chat and streaming
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig configures the language model services. Embeddings always come
// from Gemini; the chat/writer provider is selectable.
type LLMConfig struct {
	Provider        LLMProvider `toml:"provider" yaml:"provider" validate:"oneof=gemini claude"`
	GoogleAPIKey    string      `toml:"google_api_key" yaml:"google_api_key"`
	AnthropicAPIKey string      `toml:"anthropic_api_key" yaml:"anthropic_api_key"`
	ChatModelName   string      `toml:"chat_model" yaml:"chat_model"`
	EmbedModelName  string      `toml:"embed_model" yaml:"embed_model"`
	EmbedDimension  int         `toml:"embed_dimension" yaml:"embed_dimension" validate:"gt=0"`
	Temperature     float32     `toml:"temperature" yaml:"temperature"`
	MaxTokens       int         `toml:"max_tokens" yaml:"max_tokens"`
	Timeout         string      `toml:"timeout" yaml:"timeout"`
	Audit           AuditConfig `toml:"audit" yaml:"audit"`
}

// AuditConfig controls the persisted LLM audit trail
type AuditConfig struct {
	Enabled    bool `toml:"enabled" yaml:"enabled"`
	LogQueries bool `toml:"log_queries" yaml:"log_queries"` // include query text in audit rows
}

// FinnhubConfig configures the market-data provider client
type FinnhubConfig struct {
	APIKey    string `toml:"api_key" yaml:"api_key"`
	BaseURL   string `toml:"base_url" yaml:"base_url"`
	RateLimit int    `toml:"rate_limit" yaml:"rate_limit"` // requests per second
}

// AlpacaConfig configures the news provider client
type AlpacaConfig struct {
	APIKey    string `toml:"api_key" yaml:"api_key"`
	APISecret string `toml:"api_secret" yaml:"api_secret"`
	BaseURL   string `toml:"base_url" yaml:"base_url"`
	RateLimit int    `toml:"rate_limit" yaml:"rate_limit"`
}

// CollectorConfig controls freshness windows and fetch bounds
type CollectorConfig struct {
	ProfileMaxAge   time.Duration `toml:"profile_max_age" yaml:"profile_max_age"`
	NewsMaxAge      time.Duration `toml:"news_max_age" yaml:"news_max_age"`
	NewsLookback    time.Duration `toml:"news_lookback" yaml:"news_lookback"`
	NewsFetchLimit  int           `toml:"news_fetch_limit" yaml:"news_fetch_limit"`
	ChunkSize       int           `toml:"chunk_size" yaml:"chunk_size"`
	MinChunkChars   int           `toml:"min_chunk_chars" yaml:"min_chunk_chars"`
	InsiderLookback time.Duration `toml:"insider_lookback" yaml:"insider_lookback"`
}

// RetrievalConfig controls similarity search behavior
type RetrievalConfig struct {
	MaxCandidates int `toml:"max_candidates" yaml:"max_candidates" validate:"gt=0"`
	// SimilarityFloor is the normalized minimum cosine similarity (0..1,
	// higher = more similar). Candidates below the floor are truncated.
	SimilarityFloor float64 `toml:"similarity_floor" yaml:"similarity_floor" validate:"gte=0,lte=1"`
	MaxArticles     int     `toml:"max_articles" yaml:"max_articles"` // cap for whole-document mode
	MaxSnippets     int     `toml:"max_snippets" yaml:"max_snippets"` // cap for snippet mode
}

// PipelineConfig controls the supervisor refine loop
type PipelineConfig struct {
	MaxIterations      int `toml:"max_iterations" yaml:"max_iterations" validate:"gte=0"`
	ResearchCallBudget int `toml:"research_call_budget" yaml:"research_call_budget" validate:"gt=0"`
}

// SchedulerConfig controls the background corpus refresh
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled" yaml:"enabled"`
	Schedule string `toml:"schedule" yaml:"schedule"` // cron format
}

// NewDefaultConfig returns configuration defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:               "./data/auspex.db",
				EmbeddingDimension: 256,
				BusyTimeout:        "5s",
			},
			Badger: BadgerConfig{
				Path: "./data/audit",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		LLM: LLMConfig{
			Provider:       LLMProviderGemini,
			ChatModelName:  "gemini-2.0-flash",
			EmbedModelName: "gemini-embedding-001",
			EmbedDimension: 256,
			Temperature:    0.7,
			MaxTokens:      8192,
			Timeout:        "5m",
			Audit: AuditConfig{
				Enabled: true,
			},
		},
		Finnhub: FinnhubConfig{
			BaseURL:   "https://finnhub.io/api/v1",
			RateLimit: 10,
		},
		Alpaca: AlpacaConfig{
			BaseURL:   "https://data.alpaca.markets/v1beta1",
			RateLimit: 5,
		},
		Collector: CollectorConfig{
			ProfileMaxAge:   10 * 24 * time.Hour,
			NewsMaxAge:      24 * time.Hour,
			NewsLookback:    3 * 24 * time.Hour,
			NewsFetchLimit:  50,
			ChunkSize:       1500,
			MinChunkChars:   24,
			InsiderLookback: 90 * 24 * time.Hour,
		},
		Retrieval: RetrievalConfig{
			MaxCandidates:   20,
			SimilarityFloor: 0.4,
			MaxArticles:     5,
			MaxSnippets:     5,
		},
		Pipeline: PipelineConfig{
			MaxIterations:      1,
			ResearchCallBudget: 3,
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: "0 */6 * * *",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files, later files
// overriding earlier ones. TOML and YAML are selected by file extension.
// Priority: env > last file > ... > first file > defaults.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, config)
		default:
			err = toml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.LLM.EmbedDimension != c.Storage.SQLite.EmbeddingDimension {
		return fmt.Errorf("llm.embed_dimension (%d) must match storage.sqlite.embedding_dimension (%d)",
			c.LLM.EmbedDimension, c.Storage.SQLite.EmbeddingDimension)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("AUSPEX_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("AUSPEX_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("AUSPEX_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if origin := os.Getenv("AUSPEX_ALLOWED_ORIGIN"); origin != "" {
		config.Server.AllowedOrigin = origin
	}

	// Storage configuration
	if path := os.Getenv("AUSPEX_SQLITE_PATH"); path != "" {
		config.Storage.SQLite.Path = path
	}
	if path := os.Getenv("AUSPEX_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	// Logging configuration
	if level := os.Getenv("AUSPEX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("AUSPEX_LOG_OUTPUT"); output != "" {
		config.Logging.Output = strings.Split(output, ",")
	}

	// Provider credentials
	if key := os.Getenv("AUSPEX_GOOGLE_API_KEY"); key != "" {
		config.LLM.GoogleAPIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		config.LLM.GoogleAPIKey = key
	}
	if key := os.Getenv("AUSPEX_ANTHROPIC_API_KEY"); key != "" {
		config.LLM.AnthropicAPIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.AnthropicAPIKey = key
	}
	if key := os.Getenv("AUSPEX_FINNHUB_API_KEY"); key != "" {
		config.Finnhub.APIKey = key
	}
	if key := os.Getenv("AUSPEX_ALPACA_API_KEY"); key != "" {
		config.Alpaca.APIKey = key
	}
	if secret := os.Getenv("AUSPEX_ALPACA_API_SECRET"); secret != "" {
		config.Alpaca.APISecret = secret
	}

	// LLM configuration
	if provider := os.Getenv("AUSPEX_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(provider)
	}
	if model := os.Getenv("AUSPEX_LLM_CHAT_MODEL"); model != "" {
		config.LLM.ChatModelName = model
	}
}
