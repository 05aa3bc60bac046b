package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Tournament TournamentConfig `yaml:"tournament"`
	LLM        LLMConfig        `yaml:"llm"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	BasePath       string        `yaml:"base_path"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`

	// TrustProxy takes the client IP from X-Forwarded-For/X-Real-IP. Only enable behind a proxy
	// that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

// DatabaseConfig selects the database/sql driver, "sqlite3" or "pgx".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type TournamentConfig struct {
	DefaultTotalPrompts int `yaml:"default_total_prompts"`
	MaxTotalPrompts     int `yaml:"max_total_prompts"`
}

type LLMConfig struct {
	APIKey          string        `yaml:"api_key"`
	Model           string        `yaml:"model"`
	GenerationModel string        `yaml:"generation_model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			BasePath:       "/api",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			RateLimitRPS:   10,
			RateLimitBurst: 20,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "prompt_tournament.db",
		},
		Tournament: TournamentConfig{
			DefaultTotalPrompts: 8,
			MaxTotalPrompts:     64,
		},
		LLM: LLMConfig{
			Model:           "claude-haiku-4-5-20251001",
			GenerationModel: "claude-haiku-4-5-20251001",
			MaxTokens:       1000,
			Timeout:         30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads the YAML file on top of the defaults and then applies environment overrides.
// A missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Server.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("BASE_PATH"); v != "" {
		cfg.Server.BasePath = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Server.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitBurst = n
		}
	}
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		cfg.Server.TrustProxy = v == "true"
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DEFAULT_TOTAL_PROMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tournament.DefaultTotalPrompts = n
		}
	}
	if v := os.Getenv("MAX_TOTAL_PROMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tournament.MaxTotalPrompts = n
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_GENERATION_MODEL"); v != "" {
		cfg.LLM.GenerationModel = v
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true"
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Tournament.MaxTotalPrompts < 2 {
		return fmt.Errorf("tournament.max_total_prompts must be at least 2, got %d", c.Tournament.MaxTotalPrompts)
	}
	if c.Tournament.DefaultTotalPrompts < 2 || c.Tournament.DefaultTotalPrompts > c.Tournament.MaxTotalPrompts {
		return fmt.Errorf("tournament.default_total_prompts must be between 2 and %d, got %d",
			c.Tournament.MaxTotalPrompts, c.Tournament.DefaultTotalPrompts)
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path must start with /, got %q", c.Server.BasePath)
	}
	return nil
}

// NewLogger builds the process logger from the logging section.
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
