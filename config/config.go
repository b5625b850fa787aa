package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"loanlens/domain"
)

// Config captures the settings required to boot the underwriting service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Lender  LenderConfig  `yaml:"lender"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	// RateLimit is the per-IP request budget per RateLimitWindow.
	RateLimit       int           `yaml:"rateLimit"`
	RateLimitWindow time.Duration `yaml:"rateLimitWindow"`
}

// LLMConfig configures access to the chat-completion endpoint. The credential
// is supplied via environment only and never read from the config file.
type LLMConfig struct {
	APIKey            string        `yaml:"-"`
	BaseURL           string        `yaml:"baseURL"`
	AnalysisModel     string        `yaml:"analysisModel"`
	LetterModel       string        `yaml:"letterModel"`
	Referer           string        `yaml:"referer"`
	Title             string        `yaml:"title"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requestsPerMinute"`
}

// CacheConfig controls Redis-backed caching of generated letters.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	LetterTTL time.Duration `yaml:"letterTTL"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// LenderConfig holds the institution policy defaults applied at startup.
// They can be changed at runtime through the config endpoint.
type LenderConfig struct {
	MaxDtiRatio           int    `yaml:"maxDtiRatio"`
	MinConfidence         int    `yaml:"minConfidence"`
	StrictEmploymentCheck bool   `yaml:"strictEmploymentCheck"`
	OrganizationName      string `yaml:"organizationName"`
	BranchName            string `yaml:"branchName"`
	AuthorizedSignatory   string `yaml:"authorizedSignatory"`
}

// ToDomain converts the startup lender section into the domain record.
func (c LenderConfig) ToDomain() domain.LenderConfig {
	return domain.LenderConfig{
		MaxDtiRatio:           c.MaxDtiRatio,
		MinConfidence:         c.MinConfidence,
		StrictEmploymentCheck: c.StrictEmploymentCheck,
		OrganizationName:      c.OrganizationName,
		BranchName:            c.BranchName,
		AuthorizedSignatory:   c.AuthorizedSignatory,
	}
}

// Load initialises Config from a YAML file and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("LOANLENS_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Lender.ToDomain().Validate(); err != nil {
		return nil, fmt.Errorf("lender defaults: %w", err)
	}

	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			GracefulTimeout: 10 * time.Second,
			RateLimit:       5,
			RateLimitWindow: time.Minute,
		},
		LLM: LLMConfig{
			AnalysisModel:     "google/gemini-2.5-flash",
			LetterModel:       "google/gemini-2.5-flash",
			Referer:           "https://loanlens.app",
			Title:             "LoanLens",
			Timeout:           60 * time.Second,
			RequestsPerMinute: 30,
		},
		Cache: CacheConfig{
			Enabled:   false,
			LetterTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Lender: LenderConfig{
			MaxDtiRatio:           35,
			MinConfidence:         85,
			StrictEmploymentCheck: true,
			OrganizationName:      "LoanLens Capital",
			BranchName:            "Dubai Central",
			AuthorizedSignatory:   "Elias Thorne",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.LLM.APIKey = os.Getenv("OPENROUTER_API_KEY")

	if v := os.Getenv("LOANLENS_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("OPENROUTER_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENROUTER_MODEL"); v != "" {
		cfg.LLM.AnalysisModel = v
	}
	if v := os.Getenv("LOANLENS_LETTER_MODEL"); v != "" {
		cfg.LLM.LetterModel = v
	}
	if v := os.Getenv("LOANLENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOANLENS_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("LOANLENS_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("LOANLENS_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("LOANLENS_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("LOANLENS_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
}
