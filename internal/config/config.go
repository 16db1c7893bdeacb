package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Transport  TransportConfig  `yaml:"transport"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	DB         DBConfig         `yaml:"db"`
	Redis      RedisConfig      `yaml:"redis"`
	Log        LogConfig        `yaml:"log"`
	Generation GenerationConfig `yaml:"generation"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the server is reached: "http" or "stdio".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// AuthConfig protects the HTTP endpoints with a static bearer token.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

// StorageConfig selects the persistence backend: "sqlite" or "redis".
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, sends logs to a size-bounded file instead of the console.
	Path     string `yaml:"path"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type GenerationConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	ChatModel   string        `yaml:"chat_model"`
	CodeModel   string        `yaml:"code_model"`
	Timeout     time.Duration `yaml:"timeout"`
	CodeTimeout time.Duration `yaml:"code_timeout"`
	Language    string        `yaml:"language"`
}

type LifecycleConfig struct {
	// SummarizeEvery: 1 summarizes every Inception turn, N every Nth, 0 never.
	SummarizeEvery int `yaml:"summarize_every"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TracingConfig struct {
	// Exporter is "none", "stdout" or "otlp".
	Exporter     string  `yaml:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	OTLPInsecure bool    `yaml:"otlp_insecure"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{Mode: "http"},
		Storage:   StorageConfig{Backend: "sqlite"},
		DB: DBConfig{
			Path: "codegenesis.db",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Log: LogConfig{
			Level: "info",
		},
		Generation: GenerationConfig{
			Timeout:     60 * time.Second,
			CodeTimeout: 5 * time.Minute,
			Language:    "English",
		},
		Lifecycle: LifecycleConfig{SummarizeEvery: 1},
		Metrics:   MetricsConfig{Enabled: true},
		Tracing:   TracingConfig{Exporter: "none", SampleRatio: 1},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CODEGENESIS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and required values.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Storage.Backend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("invalid storage backend %q", c.Storage.Backend)
	}
	if c.Auth.Enabled && c.Auth.Token == "" {
		return fmt.Errorf("auth enabled without a token")
	}
	if c.Lifecycle.SummarizeEvery < 0 {
		return fmt.Errorf("lifecycle.summarize_every must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Host, "CODEGENESIS_SERVER_HOST")
	if err := setInt(&cfg.Server.Port, "CODEGENESIS_SERVER_PORT"); err != nil {
		return err
	}
	setString(&cfg.Transport.Mode, "CODEGENESIS_TRANSPORT")
	if err := setBool(&cfg.Auth.Enabled, "CODEGENESIS_AUTH_ENABLED"); err != nil {
		return err
	}
	setString(&cfg.Auth.Token, "CODEGENESIS_AUTH_TOKEN")
	setString(&cfg.Storage.Backend, "CODEGENESIS_STORAGE_BACKEND")
	setString(&cfg.DB.Path, "CODEGENESIS_DB_PATH")
	setString(&cfg.Redis.Addr, "CODEGENESIS_REDIS_ADDR")
	setString(&cfg.Redis.Password, "CODEGENESIS_REDIS_PASSWORD")
	if err := setInt(&cfg.Redis.DB, "CODEGENESIS_REDIS_DB"); err != nil {
		return err
	}
	setString(&cfg.Log.Level, "CODEGENESIS_LOG_LEVEL")
	setString(&cfg.Log.Path, "CODEGENESIS_LOG_PATH")

	setString(&cfg.Generation.BaseURL, "CODEGENESIS_GENERATION_BASE_URL")
	if cfg.Generation.APIKey == "" {
		setString(&cfg.Generation.APIKey, "API_KEY")
	}
	setString(&cfg.Generation.APIKey, "CODEGENESIS_GENERATION_API_KEY")
	setString(&cfg.Generation.ChatModel, "CODEGENESIS_GENERATION_CHAT_MODEL")
	setString(&cfg.Generation.CodeModel, "CODEGENESIS_GENERATION_CODE_MODEL")
	if err := setDuration(&cfg.Generation.Timeout, "CODEGENESIS_GENERATION_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Generation.CodeTimeout, "CODEGENESIS_GENERATION_CODE_TIMEOUT"); err != nil {
		return err
	}
	setString(&cfg.Generation.Language, "CODEGENESIS_GENERATION_LANGUAGE")

	if err := setInt(&cfg.Lifecycle.SummarizeEvery, "CODEGENESIS_SUMMARIZE_EVERY"); err != nil {
		return err
	}
	if err := setBool(&cfg.Metrics.Enabled, "CODEGENESIS_METRICS_ENABLED"); err != nil {
		return err
	}
	setString(&cfg.Tracing.Exporter, "CODEGENESIS_TRACING_EXPORTER")
	setString(&cfg.Tracing.OTLPEndpoint, "CODEGENESIS_OTLP_ENDPOINT")
	if err := setBool(&cfg.Tracing.OTLPInsecure, "CODEGENESIS_OTLP_INSECURE"); err != nil {
		return err
	}
	if raw := os.Getenv("CODEGENESIS_TRACING_SAMPLE_RATIO"); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid CODEGENESIS_TRACING_SAMPLE_RATIO: %w", err)
		}
		cfg.Tracing.SampleRatio = ratio
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func setBool(dst *bool, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
