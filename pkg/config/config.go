// Package config loads the eclipse server configuration.
//
// Values are resolved in order: defaults, YAML file, .env files, process
// environment. Environment keys use the ECLIPSE_ prefix.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported transports and telemetry sinks.
const (
	TransportFiber   = "fiber"
	TransportNetHTTP = "nethttp"

	SinkLog  = "log"
	SinkHTTP = "http"
	SinkNoop = "noop"

	EnvPrefix = "ECLIPSE_"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	BasePath  string `yaml:"base_path"`
	Transport string `yaml:"transport"`
}

// RateLimitConfig throttles chat sends per session. RPS 0 disables throttling.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// ChatConfig controls the scripted assistant.
type ChatConfig struct {
	ReplyDelay time.Duration   `yaml:"reply_delay"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

// SessionConfig controls how long an unused session is kept.
type SessionConfig struct {
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

// TelemetryConfig selects the analytics sink.
type TelemetryConfig struct {
	Sink      string `yaml:"sink"`
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"api_key"`
	PageViews bool   `yaml:"page_views"`
}

// CatalogConfig points at an optional metric catalog manifest.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Config is the top-level server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Chat      ChatConfig      `yaml:"chat"`
	Session   SessionConfig   `yaml:"session"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Log       LogConfig       `yaml:"log"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8080",
			BasePath:  "/eclipse",
			Transport: TransportFiber,
		},
		Chat: ChatConfig{
			ReplyDelay: time.Second,
			RateLimit:  RateLimitConfig{RPS: 0, Burst: 1},
		},
		Session:   SessionConfig{IdleTTL: 30 * time.Minute},
		Telemetry: TelemetryConfig{Sink: SinkLog},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// Load resolves the configuration. path may be empty; envFiles that do not
// exist are skipped.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		file, err := os.Open(path) //nolint:gosec
		if err != nil {
			return cfg, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer file.Close()
		if err := decode(file, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return cfg, err
	}
	lookup := func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	}
	if err := ApplyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func readEnvFiles(paths []string) (map[string]string, error) {
	values := map[string]string{}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		for key, value := range vars {
			if _, seen := values[key]; !seen {
				values[key] = value
			}
		}
	}
	return values, nil
}

// ApplyEnv overrides cfg with ECLIPSE_* values returned by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ADDR":               &cfg.Server.Addr,
		"BASE_PATH":          &cfg.Server.BasePath,
		"TRANSPORT":          &cfg.Server.Transport,
		"TELEMETRY_SINK":     &cfg.Telemetry.Sink,
		"TELEMETRY_ENDPOINT": &cfg.Telemetry.Endpoint,
		"TELEMETRY_API_KEY":  &cfg.Telemetry.APIKey,
		"CATALOG_PATH":       &cfg.Catalog.Path,
		"LOG_LEVEL":          &cfg.Log.Level,
		"LOG_FORMAT":         &cfg.Log.Format,
	}
	for key, target := range strs {
		if value, ok := lookup(EnvPrefix + key); ok {
			*target = strings.TrimSpace(value)
		}
	}

	if value, ok := lookup(EnvPrefix + "CHAT_REPLY_DELAY"); ok {
		delay, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return envError("CHAT_REPLY_DELAY", err)
		}
		cfg.Chat.ReplyDelay = delay
	}
	if value, ok := lookup(EnvPrefix + "SESSION_IDLE_TTL"); ok {
		ttl, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return envError("SESSION_IDLE_TTL", err)
		}
		cfg.Session.IdleTTL = ttl
	}
	if value, ok := lookup(EnvPrefix + "CHAT_RPS"); ok {
		rps, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return envError("CHAT_RPS", err)
		}
		cfg.Chat.RateLimit.RPS = rps
	}
	if value, ok := lookup(EnvPrefix + "CHAT_BURST"); ok {
		burst, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return envError("CHAT_BURST", err)
		}
		cfg.Chat.RateLimit.Burst = burst
	}
	if value, ok := lookup(EnvPrefix + "TELEMETRY_PAGE_VIEWS"); ok {
		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return envError("TELEMETRY_PAGE_VIEWS", err)
		}
		cfg.Telemetry.PageViews = enabled
	}
	return nil
}

func envError(key string, err error) error {
	return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, EnvPrefix, key, err)
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is required")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		problems = append(problems, "server.base_path must start with /")
	}
	switch c.Server.Transport {
	case TransportFiber, TransportNetHTTP:
	default:
		problems = append(problems, fmt.Sprintf("server.transport %q is not supported", c.Server.Transport))
	}
	if c.Chat.ReplyDelay < 0 {
		problems = append(problems, "chat.reply_delay must not be negative")
	}
	if c.Session.IdleTTL <= 0 {
		problems = append(problems, "session.idle_ttl must be positive")
	}
	if c.Chat.RateLimit.Burst < 0 {
		problems = append(problems, "chat.rate_limit.burst must not be negative")
	}
	switch c.Telemetry.Sink {
	case SinkLog, SinkNoop:
	case SinkHTTP:
		if c.Telemetry.Endpoint == "" {
			problems = append(problems, "telemetry.endpoint is required for the http sink")
		}
	default:
		problems = append(problems, fmt.Sprintf("telemetry.sink %q is not supported", c.Telemetry.Sink))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not supported", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
