// Package config provides configuration loading and validation for the match server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the match server.
type Config struct {
	// Server settings
	Port     int    `koanf:"port"`
	Env      string `koanf:"env"`
	LogLevel string `koanf:"log_level"`

	// CORS; empty disables cross-origin access
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// Redis backs the shared rate limit store; empty keeps limits in memory
	RedisURL string `koanf:"redis_url"`

	// Rate limiting of POST /match, per client IP
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// Tracing (OpenTelemetry)
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	TracingExporter   string  `koanf:"tracing_exporter"`
	TracingEndpoint   string  `koanf:"tracing_endpoint"`
	TracingSampleRate float64 `koanf:"tracing_sample_rate"`
	TracingInsecure   bool    `koanf:"tracing_insecure"`

	// Ranking defaults; requests may override normalize and stop words
	RankingNormalize      bool   `koanf:"ranking_normalize"`
	RankingStopWords      bool   `koanf:"ranking_stop_words"`
	RankingMinTokenLength int    `koanf:"ranking_min_token_length"`
	RankingOptionsFile    string `koanf:"ranking_options_file"`

	// Request limits
	MaxCandidates int   `koanf:"max_candidates"`
	MaxTextLength int   `koanf:"max_text_length"`
	MaxBodyBytes  int64 `koanf:"max_body_bytes"`

	// Profiling exposes /debug/pprof outside production
	ProfilingEnabled bool `koanf:"profiling_enabled"`
}

// Configuration validation errors.
var (
	ErrInvalidPort          = errors.New("PORT must be a valid integer")
	ErrInvalidInteger       = errors.New("value must be a valid integer")
	ErrInvalidBool          = errors.New("value must be a boolean")
	ErrInvalidFloat         = errors.New("value must be a number")
	ErrInvalidDuration      = errors.New("value must be a duration such as 30s or 1m")
	ErrPortOutOfRange       = errors.New("PORT must be between 1 and 65535")
	ErrInvalidRedisURL      = errors.New("REDIS_URL must be a redis:// or rediss:// URL")
	ErrInvalidRateLimit     = errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	ErrInvalidSampleRate    = errors.New("TRACING_SAMPLE_RATE must be between 0 and 1")
	ErrInvalidExporter      = errors.New("TRACING_EXPORTER must be otlp-grpc or otlp-http")
	ErrInvalidMinTokenLen   = errors.New("RANKING_MIN_TOKEN_LENGTH must be at least 1")
	ErrInvalidRequestLimits = errors.New("MAX_CANDIDATES, MAX_TEXT_LENGTH and MAX_BODY_BYTES must be positive")
)

// Default values for non-secret configuration.
const (
	DefaultPort                  = 8000
	DefaultEnv                   = "development"
	DefaultRateLimitRequests     = 60
	DefaultRateLimitWindow       = time.Minute
	DefaultTracingExporter       = "otlp-http"
	DefaultTracingSampleRate     = 0.1
	DefaultRankingNormalize      = true
	DefaultRankingStopWords      = true
	DefaultRankingMinTokenLength = 1
	DefaultMaxCandidates         = 1000
	DefaultMaxTextLength         = 20000
	DefaultMaxBodyBytes          = 1 << 20
)

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none)
// into the process environment. Variables already set are not overridden and
// missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error
	collect := func(err error) {
		if err != nil {
			loadErrs = append(loadErrs, err)
		}
	}

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Try IDEAMATCH_PORT first, then PORT
	port, err := getEnvIntOrDefaultMulti([]string{"IDEAMATCH_PORT", "PORT"}, k.Int("port"), DefaultPort)
	collect(err)

	rateLimitRequests, err := getEnvIntOrDefault("RATE_LIMIT_REQUESTS", k.Int("rate_limit_requests"), DefaultRateLimitRequests)
	collect(err)
	rateLimitWindow, err := getEnvDurationOrDefault("RATE_LIMIT_WINDOW", k, "rate_limit_window", DefaultRateLimitWindow)
	collect(err)

	tracingEnabled, err := getEnvBoolOrDefault("TRACING_ENABLED", k, "tracing_enabled", false)
	collect(err)
	tracingInsecure, err := getEnvBoolOrDefault("TRACING_INSECURE", k, "tracing_insecure", false)
	collect(err)
	sampleRate, err := getEnvFloatOrDefault("TRACING_SAMPLE_RATE", k, "tracing_sample_rate", DefaultTracingSampleRate)
	collect(err)

	normalize, err := getEnvBoolOrDefault("RANKING_NORMALIZE", k, "ranking_normalize", DefaultRankingNormalize)
	collect(err)
	stopWords, err := getEnvBoolOrDefault("RANKING_STOP_WORDS", k, "ranking_stop_words", DefaultRankingStopWords)
	collect(err)
	minTokenLength, err := getEnvIntOrDefault("RANKING_MIN_TOKEN_LENGTH", k.Int("ranking_min_token_length"), DefaultRankingMinTokenLength)
	collect(err)

	maxCandidates, err := getEnvIntOrDefault("MAX_CANDIDATES", k.Int("max_candidates"), DefaultMaxCandidates)
	collect(err)
	maxTextLength, err := getEnvIntOrDefault("MAX_TEXT_LENGTH", k.Int("max_text_length"), DefaultMaxTextLength)
	collect(err)
	maxBodyBytes, err := getEnvIntOrDefault("MAX_BODY_BYTES", int(k.Int64("max_body_bytes")), DefaultMaxBodyBytes)
	collect(err)

	profiling, err := getEnvBoolOrDefault("PROFILING_ENABLED", k, "profiling_enabled", false)
	collect(err)

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:                  port,
		Env:                   getEnvOrDefaultMulti([]string{"IDEAMATCH_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		LogLevel:              getEnvOrKoanf("LOG_LEVEL", k, "log_level"),
		CORSAllowedOrigins:    getEnvListOrKoanf("CORS_ALLOWED_ORIGINS", k, "cors_allowed_origins"),
		RedisURL:              getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		RateLimitRequests:     rateLimitRequests,
		RateLimitWindow:       rateLimitWindow,
		TracingEnabled:        tracingEnabled,
		TracingExporter:       getEnvOrDefault("TRACING_EXPORTER", k.String("tracing_exporter"), DefaultTracingExporter),
		TracingEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", k.String("tracing_endpoint"), ""),
		TracingSampleRate:     sampleRate,
		TracingInsecure:       tracingInsecure,
		RankingNormalize:      normalize,
		RankingStopWords:      stopWords,
		RankingMinTokenLength: minTokenLength,
		RankingOptionsFile:    getEnvOrKoanf("RANKING_OPTIONS_FILE", k, "ranking_options_file"),
		MaxCandidates:         maxCandidates,
		MaxTextLength:         maxTextLength,
		MaxBodyBytes:          int64(maxBodyBytes),
		ProfilingEnabled:      profiling,
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvListOrKoanf reads a comma-separated env var, falling back to a koanf list.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	raw := k.Strings(koanfKey)
	if val := os.Getenv(envKey); val != "" {
		raw = strings.Split(val, ",")
	}
	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
// A zero value in a YAML file falls back to the default.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return defaultVal, fmt.Errorf("%s: %w", envKey, ErrInvalidInteger)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvBoolOrDefault returns the environment variable as bool if set, otherwise
// the koanf value if the key exists, or default. Accepts true/false, 1/0,
// yes/no and on/off.
func getEnvBoolOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal bool) (bool, error) {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		default:
			return defaultVal, fmt.Errorf("%s: %w", envKey, ErrInvalidBool)
		}
	}
	if k.Exists(koanfKey) {
		return k.Bool(koanfKey), nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set,
// otherwise the koanf value if the key exists, or default.
func getEnvFloatOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return defaultVal, fmt.Errorf("%s: %w", envKey, ErrInvalidFloat)
		}
		return f, nil
	}
	if k.Exists(koanfKey) {
		return k.Float64(koanfKey), nil
	}
	return defaultVal, nil
}

// getEnvDurationOrDefault returns the environment variable as a duration if
// set, otherwise the koanf value, or default.
func getEnvDurationOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal time.Duration) (time.Duration, error) {
	raw := os.Getenv(envKey)
	source := envKey
	if raw == "" {
		raw = k.String(koanfKey)
		source = koanfKey
	}
	if raw == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: %w", source, ErrInvalidDuration)
	}
	return d, nil
}

// Validate checks that configuration values are usable.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ErrPortOutOfRange)
	}

	if c.RedisURL != "" {
		u, err := url.Parse(c.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, ErrInvalidRedisURL)
		}
	}

	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}

	if c.TracingEnabled {
		if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
			errs = append(errs, ErrInvalidSampleRate)
		}
		if c.TracingExporter != "otlp-grpc" && c.TracingExporter != "otlp-http" {
			errs = append(errs, ErrInvalidExporter)
		}
	}

	if c.RankingMinTokenLength < 1 {
		errs = append(errs, ErrInvalidMinTokenLen)
	}

	if c.MaxCandidates <= 0 || c.MaxTextLength <= 0 || c.MaxBodyBytes <= 0 {
		errs = append(errs, ErrInvalidRequestLimits)
	}

	return errs
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                     strconv.Itoa(c.Port),
		"env":                      c.Env,
		"log_level":                c.LogLevel,
		"cors_allowed_origins":     strings.Join(c.CORSAllowedOrigins, ","),
		"redis_url":                maskRedisURL(c.RedisURL),
		"rate_limit":               fmt.Sprintf("%d/%s", c.RateLimitRequests, c.RateLimitWindow),
		"tracing_enabled":          strconv.FormatBool(c.TracingEnabled),
		"tracing_exporter":         c.TracingExporter,
		"tracing_endpoint":         c.TracingEndpoint,
		"tracing_sample_rate":      strconv.FormatFloat(c.TracingSampleRate, 'f', -1, 64),
		"ranking_normalize":        strconv.FormatBool(c.RankingNormalize),
		"ranking_stop_words":       strconv.FormatBool(c.RankingStopWords),
		"ranking_min_token_length": strconv.Itoa(c.RankingMinTokenLength),
		"ranking_options_file":     c.RankingOptionsFile,
		"max_candidates":           strconv.Itoa(c.MaxCandidates),
		"max_text_length":          strconv.Itoa(c.MaxTextLength),
		"max_body_bytes":           strconv.FormatInt(c.MaxBodyBytes, 10),
		"profiling_enabled":        strconv.FormatBool(c.ProfilingEnabled),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskRedisURL masks the password in a redis:// URL.
func maskRedisURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	u, err := url.Parse(s)
	if err != nil {
		return maskSecret(s)
	}
	if u.User == nil {
		return s // No credentials in URL
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return s // Username only
	}

	masked := u.Scheme + "://" + u.User.Username() + ":****@" + u.Host + u.Path
	if u.RawQuery != "" {
		masked += "?" + u.RawQuery
	}
	return masked
}
