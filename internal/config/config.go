package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tokenlay/tokenlay-go/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProxyBaseURL     = "https://api.tokenlay.com"
	DefaultOpenAIBaseURL    = "https://api.openai.com/v1"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultGeminiBaseURL    = "https://generativelanguage.googleapis.com"

	DefaultTimeoutMs       = 60000
	DefaultMaxRetries      = 2
	DefaultHealthTimeoutMs = 5000
	DefaultLogLevel        = "info"
)

// Environment variables read by FromEnv.
const (
	EnvProxyAPIKey     = "TOKENLAY_API_KEY"
	EnvProviderAPIKey  = "TOKENLAY_PROVIDER_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvProvider        = "TOKENLAY_PROVIDER"
	EnvProviderBaseURL = "TOKENLAY_PROVIDER_BASE_URL"
	EnvProxyBaseURL    = "TOKENLAY_BASE_URL"
	EnvTimeoutMs       = "TOKENLAY_TIMEOUT_MS"
	EnvMaxRetries      = "TOKENLAY_MAX_RETRIES"
	EnvLogLevel        = "TOKENLAY_LOG_LEVEL"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

// Validate checks the two required credentials, proxy key first.
func Validate(cfg models.ClientConfig) error {
	if strings.TrimSpace(cfg.ProxyAPIKey) == "" {
		return models.NewMissingCredentialError("proxy_api_key")
	}
	if strings.TrimSpace(cfg.ProviderAPIKey) == "" {
		return models.NewMissingCredentialError("provider_api_key")
	}
	return nil
}

// ApplyDefaults returns a copy of cfg with every optional field filled in.
func ApplyDefaults(cfg models.ClientConfig) models.ClientConfig {
	out := cfg.Clone()

	if out.Provider == "" {
		out.Provider = models.ProviderOpenAI
	}
	out.Provider = models.ProviderName(strings.ToLower(string(out.Provider)))

	if out.ProviderBaseURL == "" {
		out.ProviderBaseURL = DefaultProviderBaseURL(out.Provider)
	}
	if out.ProxyBaseURL == "" {
		out.ProxyBaseURL = DefaultProxyBaseURL
	}
	if out.Metadata == nil {
		out.Metadata = models.Metadata{}
	}
	if out.Headers == nil {
		out.Headers = map[string]string{}
	}
	if out.TimeoutMs <= 0 {
		out.TimeoutMs = DefaultTimeoutMs
	}
	if out.MaxRetries == nil || *out.MaxRetries < 0 {
		retries := DefaultMaxRetries
		out.MaxRetries = &retries
	}
	if out.HealthTimeoutMs <= 0 {
		out.HealthTimeoutMs = DefaultHealthTimeoutMs
	}
	if out.LogLevel == "" {
		out.LogLevel = DefaultLogLevel
	}

	return out
}

// DefaultProviderBaseURL returns the upstream URL the proxy forwards to when
// none is configured.
func DefaultProviderBaseURL(provider models.ProviderName) string {
	switch provider {
	case models.ProviderAnthropic:
		return DefaultAnthropicBaseURL
	case models.ProviderGemini:
		return DefaultGeminiBaseURL
	default:
		return DefaultOpenAIBaseURL
	}
}

// LoadFromFile loads a client configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (models.ClientConfig, error) {
	var cfg models.ClientConfig

	cleanPath := filepath.Clean(configPath)
	if strings.Contains(cleanPath, "..") {
		return cfg, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return cfg, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	content := substituteEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return cfg, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence.
// Files that do not exist are skipped.
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			fiberlog.Warnf("Failed to load %s: %v", envFile, err)
			continue
		}
		fiberlog.Debugf("Loaded environment variables from %s", envFile)
	}
}

// FromEnv builds a client configuration from TOKENLAY_* variables.
func FromEnv() (models.ClientConfig, error) {
	cfg := models.ClientConfig{
		ProxyAPIKey:     os.Getenv(EnvProxyAPIKey),
		ProviderAPIKey:  os.Getenv(EnvProviderAPIKey),
		Provider:        models.ProviderName(os.Getenv(EnvProvider)),
		ProviderBaseURL: os.Getenv(EnvProviderBaseURL),
		ProxyBaseURL:    os.Getenv(EnvProxyBaseURL),
		LogLevel:        os.Getenv(EnvLogLevel),
	}
	if cfg.ProviderAPIKey == "" {
		cfg.ProviderAPIKey = os.Getenv(EnvOpenAIAPIKey)
	}

	if raw := os.Getenv(EnvTimeoutMs); raw != "" {
		timeout, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, models.NewValidationError("invalid "+EnvTimeoutMs, err)
		}
		cfg.TimeoutMs = timeout
	}

	if raw := os.Getenv(EnvMaxRetries); raw != "" {
		retries, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, models.NewValidationError("invalid "+EnvMaxRetries, err)
		}
		cfg.MaxRetries = &retries
	}

	return cfg, nil
}

// SetupLogLevel applies a textual log level to fiberlog.
func SetupLogLevel(level string) {
	level = strings.ToLower(level)

	switch level {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info", "":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", level)
	}
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""
		if len(submatches) > 2 && submatches[2] != "" {
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}
