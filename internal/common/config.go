package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/codelie14/zillasec/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	LLM         LLMConfig        `toml:"llm"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	OpenRouter  OpenRouterConfig `toml:"openrouter"`
	Analysis    AnalysisConfig   `toml:"analysis"`
	Chat        ChatConfig       `toml:"chat"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
	Dir        string   `toml:"dir"`         // Log directory, empty means <executable dir>/logs
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// OpenRouterConfig contains configuration for OpenAI-compatible chat completion endpoints
type OpenRouterConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"` // e.g. https://openrouter.ai/api/v1
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderOpenRouter uses an OpenAI-compatible chat completions endpoint
	LLMProviderOpenRouter LLMProvider = "openrouter"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"`
}

// AnalysisConfig controls the completion request and how its reply is validated.
type AnalysisConfig struct {
	MaxInputRows       int    `toml:"max_input_rows"`      // Rows sent to the model; <= 0 sends everything
	Timeout            string `toml:"timeout"`             // Completion call timeout as duration string
	SchemaVariant      string `toml:"schema_variant"`      // risk_summary | access_review | open
	DefaultInstruction string `toml:"default_instruction"` // Used ahead of templates when no instruction or template is requested
	TemplatesDir       string `toml:"templates_dir"`       // Optional {variant}.toml overrides of the built-in templates
}

// ChatConfig controls the analysis chat.
type ChatConfig struct {
	ContextLimit int `toml:"context_limit"` // Analyses included in "database" context
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderOpenRouter,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-3-flash-preview",
			Temperature: 0.2,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Temperature: 0.2,
		},
		OpenRouter: OpenRouterConfig{
			Model:   "meta-llama/llama-3.3-70b-instruct:free",
			BaseURL: "https://openrouter.ai/api/v1",
		},
		Analysis: AnalysisConfig{
			MaxInputRows:  200,
			Timeout:       "2m",
			SchemaVariant: "risk_summary",
		},
		Chat: ChatConfig{
			ContextLimit: 10,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files.
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

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ZILLASEC_ENV"); env != "" {
		config.Environment = env
	}

	// Storage configuration
	if badgerPath := os.Getenv("ZILLASEC_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("ZILLASEC_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("ZILLASEC_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("ZILLASEC_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if model := os.Getenv("ZILLASEC_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if model := os.Getenv("ZILLASEC_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if model := os.Getenv("ZILLASEC_OPENROUTER_MODEL"); model != "" {
		config.OpenRouter.Model = model
	}
	if baseURL := os.Getenv("ZILLASEC_OPENROUTER_BASE_URL"); baseURL != "" {
		config.OpenRouter.BaseURL = baseURL
	}

	// Analysis configuration
	if maxRows := os.Getenv("ZILLASEC_MAX_AI_INPUT_ROWS"); maxRows != "" {
		if mr, err := strconv.Atoi(maxRows); err == nil {
			config.Analysis.MaxInputRows = mr
		}
	}
	if timeout := os.Getenv("ZILLASEC_ANALYSIS_TIMEOUT"); timeout != "" {
		config.Analysis.Timeout = timeout
	}
	if variant := os.Getenv("ZILLASEC_SCHEMA_VARIANT"); variant != "" {
		config.Analysis.SchemaVariant = variant
	}
	if dir := os.Getenv("ZILLASEC_TEMPLATES_DIR"); dir != "" {
		config.Analysis.TemplatesDir = dir
	}
}

// Validate checks values that cannot be corrected later
func (c *Config) Validate() error {
	if c.Storage.Type != "" && c.Storage.Type != "badger" {
		return fmt.Errorf("unsupported storage type: %s (only 'badger' is supported)", c.Storage.Type)
	}
	if _, err := c.AnalysisTimeout(); err != nil {
		return err
	}
	switch c.LLM.DefaultProvider {
	case LLMProviderGemini, LLMProviderClaude, LLMProviderOpenRouter:
	default:
		return fmt.Errorf("invalid llm.default_provider '%s': must be gemini, claude or openrouter", c.LLM.DefaultProvider)
	}
	return nil
}

// AnalysisTimeout parses analysis.timeout
func (c *Config) AnalysisTimeout() (time.Duration, error) {
	if c.Analysis.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Analysis.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid analysis.timeout %q: %w", c.Analysis.Timeout, err)
	}
	return d, nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key by name with environment variable priority
// Resolution order: environment variables → KV store → config fallback → error
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":     {"ZILLASEC_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key":  {"ZILLASEC_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"openrouter_api_key": {"ZILLASEC_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}
