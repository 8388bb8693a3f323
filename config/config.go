// Package config loads flowgate settings from a .env file, an optional
// YAML file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/client"
	"github.com/spetersoncode/flowgate/retry"
)

// DefaultPath is the YAML file read when FLOWGATE_CONFIG is unset.
const DefaultPath = "flowgate.yaml"

// Config holds every setting the CLI needs.
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	Azure     AzureConfig  `yaml:"azure"`
	OpenAI    KeyConfig    `yaml:"openai"`
	Anthropic KeyConfig    `yaml:"anthropic"`
	Google    KeyConfig    `yaml:"google"`
	Vertex    VertexConfig `yaml:"vertex"`

	Log LogConfig `yaml:"log"`

	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
	MaxToolIterations   int           `yaml:"max_tool_iterations"`
	StepTimeout         time.Duration `yaml:"step_timeout"`
	Timeout             time.Duration `yaml:"timeout"`
	RetryAttempts       int           `yaml:"retry_attempts"`

	KnowledgeBasePath string `yaml:"kb_path"`
	Signature         string `yaml:"signature"`
}

// AzureConfig addresses an Azure OpenAI deployment.
type AzureConfig struct {
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
	APIVersion string `yaml:"api_version"`
	Deployment string `yaml:"deployment"`
}

// KeyConfig holds an API key and an optional base URL.
type KeyConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// VertexConfig addresses a Vertex AI project. Authentication uses
// application default credentials.
type VertexConfig struct {
	Project  string `yaml:"project"`
	Location string `yaml:"location"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Provider: string(ai.ProviderAzure),
		Azure: AzureConfig{
			APIVersion: "2024-10-21",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		ConfidenceThreshold: 0.7,
		MaxToolIterations:   8,
		StepTimeout:         2 * time.Minute,
		RetryAttempts:       1,
		Signature:           "Susie",
	}
}

// Load reads .env (if present), overlays the YAML file named by
// FLOWGATE_CONFIG or DefaultPath (if present) and applies environment
// overrides. Load does not validate; call Validate before building a client.
func Load() (*Config, error) {
	godotenv.Load() // a missing .env is fine

	cfg := Default()

	path := os.Getenv("FLOWGATE_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider, "FLOWGATE_PROVIDER")
	setString(&c.Model, "FLOWGATE_MODEL")

	setString(&c.Azure.APIKey, "AZURE_OPENAI_API_KEY")
	setString(&c.Azure.APIVersion, "AZURE_OPENAI_API_VERSION")
	setString(&c.Azure.Endpoint, "AZURE_OPENAI_ENDPOINT")
	setString(&c.Azure.Deployment, "AZURE_DEPLOYMENT_NAME")
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.Google.APIKey, "GOOGLE_API_KEY")
	setString(&c.Vertex.Project, "VERTEX_PROJECT")
	setString(&c.Vertex.Location, "VERTEX_LOCATION")

	setString(&c.Log.Level, "FLOWGATE_LOG_LEVEL")
	setString(&c.Log.Format, "FLOWGATE_LOG_FORMAT")
	setString(&c.KnowledgeBasePath, "FLOWGATE_KB_PATH")
	setString(&c.Signature, "FLOWGATE_SIGNATURE")

	return errors.Join(
		setParsed(&c.ConfidenceThreshold, "FLOWGATE_CONFIDENCE_THRESHOLD", func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		}),
		setParsed(&c.MaxToolIterations, "FLOWGATE_MAX_TOOL_ITERATIONS", strconv.Atoi),
		setParsed(&c.RetryAttempts, "FLOWGATE_RETRY_ATTEMPTS", strconv.Atoi),
		setParsed(&c.StepTimeout, "FLOWGATE_STEP_TIMEOUT", time.ParseDuration),
		setParsed(&c.Timeout, "FLOWGATE_TIMEOUT", time.ParseDuration),
	)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setParsed[T any](dst *T, key string, parse func(string) (T, error)) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := parse(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

// Validate checks that the selected provider has its credentials and that
// the numeric settings are in range.
func (c *Config) Validate() error {
	provider, ok := ai.ParseProvider(c.Provider)
	if !ok {
		return fmt.Errorf("config: unknown provider %q (must be azure, openai, anthropic, google, or vertex)", c.Provider)
	}

	switch provider {
	case ai.ProviderAzure:
		if c.Azure.APIKey == "" || c.Azure.Endpoint == "" {
			return errors.New("config: AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT are required for azure provider")
		}
		if c.Azure.Deployment == "" && c.Model == "" {
			return errors.New("config: AZURE_DEPLOYMENT_NAME is required for azure provider")
		}
	case ai.ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return errors.New("config: OPENAI_API_KEY is required for openai provider")
		}
	case ai.ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return errors.New("config: ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case ai.ProviderGoogle:
		if c.Google.APIKey == "" {
			return errors.New("config: GOOGLE_API_KEY is required for google provider")
		}
	case ai.ProviderVertex:
		if c.Vertex.Project == "" || c.Vertex.Location == "" {
			return errors.New("config: VERTEX_PROJECT and VERTEX_LOCATION are required for vertex provider")
		}
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("config: confidence threshold %v is outside [0, 1]", c.ConfidenceThreshold)
	}
	if c.MaxToolIterations < 1 {
		return fmt.Errorf("config: max tool iterations must be at least 1, got %d", c.MaxToolIterations)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("config: retry attempts must be at least 1, got %d", c.RetryAttempts)
	}
	return nil
}

// ClientConfig returns the client settings for the selected provider.
func (c *Config) ClientConfig() client.Config {
	provider, _ := ai.ParseProvider(c.Provider)
	cc := client.Config{Provider: provider, Model: c.Model}

	switch provider {
	case ai.ProviderAzure:
		cc.APIKey = c.Azure.APIKey
		cc.Endpoint = c.Azure.Endpoint
		cc.APIVersion = c.Azure.APIVersion
		if c.Azure.Deployment != "" {
			cc.Model = c.Azure.Deployment
		}
	case ai.ProviderOpenAI:
		cc.APIKey = c.OpenAI.APIKey
		cc.BaseURL = c.OpenAI.BaseURL
	case ai.ProviderAnthropic:
		cc.APIKey = c.Anthropic.APIKey
		cc.BaseURL = c.Anthropic.BaseURL
	case ai.ProviderGoogle:
		cc.APIKey = c.Google.APIKey
		cc.BaseURL = c.Google.BaseURL
	case ai.ProviderVertex:
		cc.VertexProject = c.Vertex.Project
		cc.VertexLocation = c.Vertex.Location
	}
	return cc
}

// Retry returns the retry policy for provider calls. One attempt disables
// retries.
func (c *Config) Retry() retry.Config {
	if c.RetryAttempts <= 1 {
		return retry.Disabled()
	}
	return retry.DefaultConfig().WithAttempts(c.RetryAttempts)
}

// LogLevel parses Log.Level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
