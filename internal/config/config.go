package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "PFD_CLASSIFIER_CONFIG"
	corpusRootEnv     = "PFD_CORPUS_ROOT"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	openAIEndpointEnv = "OPENAI_ENDPOINT"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// ErrMissingAPIKey is returned by Validate when no credential was supplied.
var ErrMissingAPIKey = errors.New(openAIAPIKeyEnv + " not set in environment variable")

// Config holds high-level settings required across the application.
type Config struct {
	Corpus        CorpusConfig       `yaml:"corpus"`
	OpenAI        OpenAIConfig       `yaml:"openai"`
	Retry         RetryConfig        `yaml:"retry"`
	Output        OutputConfig       `yaml:"output"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// CorpusConfig describes where reports live and which files are picked up.
type CorpusConfig struct {
	Root       string   `yaml:"root"`
	Prefix     string   `yaml:"prefix"`
	Extensions []string `yaml:"extensions"`
}

// OpenAIConfig defines how to contact the chat completion API.
type OpenAIConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// RetryConfig controls the backoff around completion calls.
type RetryConfig struct {
	MaxRetries int           `yaml:"maxRetries"`
	BaseDelay  time.Duration `yaml:"baseDelay"`
}

// OutputConfig shapes the emitted JSON lines.
type OutputConfig struct {
	IncludeContents bool `yaml:"includeContents"`
}

// DatabaseConfig describes the optional Postgres archive.
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// An explicit path wins over the PFD_CLASSIFIER_CONFIG variable.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

// Validate reports configuration errors that must stop the run at startup.
func (c Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.OpenAI.Endpoint == "" {
		return fmt.Errorf("openai endpoint is empty")
	}
	if c.OpenAI.Model == "" {
		return fmt.Errorf("openai model is empty")
	}
	if c.Corpus.Root == "" {
		return fmt.Errorf("corpus root is empty")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry maxRetries must not be negative, got %d", c.Retry.MaxRetries)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(corpusRootEnv); v != "" {
		c.Corpus.Root = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(openAIEndpointEnv); v != "" {
		c.OpenAI.Endpoint = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Corpus.Root != "" {
		base.Corpus.Root = override.Corpus.Root
	}
	if override.Corpus.Prefix != "" {
		base.Corpus.Prefix = override.Corpus.Prefix
	}
	if len(override.Corpus.Extensions) > 0 {
		base.Corpus.Extensions = override.Corpus.Extensions
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.SystemPrompt != "" {
		base.OpenAI.SystemPrompt = override.OpenAI.SystemPrompt
	}
	if override.OpenAI.Timeout > 0 {
		base.OpenAI.Timeout = override.OpenAI.Timeout
	}

	if override.Retry.MaxRetries != 0 {
		base.Retry.MaxRetries = override.Retry.MaxRetries
	}
	if override.Retry.BaseDelay > 0 {
		base.Retry.BaseDelay = override.Retry.BaseDelay
	}

	if override.Output.IncludeContents {
		base.Output.IncludeContents = true
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Table != "" {
		base.Database.Table = override.Database.Table
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Corpus: CorpusConfig{
			Root:       "data/PFD_docs",
			Prefix:     "ocr-",
			Extensions: []string{".txt"},
		},
		OpenAI: OpenAIConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4-turbo",
			Timeout:  120 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  time.Second,
		},
		Database: DatabaseConfig{Table: "pfd_classifications"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}
