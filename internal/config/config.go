// Package config loads application configuration from config.yaml and
// FILIP_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Azure      AzureConfig      `yaml:"azure" mapstructure:"azure"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" mapstructure:"retrieval"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LLMConfig selects the chat generation provider.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// AzureConfig holds Azure OpenAI resource settings. Embeddings always come
// from this resource regardless of the generation provider.
type AzureConfig struct {
	Endpoint             string `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey               string `yaml:"api_key" mapstructure:"api_key"`
	APIVersion           string `yaml:"api_version" mapstructure:"api_version"`
	ChatDeployment       string `yaml:"chat_deployment" mapstructure:"chat_deployment"`
	EmbeddingsDeployment string `yaml:"embeddings_deployment" mapstructure:"embeddings_deployment"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// RetrievalConfig configures the pgvector course store.
type RetrievalConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// CacheConfig configures the local validation result cache.
type CacheConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ValidationConfig selects the default validation profile.
type ValidationConfig struct {
	DefaultMode string `yaml:"default_mode" mapstructure:"default_mode"`
}

// Load reads config.yaml (optional) and the environment into a Config.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FILIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("llm.provider", "azure")
	v.SetDefault("azure.api_version", "2024-02-01")
	v.SetDefault("azure.chat_deployment", "gpt-4o")
	v.SetDefault("azure.embeddings_deployment", "text-embedding-3-small")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("retrieval.table", "course_documents")
	v.SetDefault("cache.path", "validation-cache.db")
	v.SetDefault("validation.default_mode", "comprehensive")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger builds the global zap logger from the log configuration.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
