package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	OpenAI       OpenAIConfig       `mapstructure:"openai"`
	Analyzer     AnalyzerConfig     `mapstructure:"analyzer"`
	Unsubscriber UnsubscriberConfig `mapstructure:"unsubscriber"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type OpenAIConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Temperature   float64       `mapstructure:"temperature"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryBaseWait time.Duration `mapstructure:"retry_base_wait"`
}

type AnalyzerConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence"`
}

type UnsubscriberConfig struct {
	UserEmail string        `mapstructure:"user_email"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.retry_attempts", 3)
	v.SetDefault("openai.retry_base_wait", time.Second)
	v.SetDefault("analyzer.min_confidence", 0.7)
	v.SetDefault("unsubscriber.timeout", 30*time.Second)
	v.SetDefault("logging.development", false)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Get secrets from environment variables
	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if email := v.GetString("USER_EMAIL"); email != "" {
		config.Unsubscriber.UserEmail = email
	}

	return &config, nil
}
