package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	// StoreBackend selects "memory" or "postgres".
	StoreBackend string `mapstructure:"STORE_BACKEND"`

	// SessionTTL overrides the default 24h session lifetime, e.g. "48h".
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	// TrustedOriginsRaw is the space-separated TRUSTED_ORIGINS value;
	// TrustedOrigins is the parsed form the middleware consumes.
	TrustedOriginsRaw string `mapstructure:"TRUSTED_ORIGINS"`
	TrustedOrigins    []string

	DB struct {
		Host     string `mapstructure:"POSTGRES_HOST"`
		Port     string `mapstructure:"POSTGRES_PORT"`
		User     string `mapstructure:"POSTGRES_USER"`
		Password string `mapstructure:"POSTGRES_PASSWORD"`
		Name     string `mapstructure:"POSTGRES_DB"`
	}

	Mail struct {
		Host     string `mapstructure:"MAIL_HOST"`
		Port     int    `mapstructure:"MAIL_PORT"`
		User     string `mapstructure:"MAIL_USER"`
		Password string `mapstructure:"MAIL_PASSWORD"`
		Sender   string `mapstructure:"MAIL_SENDER"`
	}

	RabbitMQ struct {
		Host     string `mapstructure:"RABBITMQ_HOST"`
		Port     string `mapstructure:"RABBITMQ_PORT"`
		User     string `mapstructure:"RABBITMQ_USER"`
		Password string `mapstructure:"RABBITMQ_PASSWORD"`
	}

	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
}

func loadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.TrustedOriginsRaw != "" {
		config.TrustedOrigins = strings.Fields(config.TrustedOriginsRaw)
	}

	if config.StoreBackend == "" {
		config.StoreBackend = "memory"
	}
	if config.StoreBackend != "memory" && config.StoreBackend != "postgres" {
		return nil, fmt.Errorf("unknown store backend %q", config.StoreBackend)
	}

	return &config, nil
}
