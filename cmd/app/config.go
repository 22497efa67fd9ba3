package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT" validate:"required"`
	Environment    string   `mapstructure:"ENVIRONMENT" validate:"oneof=development staging production"`
	Version        string   `mapstructure:"VERSION"`
	TrustedOrigins []string `mapstructure:"TRUSTED_ORIGINS"`
	SiteBaseURL    string   `mapstructure:"SITE_BASE_URL" validate:"required,url"`
	Author         string   `mapstructure:"AUTHOR" validate:"required"`

	DataFile    string `mapstructure:"DATA_FILE" validate:"required"`
	UploadDir   string `mapstructure:"UPLOAD_DIR" validate:"required"`
	StoreDriver string `mapstructure:"STORE_DRIVER" validate:"oneof=file postgres"`

	RateLimitEnabled  bool          `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitRequests int           `mapstructure:"RATE_LIMIT_REQUESTS" validate:"gt=0"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW" validate:"gt=0"`

	AdminUsername     string        `mapstructure:"ADMIN_USERNAME" validate:"required"`
	AdminPasswordHash string        `mapstructure:"ADMIN_PASSWORD_HASH"`
	AdminTokenTTL     time.Duration `mapstructure:"ADMIN_TOKEN_TTL" validate:"gt=0"`

	DBHost     string `mapstructure:"POSTGRES_HOST" validate:"required_if=StoreDriver postgres"`
	DBPort     string `mapstructure:"POSTGRES_PORT"`
	DBUser     string `mapstructure:"POSTGRES_USER" validate:"required_if=StoreDriver postgres"`
	DBPassword string `mapstructure:"POSTGRES_PASSWORD"`
	DBName     string `mapstructure:"POSTGRES_DB" validate:"required_if=StoreDriver postgres"`

	// The broker and the mail notifications are optional. They are enabled by setting RABBITMQ_HOST.
	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	MailHost         string   `mapstructure:"MAIL_HOST"`
	MailPort         int      `mapstructure:"MAIL_PORT"`
	MailUser         string   `mapstructure:"MAIL_USER"`
	MailPassword     string   `mapstructure:"MAIL_PASSWORD"`
	MailSender       string   `mapstructure:"MAIL_SENDER" validate:"omitempty,email"`
	NotifyRecipients []string `mapstructure:"NOTIFY_RECIPIENTS" validate:"dive,email"`
}

var defaults = map[string]any{
	"PORT":                "3001",
	"ENVIRONMENT":         "development",
	"VERSION":             "1.0.0",
	"TRUSTED_ORIGINS":     "http://localhost:3000",
	"SITE_BASE_URL":       "https://yushengtzou.github.io",
	"AUTHOR":              "Yu-Sheng Tzou",
	"DATA_FILE":           "data/blogPosts.json",
	"UPLOAD_DIR":          "uploads",
	"STORE_DRIVER":        "file",
	"RATE_LIMIT_ENABLED":  true,
	"RATE_LIMIT_REQUESTS": 100,
	"RATE_LIMIT_WINDOW":   "15m",
	"ADMIN_USERNAME":      "admin",
	"ADMIN_PASSWORD_HASH": "",
	"ADMIN_TOKEN_TTL":     "24h",
	"POSTGRES_HOST":       "",
	"POSTGRES_PORT":       "5432",
	"POSTGRES_USER":       "",
	"POSTGRES_PASSWORD":   "",
	"POSTGRES_DB":         "",
	"RABBITMQ_HOST":       "",
	"RABBITMQ_PORT":       "5672",
	"RABBITMQ_USER":       "guest",
	"RABBITMQ_PASSWORD":   "guest",
	"MAIL_HOST":           "",
	"MAIL_PORT":           587,
	"MAIL_USER":           "",
	"MAIL_PASSWORD":       "",
	"MAIL_SENDER":         "",
	"NOTIFY_RECIPIENTS":   "",
}

// loadConfig reads the .env file at path, if present, and lets environment variables override it.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) brokerEnabled() bool {
	return c.MQHost != ""
}

func (c *Config) mailEnabled() bool {
	return c.brokerEnabled() && c.MailHost != "" && c.MailSender != "" && len(c.NotifyRecipients) > 0
}
