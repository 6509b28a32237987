package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        int    `mapstructure:"PORT"`
	MetricsPort string `mapstructure:"METRICS_PORT"`

	MongoURI string `mapstructure:"MONGO_URI"`
	MongoDB  string `mapstructure:"MONGO_DB"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	NATSURL string `mapstructure:"NATS_URL"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	MailerSendAPIKey string `mapstructure:"MAILERSEND_API_KEY"`
	MailFromEmail    string `mapstructure:"MAIL_FROM_EMAIL"`
	MailFromName     string `mapstructure:"MAIL_FROM_NAME"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", 4000)
	viper.SetDefault("METRICS_PORT", "")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "mytodo")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("NATS_URL", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("SESSION_TTL", "720h")
	viper.SetDefault("MAILERSEND_API_KEY", "")
	viper.SetDefault("MAIL_FROM_EMAIL", "no-reply@mytodo.app")
	viper.SetDefault("MAIL_FROM_NAME", "MyTodo")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return &cfg, nil
}
