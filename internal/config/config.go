package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Magic link delivery modes.
const (
	DeliveryFirebase = "firebase" // Firebase sends the email itself
	DeliverySMTP     = "smtp"     // We generate the link with the Admin SDK and mail it
)

// Config holds all configuration for the application.
type Config struct {
	Port     string `mapstructure:"PORT"`
	GinMode  string `mapstructure:"GIN_MODE"`
	LogLevel string `mapstructure:"LOG_LEVEL"` // Empty keeps the mode's default level

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseAPIKey                   string `mapstructure:"FIREBASE_API_KEY"` // Web API key used for Identity Toolkit calls
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	GoogleOAuthClientID     string `mapstructure:"GOOGLE_OAUTH_CLIENT_ID"`
	GoogleOAuthClientSecret string `mapstructure:"GOOGLE_OAUTH_CLIENT_SECRET"`
	GoogleOAuthRedirectURL  string `mapstructure:"GOOGLE_OAUTH_REDIRECT_URL"`

	ClientURL string `mapstructure:"CLIENT_URL"`

	MagicLinkDelivery      string        `mapstructure:"MAGIC_LINK_DELIVERY"`
	MagicLinkEmailTTL      time.Duration `mapstructure:"MAGIC_LINK_EMAIL_TTL"`
	MagicLinkRatePerMinute int           `mapstructure:"MAGIC_LINK_RATE_PER_MINUTE"`

	SMTPHost   string `mapstructure:"SMTP_HOST"`
	SMTPPort   string `mapstructure:"SMTP_PORT"`
	SMTPUser   string `mapstructure:"SMTP_USER"`
	SMTPPass   string `mapstructure:"SMTP_PASS"`
	SMTPSender string `mapstructure:"SMTP_SENDER"`

	RedisAddress  string `mapstructure:"REDIS_ADDRESS"` // Empty means in-memory store
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RabbitMQURL     string `mapstructure:"RABBITMQ_URL"` // Empty disables event publishing
	AuthEventsQueue string `mapstructure:"AUTH_EVENTS_QUEUE"`

	EncryptionKey     string `mapstructure:"ENCRYPTION_KEY"` // Base64 encoded, optional
	SeedTransactional bool   `mapstructure:"SEED_TRANSACTIONAL"`
}

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"LOG_LEVEL",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_API_KEY",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"GOOGLE_OAUTH_CLIENT_ID",
	"GOOGLE_OAUTH_CLIENT_SECRET",
	"GOOGLE_OAUTH_REDIRECT_URL",
	"CLIENT_URL",
	"MAGIC_LINK_DELIVERY",
	"MAGIC_LINK_EMAIL_TTL",
	"MAGIC_LINK_RATE_PER_MINUTE",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USER",
	"SMTP_PASS",
	"SMTP_SENDER",
	"REDIS_ADDRESS",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"RABBITMQ_URL",
	"AUTH_EVENTS_QUEUE",
	"ENCRYPTION_KEY",
	"SEED_TRANSACTIONAL",
}

// LoadConfig loads configuration from environment variables using Viper.
// When PATH_CONFIG points to a file (yaml, json, env...), its values are read first
// and environment variables take precedence over them.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("MAGIC_LINK_DELIVERY", DeliveryFirebase)
	v.SetDefault("MAGIC_LINK_EMAIL_TTL", "24h")
	v.SetDefault("MAGIC_LINK_RATE_PER_MINUTE", 5)
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("AUTH_EVENTS_QUEUE", "vibewise.auth.events")

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path := v.GetString("PATH_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and cross-field rules.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.FirebaseAPIKey == "" {
		return errors.New("FIREBASE_API_KEY is required")
	}
	if c.GoogleOAuthClientID == "" || c.GoogleOAuthClientSecret == "" {
		return errors.New("GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET are required")
	}
	if c.GoogleOAuthRedirectURL == "" {
		return errors.New("GOOGLE_OAUTH_REDIRECT_URL is required")
	}

	switch c.MagicLinkDelivery {
	case DeliveryFirebase:
	case DeliverySMTP:
		if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPass == "" || c.SMTPSender == "" {
			return errors.New("SMTP_HOST, SMTP_USER, SMTP_PASS and SMTP_SENDER are required when MAGIC_LINK_DELIVERY=smtp")
		}
	default:
		return fmt.Errorf("MAGIC_LINK_DELIVERY must be %q or %q, got %q", DeliveryFirebase, DeliverySMTP, c.MagicLinkDelivery)
	}

	if c.MagicLinkRatePerMinute <= 0 {
		return errors.New("MAGIC_LINK_RATE_PER_MINUTE must be positive")
	}

	if c.EncryptionKey != "" {
		if _, err := c.EncryptionKeyBytes(); err != nil {
			return err
		}
	}
	return nil
}

// EncryptionKeyBytes decodes ENCRYPTION_KEY. It returns nil, nil when no key is configured.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ENCRYPTION_KEY from base64: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("ENCRYPTION_KEY must be a 32-byte key (AES-256), after base64 decoding")
	}
	return key, nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}
