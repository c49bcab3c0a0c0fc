package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

const (
	EnvPrefix         = "FEEDBACKAPI"
	MinJWTSecretBytes = 32
)

type Config struct {
	Addr      string `mapstructure:"addr"`
	DBPath    string `mapstructure:"db-path"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	DevMode   bool   `mapstructure:"dev-mode"`

	JWTSecret  string        `mapstructure:"jwt-secret"`
	SessionTTL time.Duration `mapstructure:"session-ttl"`

	DefaultOwnerEmail string `mapstructure:"default-owner-email"`
	UnknownKeyPolicy  string `mapstructure:"unknown-key-policy"`
	IngestRateLimit   string `mapstructure:"ingest-rate-limit"`

	NotifyGrace   time.Duration `mapstructure:"notify-grace"`
	NotifyTimeout time.Duration `mapstructure:"notify-timeout"`
	WebhookURL    string        `mapstructure:"webhook-url"`
	WebhookSecret string        `mapstructure:"webhook-secret"`
	RedisURL      string        `mapstructure:"redis-url"`
	RedisChannel  string        `mapstructure:"redis-channel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db-path", "./feedbackapi.sqlite")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "json")
	v.SetDefault("dev-mode", false)
	v.SetDefault("jwt-secret", "")
	v.SetDefault("session-ttl", 24*time.Hour)
	v.SetDefault("default-owner-email", "")
	v.SetDefault("unknown-key-policy", string(domain.CredentialDegrade))
	v.SetDefault("ingest-rate-limit", "60-M")
	v.SetDefault("notify-grace", 3*time.Second)
	v.SetDefault("notify-timeout", 30*time.Second)
	v.SetDefault("webhook-url", "")
	v.SetDefault("webhook-secret", "")
	v.SetDefault("redis-url", "")
	v.SetDefault("redis-channel", "feedback.created")
}

// Load resolves configuration from defaults, an optional file at path,
// FEEDBACKAPI_* environment variables and finally overrides, in increasing
// precedence. Override keys use the same dashed names as the file.
func Load(path string, overrides map[string]any) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db-path is required"))
	}
	if c.JWTSecret == "" && !c.DevMode {
		errs = append(errs, errors.New("jwt-secret is required outside dev-mode"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < MinJWTSecretBytes {
		errs = append(errs, fmt.Errorf("jwt-secret must be at least %d bytes", MinJWTSecretBytes))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session-ttl must be positive"))
	}
	if _, err := domain.ParseCredentialPolicy(c.UnknownKeyPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.NotifyGrace <= 0 {
		errs = append(errs, errors.New("notify-grace must be positive"))
	}
	if c.NotifyTimeout < c.NotifyGrace {
		errs = append(errs, errors.New("notify-timeout must not be shorter than notify-grace"))
	}
	if c.WebhookSecret != "" && c.WebhookURL == "" {
		errs = append(errs, errors.New("webhook-secret set without webhook-url"))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log-format must be json or console, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

func (c Config) CredentialPolicy() domain.CredentialPolicy {
	policy, _ := domain.ParseCredentialPolicy(c.UnknownKeyPolicy)
	return policy
}
