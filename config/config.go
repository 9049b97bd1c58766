package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jwalitptl/directory-admin/internal/email"
	"github.com/jwalitptl/directory-admin/pkg/logger"
	"github.com/jwalitptl/directory-admin/pkg/messaging/redis"
	"github.com/jwalitptl/directory-admin/pkg/worker"
)

const EnvPrefix = "DASH"

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size"`
}

// APIConfig points at the directory backend.
type APIConfig struct {
	BaseURI string `mapstructure:"base_uri"`
	// Timeout of zero keeps the transport default.
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	AssetBaseURL string        `mapstructure:"asset_base_url"`
	// HealthPath is sent HEAD by the readiness check.
	HealthPath string `mapstructure:"health_path"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Channel      string        `mapstructure:"channel"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type NotifyConfig struct {
	BrokerEnabled bool          `mapstructure:"broker_enabled"`
	Source        string        `mapstructure:"source"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level"`
	// Mode is "console" or "json".
	Mode string `mapstructure:"mode"`
	File string `mapstructure:"file"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type CacheConfig struct {
	OptionsTTL time.Duration `mapstructure:"options_ttl"`
}

type MailConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	From          string `mapstructure:"from"`
	To            string `mapstructure:"to"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type RelayConfig struct {
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MailLevels    []string      `mapstructure:"mail_levels"`
	HealthPort    int           `mapstructure:"health_port"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Mail      MailConfig      `mapstructure:"mail"`
	Relay     RelayConfig     `mapstructure:"relay"`
	// UploadKeys maps entity to form field to multipart key.
	UploadKeys map[string]map[string]string `mapstructure:"upload_keys"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_size", 10<<20)

	v.SetDefault("api.base_uri", "")
	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("api.user_agent", "directory-admin")
	v.SetDefault("api.asset_base_url", "")
	v.SetDefault("api.health_path", "/")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.channel", "directory:notifications")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("notify.broker_enabled", false)
	v.SetDefault("notify.source", "console")
	v.SetDefault("notify.timeout", 2*time.Second)

	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", "console")
	v.SetDefault("logger.file", "")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("cache.options_ttl", time.Minute)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", "")
	v.SetDefault("mail.subject_prefix", "[directory] ")

	v.SetDefault("relay.retry_attempts", 3)
	v.SetDefault("relay.retry_delay", 2*time.Second)
	v.SetDefault("relay.mail_levels", []string{"error"})
	v.SetDefault("relay.health_port", 8081)
}

// Load reads config.yml from path, or from the usual search paths when path
// is empty. A missing file is not an error; defaults and DASH_* variables
// still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.CORS.AllowedOrigins = trimAll(cfg.CORS.AllowedOrigins)
	cfg.Relay.MailLevels = trimAll(cfg.Relay.MailLevels)

	return &cfg, nil
}

// Validate checks the settings every binary depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURI) == "" {
		return errors.New("api.base_uri is required")
	}
	if err := checkURL("api.base_uri", c.API.BaseURI); err != nil {
		return err
	}
	if c.API.AssetBaseURL != "" {
		if err := checkURL("api.asset_base_url", c.API.AssetBaseURL); err != nil {
			return err
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	if c.API.HealthPath != "" && !strings.HasPrefix(c.API.HealthPath, "/") {
		return fmt.Errorf("api.health_path %q must start with /", c.API.HealthPath)
	}
	return nil
}

// ToBrokerConfig converts the redis section for the messaging package.
func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

func (c *LoggerConfig) ToLoggerConfig() *logger.Config {
	return &logger.Config{
		Level: logger.ParseLevel(c.Level),
		JSON:  strings.EqualFold(c.Mode, "json"),
		File:  c.File,
	}
}

func (c *MailConfig) ToEmailConfig() email.Config {
	return email.Config{
		Host:          c.Host,
		Port:          c.Port,
		Username:      c.Username,
		Password:      c.Password,
		From:          c.From,
		To:            c.To,
		SubjectPrefix: c.SubjectPrefix,
	}
}

// ToWorkerConfig builds the relay settings; the channel comes from the redis
// section so publishers and the relay agree on it.
func (c *Config) ToWorkerConfig() worker.RelayConfig {
	return worker.RelayConfig{
		Channel:       c.Redis.Channel,
		RetryAttempts: c.Relay.RetryAttempts,
		RetryDelay:    c.Relay.RetryDelay,
		MailLevels:    c.Relay.MailLevels,
	}
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s %q must be an absolute http(s) URL", key, raw)
	}
	return nil
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
