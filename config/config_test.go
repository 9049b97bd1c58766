package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
api:
  base_uri: https://api.example.com
  timeout: 5s
  asset_base_url: https://cdn.example.com
  health_path: /healthz
upload_keys:
  doctors:
    image: avatar
cors:
  allowed_origins: "https://a.example.com, https://b.example.com"
cache:
  options_ttl: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURI)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/healthz", cfg.API.HealthPath)
	assert.Equal(t, "avatar", cfg.UploadKeys["doctors"]["image"])
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Cache.OptionsTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "api:\n  base_uri: http://localhost:5000\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, "/", cfg.API.HealthPath)
	assert.Equal(t, "directory:notifications", cfg.Redis.Channel)
	assert.Equal(t, []string{"error"}, cfg.Relay.MailLevels)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Notify.BrokerEnabled)
	assert.Equal(t, time.Minute, cfg.Cache.OptionsTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DASH_API_BASE_URI", "https://env.example.com")
	t.Setenv("DASH_SERVER_PORT", "7070")
	t.Setenv("DASH_NOTIFY_BROKER_ENABLED", "true")
	t.Setenv("DASH_MAIL_TO", "ops@example.com")

	cfg, err := Load(writeConfig(t, "api:\n  base_uri: http://file.example.com\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.API.BaseURI)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Notify.BrokerEnabled)
	assert.Equal(t, "ops@example.com", cfg.Mail.To)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			API:    APIConfig{BaseURI: "https://api.example.com"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing base uri", mutate: func(c *Config) { c.API.BaseURI = " " }, wantErr: "api.base_uri is required"},
		{name: "relative base uri", mutate: func(c *Config) { c.API.BaseURI = "/api" }, wantErr: "must be an absolute http(s) URL"},
		{name: "bad scheme", mutate: func(c *Config) { c.API.BaseURI = "ftp://x.example.com" }, wantErr: "must be an absolute http(s) URL"},
		{name: "bad asset url", mutate: func(c *Config) { c.API.AssetBaseURL = "cdn" }, wantErr: "api.asset_base_url"},
		{name: "relative health path", mutate: func(c *Config) { c.API.HealthPath = "healthz" }, wantErr: "api.health_path"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "out of range"},
		{name: "negative timeout", mutate: func(c *Config) { c.API.Timeout = -time.Second }, wantErr: "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToBrokerConfig(t *testing.T) {
	rc := RedisConfig{URL: "redis://r:6379/1", PoolSize: 4, MaxRetries: 2}
	bc := rc.ToBrokerConfig()
	assert.Equal(t, "redis://r:6379/1", bc.URL)
	assert.Equal(t, 4, bc.PoolSize)
	assert.Equal(t, 2, bc.MaxRetries)
}

func TestConversions(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
api:
  base_uri: http://localhost:5000
logger:
  level: debug
  mode: json
mail:
  host: smtp.example.com
  to: ops@example.com
relay:
  retry_attempts: 5
  mail_levels: error,success
`))
	require.NoError(t, err)

	lc := cfg.Logger.ToLoggerConfig()
	assert.True(t, lc.JSON)
	assert.Equal(t, "debug", lc.Level.String())

	ec := cfg.Mail.ToEmailConfig()
	assert.Equal(t, "smtp.example.com", ec.Host)
	assert.Equal(t, 587, ec.Port)
	assert.Equal(t, "ops@example.com", ec.To)

	wc := cfg.ToWorkerConfig()
	assert.Equal(t, "directory:notifications", wc.Channel)
	assert.Equal(t, 5, wc.RetryAttempts)
	assert.Equal(t, []string{"error", "success"}, wc.MailLevels)
	assert.NoError(t, wc.Validate())
}
