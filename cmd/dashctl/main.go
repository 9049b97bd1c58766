// Command dashctl drives the directory stores from a terminal.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
)

// envConfig is read from DASH_* variables, after an optional .env file.
type envConfig struct {
	BaseURI      string        `envconfig:"BASE_URI" required:"true"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"30s"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"warn"`
	AssetBaseURL string        `envconfig:"ASSET_BASE_URL"`
	// RedisURL, when set, also publishes every outcome to the relay channel.
	RedisURL     string `envconfig:"REDIS_URL"`
	RedisChannel string `envconfig:"REDIS_CHANNEL" default:"directory:notifications"`
}

func loadEnv() (envConfig, error) {
	_ = godotenv.Load() // a missing .env is fine

	var cfg envConfig
	if err := envconfig.Process("dash", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	cmd := newRootCmd(loadEnv, os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			fmt.Fprintln(os.Stderr, "error:", appErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
