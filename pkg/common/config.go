package common

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const EnvKeyConsoleLogDir string = "CONSOLE_LOG_DIR"

type Config struct {
	DbType         string
	DbPath         string
	HttpHostPort   string
	ApiBaseURL     string
	ApiTimeout     time.Duration
	SessionSecret  string
	SessionMaxAge  int
	AllowedOrigins []string
	LoginRate      float64
	LoginBurst     int
	LogDir         string
}

// LoadConfig reads the console configuration from the environment. A .env file,
// if any, must already be loaded.
func LoadConfig() (*Config, error) {
	var err error

	cfg := &Config{
		DbType:       envOrDefault(EnvKeyConsoleDbType, "file"),
		DbPath:       envOrDefault(EnvKeyConsoleDbPath, "console.db"),
		HttpHostPort: envOrDefault(EnvKeyConsoleHttpHostPort, ":1080"),
		ApiBaseURL:   strings.TrimRight(envOrDefault(EnvKeyConsoleApiBaseURL, "http://localhost:5000"), "/"),
		LogDir:       strings.TrimSpace(os.Getenv(EnvKeyConsoleLogDir)),
	}

	if cfg.DbType != "file" && cfg.DbType != "memory" {
		return nil, fmt.Errorf("unknown %s: %s", EnvKeyConsoleDbType, cfg.DbType)
	}

	if u, perr := url.Parse(cfg.ApiBaseURL); perr != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s: %q", EnvKeyConsoleApiBaseURL, cfg.ApiBaseURL)
	}

	var timeoutSec int
	if timeoutSec, err = intEnvOrDefault(EnvKeyConsoleApiTimeoutSec, 10); err != nil {
		return nil, err
	}
	cfg.ApiTimeout = time.Duration(timeoutSec) * time.Second

	cfg.SessionSecret = strings.TrimSpace(os.Getenv(EnvKeyConsoleSessionSecret))
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("%s must be set and at least 32 characters long", EnvKeyConsoleSessionSecret)
	}

	if cfg.SessionMaxAge, err = intEnvOrDefault(EnvKeyConsoleSessionMaxAge, 7*24*3600); err != nil {
		return nil, err
	}

	if origins := strings.TrimSpace(os.Getenv(EnvKeyConsoleAllowedOrigins)); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if cfg.LoginRate, err = strconv.ParseFloat(envOrDefault(EnvKeyConsoleLoginRate, "1"), 64); err != nil {
		return nil, fmt.Errorf("invalid %s, should be a float64 value", EnvKeyConsoleLoginRate)
	}

	if cfg.LoginBurst, err = intEnvOrDefault(EnvKeyConsoleLoginBurst, 5); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnvOrDefault(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s, should be an int value", key)
	}
	return n, nil
}
