/*
Package configs loads the SDK, CLI and token gateway settings.

Values come from environment variables, optionally pre-seeded from .env files. Every key
has a default where one makes sense; credentials and storage settings are validated.
*/
package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultProviderHost is the message provider base URL.
	DefaultProviderHost = "https://msg-bussiness.tabtab.me"

	// DefaultTokenTTL is the lifetime of client, user and grant tokens (7 days).
	DefaultTokenTTL = 7 * 24 * time.Hour

	// DefaultRequestTimeout bounds a single provider request.
	DefaultRequestTimeout = 30 * time.Second
)

// Authorization header formats. A deployment picks one and keeps it.
const (
	AuthHeaderBearer = "bearer"
	AuthHeaderRaw    = "raw"
)

// AppConfig contains every configuration parameter of the SDK binaries.
type AppConfig struct {
	// General Settings
	Environment string

	// Provider Settings
	ProviderHost   string
	ClientID       string
	ClientSecret   string
	TokenTTL       time.Duration
	GrantTTL       time.Duration
	RequestTimeout time.Duration
	AuthHeader     string

	// Gateway Settings
	Port           int
	AllowedOrigins []string
	GrantRate      float64
	GrantBurst     int

	// S3 Avatar Storage Settings (optional)
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
}

// IsDevelopment reports whether the development environment is active.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// StorageEnabled reports whether S3 avatar storage is configured.
func (c *AppConfig) StorageEnabled() bool {
	return c.S3BucketName != ""
}

// LoadConfig reads the configuration from the environment. envFiles are loaded first with
// godotenv (existing variables win); with no files a ".env" in the working directory is
// tried. Missing files are ignored.
func LoadConfig(envFiles ...string) (*AppConfig, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg := &AppConfig{}

	// --- General Settings ---
	cfg.Environment = getenv("ENVIRONMENT", "development")

	// --- Provider Settings ---
	cfg.ProviderHost = strings.TrimRight(getenv("ANYCHAT_HOST", DefaultProviderHost), "/")
	if !strings.HasPrefix(cfg.ProviderHost, "http://") && !strings.HasPrefix(cfg.ProviderHost, "https://") {
		return nil, fmt.Errorf("ANYCHAT_HOST must be an http(s) URL, got %q", cfg.ProviderHost)
	}

	cfg.ClientID = strings.TrimSpace(os.Getenv("ANYCHAT_CLIENT_ID"))
	if cfg.ClientID == "" {
		return nil, errors.New("ANYCHAT_CLIENT_ID environment variable is required")
	}

	cfg.ClientSecret = os.Getenv("ANYCHAT_CLIENT_SECRET")
	if cfg.ClientSecret == "" {
		return nil, errors.New("ANYCHAT_CLIENT_SECRET environment variable is required")
	}

	var err error
	if cfg.TokenTTL, err = getSeconds("ANYCHAT_TOKEN_TTL", DefaultTokenTTL); err != nil {
		return nil, err
	}
	if cfg.GrantTTL, err = getSeconds("ANYCHAT_GRANT_TTL", DefaultTokenTTL); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getSeconds("ANYCHAT_REQUEST_TIMEOUT", DefaultRequestTimeout); err != nil {
		return nil, err
	}

	cfg.AuthHeader = strings.ToLower(getenv("ANYCHAT_AUTH_HEADER", AuthHeaderBearer))
	if cfg.AuthHeader != AuthHeaderBearer && cfg.AuthHeader != AuthHeaderRaw {
		return nil, fmt.Errorf("ANYCHAT_AUTH_HEADER must be %q or %q, got %q", AuthHeaderBearer, AuthHeaderRaw, cfg.AuthHeader)
	}

	// --- Gateway Settings ---
	port, err := strconv.Atoi(getenv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	if port < 1024 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", port, 1024, 65535)
	}
	cfg.Port = port

	cfg.AllowedOrigins = []string{}
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	cfg.GrantRate, err = strconv.ParseFloat(getenv("GRANT_RATE", "2"), 64)
	if err != nil || cfg.GrantRate <= 0 {
		return nil, fmt.Errorf("invalid GRANT_RATE environment variable: %q", os.Getenv("GRANT_RATE"))
	}
	cfg.GrantBurst, err = strconv.Atoi(getenv("GRANT_BURST", "10"))
	if err != nil || cfg.GrantBurst <= 0 {
		return nil, fmt.Errorf("invalid GRANT_BURST environment variable: %q", os.Getenv("GRANT_BURST"))
	}

	// --- S3 Avatar Storage Settings ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	if cfg.S3BucketName != "" {
		cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT environment variable is required when S3_BUCKET_NAME is set")
		}

		cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
		if cfg.S3AccessKeyID == "" {
			return nil, fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required when S3_BUCKET_NAME is set")
		}

		cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
		if cfg.S3SecretAccessKey == "" {
			return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required when S3_BUCKET_NAME is set")
		}

		cfg.S3PublicBaseURL = strings.TrimRight(os.Getenv("S3_PUBLIC_BASE_URL"), "/")
	}

	return cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getSeconds parses a positive number of seconds.
func getSeconds(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("invalid %s environment variable: %q must be a positive number of seconds", key, raw)
	}
	return time.Duration(seconds) * time.Second, nil
}
