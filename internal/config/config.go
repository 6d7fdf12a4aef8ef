package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kiwari-pos/cafeteria/internal/enum"
)

var (
	ErrInvalidOrderMode     = errors.New("ORDER_MODE must be local or remote")
	ErrInvalidStorageDriver = errors.New("STORAGE_DRIVER must be memory, file, redis or postgres")
	ErrMissingAPIBase       = errors.New("API_BASE is required in remote mode")
	ErrIncompleteAuth       = errors.New("COGNITO_CLIENT_ID and COGNITO_REDIRECT_URI are required when COGNITO_DOMAIN is set")
	ErrMissingStorageURL    = errors.New("storage driver needs a connection URL")
)

type Config struct {
	Port           string
	OrderMode      string
	APIBase        string
	StorageDriver  string
	DataDir        string
	DatabaseURL    string
	RedisURL       string
	SessionSecret  string
	MenuFile       string
	LogLevel       string
	AllowedOrigins []string

	CognitoDomain       string
	CognitoClientID     string
	CognitoRedirectURI  string
	CognitoLogoutURI    string
	CognitoScopes       string
	CognitoResponseType string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8081"),
		OrderMode:      getEnv("ORDER_MODE", enum.OrderModeLocal),
		APIBase:        strings.TrimRight(getEnv("API_BASE", ""), "/"),
		StorageDriver:  getEnv("STORAGE_DRIVER", enum.StorageDriverFile),
		DataDir:        getEnv("DATA_DIR", "./data"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		SessionSecret:  getEnv("SESSION_SECRET", "dev-secret-change-in-production"),
		MenuFile:       getEnv("MENU_FILE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),

		CognitoDomain:       strings.TrimRight(getEnv("COGNITO_DOMAIN", ""), "/"),
		CognitoClientID:     getEnv("COGNITO_CLIENT_ID", ""),
		CognitoRedirectURI:  getEnv("COGNITO_REDIRECT_URI", ""),
		CognitoLogoutURI:    getEnv("COGNITO_LOGOUT_URI", ""),
		CognitoScopes:       getEnv("COGNITO_SCOPES", "openid email"),
		CognitoResponseType: getEnv("COGNITO_RESPONSE_TYPE", "token"),
	}
}

// AuthEnabled reports whether the identity provider sign-in is configured.
func (c *Config) AuthEnabled() bool {
	return c.CognitoDomain != ""
}

// Validate checks combinations Load cannot default away.
func (c *Config) Validate() error {
	switch c.OrderMode {
	case enum.OrderModeLocal:
	case enum.OrderModeRemote:
		if c.APIBase == "" {
			return ErrMissingAPIBase
		}
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidOrderMode, c.OrderMode)
	}

	switch c.StorageDriver {
	case enum.StorageDriverMemory, enum.StorageDriverFile:
	case enum.StorageDriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL", ErrMissingStorageURL)
		}
	case enum.StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingStorageURL)
		}
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidStorageDriver, c.StorageDriver)
	}

	if c.AuthEnabled() && (c.CognitoClientID == "" || c.CognitoRedirectURI == "") {
		return ErrIncompleteAuth
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
