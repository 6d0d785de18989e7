package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by the loader. Env values override
// the YAML config file.
const (
	EnvConfigPath         = "CONFIG_PATH"
	EnvDBConnection       = "DB_CONNECTION"
	EnvSessionSecret      = "SESSION_SECRET"
	EnvSessionExpiry      = "SESSION_EXPIRY"
	EnvAdminSetupKey      = "ADMIN_SETUP_KEY"
	EnvBackendAPIURL      = "BACKEND_API_URL"
	EnvAdminSecret        = "ADMIN_SECRET"
	EnvFirestoreProjectID = "FIRESTORE_PROJECT_ID"
	EnvFirestoreCredsFile = "FIRESTORE_CREDENTIALS_FILE"
	EnvClientURL          = "CLIENT_URL"
	EnvRedisAddr          = "REDIS_ADDR"
	EnvRedisPassword      = "REDIS_PASSWORD"
	EnvRedisDB            = "REDIS_DB"
	EnvRedisPrefix        = "REDIS_PREFIX"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// SessionConfig holds session token secret and expiry settings.
type SessionConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// BackendConfig holds the external push-delivery backend settings.
type BackendConfig struct {
	BaseURL     string `yaml:"base-url"`
	AdminSecret string `yaml:"admin-secret"`
}

// WaitlistConfig holds the Firestore waitlist store settings.
type WaitlistConfig struct {
	ProjectID       string `yaml:"project-id"`
	CredentialsFile string `yaml:"credentials-file"`
	Collection      string `yaml:"collection"`
}

// RedisConfig holds optional Redis settings for the shared login limiter.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LoadDatabaseDSN reads the database DSN from env or the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultSessionExpiry is the admin session lifetime when unset.
const defaultSessionExpiry = 7 * 24 * time.Hour

// LoadSessionConfig loads session settings from the YAML config file with
// env overrides.
func LoadSessionConfig(configPath string) (SessionConfig, error) {
	// fileConfig maps the YAML fields needed for session settings.
	type fileConfig struct {
		Session SessionConfig `yaml:"session"`
	}

	result := SessionConfig{Expiry: defaultSessionExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Session
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvSessionSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvSessionExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultSessionExpiry
	}
	return result, nil
}

// LoadBackendConfig loads delivery backend settings from the YAML config
// file with env overrides.
func LoadBackendConfig(configPath string) BackendConfig {
	// fileConfig maps the YAML fields needed for the backend proxy.
	type fileConfig struct {
		Backend BackendConfig `yaml:"backend"`
	}

	var result BackendConfig
	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Backend
		}
	}

	if base := strings.TrimSpace(os.Getenv(EnvBackendAPIURL)); base != "" {
		result.BaseURL = base
	}
	if secret := strings.TrimSpace(os.Getenv(EnvAdminSecret)); secret != "" {
		result.AdminSecret = secret
	}
	return result
}

// LoadWaitlistConfig loads Firestore waitlist settings from the YAML config
// file with env overrides.
func LoadWaitlistConfig(configPath string) WaitlistConfig {
	// fileConfig maps the YAML fields needed for the waitlist store.
	type fileConfig struct {
		Waitlist WaitlistConfig `yaml:"waitlist"`
	}

	var result WaitlistConfig
	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Waitlist
		}
	}

	if projectID := strings.TrimSpace(os.Getenv(EnvFirestoreProjectID)); projectID != "" {
		result.ProjectID = projectID
	}
	if credsFile := strings.TrimSpace(os.Getenv(EnvFirestoreCredsFile)); credsFile != "" {
		result.CredentialsFile = credsFile
	}
	if strings.TrimSpace(result.Collection) == "" {
		result.Collection = "waitlist"
	}
	return result
}

// LoadRedisConfig loads Redis limiter settings from the YAML config file
// with env overrides. Empty Addr disables the Redis backend.
func LoadRedisConfig(configPath string) RedisConfig {
	// fileConfig maps the YAML fields needed for the Redis limiter.
	type fileConfig struct {
		Redis RedisConfig `yaml:"redis"`
	}

	var result RedisConfig
	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Redis
		}
	}

	if addr := strings.TrimSpace(os.Getenv(EnvRedisAddr)); addr != "" {
		result.Addr = addr
	}
	if password := strings.TrimSpace(os.Getenv(EnvRedisPassword)); password != "" {
		result.Password = password
	}
	if dbRaw := strings.TrimSpace(os.Getenv(EnvRedisDB)); dbRaw != "" {
		if dbNum, errParse := strconv.Atoi(dbRaw); errParse == nil && dbNum >= 0 {
			result.DB = dbNum
		}
	}
	if prefix := strings.TrimSpace(os.Getenv(EnvRedisPrefix)); prefix != "" {
		result.Prefix = prefix
	}
	return result
}

// LoadAdminSetupKey returns the setup key guarding admin bootstrap, empty
// when the setup endpoint is disabled.
func LoadAdminSetupKey() string {
	return strings.TrimSpace(os.Getenv(EnvAdminSetupKey))
}
