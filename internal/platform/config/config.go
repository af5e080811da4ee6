package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile           = ".env"
	defaultPort              = "8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultUpstreamBaseURL   = "https://dummyjson.com"
	defaultUpstreamTimeout   = 10 * time.Second
	defaultStorePath         = "storefront.db"
	defaultSessionTTL        = 12 * time.Hour
	defaultCatalogPageSize   = 10
	defaultLowStockThreshold = 10
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Store    StoreConfig
	Session  SessionConfig
	Catalog  CatalogConfig
	Admin    AdminConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// UpstreamConfig points at the remote catalog API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig locates the embedded key-value store file.
type StoreConfig struct {
	Path string
}

// SessionConfig controls session token minting.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// CatalogConfig tunes catalog listing defaults.
type CatalogConfig struct {
	DefaultPageSize   int
	LowStockThreshold int
}

// AdminConfig assigns elevated roles to known usernames. The upstream login
// endpoint carries no role information, so role assignment is deployment
// configuration.
type AdminConfig struct {
	AdminUsernames   []string
	ManagerUsernames []string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env
// overrides, and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Upstream: UpstreamConfig{
			BaseURL: stringWithDefault(lookup, "API_UPSTREAM_BASE_URL", defaultUpstreamBaseURL),
			Timeout: durationWithDefault(lookup, "API_UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
		},
		Store: StoreConfig{
			Path: stringWithDefault(lookup, "API_STORE_PATH", defaultStorePath),
		},
		Session: SessionConfig{
			Secret: stringWithDefault(lookup, "API_SESSION_SECRET", ""),
			TTL:    durationWithDefault(lookup, "API_SESSION_TTL", defaultSessionTTL),
		},
		Catalog: CatalogConfig{
			DefaultPageSize:   intWithDefault(lookup, "API_CATALOG_PAGE_SIZE", defaultCatalogPageSize),
			LowStockThreshold: intWithDefault(lookup, "API_CATALOG_LOW_STOCK_THRESHOLD", defaultLowStockThreshold),
		},
		Admin: AdminConfig{
			AdminUsernames:   csvWithDefault(lookup, "API_ADMIN_USERNAMES"),
			ManagerUsernames: csvWithDefault(lookup, "API_MANAGER_USERNAMES"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Upstream.BaseURL) == "" {
		missing = append(missing, "Upstream.BaseURL")
	}
	if cfg.Upstream.Timeout <= 0 {
		missing = append(missing, "Upstream.Timeout")
	}
	if strings.TrimSpace(cfg.Store.Path) == "" {
		missing = append(missing, "Store.Path")
	}
	if strings.TrimSpace(cfg.Session.Secret) == "" {
		missing = append(missing, "Session.Secret")
	}
	if cfg.Session.TTL <= 0 {
		missing = append(missing, "Session.TTL")
	}
	if cfg.Catalog.DefaultPageSize <= 0 {
		missing = append(missing, "Catalog.DefaultPageSize")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
