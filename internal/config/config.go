// Package config loads the vault's settings.
//
// WHERE SETTINGS COME FROM (later wins):
//
//  1. NewDefaultConfig: enough to run locally against data/vault.db
//  2. the YAML file named by --config / VAULT_CONFIG_FILE, if it exists;
//     ${VAR} references inside it are expanded from the environment
//  3. plain environment variables (PORT, JWT_SECRET, DATABASE_URL, ...),
//     which is how hosted deployments configure the server
//
// Load does not validate. Each command checks the sections it needs:
// `vault serve` calls Validate, `vault tui` only Client.Validate, so a
// terminal user never has to provide a JWT secret.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Store  StoreConfig       `yaml:"store"`
	Auth   AuthConfig        `yaml:"auth"`
	Client ClientConfig      `yaml:"client"`
}

// Validate checks everything the HTTP server needs.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// NewLogger builds the process logger described by the config.
func (c *ApplicationConfig) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

type HTTPConfig struct {
	Port int `yaml:"port"`
	// BaseURL is the public address, used for the GitHub callback default.
	BaseURL     string   `yaml:"base_url"`
	CORSOrigins []string `yaml:"cors_origins"`
}

func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.BaseURL, is.URL),
	)
}

// StoreConfig selects where records live. SQLite is the local default;
// production points DATABASE_URL at the hosted Postgres (Supabase) database.
type StoreConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	DatabaseURL string `yaml:"database_url"`
	TablePrefix string `yaml:"table_prefix"`
}

func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.SQLitePath, validation.When(c.Driver == DriverSQLite, validation.Required)),
		validation.Field(&c.DatabaseURL, validation.When(c.Driver == DriverPostgres, validation.Required)),
	)
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	// AdminPasswordHash is a bcrypt hash (see `vault hash-password`).
	// Empty disables password login.
	AdminPasswordHash string       `yaml:"admin_password_hash"`
	CookieSecure      bool         `yaml:"cookie_secure"`
	GitHub            GitHubConfig `yaml:"github"`
}

func (c *AuthConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.JWTSecret, validation.Required, validation.RuneLength(16, 0)),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Minute)),
	); err != nil {
		return err
	}
	if c.AdminPasswordHash == "" && !c.GitHub.Enabled() {
		return errors.New("no admin login configured: set admin_password_hash or github.client_id")
	}
	return c.GitHub.Validate()
}

type GitHubConfig struct {
	ClientID      string   `yaml:"client_id"`
	ClientSecret  string   `yaml:"client_secret"`
	CallbackURL   string   `yaml:"callback_url"`
	AllowedLogins []string `yaml:"allowed_logins"`
}

// Enabled reports whether the GitHub sign-in routes should be mounted.
func (c *GitHubConfig) Enabled() bool {
	return c.ClientID != ""
}

func (c *GitHubConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.ClientSecret, validation.Required),
		validation.Field(&c.CallbackURL, validation.Required, is.URL),
		validation.Field(&c.AllowedLogins, validation.Required.Error("at least one login must be allowed")),
	)
}

// ClientConfig is what `vault tui` needs to reach a running server.
type ClientConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

func (c *ClientConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, is.URL),
	)
}

// NewDefaultConfig returns settings for a local run.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
			HTTP: HTTPConfig{
				Port:    8080,
				BaseURL: "http://localhost:8080",
			},
		},
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLitePath: "data/vault.db",
		},
		Auth: AuthConfig{
			TokenTTL: 12 * time.Hour,
		},
		Client: ClientConfig{
			URL: "http://localhost:8080",
		},
	}
}

// Load builds the effective config: defaults, then the file at path (a
// missing file is not an error), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := decodeFile(path, cfg); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: checking %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillDerived()
	return cfg, nil
}

func decodeFile(path string, target *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables. lookup is
// os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		c.App.HTTP.Port = port
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		if err := c.App.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("config: invalid LOG_LEVEL %q: %w", v, err)
		}
	}
	str("LOG_FORMAT", &c.App.LogFormat)
	str("BASE_URL", &c.App.HTTP.BaseURL)

	str("STORE_DRIVER", &c.Store.Driver)
	str("DB_PATH", &c.Store.SQLitePath)
	str("TABLE_PREFIX", &c.Store.TablePrefix)
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Store.DatabaseURL = v
		// A database URL on its own means "use it".
		if _, explicit := lookup("STORE_DRIVER"); !explicit {
			c.Store.Driver = DriverPostgres
		}
	}

	str("JWT_SECRET", &c.Auth.JWTSecret)
	if v, ok := lookup("TOKEN_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid TOKEN_TTL %q: %w", v, err)
		}
		c.Auth.TokenTTL = ttl
	}
	str("ADMIN_PASSWORD_HASH", &c.Auth.AdminPasswordHash)
	if v, ok := lookup("COOKIE_SECURE"); ok && v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid COOKIE_SECURE %q: %w", v, err)
		}
		c.Auth.CookieSecure = secure
	}
	str("GITHUB_CLIENT_ID", &c.Auth.GitHub.ClientID)
	str("GITHUB_CLIENT_SECRET", &c.Auth.GitHub.ClientSecret)
	str("GITHUB_CALLBACK_URL", &c.Auth.GitHub.CallbackURL)
	if v, ok := lookup("GITHUB_ALLOWED_LOGINS"); ok && v != "" {
		c.Auth.GitHub.AllowedLogins = splitList(v)
	}

	str("VAULT_URL", &c.Client.URL)
	str("VAULT_TOKEN", &c.Client.Token)
	return nil
}

func (c *Config) fillDerived() {
	if c.Auth.GitHub.CallbackURL == "" && c.App.HTTP.BaseURL != "" {
		c.Auth.GitHub.CallbackURL = strings.TrimRight(c.App.HTTP.BaseURL, "/") + "/auth/github/callback"
	}
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
