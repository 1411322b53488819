package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Pricing       PricingConfig       `mapstructure:"pricing"`
	FX            FXConfig            `mapstructure:"fx"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Env           string              `mapstructure:"env"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m,max=1h"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
	LoginRatePerSecond  int           `mapstructure:"login_rate_per_second"`
	LoginBurst          int           `mapstructure:"login_burst"`
}

// PricingConfig holds the conversion defaults used when a reviewer does not override them.
type PricingConfig struct {
	DefaultExchangeRate     float64 `mapstructure:"default_exchange_rate" validate:"gt=0"`
	DefaultMarkupPercentage float64 `mapstructure:"default_markup_percentage" validate:"min=0"`
	LegacyINRPerUSD         float64 `mapstructure:"legacy_inr_per_usd" validate:"gt=0"`
}

type FXConfig struct {
	SourceURL string        `mapstructure:"source_url" validate:"omitempty,url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

const (
	DefaultAccessTokenDuration = 30 * time.Minute
	DefaultExchangeRate        = 0.012
	DefaultMarkupPercentage    = 20.0
	DefaultLegacyINRPerUSD     = 83.50
)

// LoadConfigFromEnv builds the configuration from plain environment variables.
// Used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Security: SecurityConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			AccessTokenDuration: getEnvAsDuration("ACCESS_TOKEN_DURATION", DefaultAccessTokenDuration),
			BCryptCost:          getEnvAsInt("BCRYPT_COST", 12),
			LoginRatePerSecond:  getEnvAsInt("LOGIN_RATE_PER_SECOND", 5),
			LoginBurst:          getEnvAsInt("LOGIN_BURST", 10),
		},
		Pricing: PricingConfig{
			DefaultExchangeRate:     getEnvAsFloat("DEFAULT_EXCHANGE_RATE", DefaultExchangeRate),
			DefaultMarkupPercentage: getEnvAsFloat("DEFAULT_MARKUP_PERCENTAGE", DefaultMarkupPercentage),
			LegacyINRPerUSD:         getEnvAsFloat("LEGACY_INR_PER_USD", DefaultLegacyINRPerUSD),
		},
		FX: FXConfig{
			SourceURL: getEnv("FX_SOURCE_URL", ""),
			Timeout:   getEnvAsDuration("FX_TIMEOUT", 5*time.Second),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnvAsBool("METRICS_ENABLED", true),
				Path:    getEnv("METRICS_PATH", "/metrics"),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	return cfg
}

// ApplyDefaults fills zero values that would otherwise make the service unusable.
func (c *Config) ApplyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Security.AccessTokenDuration == 0 {
		c.Security.AccessTokenDuration = DefaultAccessTokenDuration
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 12
	}
	if c.Pricing.DefaultExchangeRate == 0 {
		c.Pricing.DefaultExchangeRate = DefaultExchangeRate
	}
	if c.Pricing.DefaultMarkupPercentage == 0 {
		c.Pricing.DefaultMarkupPercentage = DefaultMarkupPercentage
	}
	if c.Pricing.LegacyINRPerUSD == 0 {
		c.Pricing.LegacyINRPerUSD = DefaultLegacyINRPerUSD
	}
	if c.FX.Timeout == 0 {
		c.FX.Timeout = 5 * time.Second
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = "/metrics"
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Pricing.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("pricing config: %v", err))
	}

	if err := c.FX.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("fx config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

// SQLDriverName returns the database/sql driver registered for the configured backend.
func (c *DatabaseConfig) SQLDriverName() string {
	if c.Driver == "sqlite" {
		return "sqlite3"
	}
	return "pgx"
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if c.AccessTokenDuration < time.Minute || c.AccessTokenDuration > time.Hour {
		return errors.New("access_token_duration must be between 1m and 1h")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 4 and 15")
	}
	return nil
}

func (c *PricingConfig) Validate() error {
	if c.DefaultExchangeRate <= 0 {
		return errors.New("default_exchange_rate must be positive")
	}
	if c.DefaultMarkupPercentage < 0 {
		return errors.New("default_markup_percentage cannot be negative")
	}
	if c.LegacyINRPerUSD <= 0 {
		return errors.New("legacy_inr_per_usd must be positive")
	}
	return nil
}

func (c *FXConfig) Validate() error {
	if c.SourceURL == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(c.SourceURL); err != nil {
		return fmt.Errorf("invalid source_url: %w", err)
	}
	return nil
}
