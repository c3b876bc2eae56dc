// Package config provides configuration management for the daytrade predictor.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Data         DataConfig         `mapstructure:"data" validate:"required"`
	Features     FeaturesConfig     `mapstructure:"features" validate:"required"`
	Backtest     BacktestConfig     `mapstructure:"backtest" validate:"required"`
	ModelService ModelServiceConfig `mapstructure:"model_service" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Schedule     ScheduleConfig     `mapstructure:"schedule"`
	AWS          AWSConfig          `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DataConfig locates raw price files and trained model artifacts
type DataConfig struct {
	DataDir   string `mapstructure:"data_dir" validate:"required"`
	ModelsDir string `mapstructure:"models_dir" validate:"required"`
	MinRows   int    `mapstructure:"min_rows" validate:"gte=0"`
}

// FeaturesConfig holds defaults for dataset builds
type FeaturesConfig struct {
	TargetType    string  `mapstructure:"target_type" validate:"required,targettype"`
	TrainFraction float64 `mapstructure:"train_fraction" validate:"gt=0,lt=1"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	InitialCapital    float64 `mapstructure:"initial_capital" validate:"required,gt=0"`
	RecentTradesLimit int     `mapstructure:"recent_trades_limit" validate:"gte=0"`
	OutputPath        string  `mapstructure:"output_path"`
}

// ModelServiceConfig configures the external model-serving endpoint
type ModelServiceConfig struct {
	URL                     string  `mapstructure:"url" validate:"omitempty,url"`
	APIKey                  string  `mapstructure:"api_key"`
	TimeoutSeconds          int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts           int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimit               float64 `mapstructure:"rate_limit" validate:"gt=0"`
	MetadataCacheTTLSeconds int     `mapstructure:"metadata_cache_ttl_seconds" validate:"gt=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig drives periodic backtests in serve mode
type ScheduleConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Cron    string   `mapstructure:"cron" validate:"omitempty,cronspec"`
	Symbols []string `mapstructure:"symbols"`
}

// AWSConfig enables the Secrets Manager overlay
type AWSConfig struct {
	SecretsEnabled bool   `mapstructure:"secrets_enabled"`
	Region         string `mapstructure:"region"`
	SecretName     string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ModelServiceTimeout returns the per-request timeout of the model service
func (c *Config) ModelServiceTimeout() time.Duration {
	return time.Duration(c.ModelService.TimeoutSeconds) * time.Second
}

// MetadataCacheTTL returns how long parsed model metadata stays cached
func (c *Config) MetadataCacheTTL() time.Duration {
	return time.Duration(c.ModelService.MetadataCacheTTLSeconds) * time.Second
}
