/*
Package config loads service configuration.

PURPOSE:
  One place for every tunable: HTTP port, sqlite path, the seed data file,
  the simulated fetch delay, the rewards tiers and pagination defaults. The
  tiers are configuration rather than code so the engine can be run against
  alternate schedules.

SOURCES (later wins):
  1. Built-in defaults (SetDefault below)
  2. Config file: $REWARDS_CONFIG, or rewards.{yaml,toml,json} in the
     working directory
  3. Environment: REWARDS_<SECTION>_<KEY>, e.g. REWARDS_SERVER_PORT=3000,
     REWARDS_REWARDS_UPPER_RATE=3
  4. Command-line flags (applied by cmd/server)

EXAMPLE FILE (rewards.yaml):
  server:
    port: 8080
  data:
    file: ./data/transactions.json
    delay: 300ms
  rewards:
    lower_threshold: 50
    upper_threshold: 100
    lower_rate: 1
    upper_rate: 2
  pagination:
    items_per_page: 10
    max_pages_display: 5

SEE ALSO:
  - cmd/server/main.go: flag overrides
  - rewards/types.go:   Tiers
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/warp/reward-points/rewards"
)

// Config holds application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Data       DataConfig       `mapstructure:"data"`
	Rewards    RewardsConfig    `mapstructure:"rewards"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	StaticDir      string   `mapstructure:"static_dir"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DataConfig describes where transactions are seeded from and how slow
// reads are made to look.
type DataConfig struct {
	File  string        `mapstructure:"file"`
	Delay time.Duration `mapstructure:"delay"`
}

// RewardsConfig holds the tier schedule.
type RewardsConfig struct {
	LowerThreshold float64 `mapstructure:"lower_threshold"`
	UpperThreshold float64 `mapstructure:"upper_threshold"`
	LowerRate      float64 `mapstructure:"lower_rate"`
	UpperRate      float64 `mapstructure:"upper_rate"`
}

// PaginationConfig holds UI paging defaults.
type PaginationConfig struct {
	ItemsPerPage    int `mapstructure:"items_per_page"`
	MaxPagesDisplay int `mapstructure:"max_pages_display"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// Load reads configuration from defaults, file and env. Env var overrides use prefix REWARDS_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgPath := os.Getenv("REWARDS_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("rewards")
	}

	v.SetEnvPrefix("REWARDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "./web/dist")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("database.path", "rewards.db")
	v.SetDefault("data.file", "")
	v.SetDefault("data.delay", "0s")
	v.SetDefault("rewards.lower_threshold", 50)
	v.SetDefault("rewards.upper_threshold", 100)
	v.SetDefault("rewards.lower_rate", 1)
	v.SetDefault("rewards.upper_rate", 2)
	v.SetDefault("pagination.items_per_page", 10)
	v.SetDefault("pagination.max_pages_display", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate checks ranges that would otherwise surface as odd runtime behavior.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Data.Delay < 0 {
		errs = append(errs, fmt.Errorf("data.delay %s is negative", c.Data.Delay))
	}
	if c.Pagination.ItemsPerPage < 1 {
		errs = append(errs, fmt.Errorf("pagination.items_per_page %d must be at least 1", c.Pagination.ItemsPerPage))
	}
	if c.Pagination.MaxPagesDisplay < 1 {
		errs = append(errs, fmt.Errorf("pagination.max_pages_display %d must be at least 1", c.Pagination.MaxPagesDisplay))
	}
	if err := c.Tiers().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("rewards: %w", err))
	}
	return errors.Join(errs...)
}

// Tiers converts the configured schedule into rewards.Tiers.
func (c Config) Tiers() rewards.Tiers {
	return rewards.Tiers{
		LowerThreshold: decimal.NewFromFloat(c.Rewards.LowerThreshold),
		UpperThreshold: decimal.NewFromFloat(c.Rewards.UpperThreshold),
		LowerRate:      decimal.NewFromFloat(c.Rewards.LowerRate),
		UpperRate:      decimal.NewFromFloat(c.Rewards.UpperRate),
	}
}
