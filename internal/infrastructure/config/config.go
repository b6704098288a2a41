// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/optimizer"
	"github.com/alchemorsel/planner/pkg/logger"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Solver     SolverConfig     `mapstructure:"solver"`
	Objective  ObjectiveConfig  `mapstructure:"objective"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// CatalogConfig locates the dish catalog the planner loads at startup.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SolverConfig contains solve-time limits.
type SolverConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	RelativeGap float64       `mapstructure:"relative_gap"`
}

// ObjectiveConfig contains the objective tuning knobs. Zero values fall
// back to the optimizer defaults.
type ObjectiveConfig struct {
	DeficitPenalty   float64 `mapstructure:"deficit_penalty"`
	CapPenalty       float64 `mapstructure:"cap_penalty"`
	RangePenalty     float64 `mapstructure:"range_penalty"`
	BatchWeightLow   float64 `mapstructure:"batch_weight_low"`
	BatchWeightMed   float64 `mapstructure:"batch_weight_medium"`
	BatchWeightHigh  float64 `mapstructure:"batch_weight_high"`
	PreferenceBonus  float64 `mapstructure:"preference_bonus"`
	BonusBudget      float64 `mapstructure:"bonus_budget"`
	WarnDeficitBelow float64 `mapstructure:"warn_deficit_below"`
	WarnCapAbove     float64 `mapstructure:"warn_cap_above"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics bool `mapstructure:"enable_metrics"`
	MetricsPort   int  `mapstructure:"metrics_port"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/planner")
	}

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	stock := optimizer.DefaultConfig()

	// App defaults
	v.SetDefault("app.name", "planner")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Catalog defaults
	v.SetDefault("catalog.path", "./config/dishes.json")

	// Solver defaults
	v.SetDefault("solver.timeout", stock.SolveTimeout.String())
	v.SetDefault("solver.relative_gap", stock.RelativeGap)

	// Objective defaults
	v.SetDefault("objective.deficit_penalty", stock.DeficitPenalty)
	v.SetDefault("objective.cap_penalty", stock.CapPenalty)
	v.SetDefault("objective.range_penalty", stock.RangePenalty)
	v.SetDefault("objective.batch_weight_low", stock.BatchWeights[planning.BatchLow])
	v.SetDefault("objective.batch_weight_medium", stock.BatchWeights[planning.BatchMedium])
	v.SetDefault("objective.batch_weight_high", stock.BatchWeights[planning.BatchHigh])
	v.SetDefault("objective.preference_bonus", stock.PreferenceBonus)
	v.SetDefault("objective.bonus_budget", stock.BonusBudget)
	v.SetDefault("objective.warn_deficit_below", stock.WarnDeficitBelow)
	v.SetDefault("objective.warn_cap_above", stock.WarnCapAbove)

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.metrics_port", 9090)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.Solver.Timeout <= 0 {
		return fmt.Errorf("solver timeout must be positive")
	}
	if c.Solver.RelativeGap < 0 || c.Solver.RelativeGap >= 1 {
		return fmt.Errorf("solver relative gap must be in [0, 1)")
	}
	if c.Objective.DeficitPenalty < 0 || c.Objective.CapPenalty < 0 || c.Objective.RangePenalty < 0 {
		return fmt.Errorf("objective penalties must be non-negative")
	}
	return nil
}

// OptimizerConfig maps the file configuration onto the optimizer tuning
// surface, keeping the stock defaults for anything left at zero.
func (c *Config) OptimizerConfig() optimizer.Config {
	cfg := optimizer.DefaultConfig()
	cfg.SolveTimeout = c.Solver.Timeout
	if c.Solver.RelativeGap > 0 {
		cfg.RelativeGap = c.Solver.RelativeGap
	}
	if c.Objective.DeficitPenalty > 0 {
		cfg.DeficitPenalty = c.Objective.DeficitPenalty
	}
	if c.Objective.CapPenalty > 0 {
		cfg.CapPenalty = c.Objective.CapPenalty
	}
	if c.Objective.RangePenalty > 0 {
		cfg.RangePenalty = c.Objective.RangePenalty
	}
	if c.Objective.BatchWeightLow > 0 {
		cfg.BatchWeights[planning.BatchLow] = c.Objective.BatchWeightLow
	}
	if c.Objective.BatchWeightMed > 0 {
		cfg.BatchWeights[planning.BatchMedium] = c.Objective.BatchWeightMed
	}
	if c.Objective.BatchWeightHigh > 0 {
		cfg.BatchWeights[planning.BatchHigh] = c.Objective.BatchWeightHigh
	}
	if c.Objective.PreferenceBonus > 0 {
		cfg.PreferenceBonus = c.Objective.PreferenceBonus
	}
	if c.Objective.BonusBudget > 0 {
		cfg.BonusBudget = c.Objective.BonusBudget
	}
	if c.Objective.WarnDeficitBelow > 0 {
		cfg.WarnDeficitBelow = c.Objective.WarnDeficitBelow
	}
	if c.Objective.WarnCapAbove > 0 {
		cfg.WarnCapAbove = c.Objective.WarnCapAbove
	}
	return cfg
}

// LoggerConfig maps the app section onto the logger constructor input.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.App.LogLevel,
		Format:      c.App.LogFormat,
		Development: c.App.Environment == "development",
	}
}
