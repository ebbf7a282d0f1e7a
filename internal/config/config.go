// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STYLEBOX_ENGINE_VIEWPORT_WIDTH.
const EnvPrefix = "STYLEBOX"

// Font face sources.
const (
	FaceEstimate = "estimate"
	FaceBasic    = "basic"
)

// Output formats.
const (
	OutputJSON  = "json"
	OutputText  = "text"
	OutputSARIF = "sarif" // lint only
)

// Interface defines the contract for accessing application configuration.
type Interface interface {
	Logger() LoggerConfig
	Engine() EngineConfig
	Fonts() FontsConfig
	Output() OutputConfig

	SetViewport(width, height float64)
	SetBatchConcurrency(int)
	SetOutputFormat(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg LoggerConfig `mapstructure:"logger" yaml:"logger"`
	EngineCfg EngineConfig `mapstructure:"engine" yaml:"engine"`
	FontsCfg  FontsConfig  `mapstructure:"fonts" yaml:"fonts"`
	OutputCfg OutputConfig `mapstructure:"output" yaml:"output"`
}

func (c *Config) Logger() LoggerConfig { return c.LoggerCfg }
func (c *Config) Engine() EngineConfig { return c.EngineCfg }
func (c *Config) Fonts() FontsConfig   { return c.FontsCfg }
func (c *Config) Output() OutputConfig { return c.OutputCfg }

func (c *Config) SetViewport(width, height float64) {
	c.EngineCfg.ViewportWidth, c.EngineCfg.ViewportHeight = width, height
}
func (c *Config) SetBatchConcurrency(n int) { c.EngineCfg.BatchConcurrency = n }
func (c *Config) SetOutputFormat(f string)   { c.OutputCfg.Format = f }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// EngineConfig configures contexts created by the CLI.
type EngineConfig struct {
	ViewportWidth    float64 `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight   float64 `mapstructure:"viewport_height" yaml:"viewport_height"`
	DensityRatio     float64 `mapstructure:"density_ratio" yaml:"density_ratio"`
	UserAgentSheet   bool    `mapstructure:"user_agent_sheet" yaml:"user_agent_sheet"`
	BatchConcurrency int     `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
}

// FontsConfig selects the font metrics source. The ratios apply to the
// estimate face only.
type FontsConfig struct {
	Face            string  `mapstructure:"face" yaml:"face"`
	AdvanceRatio    float64 `mapstructure:"advance_ratio" yaml:"advance_ratio"`
	AscentRatio     float64 `mapstructure:"ascent_ratio" yaml:"ascent_ratio"`
	LineHeightRatio float64 `mapstructure:"line_height_ratio" yaml:"line_height_ratio"`
}

// OutputConfig controls how reports are written.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "stylebox")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Engine --
	v.SetDefault("engine.viewport_width", 1024.0)
	v.SetDefault("engine.viewport_height", 768.0)
	v.SetDefault("engine.density_ratio", 1.0)
	v.SetDefault("engine.user_agent_sheet", true)
	v.SetDefault("engine.batch_concurrency", 4)

	// -- Fonts --
	v.SetDefault("fonts.face", FaceEstimate)
	v.SetDefault("fonts.advance_ratio", 0.6)
	v.SetDefault("fonts.ascent_ratio", 0.8)
	v.SetDefault("fonts.line_height_ratio", 1.2)

	// -- Output --
	v.SetDefault("output.format", OutputJSON)
	v.SetDefault("output.pretty", true)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
// Environment variables prefixed with STYLEBOX override file values.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if err := c.EngineCfg.Validate(); err != nil {
		return fmt.Errorf("engine configuration invalid: %w", err)
	}
	if err := c.FontsCfg.Validate(); err != nil {
		return fmt.Errorf("fonts configuration invalid: %w", err)
	}
	switch c.OutputCfg.Format {
	case OutputJSON, OutputText, OutputSARIF:
	default:
		return fmt.Errorf("output.format must be %q, %q or %q, got %q", OutputJSON, OutputText, OutputSARIF, c.OutputCfg.Format)
	}
	return nil
}

// Validate checks the engine settings.
func (e *EngineConfig) Validate() error {
	if e.ViewportWidth <= 0 || e.ViewportHeight <= 0 {
		return fmt.Errorf("viewport_width and viewport_height must be positive")
	}
	if e.DensityRatio <= 0 {
		return fmt.Errorf("density_ratio must be greater than 0")
	}
	if e.BatchConcurrency <= 0 {
		return fmt.Errorf("batch_concurrency must be a positive integer")
	}
	return nil
}

// Validate checks the font settings.
func (f *FontsConfig) Validate() error {
	switch f.Face {
	case FaceBasic:
		return nil
	case FaceEstimate:
	default:
		return fmt.Errorf("face must be %q or %q, got %q", FaceEstimate, FaceBasic, f.Face)
	}
	if f.AdvanceRatio <= 0 || f.LineHeightRatio <= 0 {
		return fmt.Errorf("advance_ratio and line_height_ratio must be positive")
	}
	if f.AscentRatio <= 0 || f.AscentRatio >= 1 {
		return fmt.Errorf("ascent_ratio must be between 0 and 1")
	}
	return nil
}
