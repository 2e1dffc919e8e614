// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration. Every empirically tuned
// timing constant is exposed here rather than hard-coded; the defaults are
// the values the host console's behavior was measured against, so change
// them only with cause.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Print   PrintConfig   `mapstructure:"print" yaml:"print"`
	Bulk    BulkConfig    `mapstructure:"bulk" yaml:"bulk"`
}

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	// Rotation settings, consumed by lumberjack when LogFile is set.
	MaxSize    int  `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int  `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig controls how the tool reaches the console's browser.
type BrowserConfig struct {
	// RemoteURL is the DevTools websocket of an already-running Chrome.
	// When empty, a visible instance is launched instead.
	RemoteURL string `mapstructure:"remote_url" yaml:"remote_url"`
	// ExecPath optionally pins the browser binary for launch mode.
	ExecPath string `mapstructure:"exec_path" yaml:"exec_path"`
	// StartURL is opened after launch; ignored in attach mode.
	StartURL          string        `mapstructure:"start_url" yaml:"start_url"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// PrintConfig tunes the auto-print pipeline.
type PrintConfig struct {
	// CooldownWindow is the minimum interval between two automatic
	// dispatches of the same logical action.
	CooldownWindow time.Duration `mapstructure:"cooldown_window" yaml:"cooldown_window"`
	// SettleDelay is the pause between focusing the print control and
	// firing the synthetic event sequence.
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
}

// BulkConfig tunes the bulk-selection convergence engine.
type BulkConfig struct {
	// Country is the column value the helper button selects rows by.
	Country         string        `mapstructure:"country" yaml:"country"`
	InterClickDelay time.Duration `mapstructure:"inter_click_delay" yaml:"inter_click_delay"`
	SettleDelay     time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	ClearTimeout    time.Duration `mapstructure:"clear_timeout" yaml:"clear_timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	MaxRetries      int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// SetDefaults seeds a viper instance with the production defaults.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "labelpilot")
	v.SetDefault("logger.log_file", "labelpilot.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.start_url", "")
	v.SetDefault("browser.navigation_timeout", 90*time.Second)

	v.SetDefault("print.cooldown_window", 15*time.Second)
	v.SetDefault("print.settle_delay", 600*time.Millisecond)

	v.SetDefault("bulk.country", "US")
	v.SetDefault("bulk.inter_click_delay", 250*time.Millisecond)
	v.SetDefault("bulk.settle_delay", 600*time.Millisecond)
	v.SetDefault("bulk.clear_timeout", 2*time.Second)
	v.SetDefault("bulk.poll_interval", 50*time.Millisecond)
	v.SetDefault("bulk.max_retries", 2)
}

// NewDefaultConfig returns a Config populated with the defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate rejects settings the engines cannot run with.
func (c *Config) Validate() error {
	if c.Print.CooldownWindow <= 0 {
		return fmt.Errorf("print.cooldown_window must be positive, got %v", c.Print.CooldownWindow)
	}
	if c.Bulk.PollInterval <= 0 {
		return fmt.Errorf("bulk.poll_interval must be positive, got %v", c.Bulk.PollInterval)
	}
	if c.Bulk.MaxRetries < 0 {
		return fmt.Errorf("bulk.max_retries must not be negative, got %d", c.Bulk.MaxRetries)
	}
	if c.Bulk.Country == "" {
		return fmt.Errorf("bulk.country must not be empty")
	}
	return nil
}
