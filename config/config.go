// Package config defines the configuration file for arplane tools.
package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/arplane/anchor"
	"go.viam.com/arplane/logging"
)

// Defaults filled in by Validate.
const (
	DefaultConsoleMaxLines   = 500
	UnboundedConsoleMaxLines = -1
	DefaultLogFileMaxSizeMB  = 10
	DefaultLogFileMaxBackups = 3
)

// Config is the top level configuration.
type Config struct {
	Debug           bool           `json:"debug"`
	LogLevel        *logging.Level `json:"log_level,omitempty"`
	LogFile         *LogFileConfig `json:"log_file,omitempty"`
	Console         ConsoleConfig  `json:"console"`
	TimestampFormat string         `json:"timestamp_format,omitempty"`
	DescribePlanes  bool           `json:"describe_planes"`
}

// LogFileConfig configures an optional rotating log file.
type LogFileConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	Compress   bool   `json:"compress"`
}

// ConsoleConfig configures the debug console.
type ConsoleConfig struct {
	// Enabled is a pointer so that an omitted value defaults to true.
	Enabled *bool `json:"enabled,omitempty"`
	// MaxLines bounds the kept lines. Zero or omitted means DefaultConsoleMaxLines and
	// UnboundedConsoleMaxLines (-1) keeps every line.
	MaxLines int `json:"max_lines,omitempty"`
}

// Validate ensures all parts of the config are valid and fills in defaults.
func (c *Config) Validate(path string) error {
	if c.TimestampFormat == "" {
		c.TimestampFormat = anchor.DefaultTimestampFormat
	}

	var errs error
	if err := c.Console.Validate(path + ".console"); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.LogFile != nil {
		if err := c.LogFile.Validate(path + ".log_file"); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Level returns the configured log level, which is DEBUG when Debug is set and INFO when
// nothing is set.
func (c *Config) Level() logging.Level {
	switch {
	case c.Debug:
		return logging.DEBUG
	case c.LogLevel != nil:
		return *c.LogLevel
	default:
		return logging.INFO
	}
}

// Validate ensures the console settings are usable.
func (cc *ConsoleConfig) Validate(path string) error {
	if cc.Enabled == nil {
		enabled := true
		cc.Enabled = &enabled
	}
	if cc.MaxLines < UnboundedConsoleMaxLines {
		return NewValidationError(path, errors.Errorf("max_lines must be -1 (unbounded) or more, got %d", cc.MaxLines))
	}
	if cc.MaxLines == 0 {
		cc.MaxLines = DefaultConsoleMaxLines
	}
	return nil
}

// Validate ensures the log file settings are usable.
func (lf *LogFileConfig) Validate(path string) error {
	if lf.Path == "" {
		return NewFieldRequiredError(path, "path")
	}
	if lf.MaxSizeMB < 0 || lf.MaxBackups < 0 {
		return NewValidationError(path, errors.New("max_size_mb and max_backups must be non-negative"))
	}
	if lf.MaxSizeMB == 0 {
		lf.MaxSizeMB = DefaultLogFileMaxSizeMB
	}
	if lf.MaxBackups == 0 {
		lf.MaxBackups = DefaultLogFileMaxBackups
	}
	return nil
}

// FileAppenderConfig converts the settings for the logging package.
func (lf *LogFileConfig) FileAppenderConfig() logging.FileAppenderConfig {
	return logging.FileAppenderConfig{
		Path:       lf.Path,
		MaxSizeMB:  lf.MaxSizeMB,
		MaxBackups: lf.MaxBackups,
		Compress:   lf.Compress,
	}
}
