// Package config provides configuration management for Keywarden.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/keywarden/keywarden/internal/fileutil"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// CurrentVersion is the configuration schema version written by this build.
const CurrentVersion = 1

// File and directory permission modes for the config file.
const (
	configFilePermissions = 0o600
	configDirPermissions  = 0o750
)

// Config represents the application configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Home      string          `yaml:"home"`
	Generator GeneratorConfig `yaml:"generator"`
	Backup    BackupConfig    `yaml:"backup"`
	Security  SecurityConfig  `yaml:"security"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GeneratorConfig defines password and passphrase generation defaults.
type GeneratorConfig struct {
	Length     int    `yaml:"length"`
	Uppercase  bool   `yaml:"uppercase"`
	Lowercase  bool   `yaml:"lowercase"`
	Numbers    bool   `yaml:"numbers"`
	Symbols    bool   `yaml:"symbols"`
	Words      int    `yaml:"words"`
	Separator  string `yaml:"separator"`
	Capitalize bool   `yaml:"capitalize"`
}

// BackupConfig defines encrypted backup settings.
type BackupConfig struct {
	// Dir is the backup directory. Empty means <home>/backups.
	Dir string `yaml:"dir"`

	// Legacy emits version 1.0 envelopes for import into older tools.
	Legacy bool `yaml:"legacy"`
}

// SecurityConfig defines security settings.
type SecurityConfig struct {
	MemoryLock          bool `yaml:"memory_lock"`
	MinPassphraseLength int  `yaml:"min_passphrase_length"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file. Values absent from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wardenerr.WithDetails(wardenerr.ErrConfigNotFound, map[string]string{
				"path": path,
			})
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, wardenerr.WithDetails(wardenerr.ErrConfigInvalid, map[string]string{
			"parse": err.Error(),
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file atomically.
func Save(cfg *Config, path string) error {
	if err := fileutil.EnsureDir(filepath.Dir(path), configDirPermissions); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return fileutil.WriteAtomic(path, data, configFilePermissions)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return wardenerr.WithDetails(wardenerr.ErrConfigInvalid, map[string]string{
			"key":       "version",
			"value":     fmt.Sprintf("%d", c.Version),
			"supported": fmt.Sprintf("%d", CurrentVersion),
		})
	}

	switch c.Output.DefaultFormat {
	case "auto", "text", "json":
	default:
		return wardenerr.WithDetails(wardenerr.ErrConfigInvalid, map[string]string{
			"key":   "output.default_format",
			"value": c.Output.DefaultFormat,
			"valid": "auto, text, json",
		})
	}

	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return wardenerr.WithDetails(wardenerr.ErrConfigInvalid, map[string]string{
			"key":   "output.color",
			"value": c.Output.Color,
			"valid": "auto, always, never",
		})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "off", "none", "error", "debug":
	default:
		return wardenerr.WithDetails(wardenerr.ErrConfigInvalid, map[string]string{
			"key":   "logging.level",
			"value": c.Logging.Level,
			"valid": "off, error, debug",
		})
	}

	if c.Generator.Length <= 0 {
		return wardenerr.WithDetails(wardenerr.ErrConfigInvalid, map[string]string{
			"key":   "generator.length",
			"value": fmt.Sprintf("%d", c.Generator.Length),
		})
	}

	if c.Generator.Words <= 0 {
		return wardenerr.WithDetails(wardenerr.ErrConfigInvalid, map[string]string{
			"key":   "generator.words",
			"value": fmt.Sprintf("%d", c.Generator.Words),
		})
	}

	return nil
}

// GetHome returns the keywarden home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetBackupDir returns the backup directory, resolving the <home>/backups
// default when no explicit directory is configured.
func (c *Config) GetBackupDir() string {
	if c.Backup.Dir == "" {
		return filepath.Join(c.Home, "backups")
	}
	return ExpandHome(c.Backup.Dir)
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// GetSecurity returns the security configuration.
func (c *Config) GetSecurity() SecurityConfig {
	return c.Security
}

// DefaultHome returns the default keywarden home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keywarden"
	}
	return filepath.Join(home, ".keywarden")
}

// ExpandHome replaces a leading "~/" with the user's home directory. Paths
// without the prefix are returned unchanged, as is the input when the home
// directory cannot be determined.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
