package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/config"
	"github.com/keywarden/keywarden/internal/passgen"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify Keywarden configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.keywarden/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.

Example:
  keywarden config init
  keywarden config init --force`,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the current configuration settings.

Example:
  keywarden config show
  keywarden config show -o json`,
	RunE: runConfigShow,
}

// configPathCmd prints the config file path.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Long: `Print the path of the configuration file in effect, honoring --config.

Example:
  keywarden config path`,
	RunE: runConfigPath,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its key.

The key uses dot notation to navigate the configuration tree.

Examples:
  keywarden config get generator.length
  keywarden config get output.default_format
  keywarden config get backup.dir`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its key.

The key uses dot notation to navigate the configuration tree.
The configuration file will be updated immediately.

Examples:
  keywarden config set generator.length 24
  keywarden config set output.default_format json
  keywarden config set backup.dir ~/backups/keywarden`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return wardenerr.WithSuggestion(
			wardenerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{
			"status": "initialized",
			"path":   configPath,
		})
	}

	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - generator.length: Default generated password length")
	outln(w, "  - backup.dir: Where backup files are written")
	outln(w, "  - output.default_format: Output format (text/json)")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	if formatter.IsJSON() {
		return displayConfigJSON(w, cfg)
	}

	return displayConfigText(w, cfg)
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{"path": configPath})
	}

	outln(w, configPath)

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	value, err := getConfigValue(cfg, key)
	if err != nil {
		return configKeyHint(err)
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{"key": key, "value": value})
	}

	outln(w, value)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Reject unknown keys before touching the file.
	if _, err := getConfigValue(cfg, key); err != nil {
		return configKeyHint(err)
	}

	currentCfg, err := config.Load(configPath)
	if err != nil {
		if !wardenerr.Is(err, wardenerr.ErrConfigNotFound) {
			return err
		}
		currentCfg = config.Defaults()
		currentCfg.Home = cfg.Home
	}

	if err := setConfigValue(currentCfg, key, value); err != nil {
		return err
	}

	if err := config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{"key": key, "value": value})
	}

	out(w, "Set %s = %s\n", key, value)

	return nil
}

// configKeyHint points unknown-key errors at config show.
func configKeyHint(err error) error {
	if wardenerr.Is(err, wardenerr.ErrUnknownConfigKey) {
		return wardenerr.WithSuggestion(err, "run 'keywarden config show' to see available keys")
	}
	return err
}

// getConfigValue retrieves a value from the config using dot notation.
func getConfigValue(c *config.Config, path string) (string, error) {
	parts := strings.Split(path, ".")

	switch len(parts) {
	case 1:
		switch parts[0] {
		case "home":
			return c.Home, nil
		default:
			return "", wardenerr.WithDetails(
				wardenerr.ErrUnknownConfigKey,
				map[string]string{"key": parts[0]},
			)
		}
	case 2:
		switch parts[0] {
		case "generator":
			return getGeneratorValue(c, parts[1])
		case "backup":
			return getBackupValue(c, parts[1])
		case "security":
			return getSecurityValue(c, parts[1])
		case "output":
			return getOutputValue(c, parts[1])
		case "logging":
			return getLoggingValue(c, parts[1])
		default:
			return "", wardenerr.WithDetails(
				wardenerr.ErrUnknownConfigKey,
				map[string]string{"section": parts[0]},
			)
		}
	default:
		return "", wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"path": path},
		)
	}
}

func getGeneratorValue(c *config.Config, key string) (string, error) {
	switch key {
	case "length":
		return strconv.Itoa(c.Generator.Length), nil
	case "uppercase":
		return strconv.FormatBool(c.Generator.Uppercase), nil
	case "lowercase":
		return strconv.FormatBool(c.Generator.Lowercase), nil
	case "numbers":
		return strconv.FormatBool(c.Generator.Numbers), nil
	case "symbols":
		return strconv.FormatBool(c.Generator.Symbols), nil
	case "words":
		return strconv.Itoa(c.Generator.Words), nil
	case "separator":
		return c.Generator.Separator, nil
	case "capitalize":
		return strconv.FormatBool(c.Generator.Capitalize), nil
	default:
		return "", wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "generator", "key": key},
		)
	}
}

func getBackupValue(c *config.Config, key string) (string, error) {
	switch key {
	case "dir":
		return c.Backup.Dir, nil
	case "legacy":
		return strconv.FormatBool(c.Backup.Legacy), nil
	default:
		return "", wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "backup", "key": key},
		)
	}
}

func getSecurityValue(c *config.Config, key string) (string, error) {
	switch key {
	case "memory_lock":
		return strconv.FormatBool(c.Security.MemoryLock), nil
	case "min_passphrase_length":
		return strconv.Itoa(c.Security.MinPassphraseLength), nil
	default:
		return "", wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "security", "key": key},
		)
	}
}

func getOutputValue(c *config.Config, key string) (string, error) {
	switch key {
	case "default_format":
		return c.Output.DefaultFormat, nil
	case "color":
		return c.Output.Color, nil
	case "verbose":
		return strconv.FormatBool(c.Output.Verbose), nil
	default:
		return "", wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "output", "key": key},
		)
	}
}

func getLoggingValue(c *config.Config, key string) (string, error) {
	switch key {
	case "level":
		return c.Logging.Level, nil
	case "file":
		return c.Logging.File, nil
	default:
		return "", wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "logging", "key": key},
		)
	}
}

// setConfigValue sets a value in the config using dot notation.
func setConfigValue(c *config.Config, path, value string) error {
	parts := strings.Split(path, ".")

	switch len(parts) {
	case 1:
		switch parts[0] {
		case "home":
			c.Home = value
			return nil
		default:
			return wardenerr.WithDetails(
				wardenerr.ErrUnknownConfigKey,
				map[string]string{"key": parts[0]},
			)
		}
	case 2:
		switch parts[0] {
		case "generator":
			return setGeneratorValue(c, parts[1], value)
		case "backup":
			return setBackupValue(c, parts[1], value)
		case "security":
			return setSecurityValue(c, parts[1], value)
		case "output":
			return setOutputValue(c, parts[1], value)
		case "logging":
			return setLoggingValue(c, parts[1], value)
		default:
			return wardenerr.WithDetails(
				wardenerr.ErrUnknownConfigKey,
				map[string]string{"section": parts[0]},
			)
		}
	default:
		return wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"path": path},
		)
	}
}

// parseBoolValue parses a true/false configuration value.
func parseBoolValue(value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, wardenerr.WithDetails(
			wardenerr.ErrConfigInvalid,
			map[string]string{"value": value, "valid": "true or false"},
		)
	}
}

// parseIntValue parses a numeric configuration value within [minVal, maxVal].
func parseIntValue(value string, minVal, maxVal int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < minVal || n > maxVal {
		return 0, wardenerr.WithDetails(
			wardenerr.ErrConfigInvalid,
			map[string]string{"value": value, "valid": fmt.Sprintf("%d-%d", minVal, maxVal)},
		)
	}
	return n, nil
}

func setGeneratorValue(c *config.Config, key, value string) error {
	switch key {
	case "length":
		n, err := parseIntValue(value, passgen.MinLength, passgen.MaxLength)
		if err != nil {
			return err
		}
		c.Generator.Length = n
		return nil
	case "uppercase":
		b, err := parseBoolValue(value)
		if err != nil {
			return err
		}
		c.Generator.Uppercase = b
		return nil
	case "lowercase":
		b, err := parseBoolValue(value)
		if err != nil {
			return err
		}
		c.Generator.Lowercase = b
		return nil
	case "numbers":
		b, err := parseBoolValue(value)
		if err != nil {
			return err
		}
		c.Generator.Numbers = b
		return nil
	case "symbols":
		b, err := parseBoolValue(value)
		if err != nil {
			return err
		}
		c.Generator.Symbols = b
		return nil
	case "words":
		n, err := parseIntValue(value, passgen.MinWords, passgen.MaxWords)
		if err != nil {
			return err
		}
		c.Generator.Words = n
		return nil
	case "separator":
		c.Generator.Separator = value
		return nil
	case "capitalize":
		b, err := parseBoolValue(value)
		if err != nil {
			return err
		}
		c.Generator.Capitalize = b
		return nil
	default:
		return wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "generator", "key": key},
		)
	}
}

func setBackupValue(c *config.Config, key, value string) error {
	switch key {
	case "dir":
		c.Backup.Dir = value
		return nil
	case "legacy":
		b, err := parseBoolValue(value)
		if err != nil {
			return err
		}
		c.Backup.Legacy = b
		return nil
	default:
		return wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "backup", "key": key},
		)
	}
}

func setSecurityValue(c *config.Config, key, value string) error {
	switch key {
	case "memory_lock":
		b, err := parseBoolValue(value)
		if err != nil {
			return err
		}
		c.Security.MemoryLock = b
		return nil
	case "min_passphrase_length":
		n, err := parseIntValue(value, 1, 128)
		if err != nil {
			return err
		}
		c.Security.MinPassphraseLength = n
		return nil
	default:
		return wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "security", "key": key},
		)
	}
}

func setOutputValue(c *config.Config, key, value string) error {
	switch key {
	case "default_format":
		if value != "text" && value != "json" && value != "auto" {
			return wardenerr.WithDetails(
				wardenerr.ErrConfigInvalid,
				map[string]string{"value": value, "valid": "text, json, or auto"},
			)
		}
		c.Output.DefaultFormat = value
		return nil
	case "color":
		if value != "auto" && value != "always" && value != "never" {
			return wardenerr.WithDetails(
				wardenerr.ErrConfigInvalid,
				map[string]string{"value": value, "valid": "auto, always, or never"},
			)
		}
		c.Output.Color = value
		return nil
	case "verbose":
		b, err := parseBoolValue(value)
		if err != nil {
			return err
		}
		c.Output.Verbose = b
		return nil
	default:
		return wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "output", "key": key},
		)
	}
}

func setLoggingValue(c *config.Config, key, value string) error {
	switch key {
	case "level":
		switch value {
		case "off", "none", "error", "debug":
			c.Logging.Level = value
			return nil
		default:
			return wardenerr.WithDetails(
				wardenerr.ErrConfigInvalid,
				map[string]string{"value": value, "valid": "off, error, or debug"},
			)
		}
	case "file":
		c.Logging.File = value
		return nil
	default:
		return wardenerr.WithDetails(
			wardenerr.ErrUnknownConfigKey,
			map[string]string{"section": "logging", "key": key},
		)
	}
}

// displayConfigText shows the config in text format.
func displayConfigText(w io.Writer, c *config.Config) error {
	outln(w, "Configuration:")
	outln(w)
	out(w, "  Home: %s\n", c.Home)
	outln(w)
	outln(w, "  Generator:")
	out(w, "    length: %d\n", c.Generator.Length)
	out(w, "    uppercase: %t\n", c.Generator.Uppercase)
	out(w, "    lowercase: %t\n", c.Generator.Lowercase)
	out(w, "    numbers: %t\n", c.Generator.Numbers)
	out(w, "    symbols: %t\n", c.Generator.Symbols)
	out(w, "    words: %d\n", c.Generator.Words)
	out(w, "    separator: %q\n", c.Generator.Separator)
	out(w, "    capitalize: %t\n", c.Generator.Capitalize)
	outln(w)
	outln(w, "  Backup:")
	dir := c.Backup.Dir
	if dir == "" {
		dir = c.GetBackupDir() + " (default)"
	}
	out(w, "    dir: %s\n", dir)
	out(w, "    legacy: %t\n", c.Backup.Legacy)
	outln(w)
	outln(w, "  Security:")
	out(w, "    memory_lock: %t\n", c.Security.MemoryLock)
	out(w, "    min_passphrase_length: %d\n", c.Security.MinPassphraseLength)
	outln(w)
	outln(w, "  Output:")
	out(w, "    default_format: %s\n", c.Output.DefaultFormat)
	out(w, "    color: %s\n", c.Output.Color)
	out(w, "    verbose: %t\n", c.Output.Verbose)
	outln(w)
	outln(w, "  Logging:")
	out(w, "    level: %s\n", c.Logging.Level)
	file := c.Logging.File
	if file == "" {
		file = "(disabled)"
	}
	out(w, "    file: %s\n", file)

	return nil
}

// displayConfigJSON shows the config in JSON format.
func displayConfigJSON(w io.Writer, c *config.Config) error {
	type generatorJSON struct {
		Length     int    `json:"length"`
		Uppercase  bool   `json:"uppercase"`
		Lowercase  bool   `json:"lowercase"`
		Numbers    bool   `json:"numbers"`
		Symbols    bool   `json:"symbols"`
		Words      int    `json:"words"`
		Separator  string `json:"separator"`
		Capitalize bool   `json:"capitalize"`
	}
	type configJSON struct {
		Version   int           `json:"version"`
		Home      string        `json:"home"`
		Generator generatorJSON `json:"generator"`
		Backup    struct {
			Dir    string `json:"dir"`
			Legacy bool   `json:"legacy"`
		} `json:"backup"`
		Security struct {
			MemoryLock          bool `json:"memory_lock"`
			MinPassphraseLength int  `json:"min_passphrase_length"`
		} `json:"security"`
		Output struct {
			DefaultFormat string `json:"default_format"`
			Color         string `json:"color"`
			Verbose       bool   `json:"verbose"`
		} `json:"output"`
		Logging struct {
			Level string `json:"level"`
			File  string `json:"file"`
		} `json:"logging"`
	}

	outCfg := configJSON{
		Version: c.Version,
		Home:    c.Home,
		Generator: generatorJSON{
			Length:     c.Generator.Length,
			Uppercase:  c.Generator.Uppercase,
			Lowercase:  c.Generator.Lowercase,
			Numbers:    c.Generator.Numbers,
			Symbols:    c.Generator.Symbols,
			Words:      c.Generator.Words,
			Separator:  c.Generator.Separator,
			Capitalize: c.Generator.Capitalize,
		},
	}
	outCfg.Backup.Dir = c.GetBackupDir()
	outCfg.Backup.Legacy = c.Backup.Legacy
	outCfg.Security.MemoryLock = c.Security.MemoryLock
	outCfg.Security.MinPassphraseLength = c.Security.MinPassphraseLength
	outCfg.Output.DefaultFormat = c.Output.DefaultFormat
	outCfg.Output.Color = c.Output.Color
	outCfg.Output.Verbose = c.Output.Verbose
	outCfg.Logging.Level = c.Logging.Level
	outCfg.Logging.File = c.Logging.File

	return writeJSON(w, outCfg)
}
