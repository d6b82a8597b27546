// Package cli implements the Keywarden command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/keywarden/keywarden/internal/config"
	"github.com/keywarden/keywarden/internal/output"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

var (
	// Global flags
	configFile   string
	outputFormat string
	verbose      bool
	noColor      bool

	// Global state initialized in PersistentPreRunE
	cfg        *config.Config
	logger     *config.Logger
	formatter  *output.Formatter
	configPath string

	// buildInfo carries the linker-injected build metadata for the
	// version command.
	buildInfo BuildInfo
)

// BuildInfo describes the binary's build provenance. The fields are set by
// the linker via -X flags in the release build; a plain go build leaves them
// empty and formatVersion substitutes placeholders.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// formatVersion renders build metadata as a single line.
func formatVersion(info BuildInfo) string {
	version := info.Version
	if version == "" {
		version = "dev"
	}
	commit := info.Commit
	if commit == "" {
		commit = "unknown"
	}
	date := info.Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "keywarden",
	Short: "A local password manager for the terminal",
	Long: `Keywarden is a terminal-based password manager that keeps every secret
on your own disk.

It generates passwords and word-based passphrases, rates their strength,
stores credentials in a passphrase-locked vault, and writes encrypted
.warden backup files that need nothing but the passphrase to restore.

Example:
  keywarden generate password --length 20
  keywarden vault add github --username octocat
  keywarden backup create`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command with the given build metadata.
func Execute(info BuildInfo) error {
	buildInfo = info

	walkCommands(rootCmd, enrichParentLong)

	err := rootCmd.Execute()
	if err != nil {
		formatErr(err)
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return wardenerr.ExitCode(err)
}

// formatErr renders an error to stderr through the active formatter.
func formatErr(err error) {
	if formatter != nil {
		_ = output.FormatError(os.Stderr, err, formatter.Format())
	} else {
		_ = output.FormatError(os.Stderr, err, output.FormatText)
	}
}

// walkCommands visits every command in the tree depth-first.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, sub := range cmd.Commands() {
		walkCommands(sub, fn)
	}
}

// enrichParentLong appends the current subcommand list to a parent command's
// Long description, so parent help keeps up as subcommands change.
func enrichParentLong(cmd *cobra.Command) {
	if !cmd.HasSubCommands() {
		return
	}

	var sb strings.Builder
	sb.WriteString(cmd.Long)
	sb.WriteString("\n\nSubcommands:\n")

	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			sb.WriteString(fmt.Sprintf("  %-16s %s\n", sub.Name(), sub.Short))
		}
	}

	cmd.Long = sb.String()
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals() error {
	// Determine home directory for locating the config file
	home := os.Getenv(config.EnvHome)
	if home == "" {
		home = config.DefaultHome()
	}

	// Load config. A missing file means defaults; a file that exists but
	// fails to parse or validate is surfaced rather than ignored.
	configPath = configFile
	if configPath == "" {
		configPath = config.Path(home)
	}
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		if !wardenerr.Is(err, wardenerr.ErrConfigNotFound) {
			return err
		}
		cfg = config.Defaults()
	}

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}
	if noColor {
		cfg.Output.Color = "never"
	}
	cfg.Home = config.ExpandHome(cfg.Home)

	// Initialize logger
	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, config.ExpandHome(cfg.Logging.File))
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)

	applyColorMode(cfg.Output.Color)

	return nil
}

// applyColorMode wires the configured color mode into the message helpers.
func applyColorMode(mode string) {
	switch mode {
	case "never":
		output.SetColor(false)
	case "always":
		output.SetColor(true)
	default:
		//nolint:gosec // G115: Fd() returns uintptr, safe conversion for term.IsTerminal
		output.SetColor(term.IsTerminal(int(os.Stdout.Fd())))
	}
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ~/.keywarden/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}
