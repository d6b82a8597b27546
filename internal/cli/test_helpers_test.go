package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/keywarden/keywarden/internal/config"
	"github.com/keywarden/keywarden/internal/output"
)

// setupTestEnv points the global config at a temp directory and installs a
// null logger and a text formatter. Returns the temp dir and a cleanup func.
func setupTestEnv(t *testing.T) (string, func()) {
	t.Helper()

	// Save original global state
	origCfg := cfg
	origLogger := logger
	origFormatter := formatter
	origConfigPath := configPath

	tmpDir, err := os.MkdirTemp("", "keywarden-cli-test")
	require.NoError(t, err)

	// Set up test-specific global config
	testCfg := config.Defaults()
	testCfg.Home = tmpDir
	cfg = testCfg
	configPath = config.Path(tmpDir)

	// Set up null logger for tests
	logger = config.NullLogger()

	// Set up text formatter for tests
	formatter = output.NewFormatter(output.FormatText, os.Stdout)

	cleanup := func() {
		// Restore original global state
		cfg = origCfg
		logger = origLogger
		formatter = origFormatter
		configPath = origConfigPath

		// Clean up temp directory
		_ = os.RemoveAll(tmpDir)
	}

	return tmpDir, cleanup
}

// withMockPrompts replaces prompt functions for testing and restores on cleanup.
func withMockPrompts(t *testing.T, passphrase string, confirm bool) {
	t.Helper()
	origPassphrase := promptPassphraseFn
	origNewPassphrase := promptNewPassphraseFn
	origConfirm := promptConfirmFn
	t.Cleanup(func() {
		promptPassphraseFn = origPassphrase
		promptNewPassphraseFn = origNewPassphrase
		promptConfirmFn = origConfirm
	})
	promptPassphraseFn = func(_ string) (string, error) {
		return passphrase, nil
	}
	promptNewPassphraseFn = func() (string, error) {
		return passphrase, nil
	}
	promptConfirmFn = func(_ string) bool { return confirm }
}

// newTestCmd creates a cobra.Command for run* testing with output capture.
func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	return cmd, &buf
}
