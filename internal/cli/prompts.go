package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/keywarden/keywarden/internal/config"
	"github.com/keywarden/keywarden/internal/wardencrypto"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// Prompt function variables, swappable in tests.
//
//nolint:gochecknoglobals // Tests substitute canned prompt responses
var (
	promptPassphraseFn    = promptPassphrase
	promptNewPassphraseFn = promptNewPassphrase
	promptConfirmFn       = promptConfirmation
)

// promptSecret prompts for a secret with hidden input. The prompt goes to
// stderr so piped stdout stays clean. The caller is responsible for zeroing
// the returned bytes after use.
func promptSecret(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	secret, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	return secret, nil
}

// promptPassphrase prompts for an existing vault or backup passphrase.
func promptPassphrase(prompt string) (string, error) {
	secret, err := promptSecret(prompt)
	if err != nil {
		return "", err
	}

	passphrase := string(secret)
	wardencrypto.ZeroBytes(secret)
	return passphrase, nil
}

// minPassphraseLength returns the configured minimum for new passphrases.
func minPassphraseLength() int {
	if cfg != nil && cfg.Security.MinPassphraseLength > 0 {
		return cfg.Security.MinPassphraseLength
	}
	return config.DefaultMinPassphraseLength
}

// promptNewPassphrase prompts for a new passphrase with a minimum length
// check and confirmation.
func promptNewPassphrase() (string, error) {
	minLen := minPassphraseLength()

	passphrase, err := promptPassphraseFn("Enter new passphrase: ")
	if err != nil {
		return "", err
	}

	if len(passphrase) < minLen {
		return "", wardenerr.WithDetails(wardenerr.ErrPassphraseTooShort, map[string]string{
			"minimum": strconv.Itoa(minLen),
		})
	}

	confirm, err := promptPassphraseFn("Confirm passphrase: ")
	if err != nil {
		return "", err
	}

	if passphrase != confirm {
		return "", wardenerr.ErrPassphraseMismatch
	}

	return passphrase, nil
}

// promptConfirmation asks a yes/no question, defaulting to no.
func promptConfirmation(prompt string) bool {
	out(os.Stderr, "%s [y/N]: ", prompt)

	var response string
	_, err := fmt.Scanln(&response)
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
