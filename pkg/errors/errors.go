// Package errors provides structured error handling for Keywarden.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitAuth     = 3 // Authentication or decryption failed
	ExitNotFound = 4 // Resource not found
	ExitStorage  = 5 // Storage read/write failed
)

// WardenError is the structured error type for Keywarden.
type WardenError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *WardenError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *WardenError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for WardenError.
func (e *WardenError) Is(target error) bool {
	var t *WardenError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &WardenError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &WardenError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrAuthentication = &WardenError{
		Code:     "AUTHENTICATION_FAILED",
		Message:  "authentication failed - check your passphrase",
		ExitCode: ExitAuth,
	}

	ErrNotFound = &WardenError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrStorageFailure = &WardenError{
		Code:     "STORAGE_FAILURE",
		Message:  "storage operation failed",
		ExitCode: ExitStorage,
	}

	// Generator-specific errors.
	ErrInvalidOptions = &WardenError{
		Code:     "INVALID_OPTIONS",
		Message:  "invalid generation options",
		ExitCode: ExitInput,
	}

	// Backup-specific errors.
	//
	// ErrDecryptionFailed covers both a wrong passphrase and corrupted
	// ciphertext; callers cannot tell which from the error.
	ErrDecryptionFailed = &WardenError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong passphrase or corrupted data",
		ExitCode: ExitAuth,
	}

	ErrMalformedEnvelope = &WardenError{
		Code:     "MALFORMED_ENVELOPE",
		Message:  "not a valid backup envelope",
		ExitCode: ExitInput,
	}

	ErrUnsupportedVersion = &WardenError{
		Code:     "UNSUPPORTED_VERSION",
		Message:  "unsupported backup format version",
		ExitCode: ExitInput,
	}

	ErrMalformedPayload = &WardenError{
		Code:     "MALFORMED_PAYLOAD",
		Message:  "backup payload is corrupted",
		ExitCode: ExitInput,
	}

	ErrBackupNotFound = &WardenError{
		Code:     "BACKUP_NOT_FOUND",
		Message:  "backup file not found",
		ExitCode: ExitNotFound,
	}

	// Vault-specific errors.
	ErrVaultNotFound = &WardenError{
		Code:     "VAULT_NOT_FOUND",
		Message:  "vault not initialized",
		ExitCode: ExitNotFound,
	}

	ErrVaultExists = &WardenError{
		Code:     "VAULT_EXISTS",
		Message:  "vault already initialized",
		ExitCode: ExitInput,
	}

	ErrAccountNotFound = &WardenError{
		Code:     "ACCOUNT_NOT_FOUND",
		Message:  "account not found",
		ExitCode: ExitNotFound,
	}

	ErrAccountExists = &WardenError{
		Code:     "ACCOUNT_EXISTS",
		Message:  "account already exists",
		ExitCode: ExitInput,
	}

	ErrInvalidCategory = &WardenError{
		Code:     "INVALID_CATEGORY",
		Message:  "invalid account category",
		ExitCode: ExitInput,
	}

	// Prompt-specific errors.
	ErrPassphraseMismatch = &WardenError{
		Code:     "PASSPHRASE_MISMATCH",
		Message:  "passphrases do not match",
		ExitCode: ExitInput,
	}

	ErrPassphraseTooShort = &WardenError{
		Code:     "PASSPHRASE_TOO_SHORT",
		Message:  "passphrase is too short",
		ExitCode: ExitInput,
	}

	// Config-specific errors.
	ErrConfigNotFound = &WardenError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &WardenError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &WardenError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}
)

// New creates a new WardenError with the given code and message.
func New(code, message string) *WardenError {
	return &WardenError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var we *WardenError
	if errors.As(err, &we) {
		return &WardenError{
			Code:       we.Code,
			Message:    fmt.Sprintf("%s: %s", msg, we.Message),
			Details:    we.Details,
			Suggestion: we.Suggestion,
			Cause:      err,
			ExitCode:   we.ExitCode,
		}
	}

	return &WardenError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var we *WardenError
	if errors.As(err, &we) {
		return &WardenError{
			Code:       we.Code,
			Message:    we.Message,
			Details:    details,
			Suggestion: we.Suggestion,
			Cause:      we.Cause,
			ExitCode:   we.ExitCode,
		}
	}

	return &WardenError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var we *WardenError
	if errors.As(err, &we) {
		return &WardenError{
			Code:       we.Code,
			Message:    we.Message,
			Details:    we.Details,
			Suggestion: suggestion,
			Cause:      we.Cause,
			ExitCode:   we.ExitCode,
		}
	}

	return &WardenError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var we *WardenError
	if errors.As(err, &we) {
		return we.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var we *WardenError
	if errors.As(err, &we) {
		return we.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
