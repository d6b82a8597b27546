package output

import (
	"fmt"
	"io"
	"os"
)

// Message writers. Package-level so tests can capture output.
//
//nolint:gochecknoglobals // Swapped in tests
var (
	messageOut io.Writer = os.Stdout
	messageErr io.Writer = os.Stderr
)

// colorEnabled gates the decorated message prefixes. The CLI clears it for
// NO_COLOR, --no-color, or a "never" color setting.
//
//nolint:gochecknoglobals // Set once at startup from config
var colorEnabled = true

// SetColor enables or disables decorated message prefixes.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// ColorEnabled reports whether decorated prefixes are active.
func ColorEnabled() bool {
	return colorEnabled
}

// Info prints an informational message to stdout with an info prefix.
func Info(msg string) {
	_, _ = fmt.Fprintln(messageOut, prefix("ℹ️  ", "Info: ")+msg)
}

// Infof prints a formatted informational message to stdout.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Warn prints a warning message to stderr with a warning prefix.
func Warn(msg string) {
	_, _ = fmt.Fprintln(messageErr, prefix("⚠️  ", "Warning: ")+msg)
}

// Warnf prints a formatted warning message to stderr.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// Success prints a success message to stdout with a success prefix.
func Success(msg string) {
	_, _ = fmt.Fprintln(messageOut, prefix("✅ ", "Success: ")+msg)
}

// Successf prints a formatted success message to stdout.
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

func prefix(decorated, plain string) string {
	if colorEnabled {
		return decorated
	}
	return plain
}
