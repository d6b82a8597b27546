// Package passgen implements password generation and strength estimation.
// Generation guarantees at least one character from every enabled class and
// draws exclusively from the package's cryptographically secure random
// source, which tests may substitute via wardencrypto.Reader.
package passgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/keywarden/keywarden/internal/wardencrypto"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// Character class alphabets available to the generator.
const (
	// UppercaseChars is the uppercase class (26 characters).
	UppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// LowercaseChars is the lowercase class (26 characters).
	LowercaseChars = "abcdefghijklmnopqrstuvwxyz"

	// NumberChars is the digit class (10 characters).
	NumberChars = "0123456789"

	// SymbolChars is the full ASCII punctuation set (32 characters). With
	// the other classes enabled it yields the 94-character printable pool.
	SymbolChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Length bounds accepted by Generate. The advertised range for interactive
// use is 8-128; the CLI enforces that on its flags.
const (
	MinLength = 1
	MaxLength = 256
)

var (
	// ErrInvalidOptions indicates unusable generation options.
	ErrInvalidOptions = wardenerr.ErrInvalidOptions

	// ErrNoClassSelected indicates generation was requested with every
	// character class disabled.
	ErrNoClassSelected = wardenerr.WithSuggestion(wardenerr.ErrInvalidOptions,
		"enable at least one of uppercase, lowercase, numbers, or symbols")
)

// Options selects the length and character classes for Generate.
// The zero value is constructible; validation is deferred to Generate.
type Options struct {
	// Length is the requested password length.
	Length int `json:"length"`

	// Uppercase enables the A-Z class.
	Uppercase bool `json:"uppercase"`

	// Lowercase enables the a-z class.
	Lowercase bool `json:"lowercase"`

	// Numbers enables the 0-9 class.
	Numbers bool `json:"numbers"`

	// Symbols enables the punctuation class.
	Symbols bool `json:"symbols"`
}

// DefaultOptions returns the generator defaults: 16 characters, all classes.
func DefaultOptions() Options {
	return Options{
		Length:    16,
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// enabledClasses returns the alphabet of every enabled class, in a fixed
// order so draws are reproducible under a deterministic random source.
func (o Options) enabledClasses() []string {
	classes := make([]string, 0, 4)
	if o.Uppercase {
		classes = append(classes, UppercaseChars)
	}
	if o.Lowercase {
		classes = append(classes, LowercaseChars)
	}
	if o.Numbers {
		classes = append(classes, NumberChars)
	}
	if o.Symbols {
		classes = append(classes, SymbolChars)
	}
	return classes
}

// Generate produces a random password of exactly opts.Length characters
// containing at least one character from every enabled class.
func Generate(opts Options) (string, error) {
	classes := opts.enabledClasses()
	if len(classes) == 0 {
		return "", ErrNoClassSelected
	}

	if opts.Length < MinLength || opts.Length > MaxLength {
		return "", wardenerr.WithDetails(ErrInvalidOptions, map[string]string{
			"length": strconv.Itoa(opts.Length),
			"range":  fmt.Sprintf("%d-%d", MinLength, MaxLength),
		})
	}

	// A length below the class count cannot satisfy guaranteed coverage;
	// reject rather than truncate or clamp.
	if opts.Length < len(classes) {
		return "", wardenerr.WithSuggestion(
			wardenerr.WithDetails(ErrInvalidOptions, map[string]string{
				"length":          strconv.Itoa(opts.Length),
				"enabled_classes": strconv.Itoa(len(classes)),
			}),
			"request at least as many characters as enabled character classes")
	}

	pool := strings.Join(classes, "")
	password := make([]byte, 0, opts.Length)

	// One draw from each enabled class first, so no class can be absent
	// by chance. The shuffle below removes the positional pattern.
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", fmt.Errorf("drawing class character: %w", err)
		}
		password = append(password, c)
	}

	for len(password) < opts.Length {
		c, err := randomChar(pool)
		if err != nil {
			return "", fmt.Errorf("drawing pool character: %w", err)
		}
		password = append(password, c)
	}

	if err := shuffle(password); err != nil {
		return "", fmt.Errorf("shuffling password: %w", err)
	}

	return string(password), nil
}

// randomChar draws one character uniformly from the alphabet.
func randomChar(alphabet string) (byte, error) {
	idx, err := wardencrypto.RandomIndex(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[idx], nil
}

// shuffle applies a Fisher-Yates permutation driven by the secure random
// source.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := wardencrypto.RandomIndex(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
