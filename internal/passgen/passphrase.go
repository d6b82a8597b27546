package passgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	bip39 "github.com/tyler-smith/go-bip39"

	"github.com/keywarden/keywarden/internal/wardencrypto"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// Passphrase word count bounds. Each word drawn from the 2048-word list
// contributes 11 bits of entropy.
const (
	MinWords = 3
	MaxWords = 16
)

// PassphraseOptions selects the word count and formatting for word-based
// passphrases.
type PassphraseOptions struct {
	// Words is the number of words to draw.
	Words int `json:"words"`

	// Separator is placed between words.
	Separator string `json:"separator"`

	// Capitalize uppercases the first letter of each word.
	Capitalize bool `json:"capitalize"`
}

// DefaultPassphraseOptions returns the passphrase defaults: five words
// joined by hyphens (about 55 bits of entropy).
func DefaultPassphraseOptions() PassphraseOptions {
	return PassphraseOptions{
		Words:     5,
		Separator: "-",
	}
}

// GeneratePassphrase produces a word-based passphrase from the BIP-39
// English word list using the secure random source.
func GeneratePassphrase(opts PassphraseOptions) (string, error) {
	if opts.Words < MinWords || opts.Words > MaxWords {
		return "", wardenerr.WithDetails(ErrInvalidOptions, map[string]string{
			"words": strconv.Itoa(opts.Words),
			"range": fmt.Sprintf("%d-%d", MinWords, MaxWords),
		})
	}

	list := bip39.GetWordList()
	words := make([]string, opts.Words)
	for i := range words {
		idx, err := wardencrypto.RandomIndex(len(list))
		if err != nil {
			return "", fmt.Errorf("drawing word: %w", err)
		}
		word := list[idx]
		if opts.Capitalize {
			word = strings.ToUpper(word[:1]) + word[1:]
		}
		words[i] = word
	}

	return strings.Join(words, opts.Separator), nil
}

// PassphraseEntropy returns the entropy in bits of a passphrase with the
// given word count.
func PassphraseEntropy(words int) float64 {
	if words <= 0 {
		return 0
	}
	return float64(words) * math.Log2(float64(len(bip39.GetWordList())))
}
