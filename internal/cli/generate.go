package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/metrics"
	"github.com/keywarden/keywarden/internal/passgen"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// maxGenerateCount caps --count in a single invocation.
const maxGenerateCount = 100

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// genLength is the requested password length.
	genLength int
	// genNoUppercase disables the A-Z class.
	genNoUppercase bool
	// genNoLowercase disables the a-z class.
	genNoLowercase bool
	// genNoNumbers disables the 0-9 class.
	genNoNumbers bool
	// genNoSymbols disables the punctuation class.
	genNoSymbols bool
	// genCount is the number of values to generate.
	genCount int
	// genWords is the passphrase word count.
	genWords int
	// genSeparator joins passphrase words.
	genSeparator string
	// genCapitalize uppercases the first letter of each word.
	genCapitalize bool
)

// generateCmd is the parent command for generation operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var generateCmd = &cobra.Command{
	Use:     "generate",
	Short:   "Generate passwords and passphrases",
	Long:    `Generate random passwords or word-based passphrases.`,
	Aliases: []string{"gen"},
}

// generatePasswordCmd generates character passwords.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var generatePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Generate a random password",
	Long: `Generate a random password from the enabled character classes.

Every enabled class contributes at least one character. Defaults come from
the generator section of the configuration file.

Example:
  keywarden generate password
  keywarden generate password --length 24 --no-symbols
  keywarden generate password --count 5 -o json`,
	Aliases: []string{"pw"},
	RunE:    runGeneratePassword,
}

// generatePassphraseCmd generates word-based passphrases.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var generatePassphraseCmd = &cobra.Command{
	Use:   "passphrase",
	Short: "Generate a word-based passphrase",
	Long: `Generate a passphrase of random words from a 2048-word list.

Each word adds 11 bits of entropy; the default five words give about 55.

Example:
  keywarden generate passphrase
  keywarden generate passphrase --words 7 --separator . --capitalize`,
	Aliases: []string{"pp"},
	RunE:    runGeneratePassphrase,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.AddCommand(generatePasswordCmd)
	generateCmd.AddCommand(generatePassphraseCmd)

	generatePasswordCmd.Flags().IntVarP(&genLength, "length", "l", 0, "password length (default from config)")
	generatePasswordCmd.Flags().BoolVar(&genNoUppercase, "no-uppercase", false, "exclude uppercase letters")
	generatePasswordCmd.Flags().BoolVar(&genNoLowercase, "no-lowercase", false, "exclude lowercase letters")
	generatePasswordCmd.Flags().BoolVar(&genNoNumbers, "no-numbers", false, "exclude digits")
	generatePasswordCmd.Flags().BoolVar(&genNoSymbols, "no-symbols", false, "exclude symbols")
	generatePasswordCmd.Flags().IntVarP(&genCount, "count", "n", 1, "number of passwords to generate")

	generatePassphraseCmd.Flags().IntVarP(&genWords, "words", "w", 0, "number of words (default from config)")
	generatePassphraseCmd.Flags().StringVar(&genSeparator, "separator", "", "word separator (default from config)")
	generatePassphraseCmd.Flags().BoolVar(&genCapitalize, "capitalize", false, "capitalize each word")
	generatePassphraseCmd.Flags().IntVarP(&genCount, "count", "n", 1, "number of passphrases to generate")
}

// passwordResult is one generated password with its strength assessment.
type passwordResult struct {
	Password string           `json:"password"`
	Length   int              `json:"length"`
	Entropy  float64          `json:"entropy_bits"`
	Strength passgen.Strength `json:"strength"`
}

// passphraseResult is one generated passphrase with its strength assessment.
type passphraseResult struct {
	Passphrase string           `json:"passphrase"`
	Words      int              `json:"words"`
	Entropy    float64          `json:"entropy_bits"`
	Strength   passgen.Strength `json:"strength"`
}

// validateCount bounds the --count flag.
func validateCount(count int) error {
	if count < 1 || count > maxGenerateCount {
		return wardenerr.WithDetails(wardenerr.ErrInvalidOptions, map[string]string{
			"count": strconv.Itoa(count),
			"range": "1-" + strconv.Itoa(maxGenerateCount),
		})
	}
	return nil
}

// generatorDefaults returns the password generation options from config.
func generatorDefaults() passgen.Options {
	return passgen.Options{
		Length:    cfg.Generator.Length,
		Uppercase: cfg.Generator.Uppercase,
		Lowercase: cfg.Generator.Lowercase,
		Numbers:   cfg.Generator.Numbers,
		Symbols:   cfg.Generator.Symbols,
	}
}

// passwordOptions merges configured generator defaults with flag overrides.
// The class flags only disable; a class disabled in config stays disabled.
func passwordOptions(cmd *cobra.Command) passgen.Options {
	opts := generatorDefaults()

	if cmd.Flags().Changed("length") {
		opts.Length = genLength
	}
	if genNoUppercase {
		opts.Uppercase = false
	}
	if genNoLowercase {
		opts.Lowercase = false
	}
	if genNoNumbers {
		opts.Numbers = false
	}
	if genNoSymbols {
		opts.Symbols = false
	}

	return opts
}

// passphraseOptions merges configured passphrase defaults with flag overrides.
func passphraseOptions(cmd *cobra.Command) passgen.PassphraseOptions {
	opts := passgen.PassphraseOptions{
		Words:      cfg.Generator.Words,
		Separator:  cfg.Generator.Separator,
		Capitalize: cfg.Generator.Capitalize,
	}

	if cmd.Flags().Changed("words") {
		opts.Words = genWords
	}
	if cmd.Flags().Changed("separator") {
		opts.Separator = genSeparator
	}
	if genCapitalize {
		opts.Capitalize = true
	}

	return opts
}

func runGeneratePassword(cmd *cobra.Command, _ []string) error {
	if err := validateCount(genCount); err != nil {
		return err
	}

	opts := passwordOptions(cmd)

	results := make([]passwordResult, 0, genCount)
	for i := 0; i < genCount; i++ {
		password, err := passgen.Generate(opts)
		metrics.Global.RecordGenerate(err)
		if err != nil {
			return err
		}

		entropy := passgen.CalculateEntropy(password)
		results = append(results, passwordResult{
			Password: password,
			Length:   opts.Length,
			Entropy:  entropy,
			Strength: passgen.StrengthFromEntropy(entropy),
		})
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		if len(results) == 1 {
			return writeJSON(w, results[0])
		}
		return writeJSON(w, results)
	}

	for _, r := range results {
		outln(w, r.Password)
	}
	outln(w)
	out(w, "  Entropy:  %.1f bits\n", results[0].Entropy)
	out(w, "  Strength: %s\n", results[0].Strength)

	return nil
}

func runGeneratePassphrase(cmd *cobra.Command, _ []string) error {
	if err := validateCount(genCount); err != nil {
		return err
	}

	opts := passphraseOptions(cmd)

	results := make([]passphraseResult, 0, genCount)
	for i := 0; i < genCount; i++ {
		passphrase, err := passgen.GeneratePassphrase(opts)
		metrics.Global.RecordGenerate(err)
		if err != nil {
			return err
		}

		entropy := passgen.PassphraseEntropy(opts.Words)
		results = append(results, passphraseResult{
			Passphrase: passphrase,
			Words:      opts.Words,
			Entropy:    entropy,
			Strength:   passgen.StrengthFromEntropy(entropy),
		})
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		if len(results) == 1 {
			return writeJSON(w, results[0])
		}
		return writeJSON(w, results)
	}

	for _, r := range results {
		outln(w, r.Passphrase)
	}
	outln(w)
	out(w, "  Entropy:  %.1f bits (%d words)\n", results[0].Entropy, results[0].Words)
	out(w, "  Strength: %s\n", results[0].Strength)

	return nil
}
