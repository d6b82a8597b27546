package cli

import (
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/passgen"
)

// strengthCmd rates a password without storing it.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var strengthCmd = &cobra.Command{
	Use:   "strength [password]",
	Short: "Estimate password strength",
	Long: `Estimate the entropy and strength tier of a password.

With no argument the password is read with a hidden prompt, which keeps it
out of shell history.

Example:
  keywarden strength
  keywarden strength 'Tr0ub4dor&3'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStrength,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(strengthCmd)
}

// strengthResult is the assessment of one password. The password itself is
// never part of the output.
type strengthResult struct {
	Length   int              `json:"length"`
	Entropy  float64          `json:"entropy_bits"`
	Strength passgen.Strength `json:"strength"`
}

func runStrength(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		var err error
		password, err = promptPassphraseFn("Enter password to rate: ")
		if err != nil {
			return err
		}
	}

	entropy := passgen.CalculateEntropy(password)
	result := strengthResult{
		Length:   utf8.RuneCountInString(password),
		Entropy:  entropy,
		Strength: passgen.StrengthFromEntropy(entropy),
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, result)
	}

	out(w, "  Length:   %d characters\n", result.Length)
	out(w, "  Entropy:  %.1f bits\n", result.Entropy)
	out(w, "  Strength: %s\n", result.Strength)

	return nil
}
