package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/metrics"
	"github.com/keywarden/keywarden/internal/output"
	"github.com/keywarden/keywarden/internal/passgen"
	"github.com/keywarden/keywarden/internal/store"
	"github.com/keywarden/keywarden/internal/vault"
	wardenerr "github.com/keywarden/keywarden/pkg/errors"
)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...interface{}) {
	fmt.Fprintln(w, args...)
}

// vaultFileName is the store file holding the encrypted vault.
const vaultFileName = "vault.json"

// listTimeLayout formats timestamps in vault listings.
const listTimeLayout = "2006-01-02 15:04"

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// addUsername is the login identity for the new account.
	addUsername string
	// addPassword is the password for the new account; empty means generate or prompt.
	addPassword string
	// addGenerate generates the password instead of prompting.
	addGenerate bool
	// addCategory classifies the new account.
	addCategory string
	// addWebsite is the site the credential belongs to.
	addWebsite string
	// addNotes is free-form text attached to the account.
	addNotes string
	// showReveal displays the stored password in plaintext.
	showReveal bool
	// showQR renders the password as a terminal QR code.
	showQR bool
	// removeYes skips the removal confirmation.
	removeYes bool
)

// vaultCmd is the parent command for vault operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage the account vault",
	Long:  `Store, list, and retrieve credentials in the passphrase-locked vault.`,
}

// vaultInitCmd creates an empty vault.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var vaultInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new vault",
	Long: `Create an empty vault locked with a passphrase of your choice.

The vault lives in the keywarden home directory. All account data is
encrypted at rest; only metadata such as the account count stays readable.

Example:
  keywarden vault init`,
	RunE: runVaultInit,
}

// vaultAddCmd stores a new account.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var vaultAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an account to the vault",
	Long: `Add a credential to the vault.

The password comes from --password, from --generate, or from a hidden
prompt. Generated passwords use the configured generator defaults and are
shown once after the account is stored.

Example:
  keywarden vault add github --username octocat --generate
  keywarden vault add bank --username jo --category finance`,
	Args: cobra.ExactArgs(1),
	RunE: runVaultAdd,
}

// vaultListCmd lists stored accounts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	Long: `List every account in the vault with passwords masked.

Example:
  keywarden vault list
  keywarden vault list -o json`,
	Aliases: []string{"ls"},
	RunE:    runVaultList,
}

// vaultShowCmd displays one account.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var vaultShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a stored account",
	Long: `Show one account. The password stays masked unless --reveal is given.

--qr renders the password as a QR code for scanning with a phone. The code
is only drawn on a terminal; on a pipe or file nothing is written, so the
secret cannot end up persisted by accident.

Example:
  keywarden vault show github
  keywarden vault show github --reveal
  keywarden vault show wifi --qr`,
	Args: cobra.ExactArgs(1),
	RunE: runVaultShow,
}

// vaultRemoveCmd deletes an account.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var vaultRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an account from the vault",
	Long: `Remove an account. Asks for confirmation unless --yes is given.

Example:
  keywarden vault remove old-forum --yes`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE:    runVaultRemove,
}

// vaultPasswdCmd changes the vault passphrase.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var vaultPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the vault passphrase",
	Long: `Re-encrypt the vault under a new passphrase.

Example:
  keywarden vault passwd`,
	RunE: runVaultPasswd,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(vaultCmd)
	vaultCmd.AddCommand(vaultInitCmd)
	vaultCmd.AddCommand(vaultAddCmd)
	vaultCmd.AddCommand(vaultListCmd)
	vaultCmd.AddCommand(vaultShowCmd)
	vaultCmd.AddCommand(vaultRemoveCmd)
	vaultCmd.AddCommand(vaultPasswdCmd)

	vaultAddCmd.Flags().StringVarP(&addUsername, "username", "u", "", "login identity (required)")
	vaultAddCmd.Flags().StringVarP(&addPassword, "password", "p", "", "account password (omit to prompt)")
	vaultAddCmd.Flags().BoolVarP(&addGenerate, "generate", "g", false, "generate the password")
	vaultAddCmd.Flags().StringVarP(&addCategory, "category", "c", "", "category: login, finance, email, social, work, other")
	vaultAddCmd.Flags().StringVar(&addWebsite, "website", "", "website the credential belongs to")
	vaultAddCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	_ = vaultAddCmd.MarkFlagRequired("username")

	vaultShowCmd.Flags().BoolVar(&showReveal, "reveal", false, "display the password in plaintext")
	vaultShowCmd.Flags().BoolVar(&showQR, "qr", false, "render the password as a QR code (terminal only)")

	vaultRemoveCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip the confirmation prompt")
}

// vaultPath returns the vault store file path.
func vaultPath() string {
	return filepath.Join(cfg.Home, vaultFileName)
}

// openVault builds the vault service over the file store in the home directory.
func openVault() *vault.Vault {
	return vault.New(store.NewFileStore(vaultPath()))
}

// vaultHint attaches a CLI hint to vault-not-found errors.
func vaultHint(err error) error {
	if wardenerr.Is(err, wardenerr.ErrVaultNotFound) {
		return wardenerr.WithSuggestion(err, "run 'keywarden vault init' to create a vault")
	}
	return err
}

// accountNameHint augments an invalid-name error with a sanitized alternative
// when one can be derived from the input.
func accountNameHint(err error, name string) error {
	if !wardenerr.Is(err, wardenerr.ErrInvalidInput) {
		return err
	}
	if s := vault.SuggestAccountName(name); s != "" && s != name {
		return wardenerr.WithSuggestion(err,
			fmt.Sprintf("account names use letters, digits, dots, underscores, and hyphens; try '%s'", s))
	}
	return err
}

func runVaultInit(cmd *cobra.Command, _ []string) error {
	v := openVault()

	exists, err := v.Exists()
	if err != nil {
		return err
	}
	if exists {
		return wardenerr.WithSuggestion(wardenerr.ErrVaultExists,
			"use 'keywarden vault passwd' to change the passphrase")
	}

	passphrase, err := promptNewPassphraseFn()
	if err != nil {
		return err
	}

	if err := v.Init(passphrase); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{
			"status": "initialized",
			"path":   vaultPath(),
		})
	}

	outln(w, "Vault initialized.")
	outln(w)
	out(w, "  Path: %s\n", vaultPath())
	outln(w)
	outln(w, "Add your first account with: keywarden vault add <name> --username <user>")

	return nil
}

func runVaultAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	var category vault.Category
	if addCategory != "" {
		var err error
		category, err = vault.ParseCategory(addCategory)
		if err != nil {
			return err
		}
	}

	password := addPassword
	generated := false
	if password == "" && addGenerate {
		var err error
		password, err = passgen.Generate(generatorDefaults())
		metrics.Global.RecordGenerate(err)
		if err != nil {
			return err
		}
		generated = true
	}
	if password == "" {
		var err error
		password, err = promptPassphraseFn("Enter password for '" + name + "': ")
		if err != nil {
			return err
		}
	}

	account, err := vault.NewAccount(name, addUsername, password, category)
	if err != nil {
		return accountNameHint(err, name)
	}
	if addWebsite != "" {
		account.SetWebsite(addWebsite)
	}
	account.Notes = addNotes

	passphrase, err := promptPassphraseFn("Enter vault passphrase: ")
	if err != nil {
		return err
	}

	if err := openVault().AddAccount(passphrase, account); err != nil {
		return vaultHint(err)
	}

	// A generated password is shown once; anything else stays masked.
	display := account.Redacted()
	if generated {
		display = *account
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, display)
	}

	out(w, "Account '%s' added.\n", account.Name)
	outln(w)
	out(w, "  Username: %s\n", account.Username)
	out(w, "  Category: %s\n", account.Category)
	if generated {
		out(w, "  Password: %s\n", account.Password)
		outln(w)
		outln(w, "This generated password is shown once. View it again with:")
		out(w, "  keywarden vault show %s --reveal\n", account.Name)
	}

	return nil
}

func runVaultList(cmd *cobra.Command, _ []string) error {
	passphrase, err := promptPassphraseFn("Enter vault passphrase: ")
	if err != nil {
		return err
	}

	accounts, err := openVault().Load(passphrase)
	if err != nil {
		return vaultHint(err)
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		redacted := make([]vault.Account, 0, len(accounts))
		for i := range accounts {
			redacted = append(redacted, accounts[i].Redacted())
		}
		return writeJSON(w, redacted)
	}

	if len(accounts) == 0 {
		outln(w, "No accounts stored.")
		outln(w, "Add one with: keywarden vault add <name> --username <user>")
		return nil
	}

	table := output.NewTable("Name", "Username", "Category", "Modified")
	for i := range accounts {
		table.AddRow(
			accounts[i].Name,
			accounts[i].Username,
			accounts[i].Category.String(),
			accounts[i].UpdatedAt.Format(listTimeLayout),
		)
	}
	if err := table.Render(w); err != nil {
		return err
	}

	outln(w)
	out(w, "%d account(s)\n", len(accounts))

	return nil
}

func runVaultShow(cmd *cobra.Command, args []string) error {
	name := args[0]

	passphrase, err := promptPassphraseFn("Enter vault passphrase: ")
	if err != nil {
		return err
	}

	account, err := openVault().GetAccount(passphrase, name)
	if err != nil {
		return vaultHint(err)
	}

	display := *account
	if !showReveal {
		display = account.Redacted()
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		if err := writeJSON(w, display); err != nil {
			return err
		}
	} else {
		out(w, "  Name:     %s\n", display.Name)
		out(w, "  Username: %s\n", display.Username)
		out(w, "  Password: %s\n", display.Password)
		if display.Website != "" {
			out(w, "  Website:  %s\n", display.Website)
		}
		out(w, "  Category: %s\n", display.Category)
		if display.Notes != "" {
			out(w, "  Notes:    %s\n", display.Notes)
		}
		out(w, "  Created:  %s\n", display.CreatedAt.Format(listTimeLayout))
		out(w, "  Modified: %s\n", display.UpdatedAt.Format(listTimeLayout))
	}

	if showQR {
		if !output.CanRenderQR(w) {
			output.Warn("QR output needs a terminal; not writing the secret to a pipe")
			return nil
		}
		outln(w)
		return output.RenderQR(w, account.Password, output.DefaultQRConfig())
	}

	return nil
}

func runVaultRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	w := cmd.OutOrStdout()

	if !removeYes && !promptConfirmFn("Remove account '"+name+"'?") {
		outln(w, "Aborted.")
		return nil
	}

	passphrase, err := promptPassphraseFn("Enter vault passphrase: ")
	if err != nil {
		return err
	}

	if err := openVault().RemoveAccount(passphrase, name); err != nil {
		return vaultHint(err)
	}

	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{"status": "removed", "name": name})
	}

	out(w, "Account '%s' removed.\n", name)

	return nil
}

func runVaultPasswd(cmd *cobra.Command, _ []string) error {
	oldPassphrase, err := promptPassphraseFn("Enter current passphrase: ")
	if err != nil {
		return err
	}

	newPassphrase, err := promptNewPassphraseFn()
	if err != nil {
		return err
	}

	if err := openVault().ChangePassphrase(oldPassphrase, newPassphrase); err != nil {
		return vaultHint(err)
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]string{"status": "passphrase-changed"})
	}

	outln(w, "Vault passphrase changed.")

	return nil
}
