package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/backup"
	"github.com/keywarden/keywarden/internal/output"
	"github.com/keywarden/keywarden/internal/vault"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// backupOutput overrides the generated backup file path.
	backupOutput string
	// backupLegacy selects the version 1.0 envelope format.
	backupLegacy bool
	// backupInput is the path to a backup file for restore/verify.
	backupInput string
	// restoreReplace replaces the vault contents instead of merging.
	restoreReplace bool
	// verifyPassphrase also tests decryption during verify.
	verifyPassphrase bool
)

// backupCmd is the parent command for backup operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage encrypted vault backups",
	Long:  `Create, verify, and restore encrypted .warden backup files.`,
}

// backupCreateCmd creates a backup.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a vault backup",
	Long: `Export the vault to an encrypted backup file.

Without --output the file is written to the backup directory with a
timestamped name. The file is self-describing: restoring needs nothing but
the passphrase. --legacy writes the version 1.0 envelope for import into
older tools; new backups should use the default format.

Example:
  keywarden backup create
  keywarden backup create --output /mnt/usb/vault.warden`,
	RunE: runBackupCreate,
}

// backupRestoreCmd restores accounts from a backup.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore accounts from a backup",
	Long: `Restore accounts from an encrypted backup file into the vault.

By default restored accounts are merged: accounts whose names already exist
in the vault are skipped. --replace discards the current contents and makes
the vault match the backup exactly. If no vault exists, one is created with
the backup passphrase.

Example:
  keywarden backup restore --input vault-2026-01-15-093000.warden
  keywarden backup restore --input old.warden --replace`,
	RunE: runBackupRestore,
}

// backupVerifyCmd verifies a backup file.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a backup file",
	Long: `Check that a backup file is structurally valid.

With --check-passphrase the passphrase is also tested against the
ciphertext, proving the backup can actually be restored.

Example:
  keywarden backup verify --input vault-2026-01-15-093000.warden
  keywarden backup verify --input old.warden --check-passphrase`,
	RunE: runBackupVerify,
}

// backupListCmd lists available backups.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	Long: `List backup files in the backup directory, newest first.

Example:
  keywarden backup list`,
	Aliases: []string{"ls"},
	RunE:    runBackupList,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupVerifyCmd)
	backupCmd.AddCommand(backupListCmd)

	backupCreateCmd.Flags().StringVar(&backupOutput, "output", "", "backup file path (default: timestamped name in the backup directory)")
	backupCreateCmd.Flags().BoolVar(&backupLegacy, "legacy", false, "write a version 1.0 envelope for older importers")

	backupRestoreCmd.Flags().StringVar(&backupInput, "input", "", "path to backup file (required)")
	backupRestoreCmd.Flags().BoolVar(&restoreReplace, "replace", false, "replace vault contents instead of merging")
	_ = backupRestoreCmd.MarkFlagRequired("input")

	backupVerifyCmd.Flags().StringVar(&backupInput, "input", "", "path to backup file (required)")
	backupVerifyCmd.Flags().BoolVar(&verifyPassphrase, "check-passphrase", false, "test that the passphrase decrypts the backup")
	_ = backupVerifyCmd.MarkFlagRequired("input")
}

// openBackupService builds the backup service over the configured directory.
func openBackupService() *backup.Service {
	return backup.NewService(cfg.GetBackupDir())
}

func runBackupCreate(cmd *cobra.Command, _ []string) error {
	passphrase, err := promptPassphraseFn("Enter vault passphrase: ")
	if err != nil {
		return err
	}

	accounts, err := openVault().Load(passphrase)
	if err != nil {
		return vaultHint(err)
	}

	legacy := backupLegacy || cfg.Backup.Legacy
	path, err := openBackupService().Create(accounts, passphrase, backup.CreateOptions{
		Legacy: legacy,
		Path:   backupOutput,
	})
	if err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}

	version := backup.VersionAEAD
	if legacy {
		version = backup.VersionLegacy
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"path":     path,
			"accounts": len(accounts),
			"version":  version,
		})
	}

	outln(w, "Backup created.")
	outln(w)
	out(w, "  File:     %s\n", path)
	out(w, "  Accounts: %d\n", len(accounts))
	out(w, "  Format:   %s\n", version)
	outln(w)
	outln(w, "Store this file securely. You will need your passphrase to restore it.")

	return nil
}

//nolint:gocognit // Restore walks created/merge/replace branches in one place
func runBackupRestore(cmd *cobra.Command, _ []string) error {
	svc := openBackupService()
	path := svc.BackupPath(backupInput)

	passphrase, err := promptPassphraseFn("Enter backup passphrase: ")
	if err != nil {
		return err
	}

	payload, err := svc.Restore(path, passphrase)
	if err != nil {
		return err
	}

	v := openVault()
	exists, err := v.Exists()
	if err != nil {
		return err
	}

	vaultPassphrase := passphrase
	created := false
	if !exists {
		if err := v.Init(passphrase); err != nil {
			return err
		}
		created = true
	} else if !v.CheckPassphrase(passphrase) {
		// Vault locked with a different passphrase than the backup.
		vaultPassphrase, err = promptPassphraseFn("Enter vault passphrase: ")
		if err != nil {
			return err
		}
	}

	var accounts []vault.Account
	added := 0
	skipped := 0

	if created || restoreReplace {
		accounts = payload.Accounts
		added = len(payload.Accounts)
	} else {
		existing, err := v.Load(vaultPassphrase)
		if err != nil {
			return vaultHint(err)
		}
		accounts = existing
		for i := range payload.Accounts {
			if vault.FindByName(existing, payload.Accounts[i].Name) >= 0 {
				skipped++
				continue
			}
			accounts = append(accounts, payload.Accounts[i])
			added++
		}
	}

	if err := v.Save(accounts, vaultPassphrase); err != nil {
		return vaultHint(err)
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"restored":      added,
			"skipped":       skipped,
			"total":         len(accounts),
			"vault_created": created,
		})
	}

	outln(w, "Backup restored.")
	outln(w)
	out(w, "  Restored: %d account(s)\n", added)
	if skipped > 0 {
		out(w, "  Skipped:  %d existing account(s)\n", skipped)
	}
	if created {
		outln(w)
		outln(w, "A new vault was created with the backup passphrase.")
	}

	return nil
}

func runBackupVerify(cmd *cobra.Command, _ []string) error {
	svc := openBackupService()
	path := svc.BackupPath(backupInput)

	envelope, err := svc.Verify(path)
	if err != nil {
		return fmt.Errorf("verifying backup: %w", err)
	}

	checked := false
	if verifyPassphrase {
		passphrase, err := promptPassphraseFn("Enter backup passphrase: ")
		if err != nil {
			return err
		}
		if _, err := svc.VerifyWithPassphrase(path, passphrase); err != nil {
			return err
		}
		checked = true
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"path":      path,
			"version":   envelope.Version,
			"decrypted": checked,
		})
	}

	outln(w, "Backup structure verified.")
	outln(w)
	out(w, "  File:   %s\n", path)
	out(w, "  Format: %s\n", envelope.Version)
	if checked {
		outln(w)
		outln(w, "Decryption verified.")
	}

	return nil
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	backups, err := openBackupService().List()
	if err != nil {
		return fmt.Errorf("listing backups: %w", err)
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, backups)
	}

	if len(backups) == 0 {
		outln(w, "No backups found.")
		outln(w, "Create one with: keywarden backup create")
		return nil
	}

	table := output.NewTable("Name", "Size", "Modified")
	for _, b := range backups {
		table.AddRow(b.Name, formatSize(b.Size), b.ModTime.Format(listTimeLayout))
	}
	if err := table.Render(w); err != nil {
		return err
	}

	outln(w)
	out(w, "Backup directory: %s\n", cfg.GetBackupDir())

	return nil
}

// formatSize renders a byte count with a binary unit.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
