package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/metrics"
)

// statusVault summarizes the vault without unlocking it. Accounts and
// UpdatedAt come from the plaintext metadata next to the ciphertext.
type statusVault struct {
	Initialized bool       `json:"initialized"`
	Accounts    int        `json:"accounts"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// statusBackups summarizes the backup directory.
type statusBackups struct {
	Dir    string `json:"dir"`
	Count  int    `json:"count"`
	Latest string `json:"latest,omitempty"`
}

// statusMetrics mirrors the in-process counters for verbose output.
type statusMetrics struct {
	GenerateTotal   int64   `json:"generate_total"`
	GenerateErrors  int64   `json:"generate_errors"`
	CryptoOpsTotal  int64   `json:"crypto_ops_total"`
	CryptoErrors    int64   `json:"crypto_errors"`
	CryptoLatencyMs float64 `json:"crypto_latency_avg_ms"`
	VaultOpsTotal   int64   `json:"vault_ops_total"`
	VaultOpsErrors  int64   `json:"vault_ops_errors"`
}

// statusReport is the full status output.
type statusReport struct {
	Version    string         `json:"version"`
	Home       string         `json:"home"`
	ConfigFile string         `json:"config_file"`
	Vault      statusVault    `json:"vault"`
	Backups    statusBackups  `json:"backups"`
	Metrics    *statusMetrics `json:"metrics,omitempty"`
}

// statusCmd reports the state of the installation.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault and backup status",
	Long: `Show an overview of this Keywarden installation: the vault, the backup
directory, and the effective paths. No passphrase is needed; the vault
stays locked.

With --verbose the report includes in-process operation counters.

Example:
  keywarden status
  keywarden status -o json`,
	RunE: runStatus,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	report := statusReport{
		Version:    formatVersion(buildInfo),
		Home:       cfg.Home,
		ConfigFile: configPath,
	}

	v := openVault()
	exists, err := v.Exists()
	if err != nil {
		return err
	}
	report.Vault.Initialized = exists
	if exists {
		meta, err := v.Meta()
		if err != nil {
			return err
		}
		report.Vault.Accounts = meta.Count
		updated := meta.UpdatedAt
		report.Vault.UpdatedAt = &updated
	}

	report.Backups.Dir = cfg.GetBackupDir()
	backups, err := openBackupService().List()
	if err != nil {
		return err
	}
	report.Backups.Count = len(backups)
	if len(backups) > 0 {
		report.Backups.Latest = backups[0].Name
	}

	if cfg.Output.Verbose {
		snap := metrics.Global.Snapshot()
		report.Metrics = &statusMetrics{
			GenerateTotal:   snap.GenerateTotal,
			GenerateErrors:  snap.GenerateErrors,
			CryptoOpsTotal:  snap.EncryptTotal + snap.DecryptTotal,
			CryptoErrors:    snap.EncryptErrors + snap.DecryptErrors,
			CryptoLatencyMs: metrics.Global.CryptoLatencyAvgMs(),
			VaultOpsTotal:   snap.VaultOpsTotal,
			VaultOpsErrors:  snap.VaultOpsErrors,
		}
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, report)
	}

	outln(w, "Keywarden status")
	outln(w)
	out(w, "  Version: %s\n", report.Version)
	out(w, "  Home:    %s\n", report.Home)
	out(w, "  Config:  %s\n", report.ConfigFile)
	outln(w)
	outln(w, "  Vault:")
	out(w, "    Initialized: %t\n", report.Vault.Initialized)
	if report.Vault.Initialized {
		out(w, "    Accounts:    %d\n", report.Vault.Accounts)
		if report.Vault.UpdatedAt != nil {
			out(w, "    Updated:     %s\n", report.Vault.UpdatedAt.Format(listTimeLayout))
		}
	} else {
		outln(w, "    Create one with: keywarden vault init")
	}
	outln(w)
	outln(w, "  Backups:")
	out(w, "    Directory: %s\n", report.Backups.Dir)
	out(w, "    Count:     %d\n", report.Backups.Count)
	if report.Backups.Latest != "" {
		out(w, "    Latest:    %s\n", report.Backups.Latest)
	}

	if report.Metrics != nil {
		outln(w)
		outln(w, "  Metrics:")
		out(w, "    Generate ops: %d (%d errors)\n", report.Metrics.GenerateTotal, report.Metrics.GenerateErrors)
		out(w, "    Crypto ops:   %d (%d errors, avg %.1fms)\n",
			report.Metrics.CryptoOpsTotal, report.Metrics.CryptoErrors, report.Metrics.CryptoLatencyMs)
		out(w, "    Vault ops:    %d (%d errors)\n", report.Metrics.VaultOpsTotal, report.Metrics.VaultOpsErrors)
	}

	return nil
}
