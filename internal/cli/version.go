package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/output"
	versionpkg "github.com/keywarden/keywarden/internal/version"
)

const (
	// devVersionString is the string used for development builds.
	devVersionString = "dev"
	// releaseOwner is the GitHub repository owner for release lookups.
	releaseOwner = "keywarden"
	// releaseRepo is the GitHub repository name for release lookups.
	releaseRepo = "keywarden"
)

// versionCheck queries GitHub for a newer release.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var versionCheck bool

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit, and build date of this binary.

With --check the latest GitHub release is fetched and compared against the
running version. This is the only network access in the whole tool, and it
never runs unless you ask for it.

Example:
  keywarden version
  keywarden version --check`,
	RunE: runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

// currentVersion returns the running version, or "dev" for unreleased builds.
func currentVersion() string {
	if buildInfo.Version == "" {
		return devVersionString
	}
	return buildInfo.Version
}

func runVersion(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	if !versionCheck {
		if formatter.IsJSON() {
			return writeJSON(w, map[string]string{
				"version": currentVersion(),
				"commit":  buildInfo.Commit,
				"date":    buildInfo.Date,
			})
		}

		out(w, "keywarden %s\n", formatVersion(buildInfo))

		return nil
	}

	info, err := versionpkg.Check(cmd.Context(), releaseOwner, releaseRepo, currentVersion())
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}

	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"version": info.Current,
			"latest":  info.Latest,
			"newer":   info.IsNewer,
		})
	}

	out(w, "keywarden %s\n", formatVersion(buildInfo))
	if info.IsNewer {
		output.Warnf("A newer version is available: %s -> %s", info.Current, info.Latest)
		out(w, "Download: https://github.com/%s/%s/releases/latest\n", releaseOwner, releaseRepo)
	} else {
		output.Success("You are on the latest version")
	}

	return nil
}
