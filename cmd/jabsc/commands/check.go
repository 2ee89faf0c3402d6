package commands

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jabsc/errors"
	"github.com/teranos/jabsc/host"
	"github.com/teranos/jabsc/integration"
	"github.com/teranos/jabsc/logger"
	"github.com/teranos/jabsc/output"
)

// CheckCmd checks if generated sources are up to date
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check if generated sources are up to date",
	Long: `Translate into a scratch directory and compare the result with the
existing generated sources directory. Timestamp header lines are ignored.

Exit codes:
  0 - Generated sources are up to date
  1 - Generated sources are out of date
  2 - Error during check

Examples:
  jabsc check                                   # Compare with the configured output
  jabsc check --ignore-prefix "// @generated"   # Extra metadata line to skip`,
	RunE: runCheck,
}

var checkIgnorePrefixes []string

func init() {
	CheckCmd.Flags().StringSliceVar(&checkIgnorePrefixes, "ignore-prefix", output.DefaultMetadataPrefixes,
		"Ignore lines starting with this prefix when comparing (repeatable)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	compiler, err := newCompiler(cmd, cfg)
	if err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "jabsc-check-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	existing := integration.New(cfg.IntegrationConfig(), nil, compiler, logger.Logger).OutputDir()

	scratch := cfg.IntegrationConfig()
	scratch.OutputDir = tempDir
	// The scratch root is not a real source root; its registration is discarded
	discard := host.NewProject(cfg.GetBaseDir(), cfg.GetBuildDir())
	if _, err := integration.New(scratch, discard, compiler, logger.Logger).Execute(cmd.Context()); err != nil {
		return err
	}

	result, err := output.CompareDirectories(tempDir, existing, checkIgnorePrefixes)
	if err != nil {
		return errors.Wrap(err, "failed to compare directories")
	}

	if result.UpToDate {
		pterm.Success.Printfln("Generated sources in %s are up to date", existing)
		return nil
	}

	pterm.Error.Printfln("Generated sources in %s are out of date", existing)
	printPaths("Changed", result.Changed)
	printPaths("Missing", result.Missing)
	printPaths("Stale", result.Stale)

	return errors.WithHint(
		errors.Wrapf(errors.ErrOutOfDate, "%d files differ", len(result.Changed)+len(result.Missing)+len(result.Stale)),
		"run 'jabsc generate' to update",
	)
}

func printPaths(label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	pterm.Println()
	pterm.Printfln("%s:", label)
	for _, p := range paths {
		pterm.Printfln("  - %s", p)
	}
}
