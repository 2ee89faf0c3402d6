package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teranos/jabsc/am"
	"github.com/teranos/jabsc/errors"
	"github.com/teranos/jabsc/logger"
)

// verbosity is the -v count of the current invocation
var verbosity int

// flagKeys maps persistent flags onto configuration keys
var flagKeys = map[string]string{
	"source":    "source.directory",
	"extension": "source.extension",
	"output":    "output.directory",
	"base-dir":  "project.base_dir",
	"build-dir": "project.build_dir",
	"compiler":  "compiler.command",
	"json-log":  "log.json",
}

// RootCmd translates ABS sources into Java when run without a subcommand
var RootCmd = &cobra.Command{
	Use:   "jabsc",
	Short: "Translate ABS sources to Java as part of a build",
	Long: `jabsc - ABS to Java source generation for builds.

Collects *.abs files from the source directory (non-recursive), runs the
translator into the generated sources directory and prints that directory
so the calling build can add it to its compile source roots.

Output directory, unless configured:
  <build-dir>/generated-sources/jabsc

Available commands:
  generate - Translate sources (default)
  check    - Verify generated sources are up to date
  watch    - Re-translate when sources change
  am       - Manage jabsc configuration
  version  - Show version information

Examples:
  jabsc                              # Translate with jabsc.toml settings
  jabsc --source models --output gen # Override directories
  jabsc check                        # Fail when generated code drifted
  jabsc watch -v                     # Rebuild on change`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runGenerate,
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	flags.String("config", "", "Project config file (default: jabsc.toml searched upward from cwd)")
	flags.String("source", "", "ABS source directory (default: <base-dir>/src/main/abs)")
	flags.String("extension", "", "Source file extension without the dot (default: abs)")
	flags.StringP("output", "o", "", "Generated sources directory (default: <build-dir>/generated-sources/jabsc)")
	flags.String("base-dir", "", "Project base directory (default: git worktree root or cwd)")
	flags.String("build-dir", "", "Build directory (default: <base-dir>/target)")
	flags.String("compiler", "", "Translator command line, {output} is replaced by the output directory")
	flags.Bool("json-log", false, "Emit logs as JSON")

	RootCmd.Flags().Bool("json", false, "Print the invocation report as JSON")

	RootCmd.AddCommand(GenerateCmd)
	RootCmd.AddCommand(CheckCmd)
	RootCmd.AddCommand(WatchCmd)
	RootCmd.AddCommand(AmCmd)
	RootCmd.AddCommand(VersionCmd)
}

// setup loads configuration, binds flags over it and initializes the logger
func setup(cmd *cobra.Command, args []string) error {
	pterm.SetDefaultOutput(cmd.ErrOrStderr())

	verbosity, _ = cmd.Flags().GetCount("verbose")

	// Empty clears any pinned file and falls back to the upward search
	configPath, _ := cmd.Flags().GetString("config")
	am.SetConfigFile(configPath)

	v := am.GetViper()
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return errors.Wrap(bindErr, "failed to bind flags")
	}

	cfg, err := am.Load()
	if err != nil {
		return err
	}

	logger.SetTheme(cfg.GetLogTheme())
	if err := logger.Initialize(cfg.Log.JSON, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

// loadConfig returns the effective, validated configuration
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	if logger.ShouldOutput(verbosity, logger.OutputConfig) {
		pterm.Info.Printfln("Verbosity %s, effective config: %s", logger.LevelName(verbosity), cfg.String())
	}
	return cfg, nil
}

// Execute runs the root command and returns the command that ran
func Execute(ctx context.Context) (*cobra.Command, error) {
	defer logger.Cleanup()
	return RootCmd.ExecuteContextC(ctx)
}

// ExitCode maps a command error onto the process exit status.
// check distinguishes drift (1) from failing to check at all (2).
func ExitCode(cmd *cobra.Command, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errors.ErrOutOfDate):
		return 1
	case cmd != nil && cmd.Name() == CheckCmd.Name():
		return 2
	default:
		return 1
	}
}
