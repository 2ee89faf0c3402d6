package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/jabsc/am"
	"github.com/teranos/jabsc/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage jabsc configuration",
	Long: `am - Manage jabsc configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (JABSC_* prefix)
3. Project config (jabsc.toml, searched upward from cwd, or --config)
4. User config (~/.jabsc/jabsc.toml)
5. System config (/etc/jabsc/jabsc.toml)
6. Default values

Examples:
  jabsc am show                   # Show current configuration
  jabsc am show --format json     # Show configuration in JSON format
  jabsc am get output.directory   # Get specific config value
  jabsc am validate               # Validate current configuration
  jabsc am validate other.toml    # Validate one file on its own
  jabsc am init                   # Write a starter jabsc.toml`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., source.directory, compiler.command)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate current configuration",
	Long: `Validate the effective configuration and report unknown keys in the project config file.

With a file argument, validate that file on its own (defaults only, no
environment, no other config files). Useful before committing a jabsc.toml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter jabsc.toml",
	Long:  "Write a jabsc.toml holding the defaults (default path: ./jabsc.toml). Existing files are kept unless --force is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAmInit,
}

var (
	configFormat string
	initForce    bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file, keeping a backup")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# jabsc configuration\n%s", data)

	case "toml":
		data, err := am.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# jabsc configuration\n%s", data)

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if !am.GetViper().IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	var (
		cfg  *am.Config
		path string
		err  error
	)
	if len(args) == 1 {
		path = args[0]
		cfg, err = am.LoadFromFile(path)
	} else {
		path = am.ProjectConfigPath()
		cfg, err = am.Load()
	}
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	if path != "" {
		unknown, err := am.CheckUnknownKeys(path)
		if err != nil {
			return err
		}
		for _, key := range unknown {
			pterm.Warning.Printfln("Unknown key %q in %s", key, path)
		}
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	for i, layer := range am.ConfigLayers() {
		status := "missing"
		if _, err := os.Stat(layer.Path); err == nil {
			status = "loaded"
		}
		fmt.Fprintf(out, "  %d. [%-8s] %s (%s)\n", i+2, layer.Source, layer.Path, status)
	}
	fmt.Fprintf(out, "  %d. [ENV]      %s_* environment variables\n", len(am.ConfigLayers())+2, am.EnvPrefix)
	fmt.Fprintln(out)

	table := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range intro.Settings {
		from := s.SourcePath
		if s.Source != am.SourceDefault && s.Source != am.SourceEnvironment {
			from = filepath.Base(filepath.Dir(s.SourcePath)) + "/" + filepath.Base(s.SourcePath)
		}
		table = append(table, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), from})
	}
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(table).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	fmt.Fprintln(out, rendered)
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.ConfigFileName
	if len(args) == 1 {
		path = args[0]
	}

	if err := am.WriteDefaultFile(path, initForce); err != nil {
		return err
	}
	pterm.Success.Printfln("Wrote %s", path)
	return nil
}
