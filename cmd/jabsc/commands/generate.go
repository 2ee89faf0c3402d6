package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jabsc/am"
	"github.com/teranos/jabsc/errors"
	"github.com/teranos/jabsc/host"
	"github.com/teranos/jabsc/integration"
	"github.com/teranos/jabsc/logger"
	"github.com/teranos/jabsc/translate"
)

// GenerateCmd translates ABS sources and prints the registered source roots
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Translate ABS sources into the generated sources directory",
	Long: `Translate ABS sources into Java.

The output directory is registered first and printed on stdout (one path per
line) even when translation fails, so the calling build can add it to its
compile source roots. Progress goes to stderr.

Examples:
  jabsc generate
  jabsc generate --json
  SRC_ROOTS=$(jabsc generate)`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().Bool("json", false, "Print the invocation report as JSON")
}

// generateReport is the --json output of generate
type generateReport struct {
	InvocationID       string   `json:"invocation_id"`
	SourceDir          string   `json:"source_dir"`
	OutputDir          string   `json:"output_dir"`
	CompileSourceRoots []string `json:"compile_source_roots"`
	Sources            []string `json:"sources"`
	Produced           []string `json:"produced"`
	DurationMS         int64    `json:"duration_ms"`
}

// rootAnnouncer prints compile source roots the calling build has not been told about yet
type rootAnnouncer struct {
	project *host.Project
	out     io.Writer
	printed int
}

func newRootAnnouncer(project *host.Project, out io.Writer) *rootAnnouncer {
	return &rootAnnouncer{project: project, out: out}
}

// announce writes every root registered since the last call, one per line
func (a *rootAnnouncer) announce() {
	roots := a.project.CompileSourceRoots()
	for _, root := range roots[a.printed:] {
		fmt.Fprintln(a.out, root)
		if logger.ShouldOutput(verbosity, logger.OutputSourceRoots) {
			pterm.Info.Printfln("Registered compile source root %s", root)
		}
	}
	a.printed = len(roots)
}

// AddCompileSourceRoot registers path with the project and announces it right away
func (a *rootAnnouncer) AddCompileSourceRoot(path string) {
	a.project.AddCompileSourceRoot(path)
	a.announce()
}

// newCompiler builds the translator from configuration
func newCompiler(cmd *cobra.Command, cfg *am.Config) (*translate.ExecCompiler, error) {
	compiler, err := translate.NewExecCompiler(cfg.Compiler.Command, cfg.GetCompilerTimeout(), logger.Logger)
	if err != nil {
		return nil, err
	}
	if logger.ShouldOutput(verbosity, logger.OutputCompilerStderr) {
		compiler.SetStderr(cmd.ErrOrStderr())
	}
	return compiler, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	compiler, err := newCompiler(cmd, cfg)
	if err != nil {
		return err
	}

	project := host.NewProject(cfg.GetBaseDir(), cfg.GetBuildDir())
	report, runErr := integration.New(cfg.IntegrationConfig(), project, compiler, logger.Logger).
		Execute(cmd.Context())

	// Roots are printed on failure too, registration is never rolled back
	if jsonOutput {
		out := generateReport{CompileSourceRoots: project.CompileSourceRoots()}
		if report != nil {
			out.InvocationID = report.InvocationID
			out.SourceDir = report.SourceDir
			out.OutputDir = report.OutputDir
			out.Sources = report.Sources
			out.Produced = report.Produced
			out.DurationMS = report.Duration.Milliseconds()
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal report")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		newRootAnnouncer(project, cmd.OutOrStdout()).announce()
	}

	if runErr != nil {
		return runErr
	}

	printReport(report)
	return nil
}

// printReport writes the human summary of a finished invocation to stderr
func printReport(report *integration.Report) {
	pterm.Success.Printfln("Compiled %d ABS sources to %s", report.Collected(), report.OutputDir)

	if logger.ShouldOutput(verbosity, logger.OutputCounts) {
		pterm.Info.Printfln("Produced %d files", report.ProducedCount())
	}
	if logger.ShouldOutput(verbosity, logger.OutputSourceFiles) {
		for _, src := range report.Sources {
			pterm.Printfln("  %s", src)
		}
	}
	if logger.ShouldOutput(verbosity, logger.OutputTiming) {
		pterm.Info.Printfln("Took %s", report.Duration.Round(time.Millisecond))
	}
}
