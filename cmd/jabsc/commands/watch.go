package commands

import (
	"context"
	"sync"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jabsc/am"
	"github.com/teranos/jabsc/host"
	"github.com/teranos/jabsc/integration"
	"github.com/teranos/jabsc/logger"
	"github.com/teranos/jabsc/watch"
)

// WatchCmd re-translates whenever sources change
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-translate ABS sources when they change",
	Long: `Translate once, then again whenever a source file in the source
directory is created, written, renamed or removed. Bursts of changes are
debounced (watch.debounce_ms) and runs are capped per minute
(watch.max_runs_per_minute). A failed run is reported and watching continues.

Edits to the project jabsc.toml are picked up without a restart, except for
the source directory and extension which are fixed for the session. When an
edit moves the output directory, the new root is printed on stdout before
anything is translated into it.

Examples:
  jabsc watch
  jabsc watch -v      # Also show registered roots and counts
  jabsc watch -vvv    # Also show translator stderr and raw watch events`,
	RunE: runWatch,
}

// liveConfig holds the configuration the next run will use
type liveConfig struct {
	mu  sync.RWMutex
	cfg *am.Config
}

func (l *liveConfig) get() *am.Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

func (l *liveConfig) set(cfg *am.Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	live := &liveConfig{cfg: cfg}
	project := host.NewProject(cfg.GetBaseDir(), cfg.GetBuildDir())
	roots := newRootAnnouncer(project, cmd.OutOrStdout())

	if path := am.ProjectConfigPath(); path != "" {
		cw, err := am.NewConfigWatcher(path)
		if err != nil {
			pterm.Warning.Printfln("Not watching %s: %v", path, err)
		} else {
			cw.OnReload(func(next *am.Config) error {
				if next.GetSourceDir() != cfg.GetSourceDir() || next.Source.Extension != cfg.Source.Extension {
					pterm.Warning.Println("Source directory or extension changed, restart watch to apply")
				}
				live.set(next)
				return nil
			})
			cw.Start()
			defer cw.Stop()
		}
	}

	runner := watch.RunnerFunc(func(ctx context.Context) (*integration.Report, error) {
		current := live.get()
		compiler, err := newCompiler(cmd, current)
		if err != nil {
			return nil, err
		}
		// Roots are announced as they are registered, so a reload that moves the
		// output directory is printed before anything is translated into it
		report, err := integration.New(current.IntegrationConfig(), roots, compiler, logger.Logger).Execute(ctx)
		if err != nil {
			pterm.Error.Println(err.Error())
			return nil, err
		}
		printReport(report)
		return report, nil
	})

	// Print the root before the first run so the build can pick it up
	roots.AddCompileSourceRoot(integration.New(cfg.IntegrationConfig(), project, nil, logger.Logger).OutputDir())

	w := watch.New(cfg.GetSourceDir(), runner, watch.Options{
		Extension:        cfg.Source.Extension,
		Debounce:         cfg.GetDebouncePeriod(),
		MaxRunsPerMinute: cfg.Watch.MaxRunsPerMinute,
		TraceEvents:      logger.ShouldOutput(verbosity, logger.OutputWatchEvents),
	}, logger.Logger)

	pterm.Info.Printfln("Watching %s (Ctrl+C to stop)", cfg.GetSourceDir())
	return w.Run(cmd.Context())
}
