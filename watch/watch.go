// Package watch re-runs a jabsc invocation whenever ABS sources change.
//
// Events are filtered to source files, bursts are debounced into one run and
// runs are throttled by a token bucket. A source directory that does not
// exist yet is picked up once it is created.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/jabsc/errors"
	"github.com/teranos/jabsc/integration"
	"github.com/teranos/jabsc/logger"
	"github.com/teranos/jabsc/source"
)

// Runner performs one invocation. *integration.Integration satisfies it.
type Runner interface {
	Execute(ctx context.Context) (*integration.Report, error)
}

// RunnerFunc adapts a function to the Runner interface
type RunnerFunc func(ctx context.Context) (*integration.Report, error)

// Execute calls f
func (f RunnerFunc) Execute(ctx context.Context) (*integration.Report, error) { return f(ctx) }

// Options tune event handling
type Options struct {
	Extension        string        // empty = "abs"
	Debounce         time.Duration // quiet period before a run
	MaxRunsPerMinute int           // 0 = unlimited
	TraceEvents      bool          // log every fsnotify event before filtering
}

// Watcher watches one source directory
type Watcher struct {
	dir      string
	pattern  string
	debounce time.Duration
	limiter  *rate.Limiter
	runner   Runner
	logger   *zap.SugaredLogger
	trace    bool

	fs       *fsnotify.Watcher
	watching string // directory currently added to fs
	runs     atomic.Int64
}

// New creates a watcher for sourceDir. A nil log uses the global logger.
func New(sourceDir string, runner Runner, opts Options, log *zap.SugaredLogger) *Watcher {
	if log == nil {
		log = logger.Logger
	}
	dir, err := filepath.Abs(sourceDir)
	if err != nil {
		dir = filepath.Clean(sourceDir)
	}

	w := &Watcher{
		dir:      dir,
		pattern:  source.NewCollector(opts.Extension).Pattern(),
		debounce: opts.Debounce,
		runner:   runner,
		logger:   log.Named("watch"),
		trace:    opts.TraceEvents,
	}
	if opts.MaxRunsPerMinute > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(float64(opts.MaxRunsPerMinute)/60.0), 1)
	}
	return w
}

// Runs returns how many invocations have been started
func (w *Watcher) Runs() int { return int(w.runs.Load()) }

// Run executes once, then again after every settled change, until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer fsw.Close()
	w.fs = fsw

	if err := w.attach(); err != nil {
		return err
	}

	w.logger.Infow("Watching ABS sources",
		logger.FieldSourceDir, w.dir,
		"pattern", w.pattern,
		"debounce", w.debounce.String())

	timer := time.NewTimer(0) // initial run
	defer timer.Stop()
	armed := true
	reserved := false

	schedule := func() {
		// A throttled run is already pending and will see this change
		if reserved {
			return
		}
		if armed && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
		armed = true
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Infow("Watch stopped", "runs", w.runs.Load())
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				schedule()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watch error", logger.FieldError, err)

		case <-timer.C:
			armed = false
			if !reserved && w.limiter != nil {
				if delay := w.limiter.Reserve().Delay(); delay > 0 {
					w.logger.Infow("Throttling rebuild", "delay", delay.Round(time.Millisecond).String())
					reserved = true
					timer.Reset(delay)
					armed = true
					continue
				}
			}
			reserved = false
			w.runOnce(ctx)
		}
	}
}

// handleEvent reports whether event should trigger a run
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if w.trace {
		w.logger.Debugw("Watch event", logger.FieldFile, event.Name, logger.FieldOp, event.Op.String())
	}
	if w.watching != w.dir {
		if !event.Has(fsnotify.Create) {
			return false
		}
		before := w.watching
		if err := w.attach(); err != nil {
			w.logger.Warnw("Failed to follow new directory", logger.FieldFile, event.Name, logger.FieldError, err)
			return false
		}
		// Files may have landed before the watch was added
		return before != w.watching && w.watching == w.dir
	}

	if event.Name == w.dir && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		w.logger.Warnw("Source directory went away", logger.FieldSourceDir, w.dir)
		w.watching = ""
		if err := w.attach(); err != nil {
			w.logger.Warnw("Failed to re-attach", logger.FieldError, err)
		}
		return true
	}

	if event.Op == fsnotify.Chmod {
		return false
	}
	if filepath.Dir(event.Name) != w.dir {
		return false
	}
	matched, _ := filepath.Match(w.pattern, filepath.Base(event.Name))
	if matched {
		w.logger.Debugw("Source changed", logger.FieldFile, event.Name, logger.FieldOp, event.Op.String())
	}
	return matched
}

// attach watches the source directory, or its deepest existing ancestor.
// It re-checks after each Add so directories created in between are not missed.
func (w *Watcher) attach() error {
	for {
		target, err := w.deepestExisting()
		if err != nil {
			return err
		}
		if target == w.watching {
			return nil
		}
		if w.watching != "" {
			_ = w.fs.Remove(w.watching)
		}
		if err := w.fs.Add(target); err != nil {
			return errors.Wrapf(err, "failed to watch %s", target)
		}
		if target != w.dir {
			w.logger.Infow("Source directory does not exist yet, watching ancestor",
				logger.FieldSourceDir, w.dir, "watching", target)
		}
		w.watching = target
	}
}

func (w *Watcher) deepestExisting() (string, error) {
	target := w.dir
	for {
		info, err := os.Stat(target)
		if err == nil && info.IsDir() {
			return target, nil
		}
		parent := filepath.Dir(target)
		if parent == target {
			return "", errors.Newf("no existing ancestor of %s to watch", w.dir)
		}
		target = parent
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	run := w.runs.Add(1)
	report, err := w.runner.Execute(logger.WithComponent(ctx, "watch"))
	if err != nil {
		w.logger.Errorw("Rebuild failed", "run", run, logger.FieldError, err)
		return
	}
	if report != nil {
		w.logger.Infow("Rebuilt",
			"run", run,
			logger.FieldCollected, report.Collected(),
			logger.FieldProduced, report.ProducedCount(),
			logger.FieldDurationMS, report.Duration.Milliseconds())
	}
}
