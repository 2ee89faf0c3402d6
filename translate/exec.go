package translate

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/jabsc/errors"
	"github.com/teranos/jabsc/logger"
)

// OutputPlaceholder in a command line is replaced by the output directory.
// Without it, "-d <output>" is appended before the sources.
const OutputPlaceholder = "{output}"

// maxStderrDetail bounds the stderr tail attached to a failure
const maxStderrDetail = 4096

// ExecCompiler runs an external translator process, e.g.
//
//	java -jar tools/jabsc.jar -d {output}
//
// followed by the source paths. Produced files are detected by comparing
// the output tree before and after the run.
type ExecCompiler struct {
	argv    []string
	timeout time.Duration
	stderr  io.Writer
	logger  *zap.SugaredLogger
}

// NewExecCompiler parses commandLine with shell quoting rules.
// A zero timeout means the run is bounded only by the caller's context.
func NewExecCompiler(commandLine string, timeout time.Duration, log *zap.SugaredLogger) (*ExecCompiler, error) {
	argv, err := shellquote.Split(commandLine)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse compiler command %q", commandLine)
	}
	if len(argv) == 0 {
		return nil, errors.WithHint(
			errors.New("compiler command is empty"),
			"set compiler.command in jabsc.toml or pass --compiler",
		)
	}
	if log == nil {
		log = logger.Logger
	}
	return &ExecCompiler{argv: argv, timeout: timeout, logger: log.Named("translate")}, nil
}

// SetStderr mirrors the translator's stderr to w as it runs
func (c *ExecCompiler) SetStderr(w io.Writer) {
	c.stderr = w
}

// Argv returns the command line that would run for the given inputs
func (c *ExecCompiler) Argv(sources []string, outputDir string) []string {
	argv := make([]string, 0, len(c.argv)+len(sources)+2)
	substituted := false
	for _, arg := range c.argv {
		if strings.Contains(arg, OutputPlaceholder) {
			arg = strings.ReplaceAll(arg, OutputPlaceholder, outputDir)
			substituted = true
		}
		argv = append(argv, arg)
	}
	if !substituted {
		argv = append(argv, "-d", outputDir)
	}
	return append(argv, sources...)
}

// Compile runs the translator once for all sources
func (c *ExecCompiler) Compile(ctx context.Context, sources []string, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", outputDir)
	}

	before, err := snapshot(outputDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to inspect output directory before translation")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	argv := c.Argv(sources, outputDir)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.stderr)
	} else {
		cmd.Stderr = &stderr
	}

	c.logger.Debugw("Running translator",
		logger.FieldCommand, shellquote.Join(c.argv...),
		logger.FieldCount, len(sources),
		logger.FieldOutputDir, outputDir)

	start := time.Now()
	runErr := cmd.Run()
	c.logger.Debugw("Translator finished",
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
		"stdout_bytes", stdout.Len())

	if runErr != nil {
		err := errors.Wrapf(runErr, "%s exited with an error", argv[0])
		if ctx.Err() == context.DeadlineExceeded {
			err = errors.WithHintf(err, "translation exceeded the %s timeout", c.timeout)
		}
		if tail := tailString(stderr.String(), maxStderrDetail); tail != "" {
			err = errors.WithDetail(err, tail)
		}
		return nil, err
	}

	after, err := snapshot(outputDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to inspect output directory after translation")
	}
	return produced(before, after), nil
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

// snapshot records every regular file under root keyed by absolute path
func snapshot(root string) (map[string]fileStamp, error) {
	stamps := make(map[string]fileStamp)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stamps[path] = fileStamp{modTime: info.ModTime(), size: info.Size()}
		return nil
	})
	return stamps, err
}

// produced lists files that are new in after or whose stamp changed
func produced(before, after map[string]fileStamp) []string {
	var out []string
	for path, stamp := range after {
		prev, ok := before[path]
		if !ok || !prev.modTime.Equal(stamp.modTime) || prev.size != stamp.size {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

func tailString(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
