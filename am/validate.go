package am

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/jabsc/errors"
	"github.com/teranos/jabsc/logger"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// The extension is glued into a "*.<ext>" pattern, so it must be a plain name
	ext := c.Source.Extension
	if ext == "" {
		return errors.NewInvalidConfigError("source.extension cannot be empty")
	}
	if strings.HasPrefix(ext, ".") {
		return errors.WithHint(
			errors.NewInvalidConfigError("source.extension must not start with a dot, got %q", ext),
			"write the extension without the dot, e.g. extension = \"abs\"",
		)
	}
	if strings.ContainsAny(ext, `/\*?[]`) {
		return errors.NewInvalidConfigError("source.extension must be a plain name, got %q", ext)
	}

	if strings.TrimSpace(c.Compiler.Command) == "" {
		return errors.NewInvalidConfigError("compiler.command cannot be empty")
	}
	if _, err := shellquote.Split(c.Compiler.Command); err != nil {
		return errors.NewInvalidConfigError("compiler.command is not a valid command line: %v", err)
	}

	// 0 = no timeout, negative = invalid
	if c.Compiler.TimeoutSeconds < 0 {
		return errors.NewInvalidConfigError("compiler.timeout_seconds must be >= 0, got %d", c.Compiler.TimeoutSeconds)
	}

	if c.Watch.DebounceMs < 0 {
		return errors.NewInvalidConfigError("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMs)
	}
	// 0 = unlimited
	if c.Watch.MaxRunsPerMinute < 0 {
		return errors.NewInvalidConfigError("watch.max_runs_per_minute must be >= 0, got %d", c.Watch.MaxRunsPerMinute)
	}

	if c.Log.Theme != "" && !logger.HasTheme(c.Log.Theme) {
		return errors.WithHint(
			errors.NewInvalidConfigError("log.theme %q is not a known theme", c.Log.Theme),
			"use everforest or gruvbox",
		)
	}

	return nil
}
