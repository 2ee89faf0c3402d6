package am

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/teranos/jabsc/host"
	"github.com/teranos/jabsc/integration"
	"github.com/teranos/jabsc/output"
	"github.com/teranos/jabsc/source"
)

// Default values
const (
	DefaultCompilerCommand  = "jabsc -d {output}"
	DefaultDebounceMs       = 300
	DefaultMaxRunsPerMinute = 30
	DefaultLogTheme         = "everforest"
)

// SetDefaults configures default values for all configuration options.
// Path keys default to empty and are derived at use time.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("project.base_dir", "")
	v.SetDefault("project.build_dir", "")

	v.SetDefault("source.directory", "")
	v.SetDefault("source.extension", source.DefaultExtension)

	v.SetDefault("output.directory", "")

	v.SetDefault("compiler.command", DefaultCompilerCommand)
	v.SetDefault("compiler.timeout_seconds", 0)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMs)
	v.SetDefault("watch.max_runs_per_minute", DefaultMaxRunsPerMinute)

	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", DefaultLogTheme)
}

// Defaults returns a Config holding only default values
func Defaults() *Config {
	return &Config{
		Source:   SourceConfig{Extension: source.DefaultExtension},
		Compiler: CompilerConfig{Command: DefaultCompilerCommand},
		Watch:    WatchConfig{DebounceMs: DefaultDebounceMs, MaxRunsPerMinute: DefaultMaxRunsPerMinute},
		Log:      LogConfig{Theme: DefaultLogTheme},
	}
}

// GetBaseDir returns the project base directory, detecting the enclosing
// git worktree when none is configured
func (c *Config) GetBaseDir() string {
	if c.Project.BaseDir != "" {
		if abs, err := filepath.Abs(c.Project.BaseDir); err == nil {
			return abs
		}
		return c.Project.BaseDir
	}
	return host.WorkingBaseDir()
}

// GetBuildDir returns the build directory (default: <base>/target)
func (c *Config) GetBuildDir() string {
	base := c.GetBaseDir()
	if c.Project.BuildDir == "" {
		return output.DefaultBuildDirectory(base)
	}
	if filepath.IsAbs(c.Project.BuildDir) {
		return filepath.Clean(c.Project.BuildDir)
	}
	return filepath.Join(base, c.Project.BuildDir)
}

// GetSourceDir returns the source directory (default: <base>/src/main/abs)
func (c *Config) GetSourceDir() string {
	base := c.GetBaseDir()
	if c.Source.Directory == "" {
		return output.DefaultSourceDirectory(base)
	}
	if filepath.IsAbs(c.Source.Directory) {
		return filepath.Clean(c.Source.Directory)
	}
	return filepath.Join(base, c.Source.Directory)
}

// GetCompilerTimeout returns the translator timeout, zero meaning none
func (c *Config) GetCompilerTimeout() time.Duration {
	return time.Duration(c.Compiler.TimeoutSeconds) * time.Second
}

// GetDebouncePeriod returns the watch debounce period (default: 300ms)
func (c *Config) GetDebouncePeriod() time.Duration {
	if c.Watch.DebounceMs == 0 {
		return DefaultDebounceMs * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// GetLogTheme returns the log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return DefaultLogTheme
	}
	return c.Log.Theme
}

// IntegrationConfig derives the orchestrator input. A configured output
// directory is passed through untouched so relative values resolve against
// the working directory, as the host build would.
func (c *Config) IntegrationConfig() integration.Config {
	return integration.Config{
		SourceDir: c.GetSourceDir(),
		OutputDir: c.Output.Directory,
		BuildRoot: c.GetBuildDir(),
		BaseDir:   c.GetBaseDir(),
		Extension: c.Source.Extension,
	}
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Source: %s (*.%s), Output: %q, Compiler: %q}",
		c.Source.Directory, c.Source.Extension, c.Output.Directory, c.Compiler.Command)
}
