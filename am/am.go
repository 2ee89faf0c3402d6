// Package am holds the jabsc configuration: typed structs, defaults,
// the layered TOML/env loading and validation.
package am

// Config represents the jabsc configuration
type Config struct {
	Project  ProjectConfig  `mapstructure:"project" toml:"project"`
	Source   SourceConfig   `mapstructure:"source" toml:"source"`
	Output   OutputConfig   `mapstructure:"output" toml:"output"`
	Compiler CompilerConfig `mapstructure:"compiler" toml:"compiler"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

// ProjectConfig locates the host build
type ProjectConfig struct {
	BaseDir  string `mapstructure:"base_dir" toml:"base_dir"`   // empty = enclosing git worktree, else cwd
	BuildDir string `mapstructure:"build_dir" toml:"build_dir"` // empty = <base_dir>/target
}

// SourceConfig configures source collection
type SourceConfig struct {
	Directory string `mapstructure:"directory" toml:"directory"` // empty = <base_dir>/src/main/abs
	Extension string `mapstructure:"extension" toml:"extension"` // without the dot
}

// OutputConfig configures where generated Java lands
type OutputConfig struct {
	Directory string `mapstructure:"directory" toml:"directory"` // empty = <build_dir>/generated-sources/jabsc
}

// CompilerConfig configures the external translator process
type CompilerConfig struct {
	Command        string `mapstructure:"command" toml:"command"`                 // {output} is replaced by the output directory
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"` // 0 = no timeout
}

// WatchConfig configures `jabsc watch`
type WatchConfig struct {
	DebounceMs       int `mapstructure:"debounce_ms" toml:"debounce_ms"`
	MaxRunsPerMinute int `mapstructure:"max_runs_per_minute" toml:"max_runs_per_minute"` // 0 = unlimited
}

// LogConfig configures log output
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json"`
	Theme string `mapstructure:"theme" toml:"theme"` // gruvbox, everforest
}

// Config file names and locations
const (
	ConfigFileName   = "jabsc.toml"
	EnvPrefix        = "JABSC"
	SystemConfigPath = "/etc/jabsc/jabsc.toml"
	UserConfigDir    = ".jabsc"
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
