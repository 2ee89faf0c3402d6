package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jabsc/errors"
)

// isolate points HOME and cwd at a fresh temp dir and clears cached config
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdirForTest(t, dir)
	Reset()
	t.Cleanup(func() {
		explicitConfigFile = ""
		Reset()
	})
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Source.Extension != "abs" {
		t.Errorf("expected default extension 'abs', got %q", cfg.Source.Extension)
	}
	if cfg.Compiler.Command != DefaultCompilerCommand {
		t.Errorf("expected default compiler command, got %q", cfg.Compiler.Command)
	}
	if cfg.Watch.DebounceMs != 300 {
		t.Errorf("expected default debounce 300, got %d", cfg.Watch.DebounceMs)
	}
	if cfg.Watch.MaxRunsPerMinute != 30 {
		t.Errorf("expected default max runs 30, got %d", cfg.Watch.MaxRunsPerMinute)
	}
	if cfg.Output.Directory != "" {
		t.Errorf("expected no default output directory, got %q", cfg.Output.Directory)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestDefaults_MatchesViperDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestValidate(t *testing.T) {
	valid := func() Config { return *Defaults() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty extension", func(c *Config) { c.Source.Extension = "" }, true},
		{"leading dot", func(c *Config) { c.Source.Extension = ".abs" }, true},
		{"glob in extension", func(c *Config) { c.Source.Extension = "ab*" }, true},
		{"separator in extension", func(c *Config) { c.Source.Extension = "x/abs" }, true},
		{"other extension", func(c *Config) { c.Source.Extension = "mabs" }, false},
		{"empty compiler", func(c *Config) { c.Compiler.Command = "  " }, true},
		{"unterminated quote", func(c *Config) { c.Compiler.Command = `jabsc "-d` }, true},
		{"zero timeout is valid (none)", func(c *Config) { c.Compiler.TimeoutSeconds = 0 }, false},
		{"negative timeout", func(c *Config) { c.Compiler.TimeoutSeconds = -1 }, true},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, true},
		{"zero rate is valid (unlimited)", func(c *Config) { c.Watch.MaxRunsPerMinute = 0 }, false},
		{"negative rate", func(c *Config) { c.Watch.MaxRunsPerMinute = -1 }, true},
		{"unknown theme", func(c *Config) { c.Log.Theme = "solarized" }, true},
		{"gruvbox theme", func(c *Config) { c.Log.Theme = "gruvbox" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidConfigError(err), "expected invalid config error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_ProjectConfigFoundUpward(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`
[source]
directory = "abs"

[output]
directory = "gen"
`), 0644))

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	chdirForTest(t, nested)
	Reset()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abs", cfg.Source.Directory)
	assert.Equal(t, "gen", cfg.Output.Directory)
	assert.Equal(t, "abs", cfg.Source.Extension, "defaults survive the merge")
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)

	userDir := filepath.Join(dir, UserConfigDir)
	require.NoError(t, os.MkdirAll(userDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, ConfigFileName), []byte(`
[compiler]
command = "user-jabsc"
timeout_seconds = 10

[watch]
debounce_ms = 100
`), 0644))

	project := filepath.Join(dir, "proj")
	require.NoError(t, os.MkdirAll(project, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, ConfigFileName), []byte(`
[compiler]
command = "project-jabsc"
`), 0644))
	chdirForTest(t, project)
	t.Setenv("JABSC_WATCH_DEBOUNCE_MS", "700")
	Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "project-jabsc", cfg.Compiler.Command, "project beats user")
	assert.Equal(t, 10, cfg.Compiler.TimeoutSeconds, "user value kept when project is silent")
	assert.Equal(t, 700, cfg.Watch.DebounceMs, "env beats files")

	info, err := GetConfigIntrospection()
	require.NoError(t, err)
	sources := map[string]SettingInfo{}
	for _, s := range info.Settings {
		sources[s.Key] = s
	}
	assert.Equal(t, SourceProject, sources["compiler.command"].Source)
	assert.Equal(t, SourceUser, sources["compiler.timeout_seconds"].Source)
	assert.Equal(t, SourceEnvironment, sources["watch.debounce_ms"].Source)
	assert.Equal(t, "JABSC_WATCH_DEBOUNCE_MS", sources["watch.debounce_ms"].SourcePath)
	assert.Equal(t, SourceDefault, sources["source.extension"].Source)
}

func TestSetConfigFile(t *testing.T) {
	dir := isolate(t)
	pinned := filepath.Join(dir, "elsewhere.toml")
	require.NoError(t, os.WriteFile(pinned, []byte("[source]\nextension = \"mabs\"\n"), 0644))

	SetConfigFile(pinned)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mabs", cfg.Source.Extension)
	assert.Equal(t, pinned, ProjectConfigPath())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jabsc.toml")
	require.NoError(t, os.WriteFile(path, []byte("[compiler]\ntimeout_seconds = 42\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Compiler.TimeoutSeconds)
	assert.Equal(t, 42*time.Second, cfg.GetCompilerTimeout())
	assert.Equal(t, DefaultCompilerCommand, cfg.Compiler.Command)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestFindProjectConfig_None(t *testing.T) {
	dir := t.TempDir()
	// A directory with the config name must not count
	require.NoError(t, os.Mkdir(filepath.Join(dir, ConfigFileName), 0755))
	got := FindProjectConfig(dir)
	assert.NotEqual(t, filepath.Join(dir, ConfigFileName), got)
}

func TestPathDerivation(t *testing.T) {
	cfg := Defaults()
	cfg.Project.BaseDir = "/proj"

	assert.Equal(t, "/proj", cfg.GetBaseDir())
	assert.Equal(t, "/proj/target", cfg.GetBuildDir())
	assert.Equal(t, "/proj/src/main/abs", cfg.GetSourceDir())

	cfg.Project.BuildDir = "build"
	cfg.Source.Directory = "models"
	assert.Equal(t, "/proj/build", cfg.GetBuildDir())
	assert.Equal(t, "/proj/models", cfg.GetSourceDir())

	cfg.Source.Directory = "/abs/elsewhere"
	assert.Equal(t, "/abs/elsewhere", cfg.GetSourceDir())

	ic := cfg.IntegrationConfig()
	assert.Equal(t, "/abs/elsewhere", ic.SourceDir)
	assert.Equal(t, "/proj/build", ic.BuildRoot)
	assert.Equal(t, "", ic.OutputDir)
	assert.Equal(t, "abs", ic.Extension)
}

func TestDebouncePeriod(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 300*time.Millisecond, cfg.GetDebouncePeriod())
	cfg.Watch.DebounceMs = 0
	assert.Equal(t, 300*time.Millisecond, cfg.GetDebouncePeriod())
	cfg.Watch.DebounceMs = 50
	assert.Equal(t, 50*time.Millisecond, cfg.GetDebouncePeriod())
}

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "JABSC_OUTPUT_DIRECTORY", EnvVarName("output.directory"))
	assert.Equal(t, "JABSC_WATCH_MAX_RUNS_PER_MINUTE", EnvVarName("watch.max_runs_per_minute"))
}
