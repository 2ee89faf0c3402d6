package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[compiler]\ncommand = \"first\"\n"), 0644))
	SetConfigFile(path)

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	cw.debouncePeriod = 20 * time.Millisecond
	defer cw.Stop()

	reloaded := make(chan *Config, 4)
	cw.OnReload(func(cfg *Config) error {
		reloaded <- cfg
		return nil
	})
	cw.Start()

	require.NoError(t, os.WriteFile(path, []byte("[compiler]\ncommand = \"second\"\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "second", cfg.Compiler.Command)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestConfigWatcher_ReloadsAfterAtomicSave(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[compiler]\ncommand = \"first\"\n"), 0644))
	SetConfigFile(path)

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	cw.debouncePeriod = 20 * time.Millisecond
	defer cw.Stop()

	reloaded := make(chan *Config, 8)
	cw.OnReload(func(cfg *Config) error {
		reloaded <- cfg
		return nil
	})
	cw.Start()

	expect := func(command string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case cfg := <-reloaded:
				if cfg.Compiler.Command == command {
					return
				}
			case <-deadline:
				t.Fatalf("config was not reloaded with %q", command)
			}
		}
	}

	// Write to a temp file and rename it over the config, as editors do
	tmp := filepath.Join(dir, ".jabsc.toml.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("[compiler]\ncommand = \"second\"\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))
	expect("second")

	// The replaced file is still watched
	require.NoError(t, os.WriteFile(path, []byte("[compiler]\ncommand = \"third\"\n"), 0644))
	expect("third")
}

func TestConfigWatcher_IsConfigChange(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, nil, 0644))

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"replaced by rename", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"renamed away", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"backup", fsnotify.Event{Name: path + ".back1", Op: fsnotify.Create}, false},
		{"sibling", fsnotify.Event{Name: filepath.Join(dir, "other.toml"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cw.isConfigChange(tt.event))
		})
	}
}

func TestConfigWatcher_InvalidConfigSkipsCallbacks(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[compiler]\ncommand = \"first\"\n"), 0644))
	SetConfigFile(path)

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()

	called := false
	cw.OnReload(func(*Config) error {
		called = true
		return nil
	})

	require.NoError(t, os.WriteFile(path, []byte("[compiler]\ntimeout_seconds = -1\n"), 0644))
	assert.Error(t, cw.reload())
	assert.False(t, called)
}

func TestNewConfigWatcher_MissingFile(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
