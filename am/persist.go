package am

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/teranos/jabsc/errors"
	"github.com/teranos/jabsc/logger"
)

// ErrConfigExists is returned by WriteDefaultFile when the target exists
var ErrConfigExists = errors.New("config file already exists")

// Marshal renders cfg as TOML
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := gotoml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return buf.Bytes(), nil
}

// WriteDefaultFile writes a starter jabsc.toml holding the defaults.
// An existing file is left alone unless force is set, in which case it is
// rotated into .back1..3 first.
func WriteDefaultFile(path string, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return errors.WithHint(
				errors.Wrapf(ErrConfigExists, "refusing to overwrite %s", path),
				"pass --force to replace it (a backup is kept)",
			)
		}
		if err := createBackup(path); err != nil {
			return errors.Wrap(err, "failed to create backup")
		}
	}

	data, err := Marshal(Defaults())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	// .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		logger.Warnw("Failed to delete old backup", logger.FieldFile, back3, logger.FieldError, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// CheckUnknownKeys reports keys in path that map to no configuration field.
// Viper silently drops them, so a typo like `extention` would go unnoticed.
func CheckUnknownKeys(path string) ([]string, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	undecoded := md.Undecoded()
	keys := make([]string, 0, len(undecoded))
	for _, key := range undecoded {
		keys = append(keys, key.String())
	}
	return keys, nil
}
