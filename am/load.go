package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/jabsc/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper
var explicitConfigFile string

// ConfigSources records which file each merged key came from.
// Filled by mergeConfigFiles, read by GetConfigIntrospection.
var ConfigSources = map[string]SourceInfo{}

// Load reads the jabsc configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	config, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// SetConfigFile pins the project config file instead of searching for one.
// Takes effect on the next Load after Reset.
func SetConfigFile(path string) {
	explicitConfigFile = path
	Reset()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Defaults only, no environment for an explicit single-file load
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// system -> user -> project, env vars above all of them
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// FindProjectConfig walks up from start looking for jabsc.toml.
// Returns the first path found, or empty string.
func FindProjectConfig(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// ProjectConfigPath returns the project config in effect: the pinned file,
// or the result of the upward search from the working directory
func ProjectConfigPath() string {
	if explicitConfigFile != "" {
		return explicitConfigFile
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return FindProjectConfig(wd)
}

// UserConfigPath returns ~/.jabsc/jabsc.toml, or empty when there is no home
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, ConfigFileName)
}

// ConfigLayer is one file in the merge order
type ConfigLayer struct {
	Path   string
	Source ConfigSource
}

// ConfigLayers lists candidate config files lowest precedence first
func ConfigLayers() []ConfigLayer {
	layers := []ConfigLayer{{Path: SystemConfigPath, Source: SourceSystem}}
	if user := UserConfigPath(); user != "" {
		layers = append(layers, ConfigLayer{Path: user, Source: SourceUser})
	}
	if project := ProjectConfigPath(); project != "" {
		layers = append(layers, ConfigLayer{Path: project, Source: SourceProject})
	}
	return layers
}

// mergeConfigFiles merges configuration files in precedence order.
// Precedence (lowest to highest): system < user < project < env vars
func mergeConfigFiles(v *viper.Viper) {
	for _, layer := range ConfigLayers() {
		if _, err := os.Stat(layer.Path); err != nil {
			continue
		}

		tempViper := viper.New()
		tempViper.SetConfigFile(layer.Path)
		tempViper.SetConfigType("toml")

		if err := tempViper.ReadInConfig(); err != nil {
			continue
		}

		// MergeConfigMap keeps file values below env vars and explicit Set calls
		if err := v.MergeConfigMap(tempViper.AllSettings()); err != nil {
			continue
		}
		for _, key := range tempViper.AllKeys() {
			ConfigSources[key] = SourceInfo{Source: layer.Source, Path: layer.Path}
		}
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return initViper().Get(key)
}
