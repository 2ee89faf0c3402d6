package am

import (
	"os"
	"sort"
	"strings"

	"github.com/teranos/jabsc/errors"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/jabsc/jabsc.toml
	SourceUser        ConfigSource = "user"        // ~/.jabsc/jabsc.toml
	SourceProject     ConfigSource = "project"     // jabsc.toml found upward from cwd
	SourceEnvironment ConfigSource = "environment" // JABSC_* env vars
)

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource
	Path   string // file path or environment variable name
}

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"`
}

// ConfigIntrospection provides metadata about the active configuration
type ConfigIntrospection struct {
	Layers   []ConfigLayer `json:"layers"`
	Settings []SettingInfo `json:"settings"`
}

// GetConfigIntrospection returns every effective setting with its origin
func GetConfigIntrospection() (*ConfigIntrospection, error) {
	if _, err := Load(); err != nil {
		return nil, errors.Wrap(err, "failed to load config for introspection")
	}
	v := GetViper()

	introspection := &ConfigIntrospection{Settings: make([]SettingInfo, 0)}
	for _, layer := range ConfigLayers() {
		if _, err := os.Stat(layer.Path); err == nil {
			introspection.Layers = append(introspection.Layers, layer)
		}
	}

	flattenSettingsWithSources(v.AllSettings(), "", introspection, ConfigSources)
	return introspection, nil
}

// EnvVarName returns the environment variable that overrides key
func EnvVarName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// flattenSettingsWithSources flattens settings and assigns sources from sourceMap
func flattenSettingsWithSources(settings map[string]interface{}, prefix string, introspection *ConfigIntrospection, sourceMap map[string]SourceInfo) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := settings[key]
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nestedMap, ok := value.(map[string]interface{}); ok {
			flattenSettingsWithSources(nestedMap, fullKey, introspection, sourceMap)
			continue
		}

		sourceInfo := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := sourceMap[fullKey]; ok {
			sourceInfo = si
		}

		envKey := EnvVarName(fullKey)
		if _, ok := os.LookupEnv(envKey); ok {
			sourceInfo = SourceInfo{Source: SourceEnvironment, Path: envKey}
		}

		introspection.Settings = append(introspection.Settings, SettingInfo{
			Key:        fullKey,
			Value:      value,
			Source:     sourceInfo.Source,
			SourcePath: sourceInfo.Path,
		})
	}
}
