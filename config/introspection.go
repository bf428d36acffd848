package config

import (
	"os"
	"sort"
	"strings"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/logifact/config.toml
	SourceUser        ConfigSource = "user"        // ~/.logifact/config.toml
	SourceProject     ConfigSource = "project"     // logifact.toml found upwards
	SourceEnvironment ConfigSource = "environment" // LOGIFACT_* env vars
)

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource `json:"source"`
	Path   string       `json:"path"` // File path or environment variable name
}

// Setting is one effective leaf setting and its origin.
type Setting struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"`
}

// Introspect returns every effective leaf setting, sorted by key, with the
// source that supplied it.
func Introspect() []Setting {
	mu.Lock()
	v := initViper()
	tracked := make(map[string]SourceInfo, len(sources))
	for k, s := range sources {
		tracked[k] = s
	}
	mu.Unlock()

	keys := v.AllKeys()
	sort.Strings(keys)

	settings := make([]Setting, 0, len(keys))
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if s, ok := tracked[key]; ok {
			info = s
		}
		if env := EnvKey(key); os.Getenv(env) != "" {
			info = SourceInfo{Source: SourceEnvironment, Path: env}
		}
		settings = append(settings, Setting{
			Key:        key,
			Value:      v.Get(key),
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return settings
}

// EnvKey returns the environment variable overriding key.
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
