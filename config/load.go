package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/logifact/errors"
)

var (
	mu            sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
	// sources records, per leaf key, the last file that set it.
	sources map[string]SourceInfo
	// loadedFiles lists the config files merged, lowest precedence first.
	loadedFiles []string
)

// Load reads the configuration cascade once and caches the result.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to unmarshal config"), errors.ErrInvalidConfig)
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path over the
// defaults, without the cascade or environment.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "failed to read config file %s", configPath),
			errors.ErrInvalidConfig)
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", configPath)
	}
	return cfg, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = nil
	viperInstance = nil
	sources = nil
	loadedFiles = nil
}

// LoadedFiles returns the config files merged by the last cascade load.
func LoadedFiles() []string {
	mu.Lock()
	defer mu.Unlock()
	initViper()
	return append([]string(nil), loadedFiles...)
}

// initViper initializes Viper with configuration sources and defaults.
// Callers hold mu.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// SearchPaths returns the config files consulted, lowest precedence first.
// Missing files are skipped at load time.
func SearchPaths() []SourceInfo {
	paths := []SourceInfo{{Source: SourceSystem, Path: SystemFile}}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, SourceInfo{Source: SourceUser, Path: filepath.Join(home, UserDir, "config.toml")})
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, SourceInfo{Source: SourceProject, Path: project})
	}
	return paths
}

// findProjectConfig searches for logifact.toml by walking up the directory
// tree. Returns an empty string when none is found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeConfigFiles merges the config files into the config layer so that
// environment variables still take precedence over every file.
// Precedence (lowest to highest): default < system < user < project < env.
func mergeConfigFiles(v *viper.Viper) {
	sources = make(map[string]SourceInfo)
	loadedFiles = nil

	for _, candidate := range SearchPaths() {
		if _, err := os.Stat(candidate.Path); err != nil {
			continue
		}
		fileViper := viper.New()
		fileViper.SetConfigFile(candidate.Path)
		fileViper.SetConfigType("toml")
		if err := fileViper.ReadInConfig(); err != nil {
			continue
		}
		if err := v.MergeConfigMap(fileViper.AllSettings()); err != nil {
			continue
		}
		for _, key := range fileViper.AllKeys() {
			sources[key] = candidate
		}
		loadedFiles = append(loadedFiles, candidate.Path)
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}
