// Package config loads logifact settings through viper.
//
// Values cascade from built-in defaults through the system, user and
// project TOML files, and finally LOGIFACT_* environment variables
// (output.mode is LOGIFACT_OUTPUT_MODE).
package config

// Config represents the logifact configuration.
type Config struct {
	Input  InputConfig  `mapstructure:"input" toml:"input" json:"input" yaml:"input"`
	Output OutputConfig `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Engine EngineConfig `mapstructure:"engine" toml:"engine" json:"engine" yaml:"engine"`
	Store  StoreConfig  `mapstructure:"store" toml:"store" json:"store" yaml:"store"`
	Watch  WatchConfig  `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`
	Log    LogConfig    `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// InputConfig selects the program model host and its inputs.
type InputConfig struct {
	Host string `mapstructure:"host" toml:"host" json:"host" yaml:"host"` // document | go
	// Paths are model documents for the document host, or package
	// patterns for the go host (resolved in Dir).
	Paths []string `mapstructure:"paths" toml:"paths" json:"paths" yaml:"paths"`
	Dir   string   `mapstructure:"dir" toml:"dir" json:"dir" yaml:"dir"`
}

// OutputConfig configures where and how facts are written.
type OutputConfig struct {
	Root          string `mapstructure:"root" toml:"root" json:"root" yaml:"root"`
	Mode          string `mapstructure:"mode" toml:"mode" json:"mode" yaml:"mode"` // minimal | full | both
	Pretty        bool   `mapstructure:"pretty" toml:"pretty" json:"pretty" yaml:"pretty"`
	Indent        int    `mapstructure:"indent" toml:"indent" json:"indent" yaml:"indent"`
	CopyResources bool   `mapstructure:"copy_resources" toml:"copy_resources" json:"copy_resources" yaml:"copy_resources"`
}

// EngineConfig tunes fact content.
type EngineConfig struct {
	ImplicitSupertype string `mapstructure:"implicit_supertype" toml:"implicit_supertype" json:"implicit_supertype" yaml:"implicit_supertype"`
	// Strict fails a run that produced any diagnostic.
	Strict bool `mapstructure:"strict" toml:"strict" json:"strict" yaml:"strict"`
}

// StoreConfig configures the SQLite fact store.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// WatchConfig configures regeneration on input changes.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// LogConfig configures logging output.
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// Hosts.
const (
	HostDocument = "document"
	HostGo       = "go"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "LOGIFACT"
	// ProjectFile is searched for from the working directory upwards.
	ProjectFile = "logifact.toml"
	// SystemFile is the lowest-precedence config file.
	SystemFile = "/etc/logifact/config.toml"
	// UserDir holds the user config file under the home directory.
	UserDir = ".logifact"
	// DefaultFilePermissions for config files we write.
	DefaultFilePermissions = 0644
)
