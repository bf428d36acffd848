package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/teranos/logifact/traverse"
	"github.com/teranos/logifact/writer"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.host", HostDocument)
	v.SetDefault("input.paths", []string{})
	v.SetDefault("input.dir", ".")

	v.SetDefault("output.root", "facts")
	v.SetDefault("output.mode", string(writer.DefaultMode))
	v.SetDefault("output.pretty", false)
	v.SetDefault("output.indent", 4)
	v.SetDefault("output.copy_resources", true)

	v.SetDefault("engine.implicit_supertype", traverse.DefaultImplicitSupertype)
	v.SetDefault("engine.strict", false)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "facts.db")

	v.SetDefault("watch.debounce_ms", 500)

	v.SetDefault("log.json", false)
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// defaults always decode
		panic(err)
	}
	return cfg
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Input: %s %v, Output: {Root: %s, Mode: %s}, Store: %t}",
		c.Input.Host, c.Input.Paths, c.Output.Root, c.Output.Mode, c.Store.Enabled)
}
