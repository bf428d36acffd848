package config

import (
	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/writer"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Input.Host {
	case HostDocument, HostGo:
	default:
		return invalid(errors.WithHintf(
			errors.Newf("input.host must be %q or %q, got %q", HostDocument, HostGo, c.Input.Host),
			"set input.host in %s or %s", ProjectFile, EnvKey("input.host")))
	}

	if c.Output.Root == "" {
		return invalid(errors.New("output.root cannot be empty"))
	}
	if _, err := writer.ParseMode(c.Output.Mode); err != nil {
		return invalid(errors.Wrap(err, "output.mode"))
	}
	// 0 = no indentation, negative = invalid
	if c.Output.Indent < 0 {
		return invalid(errors.Newf("output.indent must be >= 0, got %d", c.Output.Indent))
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return invalid(errors.New("store.path cannot be empty when the store is enabled"))
	}

	// 0 = regenerate on every event
	if c.Watch.DebounceMS < 0 {
		return invalid(errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS))
	}
	return nil
}

func invalid(err error) error {
	return errors.Mark(err, errors.ErrInvalidConfig)
}
