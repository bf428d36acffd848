package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/logifact/errors"
)

// Render formats for `config show`.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const starterHeader = "# logifact configuration\n" +
	"# Values here override /etc/logifact/config.toml and ~/.logifact/config.toml;\n" +
	"# LOGIFACT_* environment variables override this file.\n\n"

// Render serializes cfg in the given format.
func Render(cfg *Config, format string) ([]byte, error) {
	switch format {
	case FormatTOML, "":
		data, err := toml.Marshal(cfg)
		return data, errors.Wrap(err, "failed to marshal config as toml")
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as json")
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to marshal config as yaml")
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Mark(
		errors.WithHint(errors.Newf("unknown config format %q", format), "use toml, json or yaml"),
		errors.ErrInvalidConfig)
}

// WriteStarter writes a starter config file holding the defaults. An
// existing file is kept unless force is set, in which case it is rotated
// into backups first.
func WriteStarter(path string, force bool) error {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return errors.WithHint(
				errors.Newf("%s already exists", path),
				"pass --force to overwrite it (the current file is kept as .back1)")
		}
		if err := createBackup(path); err != nil {
			return errors.Wrap(err, "failed to create backup")
		}
	}

	data, err := toml.Marshal(Default())
	if err != nil {
		return errors.Wrap(err, "failed to marshal default config")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if err := os.WriteFile(path, append([]byte(starterHeader), data...), DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// createBackup creates rotating backups (.back1, .back2, .back3) before
// overwriting a config file.
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", back3)
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
