package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Template renders the default configuration as "toml" or "yaml".
func Template(format string) (string, error) {
	cfg := Default()
	var buf bytes.Buffer
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return "", fmt.Errorf("render toml template: %w", err)
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return "", fmt.Errorf("render yaml template: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("render yaml template: %w", err)
		}
	default:
		return "", fmt.Errorf("unknown config format: %s", format)
	}
	return buf.String(), nil
}

// FormatForPath picks the template format from a file extension.
func FormatForPath(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return "yaml"
	}
	return "toml"
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template(FormatForPath(path))
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
