package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gethiox/padmacro/internal/pkg/logger"
)

var log = logger.GetLogger()

// Load reads a mapping config, format is chosen by file extension (.yaml, .yml or .toml).
func Load(path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var parse func([]byte) (Config, error)
	switch ext {
	case ".yaml", ".yml":
		parse = ParseYAML
	case ".toml":
		parse = ParseTOML
	default:
		return Config{}, fmt.Errorf("%w: \"%s\"", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file failed: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config \"%s\": %w", path, err)
	}
	return cfg, nil
}

// IsConfigFile tells if given path has one of supported config extensions.
func IsConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}
