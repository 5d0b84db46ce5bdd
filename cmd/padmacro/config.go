package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/logger"
	"github.com/go-ini/ini"
)

type Settings struct {
	HoldPollRate  time.Duration
	DiscoveryRate time.Duration
	Mapping       string
	MetricsAddr   string
	Grab          bool
}

func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings failed: %w", err)
	}
	return parseSettings(data)
}

func parseSettings(data []byte) (Settings, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return Settings{}, fmt.Errorf("parsing settings failed: %w", err)
	}

	var s Settings

	section, err := cfg.GetSection("padmacro")
	if err != nil {
		return s, fmt.Errorf("[padmacro] section: %w", err)
	}

	s.HoldPollRate, err = rate(section, "hold_poll_rate")
	if err != nil {
		return s, err
	}
	s.DiscoveryRate, err = rate(section, "discovery_rate")
	if err != nil {
		return s, err
	}

	mapping, err := section.GetKey("mapping")
	if err != nil {
		return s, fmt.Errorf("[padmacro] %w", err)
	}
	s.Mapping = mapping.String()
	if s.Mapping == "" {
		return s, errors.New("[padmacro] mapping: path not set")
	}

	// optional keys
	s.MetricsAddr = section.Key("metrics_addr").String()
	if section.HasKey("grab") {
		s.Grab, err = section.Key("grab").Bool()
		if err != nil {
			return s, fmt.Errorf("[padmacro] grab: %w", err)
		}
	}

	return s, nil
}

// rate reads a per-second frequency and returns it as an interval.
func rate(section *ini.Section, name string) (time.Duration, error) {
	key, err := section.GetKey(name)
	if err != nil {
		return 0, fmt.Errorf("[padmacro] %w", err)
	}
	i, err := key.Int()
	if err != nil {
		return 0, fmt.Errorf("[padmacro] %s: %w", name, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("[padmacro] %s: has to be positive, got %d", name, i)
	}
	return time.Second / time.Duration(i), nil
}

//go:embed padmacro-config/padmacro.config
//go:embed padmacro-config/mapping.yaml
var templateConfig embed.FS

const (
	configDir    = "padmacro-config"
	settingsFile = "padmacro.config"
)

// createConfigDirectoryIfNeeded writes the template config tree under root
// when it does not exist yet. Existing files are never touched.
func createConfigDirectoryIfNeeded(root string) error {
	dir := filepath.Join(root, configDir)
	_, err := os.Stat(dir)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot open config directory: %w", err)
	}
	log.Info("config not exist, generating tree...", logger.Info)

	err = fs.WalkDir(templateConfig, configDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(root, path)
		if d.IsDir() {
			err := os.Mkdir(target, 0o777)
			if err != nil {
				return fmt.Errorf("cannot create \"%s\" directory: %w", target, err)
			}
			return nil
		}

		data, err := fs.ReadFile(templateConfig, path)
		if err != nil {
			return fmt.Errorf("cannot read \"%s\" template file: %w", path, err)
		}

		err = os.WriteFile(target, data, 0o666)
		if err != nil {
			return fmt.Errorf("cannot write data into \"%s\" file: %w", target, err)
		}

		log.Info(fmt.Sprintf("Created \"%s\" file", target), logger.Debug)
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("config generation done", logger.Info)
	return nil
}
