package processing

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// ConfigFileName is the name of user config files.
const ConfigFileName = "proteus.json"

const starterConfig = "{\n  \"templates\": {}\n}\n"

// ConfigFile holds extra templates keyed by id.
type ConfigFile struct {
	Templates map[string]*api.Template `yaml:"templates"`
}

// DefaultConfigPaths lists config files in load order: the working
// directory, then ~/.config/proteus, then ~/.proteus.
func DefaultConfigPaths() []string {
	paths := []string{ConfigFileName}
	if wd, err := os.Getwd(); err == nil {
		paths[0] = filepath.Join(wd, ConfigFileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "proteus", ConfigFileName),
			filepath.Join(home, ".proteus", ConfigFileName),
		)
	}
	return paths
}

// LoadConfigFile reads a config file. Templates without an id take their map
// key; relative prompt files resolve against the config file's directory.
func LoadConfigFile(filename string) (*ConfigFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	for id, tmpl := range cfg.Templates {
		if tmpl == nil {
			return nil, fmt.Errorf("template %q is empty", id)
		}
		if tmpl.ID == "" {
			tmpl.ID = id
		}
		tmpl.FilePath = absPath
		tmpl.BaseDir = filepath.Dir(absPath)
		if err := tmpl.Validate(); err != nil {
			return nil, fmt.Errorf("validating template %s: %w", id, err)
		}
	}
	return &cfg, nil
}

// loadConfigFiles returns the templates of every existing file in order.
// Unreadable or invalid files are logged and skipped.
func loadConfigFiles(paths []string) []*api.Template {
	var templates []*api.Template
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		cfg, err := LoadConfigFile(p)
		if err != nil {
			slog.Warn("failed to load config", "path", p, "error", err)
			continue
		}
		slog.Debug("loading extra templates", "path", p, "count", len(cfg.Templates))
		for _, id := range sortedKeys(cfg.Templates) {
			templates = append(templates, cfg.Templates[id])
		}
	}
	return templates
}

// WriteStarterConfig creates a config file with an empty templates map. An
// existing file is never overwritten.
func WriteStarterConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating parent directories: %w", err)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
