package api

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadTemplate reads a proteus.json or proteus.yaml file, sets BaseDir/FilePath,
// and validates it. A missing id defaults to the name of the containing
// directory.
func LoadTemplate(filename string) (*Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing template file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	t.FilePath = absPath
	t.BaseDir = filepath.Dir(absPath)
	if t.ID == "" {
		t.ID = filepath.Base(t.BaseDir)
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validating template %s: %w", filename, err)
	}

	return &t, nil
}
