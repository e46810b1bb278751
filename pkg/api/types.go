package api

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	StepTypeGenerateText   = "generate_text"
	StepTypeGenerateJSON   = "generate_json"
	StepTypeTransform      = "transform"
	StepTypeGenerateImages = "generate_images"

	PromptEnginePlaceholder = "placeholder"
	PromptEngineGo          = "go"

	DefaultPromptSourceKey = KeyImagePrompts
)

// Handler is a transform function over the run context. Its return value is
// written to the step's output key.
type Handler func(ctx context.Context, pc *Context) (any, error)

// Condition decides whether a step runs, given the context at that point.
type Condition func(pc *Context) bool

// Template is the proteus.json/proteus.yaml template format: an ordered list
// of steps sharing one run context.
type Template struct {
	ID          string       `yaml:"id"`
	Description string       `yaml:"description"`
	Steps       []StepConfig `yaml:"steps"`

	// Set by the loader, not from YAML.
	BaseDir  string `yaml:"-"`
	Files    fs.FS  `yaml:"-"`
	FilePath string `yaml:"-"`
}

// StepConfig defines a single step within a template.
type StepConfig struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name"`
	Type            string            `yaml:"type"`
	Template        string            `yaml:"template,omitempty"`
	Engine          string            `yaml:"engine,omitempty"`
	OutputKey       string            `yaml:"outputKey,omitempty"`
	InputMapping    map[string]string `yaml:"inputMapping,omitempty"`
	HandlerID       string            `yaml:"handlerId,omitempty"`
	PromptSourceKey string            `yaml:"promptSourceKey,omitempty"`
	When            string            `yaml:"when,omitempty"`

	// Only settable from Go.
	Handler   Handler   `yaml:"-"`
	Condition Condition `yaml:"-"`
}

// DisplayName returns Name, falling back to ID.
func (s StepConfig) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// ResolvePath resolves a step-local file name against BaseDir.
func (t *Template) ResolvePath(name string) string {
	if t.BaseDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(t.BaseDir, name)
}

// ReadFile reads a step-local file, from Files when the template carries an
// embedded file system and from disk otherwise.
func (t *Template) ReadFile(name string) ([]byte, error) {
	if t.Files != nil && !filepath.IsAbs(name) {
		return fs.ReadFile(t.Files, filepath.ToSlash(name))
	}
	return os.ReadFile(t.ResolvePath(name))
}
