package processing

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// ErrTemplateNotFound is returned by Registry.Get for unknown ids.
var ErrTemplateNotFound = errors.New("template not found")

// Registry resolves template ids. Templates added later replace earlier ones
// with the same id.
type Registry struct {
	templates map[string]*api.Template
}

// NewRegistry creates a registry holding templates in order.
func NewRegistry(templates ...*api.Template) *Registry {
	r := &Registry{templates: make(map[string]*api.Template, len(templates))}
	for _, t := range templates {
		r.Add(t)
	}
	return r
}

// Add registers t, replacing any template with the same id.
func (r *Registry) Add(t *api.Template) {
	if prev, ok := r.templates[t.ID]; ok {
		slog.Debug("template overridden", "id", t.ID, "previous", prev.FilePath, "path", t.FilePath)
	}
	r.templates[t.ID] = t
}

// Get returns the template registered under id.
func (r *Registry) Get(id string) (*api.Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrTemplateNotFound, id, strings.Join(r.IDs(), ", "))
	}
	return t, nil
}

// IDs lists registered ids in sorted order.
func (r *Registry) IDs() []string {
	return sortedKeys(r.templates)
}

// RegistryOptions names the template sources LoadRegistry reads.
type RegistryOptions struct {
	Builtins     []*api.Template
	TemplatesDir string
	ConfigPaths  []string
}

// LoadRegistry builds a registry from built-in templates, then templates
// discovered under TemplatesDir, then config files in order.
func LoadRegistry(opts RegistryOptions) (*Registry, error) {
	r := NewRegistry(opts.Builtins...)

	if opts.TemplatesDir != "" {
		found, err := DiscoverTemplates(opts.TemplatesDir)
		if err != nil {
			return nil, fmt.Errorf("discovering templates: %w", err)
		}
		for _, t := range found {
			r.Add(t)
		}
	}

	for _, t := range loadConfigFiles(opts.ConfigPaths) {
		r.Add(t)
	}
	return r, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
