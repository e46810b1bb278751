// Package content is the caller-facing entry point: it validates input,
// resolves the template, runs the engine and shapes the result.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/processing"
	"github.com/boyd4y/forgemcp-proteus/pkg/processors"
)

// EnvModel overrides the default text model when the input names none.
const EnvModel = "GEMINI_MODEL"

const invalidModelMarker = "gemini-3.0"

// GeneratorFactory creates the generator for one validated run.
type GeneratorFactory func(ctx context.Context, in api.Input) (api.Generator, error)

// Service runs templates on behalf of the CLI and other callers.
type Service struct {
	templates    *processing.Registry
	processors   processors.Registry
	newGenerator GeneratorFactory
	engineOpts   []processing.Option
}

// Option configures a Service.
type Option func(*Service)

// WithProcessors replaces the built-in processor registry.
func WithProcessors(r processors.Registry) Option {
	return func(s *Service) { s.processors = r }
}

// WithEngineOptions passes options through to every engine.
func WithEngineOptions(opts ...processing.Option) Option {
	return func(s *Service) { s.engineOpts = append(s.engineOpts, opts...) }
}

// NewService creates a Service resolving templates from templates.
func NewService(templates *processing.Registry, newGenerator GeneratorFactory, opts ...Option) *Service {
	s := &Service{
		templates:    templates,
		processors:   processors.Builtins(),
		newGenerator: newGenerator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PrepareInput applies defaults and environment fallbacks, and replaces
// model ids known to be invalid.
func PrepareInput(in api.Input) api.Input {
	in = in.WithDefaults()
	if in.Model == "" {
		in.Model = os.Getenv(EnvModel)
	}
	if strings.Contains(in.Model, invalidModelMarker) {
		slog.Warn("model id is not valid, using default", "model", in.Model, "default", api.DefaultTextModel)
		in.Model = api.DefaultTextModel
	}
	return in
}

// Generate runs one request end to end. Invalid input is rejected before any
// generation call is made.
func (s *Service) Generate(ctx context.Context, in api.Input) Result {
	in = PrepareInput(in)
	if err := in.Validate(); err != nil {
		return Failure(CodeInvalidInput, fmt.Errorf("invalid input: %w", err))
	}

	tmpl, err := s.templates.Get(in.Template)
	if err != nil {
		return Failure(ClassifyError(err), err)
	}
	slog.Info("using template", "id", tmpl.ID, "model", in.TextModel())

	gen, err := s.newGenerator(ctx, in)
	if err != nil {
		return Failure(ClassifyError(err), err)
	}

	engine := processing.NewEngine(gen, s.processors, s.engineOpts...)
	pc, err := engine.Execute(ctx, tmpl, in)
	if err != nil {
		return Failure(ClassifyError(err), err)
	}

	return shape(pc, in)
}
