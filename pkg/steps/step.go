package steps

import (
	"context"
	"log/slog"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/processors"
)

// Env carries the collaborators available to steps during one run.
type Env struct {
	Generator  api.Generator
	Processors processors.Registry
	References []api.ReferenceImage
	OutputDir  string // per-run image directory, created on first write
	Logger     *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// ImageResult is the outcome of one image request.
type ImageResult struct {
	Index  int
	Prompt string
	Path   string
	Err    error
}

// StepResult holds the output of a step.
type StepResult struct {
	Outputs map[string]any // context key -> value, nil unsets
	Images  []ImageResult  // generate_images only
}

// Step is the interface all pipeline steps implement.
type Step interface {
	ID() string
	Run(ctx context.Context, env *Env, pc *api.Context) (*StepResult, error)
}

func output(key string, value any) *StepResult {
	if key == "" {
		return &StepResult{}
	}
	return &StepResult{Outputs: map[string]any{key: value}}
}
