// Package processing runs templates: it owns the execution engine, the
// template registry and the loaders that feed them.
package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/processors"
	"github.com/boyd4y/forgemcp-proteus/pkg/steps"
)

// DefaultOutputRoot is joined with the working directory when no output root
// is configured.
const DefaultOutputRoot = "output"

// Step and image outcomes reported to a Recorder.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Recorder observes step and image outcomes.
type Recorder interface {
	ObserveStep(stepType, outcome string, d time.Duration)
	ObserveImage(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStep(string, string, time.Duration) {}
func (nopRecorder) ObserveImage(string) {}

// Engine executes templates step by step over a fresh context per run.
type Engine struct {
	generator  api.Generator
	processors processors.Registry
	outputRoot string
	now        func() time.Time
	recorder   Recorder
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutputRoot sets the directory under which per-run image directories
// are created.
func WithOutputRoot(dir string) Option {
	return func(e *Engine) { e.outputRoot = dir }
}

// WithClock overrides the time source used to name run directories.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRecorder reports step outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the base logger; each run adds its run id.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine that dispatches generation to gen and resolves
// transform handler ids against procs.
func NewEngine(gen api.Generator, procs processors.Registry, opts ...Option) *Engine {
	e := &Engine{
		generator:  gen,
		processors: procs,
		now:        time.Now,
		recorder:   nopRecorder{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every step of tmpl in order and returns the final context.
// Any step error aborts the run and no context is returned.
func (e *Engine) Execute(ctx context.Context, tmpl *api.Template, in api.Input) (*api.Context, error) {
	if tmpl == nil {
		return nil, errors.New("template is nil")
	}

	log := e.logger.With("run", uuid.NewString(), "template", tmpl.ID)

	outDir, err := e.runOutputDir()
	if err != nil {
		return nil, err
	}

	pc := api.NewContext(in, tmpl)
	env := &steps.Env{
		Generator:  e.generator,
		Processors: e.processors,
		References: LoadReferenceImages(in.ReferenceImages, log),
		OutputDir:  outDir,
		Logger:     log,
	}

	log.Info("executing template", "steps", len(tmpl.Steps), "references", len(env.References))

	for _, cfg := range tmpl.Steps {
		if !cfg.Enabled(pc) {
			log.Info("skipping step", "step", cfg.ID, "type", cfg.Type)
			e.recorder.ObserveStep(cfg.Type, OutcomeSkipped, 0)
			continue
		}
		if err := e.runStep(ctx, env, pc, cfg); err != nil {
			log.Error("step failed", "step", cfg.ID, "error", err)
			return nil, err
		}
	}

	log.Info("template finished", "keys", pc.Keys())
	return pc, nil
}

func (e *Engine) runStep(ctx context.Context, env *steps.Env, pc *api.Context, cfg api.StepConfig) error {
	env.Logger.Info("running step", "step", cfg.ID, "name", cfg.DisplayName(), "type", cfg.Type)

	step, err := steps.NewStep(cfg)
	if err != nil {
		e.recorder.ObserveStep(cfg.Type, OutcomeError, 0)
		return fmt.Errorf("step %q: %w", cfg.ID, err)
	}

	start := time.Now()
	result, err := step.Run(ctx, env, pc)
	if err != nil {
		e.recorder.ObserveStep(cfg.Type, OutcomeError, time.Since(start))
		return fmt.Errorf("step %q: %w", cfg.ID, err)
	}
	e.recorder.ObserveStep(cfg.Type, OutcomeOK, time.Since(start))

	e.collectImages(env.Logger, cfg.ID, result.Images)

	for key, value := range result.Outputs {
		if err := pc.Set(key, value); err != nil {
			return fmt.Errorf("step %q: %w", cfg.ID, err)
		}
	}
	return nil
}

func (e *Engine) collectImages(log *slog.Logger, stepID string, results []steps.ImageResult) {
	if len(results) == 0 {
		return
	}

	var ok int
	for _, r := range results {
		if r.Err != nil {
			log.Warn("image generation failed", "step", stepID, "index", r.Index+1, "error", r.Err)
			e.recorder.ObserveImage(OutcomeError)
			continue
		}
		ok++
		e.recorder.ObserveImage(OutcomeOK)
	}

	if ok == 0 {
		log.Warn("no images generated", "step", stepID, "requested", len(results))
		return
	}
	log.Info("images generated", "step", stepID, "ok", ok, "requested", len(results))
}

// runOutputDir names the per-run image directory. It is created only when
// the first image is written.
func (e *Engine) runOutputDir() (string, error) {
	root := e.outputRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		root = filepath.Join(wd, DefaultOutputRoot)
	}
	return filepath.Join(root, strconv.FormatInt(e.now().UnixMilli(), 10)), nil
}
