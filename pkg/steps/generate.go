package steps

import (
	"context"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

type textStep struct {
	cfg api.StepConfig
}

// NewTextStep creates a generate_text step.
func NewTextStep(cfg api.StepConfig) Step {
	return &textStep{cfg: cfg}
}

func (s *textStep) ID() string { return s.cfg.ID }

func (s *textStep) Run(ctx context.Context, env *Env, pc *api.Context) (*StepResult, error) {
	p, err := buildPrompt(s.cfg, pc)
	if err != nil {
		return nil, err
	}

	text, err := env.Generator.GenerateText(ctx, pc.TextModel(), p, env.References)
	if err != nil {
		return nil, err
	}

	env.logger().Debug("generated text", "step", s.cfg.ID, "chars", len(text))
	return output(s.cfg.OutputKey, text), nil
}

type jsonStep struct {
	cfg api.StepConfig
}

// NewJSONStep creates a generate_json step.
func NewJSONStep(cfg api.StepConfig) Step {
	return &jsonStep{cfg: cfg}
}

func (s *jsonStep) ID() string { return s.cfg.ID }

func (s *jsonStep) Run(ctx context.Context, env *Env, pc *api.Context) (*StepResult, error) {
	p, err := buildPrompt(s.cfg, pc)
	if err != nil {
		return nil, err
	}

	v, err := env.Generator.GenerateJSON(ctx, pc.TextModel(), p, env.References)
	if err != nil {
		return nil, err
	}
	return output(s.cfg.OutputKey, v), nil
}
