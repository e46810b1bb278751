package steps

import (
	"context"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

type transformStep struct {
	cfg api.StepConfig
}

// NewTransformStep creates a transform step. An inline handler takes
// precedence over HandlerID, which is resolved against the run's registry.
func NewTransformStep(cfg api.StepConfig) Step {
	return &transformStep{cfg: cfg}
}

func (s *transformStep) ID() string { return s.cfg.ID }

func (s *transformStep) handler(env *Env) (api.Handler, error) {
	if s.cfg.Handler != nil {
		return s.cfg.Handler, nil
	}
	return env.Processors.Lookup(s.cfg.HandlerID)
}

func (s *transformStep) Run(ctx context.Context, env *Env, pc *api.Context) (*StepResult, error) {
	h, err := s.handler(env)
	if err != nil {
		return nil, err
	}

	v, err := h(ctx, pc)
	if err != nil {
		return nil, err
	}
	return output(s.cfg.OutputKey, v), nil
}
