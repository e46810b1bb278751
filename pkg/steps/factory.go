package steps

import (
	"errors"
	"fmt"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

var (
	// ErrMissingTemplate is returned for generate steps without a prompt file.
	ErrMissingTemplate = errors.New("template is required")
	// ErrMissingHandler is returned for transform steps with no handler.
	ErrMissingHandler = errors.New("handler or handlerId is required")
)

// NewStep creates a Step implementation from a StepConfig.
func NewStep(cfg api.StepConfig) (Step, error) {
	switch cfg.Type {
	case api.StepTypeGenerateText:
		if cfg.Template == "" {
			return nil, ErrMissingTemplate
		}
		return NewTextStep(cfg), nil
	case api.StepTypeGenerateJSON:
		if cfg.Template == "" {
			return nil, ErrMissingTemplate
		}
		return NewJSONStep(cfg), nil
	case api.StepTypeTransform:
		if cfg.Handler == nil && cfg.HandlerID == "" {
			return nil, ErrMissingHandler
		}
		return NewTransformStep(cfg), nil
	case api.StepTypeGenerateImages:
		return NewImagesStep(cfg), nil
	default:
		return nil, fmt.Errorf("unknown step type: %s", cfg.Type)
	}
}
