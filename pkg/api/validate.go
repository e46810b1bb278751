package api

import (
	"fmt"
	"strings"
)

var validStepTypes = map[string]bool{
	StepTypeGenerateText:   true,
	StepTypeGenerateJSON:   true,
	StepTypeTransform:      true,
	StepTypeGenerateImages: true,
}

var validPromptEngines = map[string]bool{
	"":                      true,
	PromptEnginePlaceholder: true,
	PromptEngineGo:          true,
}

// Validate checks the template configuration for errors.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template id is required")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("template %q has no steps", t.ID)
	}

	ids := make(map[string]int)

	for i, step := range t.Steps {
		if step.ID == "" {
			return fmt.Errorf("step %d: id is required", i)
		}
		if prev, exists := ids[step.ID]; exists {
			return fmt.Errorf("step %d: duplicate step id %q (first defined at step %d)", i, step.ID, prev)
		}
		ids[step.ID] = i

		if !validStepTypes[step.Type] {
			return fmt.Errorf("step %q: unknown type %q", step.ID, step.Type)
		}

		if err := validateStepConfig(step); err != nil {
			return fmt.Errorf("step %q: %w", step.ID, err)
		}
	}

	return nil
}

func validateStepConfig(step StepConfig) error {
	if step.When != "" && strings.TrimSpace(strings.TrimPrefix(step.When, "!")) == "" {
		return fmt.Errorf("when %q names no context key", step.When)
	}

	switch step.Type {
	case StepTypeGenerateText, StepTypeGenerateJSON:
		return validateGenerateConfig(step)
	case StepTypeTransform:
		if step.Handler == nil && step.HandlerID == "" {
			return fmt.Errorf("handlerId is required")
		}
	}
	return nil
}

func validateGenerateConfig(step StepConfig) error {
	if step.Template == "" {
		return fmt.Errorf("template is required")
	}
	if !validPromptEngines[step.Engine] {
		return fmt.Errorf("engine %q is not valid (valid: %s, %s)", step.Engine, PromptEnginePlaceholder, PromptEngineGo)
	}
	return nil
}
