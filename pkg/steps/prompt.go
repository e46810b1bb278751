package steps

import (
	"fmt"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/prompt"
)

// buildPrompt loads the step's prompt file and renders it against the mapped
// variables, or the whole context when the step declares no mapping.
func buildPrompt(cfg api.StepConfig, pc *api.Context) (string, error) {
	raw, err := pc.ReadTemplateFile(cfg.Template)
	if err != nil {
		return "", fmt.Errorf("loading template %s: %w", cfg.Template, err)
	}

	vars := mapInput(cfg.InputMapping, pc)
	if cfg.Engine == api.PromptEngineGo {
		return prompt.RenderGo(cfg.Template, string(raw), vars)
	}
	return prompt.Render(string(raw), vars), nil
}

// mapInput resolves template variable -> context key pairs. Keys absent from
// the context are left out so their placeholders stay intact.
func mapInput(mapping map[string]string, pc *api.Context) map[string]any {
	if len(mapping) == 0 {
		return pc.Vars()
	}
	vars := make(map[string]any, len(mapping))
	for name, key := range mapping {
		if v, ok := pc.Get(key); ok {
			vars[name] = v
		}
	}
	return vars
}
