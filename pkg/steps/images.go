package steps

import (
	"context"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/prompt"
)

type imagesStep struct {
	cfg api.StepConfig
}

// NewImagesStep creates a generate_images step.
func NewImagesStep(cfg api.StepConfig) Step {
	return &imagesStep{cfg: cfg}
}

func (s *imagesStep) ID() string { return s.cfg.ID }

func (s *imagesStep) sourceKey() string {
	if s.cfg.PromptSourceKey != "" {
		return s.cfg.PromptSourceKey
	}
	return api.DefaultPromptSourceKey
}

// Run issues one image request per prompt, in order. Failed items are
// reported in the result and do not fail the step; only cancellation does.
func (s *imagesStep) Run(ctx context.Context, env *Env, pc *api.Context) (*StepResult, error) {
	prompts := promptList(pc, s.sourceKey())
	if len(prompts) == 0 {
		env.logger().Info("no image prompts, skipping", "step", s.cfg.ID, "source", s.sourceKey())
		return &StepResult{}, nil
	}

	result := &StepResult{Images: make([]ImageResult, 0, len(prompts))}
	var paths []string
	for i, p := range prompts {
		path, err := env.Generator.GenerateImage(ctx, api.ImageRequest{
			Model:      pc.ImageModelName(),
			Prompt:     p,
			OutputDir:  env.OutputDir,
			Index:      i,
			References: env.References,
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		result.Images = append(result.Images, ImageResult{Index: i, Prompt: p, Path: path, Err: err})
		if err == nil {
			paths = append(paths, path)
		}
	}

	if len(paths) > 0 {
		result.Outputs = map[string]any{api.KeyGeneratedImages: paths}
		if s.cfg.OutputKey != "" {
			result.Outputs[s.cfg.OutputKey] = paths
		}
	}
	return result, nil
}

// promptList reads a list of prompts from key. Anything other than a
// non-empty list yields nil.
func promptList(pc *api.Context, key string) []string {
	v, ok := pc.Get(key)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, prompt.Stringify(item))
		}
		return out
	default:
		return nil
	}
}
