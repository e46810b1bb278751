// Package processors holds the transform functions that templates reference
// by id from transform steps.
package processors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/prompt"
)

const (
	ParseOutlineText                = "parseOutlineText"
	GenerateImagePromptsFromOutline = "generateImagePromptsFromOutline"
	StringifyOutline                = "stringifyOutline"
	ExtractWechatImagePrompt        = "extractWechatImagePrompt"

	// ImagePromptTemplate is read relative to the running template.
	ImagePromptTemplate = "image_prompts.j2"
)

// ErrUnknown is returned by Lookup for ids missing from the registry.
var ErrUnknown = errors.New("processor not found in registry")

// Registry maps processor ids to handlers.
type Registry map[string]api.Handler

// Builtins returns a fresh registry with the built-in processors.
func Builtins() Registry {
	return Registry{
		ParseOutlineText:                parseOutlineText,
		GenerateImagePromptsFromOutline: GenerateImagePrompts,
		StringifyOutline:                stringifyOutline,
		ExtractWechatImagePrompt:        extractWechatImagePrompt,
	}
}

// Lookup returns the handler registered under id.
func (r Registry) Lookup(id string) (api.Handler, error) {
	h, ok := r[id]
	if !ok || h == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, id)
	}
	return h, nil
}

// With returns a copy of the registry with h registered under id.
func (r Registry) With(id string, h api.Handler) Registry {
	out := make(Registry, len(r)+1)
	maps.Copy(out, r)
	out[id] = h
	return out
}

// IDs lists registered ids in sorted order.
func (r Registry) IDs() []string {
	return slices.Sorted(maps.Keys(r))
}

func parseOutlineText(_ context.Context, pc *api.Context) (any, error) {
	return ParseOutline(pc.OutlineRaw), nil
}

// GenerateImagePrompts renders the template's image prompt file once per
// outline page.
func GenerateImagePrompts(_ context.Context, pc *api.Context) (any, error) {
	prompts := make([]string, 0, len(pc.Outline))
	if len(pc.Outline) == 0 {
		return prompts, nil
	}

	raw, err := pc.ReadTemplateFile(ImagePromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", ImagePromptTemplate, err)
	}

	outlineJSON, err := json.MarshalIndent(pc.Outline, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding outline: %w", err)
	}

	for _, page := range pc.Outline {
		prompts = append(prompts, prompt.Render(string(raw), map[string]any{
			"page_content": page.MainContent,
			"page_type":    page.Type,
			"topic":        pc.Topic,
			"outline_json": string(outlineJSON),
		}))
	}
	return prompts, nil
}

func stringifyOutline(_ context.Context, pc *api.Context) (any, error) {
	outline := pc.Outline
	if outline == nil {
		outline = []api.OutlinePage{}
	}
	data, err := json.MarshalIndent(outline, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding outline: %w", err)
	}
	return string(data), nil
}

func extractWechatImagePrompt(_ context.Context, pc *api.Context) (any, error) {
	if pc.ContentData != nil && pc.ContentData.ImagePrompt != "" {
		return []string{pc.ContentData.ImagePrompt}, nil
	}
	return []string{}, nil
}
