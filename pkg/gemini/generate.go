package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

const jsonMIMEType = "application/json"

func userContent(prompt string, refs []api.ReferenceImage) []*genai.Content {
	parts := make([]*genai.Part, 0, len(refs)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, ref := range refs {
		parts = append(parts, genai.NewPartFromBytes(ref.Data, ref.MIMEType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// GenerateText sends the prompt and reference images as one user turn and
// returns the first candidate's text.
func (c *Client) GenerateText(ctx context.Context, model, prompt string, refs []api.ReferenceImage) (string, error) {
	resp, err := c.models.GenerateContent(ctx, model, userContent(prompt, refs), nil)
	if err != nil {
		return "", fmt.Errorf("generating text with %s: %w", model, err)
	}
	return resp.Text(), nil
}

// GenerateJSON asks for a JSON response and parses it with ParseJSON.
func (c *Client) GenerateJSON(ctx context.Context, model, prompt string, refs []api.ReferenceImage) (any, error) {
	resp, err := c.models.GenerateContent(ctx, model, userContent(prompt, refs), &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIMEType,
	})
	if err != nil {
		return nil, fmt.Errorf("generating json with %s: %w", model, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("generating json with %s: %w", model, api.ErrEmptyResponse)
	}

	v, err := ParseJSON(text)
	if err != nil {
		return nil, fmt.Errorf("generating json with %s: %w", model, err)
	}
	return v, nil
}

// Ping sends a trivial prompt and returns the reply.
func (c *Client) Ping(ctx context.Context, model string) (string, error) {
	return c.GenerateText(ctx, model, "Ping", nil)
}

// ListModels returns the names of the models visible to the credentials.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for m, err := range c.models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("listing models: %w", err)
		}
		names = append(names, m.Name)
	}
	return names, nil
}
