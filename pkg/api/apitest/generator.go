// Package apitest provides an in-memory api.Generator for tests.
package apitest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// Call records one request made to the fake.
type Call struct {
	Kind   string // "text", "json" or "image"
	Model  string
	Prompt string
	Refs   int
}

// Generator answers requests from canned responses and records every call.
// Responses are matched by the first key that the prompt contains; Text and
// JSON fall back to DefaultText/DefaultJSON.
type Generator struct {
	Text        map[string]string
	JSON        map[string]any
	DefaultText string
	DefaultJSON any

	// Err, when set, is returned by text and JSON calls.
	Err error
	// FailImages lists 0-based image indexes that fail.
	FailImages map[int]bool

	mu    sync.Mutex
	calls []Call
}

var _ api.Generator = (*Generator)(nil)

func (g *Generator) record(c Call) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, c)
}

// Calls returns the recorded calls in order.
func (g *Generator) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// CallsOf returns the recorded calls of one kind.
func (g *Generator) CallsOf(kind string) []Call {
	var out []Call
	for _, c := range g.Calls() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (g *Generator) GenerateText(_ context.Context, model, prompt string, refs []api.ReferenceImage) (string, error) {
	g.record(Call{Kind: "text", Model: model, Prompt: prompt, Refs: len(refs)})
	if g.Err != nil {
		return "", g.Err
	}
	for k, v := range g.Text {
		if strings.Contains(prompt, k) {
			return v, nil
		}
	}
	return g.DefaultText, nil
}

func (g *Generator) GenerateJSON(_ context.Context, model, prompt string, refs []api.ReferenceImage) (any, error) {
	g.record(Call{Kind: "json", Model: model, Prompt: prompt, Refs: len(refs)})
	if g.Err != nil {
		return nil, g.Err
	}
	for k, v := range g.JSON {
		if strings.Contains(prompt, k) {
			return v, nil
		}
	}
	return g.DefaultJSON, nil
}

// GenerateImage writes a small placeholder file named image_<n>.jpg. Unlike
// the real client the name carries no timestamp, so tests can predict it.
func (g *Generator) GenerateImage(_ context.Context, req api.ImageRequest) (string, error) {
	g.record(Call{Kind: "image", Model: req.Model, Prompt: req.Prompt, Refs: len(req.References)})
	if g.FailImages[req.Index] {
		return "", fmt.Errorf("image %d: %w", req.Index+1, api.ErrNoImage)
	}
	if err := os.MkdirAll(req.OutputDir, 0o750); err != nil {
		return "", err
	}
	path := filepath.Join(req.OutputDir, fmt.Sprintf("image_%d.jpg", req.Index+1))
	if err := os.WriteFile(path, []byte("jpeg"), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
