package api

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("no content in model response")
	// ErrNoImage is returned when an image request completes without image data.
	ErrNoImage = errors.New("no image produced")
)

// ReferenceImage is caller-supplied image content attached to generation
// requests as visual context.
type ReferenceImage struct {
	Path     string
	MIMEType string
	Data     []byte
}

// ImageRequest asks for a single image written into OutputDir.
type ImageRequest struct {
	Model      string
	Prompt     string
	OutputDir  string
	Index      int
	References []ReferenceImage
}

// Generator is the generative model capability the engine drives.
//
// GenerateImage returns the written file path. Its errors are per-item
// failures: callers log and skip them.
type Generator interface {
	GenerateText(ctx context.Context, model, prompt string, refs []ReferenceImage) (string, error)
	GenerateJSON(ctx context.Context, model, prompt string, refs []ReferenceImage) (any, error)
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}
