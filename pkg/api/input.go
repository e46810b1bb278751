package api

import (
	"fmt"
	"slices"
	"strings"
)

const (
	StyleCasual       = "Casual"
	StyleProfessional = "Professional"
	StyleEmotional    = "Emotional"
	StyleEducational  = "Educational"

	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-3-pro-image-preview"
	DefaultTemplate   = "rednote-standard"
	DefaultStyle      = StyleCasual
	DefaultImageCount = 4

	MinImageCount = 3
	MaxImageCount = 9
)

var validStyles = []string{StyleCasual, StyleProfessional, StyleEmotional, StyleEducational}

// Input is the caller-supplied request for one pipeline run.
type Input struct {
	Topic           string   `json:"topic" yaml:"topic"`
	Style           string   `json:"style" yaml:"style"`
	ImageCount      int      `json:"imageCount" yaml:"imageCount"`
	APIKey          string   `json:"-" yaml:"-"`
	Model           string   `json:"model,omitempty" yaml:"model,omitempty"`
	ImageModel      string   `json:"imageModel,omitempty" yaml:"imageModel,omitempty"`
	Template        string   `json:"template" yaml:"template"`
	GenerateImages  bool     `json:"generateImages" yaml:"generateImages"`
	ReferenceImages []string `json:"referenceImages,omitempty" yaml:"referenceImages,omitempty"`
}

// WithDefaults returns a copy with unset optional fields filled in.
func (in Input) WithDefaults() Input {
	if in.Style == "" {
		in.Style = DefaultStyle
	}
	if in.ImageCount == 0 {
		in.ImageCount = DefaultImageCount
	}
	if in.Template == "" {
		in.Template = DefaultTemplate
	}
	return in
}

// TextModel returns the requested text model or the default.
func (in Input) TextModel() string {
	if in.Model != "" {
		return in.Model
	}
	return DefaultTextModel
}

// ImageModelName returns the requested image model or the default.
func (in Input) ImageModelName() string {
	if in.ImageModel != "" {
		return in.ImageModel
	}
	return DefaultImageModel
}

// Validate checks the input for errors. Call it on the result of WithDefaults.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if !slices.Contains(validStyles, in.Style) {
		return fmt.Errorf("style %q is not valid (valid: %s)", in.Style, strings.Join(validStyles, ", "))
	}
	if in.ImageCount < MinImageCount || in.ImageCount > MaxImageCount {
		return fmt.Errorf("imageCount %d is out of range [%d, %d]", in.ImageCount, MinImageCount, MaxImageCount)
	}
	if in.Template == "" {
		return fmt.Errorf("template is required")
	}
	for i, p := range in.ReferenceImages {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("referenceImages[%d]: path is empty", i)
		}
	}
	return nil
}
