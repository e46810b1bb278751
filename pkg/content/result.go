package content

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// Error codes reported in Result.Code.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeAuthError    = "AUTH_ERROR"
	CodeAPIError     = "API_ERROR"
)

var authMarkers = []string{"401", "credential", "API key"}

// Metadata describes how a result was produced.
type Metadata struct {
	Model      string `json:"model"`
	ImageModel string `json:"imageModel,omitempty"`
	Style      string `json:"style"`
	Topic      string `json:"topic"`
	Template   string `json:"template"`
}

// Data is the presentation shape of a finished run.
type Data struct {
	BestTitle       string            `json:"best_title"`
	Title           string            `json:"title"`
	Titles          []string          `json:"titles,omitempty"`
	Content         string            `json:"content,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	Outline         []api.OutlinePage `json:"outline,omitempty"`
	ImagePrompts    []string          `json:"imagePrompts,omitempty"`
	GeneratedImages []string          `json:"generatedImages,omitempty"`
	Metadata        Metadata          `json:"metadata"`
}

// Result is returned by Generate. Exactly one of Data or Error is set.
type Result struct {
	OK      bool   `json:"ok"`
	Data    *Data  `json:"data,omitempty"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Failure builds an error result.
func Failure(code string, err error) Result {
	return Result{OK: false, Error: err.Error(), Code: code}
}

// ClassifyError maps a run error to AUTH_ERROR or API_ERROR.
func ClassifyError(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403) {
		return CodeAuthError
	}
	msg := err.Error()
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return CodeAuthError
		}
	}
	return CodeAPIError
}

func shape(pc *api.Context, in api.Input) Result {
	data := &Data{
		Outline:         pc.Outline,
		ImagePrompts:    pc.ImagePrompts,
		GeneratedImages: pc.GeneratedImages,
		Metadata: Metadata{
			Model:    in.TextModel(),
			Style:    in.Style,
			Topic:    in.Topic,
			Template: in.Template,
		},
	}
	if in.GenerateImages {
		data.Metadata.ImageModel = in.ImageModelName()
	}
	if cd := pc.ContentData; cd != nil {
		data.Titles = cd.Titles
		data.Content = cd.Body()
		data.Tags = cd.Tags
		if len(cd.Titles) > 0 {
			data.BestTitle = cd.Titles[0]
			data.Title = cd.Titles[0]
		}
	}

	summary := fmt.Sprintf("Generated content for topic '%s' using %s with template '%s'.",
		in.Topic, in.TextModel(), in.Template)
	if n := len(pc.GeneratedImages); n > 0 {
		summary += fmt.Sprintf(" Generated %d images.", n)
	}

	return Result{OK: true, Data: data, Summary: summary}
}
