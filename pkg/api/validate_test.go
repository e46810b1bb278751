package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Validate(t *testing.T) {
	noop := func(context.Context, *Context) (any, error) { return nil, nil }

	tests := []struct {
		name    string
		tmpl    Template
		wantErr string
	}{
		{
			name: "valid",
			tmpl: Template{ID: "t", Steps: []StepConfig{
				{ID: "a", Type: StepTypeGenerateText, Template: "a.txt"},
				{ID: "b", Type: StepTypeGenerateJSON, Template: "b.txt", Engine: PromptEngineGo},
				{ID: "c", Type: StepTypeTransform, HandlerID: "x"},
				{ID: "d", Type: StepTypeTransform, Handler: noop},
				{ID: "e", Type: StepTypeGenerateImages, When: "!skipImages"},
			}},
		},
		{
			name:    "missing id",
			tmpl:    Template{Steps: []StepConfig{{ID: "a", Type: StepTypeTransform, HandlerID: "x"}}},
			wantErr: "template id is required",
		},
		{
			name:    "no steps",
			tmpl:    Template{ID: "t"},
			wantErr: "has no steps",
		},
		{
			name:    "step without id",
			tmpl:    Template{ID: "t", Steps: []StepConfig{{Type: StepTypeTransform, HandlerID: "x"}}},
			wantErr: "step 0: id is required",
		},
		{
			name: "duplicate id",
			tmpl: Template{ID: "t", Steps: []StepConfig{
				{ID: "a", Type: StepTypeTransform, HandlerID: "x"},
				{ID: "a", Type: StepTypeTransform, HandlerID: "y"},
			}},
			wantErr: `duplicate step id "a"`,
		},
		{
			name:    "unknown type",
			tmpl:    Template{ID: "t", Steps: []StepConfig{{ID: "a", Type: "shell"}}},
			wantErr: `unknown type "shell"`,
		},
		{
			name:    "generate without template",
			tmpl:    Template{ID: "t", Steps: []StepConfig{{ID: "a", Type: StepTypeGenerateJSON}}},
			wantErr: "template is required",
		},
		{
			name:    "bad engine",
			tmpl:    Template{ID: "t", Steps: []StepConfig{{ID: "a", Type: StepTypeGenerateText, Template: "x", Engine: "jinja"}}},
			wantErr: `engine "jinja" is not valid`,
		},
		{
			name:    "transform without handler",
			tmpl:    Template{ID: "t", Steps: []StepConfig{{ID: "a", Type: StepTypeTransform}}},
			wantErr: "handlerId is required",
		},
		{
			name:    "empty when",
			tmpl:    Template{ID: "t", Steps: []StepConfig{{ID: "a", Type: StepTypeGenerateImages, When: "!"}}},
			wantErr: "names no context key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInput_Validate(t *testing.T) {
	base := Input{Topic: "Coffee"}.WithDefaults()

	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Input) {}},
		{name: "empty topic", mutate: func(in *Input) { in.Topic = "  " }, wantErr: "topic is required"},
		{name: "bad style", mutate: func(in *Input) { in.Style = "Sarcastic" }, wantErr: `style "Sarcastic" is not valid`},
		{name: "too few images", mutate: func(in *Input) { in.ImageCount = 2 }, wantErr: "out of range"},
		{name: "too many images", mutate: func(in *Input) { in.ImageCount = 10 }, wantErr: "out of range"},
		{name: "empty reference path", mutate: func(in *Input) { in.ReferenceImages = []string{""} }, wantErr: "referenceImages[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInput_WithDefaults(t *testing.T) {
	in := Input{Topic: "x"}.WithDefaults()

	assert.Equal(t, DefaultStyle, in.Style)
	assert.Equal(t, DefaultImageCount, in.ImageCount)
	assert.Equal(t, DefaultTemplate, in.Template)
	assert.Equal(t, DefaultTextModel, in.TextModel())
	assert.Equal(t, DefaultImageModel, in.ImageModelName())

	in.Model = "m"
	in.ImageModel = "im"
	assert.Equal(t, "m", in.TextModel())
	assert.Equal(t, "im", in.ImageModelName())
}
