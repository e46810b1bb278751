package templates

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/processors"
)

func TestBuiltins_Valid(t *testing.T) {
	registry := processors.Builtins()

	for _, tmpl := range Builtins() {
		t.Run(tmpl.ID, func(t *testing.T) {
			require.NoError(t, tmpl.Validate())

			for _, step := range tmpl.Steps {
				if step.Template != "" {
					_, err := fs.Stat(tmpl.Files, step.Template)
					assert.NoError(t, err, "prompt file for step %s", step.ID)
				}
				if step.HandlerID != "" {
					_, err := registry.Lookup(step.HandlerID)
					assert.NoError(t, err, "handler for step %s", step.ID)
				}
			}
		})
	}
}

func TestRedNote_ImagePromptFileEmbedded(t *testing.T) {
	pc := api.NewContext(api.Input{Topic: "Tea"}.WithDefaults(), RedNote())

	data, err := pc.ReadTemplateFile(processors.ImagePromptTemplate)
	require.NoError(t, err)
	assert.Contains(t, string(data), "{{ page_content }}")
}

func TestImageStepsFollowGenerateImages(t *testing.T) {
	for _, tmpl := range Builtins() {
		off := api.NewContext(api.Input{Topic: "Tea"}.WithDefaults(), tmpl)
		on := api.NewContext(api.Input{Topic: "Tea", GenerateImages: true}.WithDefaults(), tmpl)

		for _, step := range tmpl.Steps {
			if step.Type != api.StepTypeGenerateImages {
				continue
			}
			assert.False(t, step.Enabled(off), "%s/%s", tmpl.ID, step.ID)
			assert.True(t, step.Enabled(on), "%s/%s", tmpl.ID, step.ID)
		}
	}
}

func TestBuiltins_FreshCopies(t *testing.T) {
	a := RedNote()
	a.Steps[0].OutputKey = "mutated"
	assert.Equal(t, api.KeyOutlineRaw, RedNote().Steps[0].OutputKey)
}
