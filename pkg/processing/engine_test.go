package processing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/api/apitest"
	"github.com/boyd4y/forgemcp-proteus/pkg/processors"
)

var fixedNow = time.UnixMilli(1700000000000)

type recordedStep struct {
	stepType, outcome string
}

type fakeRecorder struct {
	steps  []recordedStep
	images []string
}

func (r *fakeRecorder) ObserveStep(stepType, outcome string, _ time.Duration) {
	r.steps = append(r.steps, recordedStep{stepType, outcome})
}

func (r *fakeRecorder) ObserveImage(outcome string) {
	r.images = append(r.images, outcome)
}

func newTestEngine(t *testing.T, gen api.Generator, opts ...Option) (*Engine, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "output")
	opts = append([]Option{WithOutputRoot(root), WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewEngine(gen, processors.Builtins(), opts...), root
}

func writeTemplateFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func validInput() api.Input {
	return api.Input{Topic: "Tea", Template: "t"}.WithDefaults()
}

func TestExecute_FalseConditionSkipsStep(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "a.j2", "A {{topic}}")
	writeTemplateFile(t, dir, "b.j2", "B {{topic}}")
	gen := &apitest.Generator{Text: map[string]string{"A ": "alpha", "B ": "beta"}}
	rec := &fakeRecorder{}
	eng, _ := newTestEngine(t, gen, WithRecorder(rec))

	tmpl := &api.Template{ID: "t", BaseDir: dir, Steps: []api.StepConfig{
		{ID: "a", Type: api.StepTypeGenerateText, Template: "a.j2", OutputKey: "first",
			Condition: func(*api.Context) bool { return false }},
		{ID: "b", Type: api.StepTypeGenerateText, Template: "b.j2", OutputKey: "second"},
	}}

	pc, err := eng.Execute(context.Background(), tmpl, validInput())
	require.NoError(t, err)

	assert.False(t, pc.Has("first"))
	v, ok := pc.Get("second")
	require.True(t, ok)
	assert.Equal(t, "beta", v)
	assert.Len(t, gen.Calls(), 1)
	assert.Equal(t, []recordedStep{
		{api.StepTypeGenerateText, OutcomeSkipped},
		{api.StepTypeGenerateText, OutcomeOK},
	}, rec.steps)
}

func TestExecute_WhenCondition(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "a.j2", "x")
	gen := &apitest.Generator{DefaultText: "out"}
	eng, _ := newTestEngine(t, gen)

	tmpl := &api.Template{ID: "t", BaseDir: dir, Steps: []api.StepConfig{
		{ID: "a", Type: api.StepTypeGenerateText, Template: "a.j2", OutputKey: "only", When: api.KeyGenerateImages},
		{ID: "b", Type: api.StepTypeGenerateText, Template: "a.j2", OutputKey: "unless", When: "!" + api.KeyGenerateImages},
	}}

	pc, err := eng.Execute(context.Background(), tmpl, validInput())
	require.NoError(t, err)
	assert.False(t, pc.Has("only"))
	assert.True(t, pc.Has("unless"))
}

func TestExecute_FullContextVisibleWithoutMapping(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "first.j2", "seed")
	writeTemplateFile(t, dir, "second.j2", "{{topic}} {{style}} {{draft}} {{templateBaseDir}}")
	gen := &apitest.Generator{Text: map[string]string{"seed": "DRAFT"}}
	eng, _ := newTestEngine(t, gen)

	tmpl := &api.Template{ID: "t", BaseDir: dir, Steps: []api.StepConfig{
		{ID: "first", Type: api.StepTypeGenerateText, Template: "first.j2", OutputKey: "draft"},
		{ID: "second", Type: api.StepTypeGenerateText, Template: "second.j2"},
	}}

	_, err := eng.Execute(context.Background(), tmpl, validInput())
	require.NoError(t, err)

	calls := gen.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "Tea Casual DRAFT "+dir, calls[1].Prompt)
}

func TestExecute_ImagesPartialSuccess(t *testing.T) {
	gen := &apitest.Generator{FailImages: map[int]bool{0: true}}
	rec := &fakeRecorder{}
	eng, root := newTestEngine(t, gen, WithRecorder(rec))

	tmpl := &api.Template{ID: "t", Steps: []api.StepConfig{
		{ID: "prompts", Type: api.StepTypeTransform, OutputKey: api.KeyImagePrompts,
			Handler: func(context.Context, *api.Context) (any, error) { return []string{"a", "b", "c"}, nil }},
		{ID: "images", Type: api.StepTypeGenerateImages, OutputKey: "pics"},
	}}

	pc, err := eng.Execute(context.Background(), tmpl, validInput())
	require.NoError(t, err)

	runDir := filepath.Join(root, "1700000000000")
	want := []string{filepath.Join(runDir, "image_2.jpg"), filepath.Join(runDir, "image_3.jpg")}
	assert.Equal(t, want, pc.GeneratedImages)
	v, ok := pc.Get("pics")
	require.True(t, ok)
	assert.Equal(t, want, v)
	assert.Equal(t, []string{OutcomeError, OutcomeOK, OutcomeOK}, rec.images)
}

func TestExecute_NoPromptsNoDirectory(t *testing.T) {
	gen := &apitest.Generator{}
	eng, root := newTestEngine(t, gen)

	tmpl := &api.Template{ID: "t", Steps: []api.StepConfig{
		{ID: "images", Type: api.StepTypeGenerateImages},
	}}

	pc, err := eng.Execute(context.Background(), tmpl, validInput())
	require.NoError(t, err)
	assert.False(t, pc.Has(api.KeyGeneratedImages))
	assert.Empty(t, gen.Calls())
	assert.NoDirExists(t, root)
}

func TestExecute_AllImagesFailLeavesKeyAbsent(t *testing.T) {
	gen := &apitest.Generator{FailImages: map[int]bool{0: true, 1: true}}
	eng, _ := newTestEngine(t, gen)

	tmpl := &api.Template{ID: "t", Steps: []api.StepConfig{
		{ID: "prompts", Type: api.StepTypeTransform, OutputKey: api.KeyImagePrompts,
			Handler: func(context.Context, *api.Context) (any, error) { return []any{"a", "b"}, nil }},
		{ID: "images", Type: api.StepTypeGenerateImages},
	}}

	pc, err := eng.Execute(context.Background(), tmpl, validInput())
	require.NoError(t, err)
	assert.False(t, pc.Has(api.KeyGeneratedImages))
}

func TestExecute_AbortsOnError(t *testing.T) {
	boom := errors.New("handler exploded")
	rec := &fakeRecorder{}
	gen := &apitest.Generator{}
	eng, _ := newTestEngine(t, gen, WithRecorder(rec))

	tmpl := &api.Template{ID: "t", Steps: []api.StepConfig{
		{ID: "explode", Type: api.StepTypeTransform,
			Handler: func(context.Context, *api.Context) (any, error) { return nil, boom }},
		{ID: "never", Type: api.StepTypeGenerateText, Template: "x.j2"},
	}}

	pc, err := eng.Execute(context.Background(), tmpl, validInput())
	require.ErrorIs(t, err, boom)
	assert.Nil(t, pc)
	assert.Contains(t, err.Error(), `step "explode"`)
	assert.Empty(t, gen.Calls())
	assert.Equal(t, []recordedStep{{api.StepTypeTransform, OutcomeError}}, rec.steps)
}

func TestExecute_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		step api.StepConfig
		want string
	}{
		{"missing template", api.StepConfig{ID: "s", Type: api.StepTypeGenerateText}, "template is required"},
		{"missing template file", api.StepConfig{ID: "s", Type: api.StepTypeGenerateJSON, Template: "absent.j2"}, "loading template absent.j2"},
		{"unknown handler", api.StepConfig{ID: "s", Type: api.StepTypeTransform, HandlerID: "ghost"}, "processor not found"},
		{"no handler", api.StepConfig{ID: "s", Type: api.StepTypeTransform}, "handler or handlerId is required"},
		{"unknown type", api.StepConfig{ID: "s", Type: "bogus"}, "unknown step type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newTestEngine(t, &apitest.Generator{})
			tmpl := &api.Template{ID: "t", BaseDir: t.TempDir(), Steps: []api.StepConfig{tt.step}}

			_, err := eng.Execute(context.Background(), tmpl, validInput())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), `step "s"`)
		})
	}
}

func TestExecute_OutputDecodedIntoTypedContext(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "c.j2", "content")
	gen := &apitest.Generator{DefaultJSON: map[string]any{
		"titles": []any{"One"}, "copywriting": "Body", "tags": []any{"tea"},
	}}
	eng, _ := newTestEngine(t, gen)

	tmpl := &api.Template{ID: "t", BaseDir: dir, Steps: []api.StepConfig{
		{ID: "c", Type: api.StepTypeGenerateJSON, Template: "c.j2", OutputKey: api.KeyContentData},
	}}

	pc, err := eng.Execute(context.Background(), tmpl, validInput())
	require.NoError(t, err)
	require.NotNil(t, pc.ContentData)
	assert.Equal(t, []string{"One"}, pc.ContentData.Titles)
	assert.Equal(t, "Body", pc.ContentData.Body())
}

func TestExecute_ReferenceImagesAttached(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "p.j2", "x")
	pngPath := filepath.Join(dir, "ref.png")
	writeTemplateFile(t, dir, "ref.png", "\x89PNG\r\n\x1a\nrest")

	gen := &apitest.Generator{}
	eng, _ := newTestEngine(t, gen)
	in := validInput()
	in.ReferenceImages = []string{pngPath, filepath.Join(dir, "missing.png")}

	tmpl := &api.Template{ID: "t", BaseDir: dir, Steps: []api.StepConfig{
		{ID: "p", Type: api.StepTypeGenerateText, Template: "p.j2"},
	}}

	_, err := eng.Execute(context.Background(), tmpl, in)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.Calls()[0].Refs, "unreadable reference is dropped")
}

func TestExecute_NilTemplate(t *testing.T) {
	eng, _ := newTestEngine(t, &apitest.Generator{})
	_, err := eng.Execute(context.Background(), nil, validInput())
	require.Error(t, err)
}
