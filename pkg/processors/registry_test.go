package processors

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

func newContext(t *testing.T, tmpl *api.Template) *api.Context {
	t.Helper()
	return api.NewContext(api.Input{Topic: "Tea"}.WithDefaults(), tmpl)
}

func TestRegistry_Lookup(t *testing.T) {
	r := Builtins()

	for _, id := range []string{ParseOutlineText, GenerateImagePromptsFromOutline, StringifyOutline, ExtractWechatImagePrompt} {
		h, err := r.Lookup(id)
		require.NoError(t, err, id)
		assert.NotNil(t, h)
	}

	_, err := r.Lookup("nope")
	require.ErrorIs(t, err, ErrUnknown)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestRegistry_With(t *testing.T) {
	base := Builtins()
	extended := base.With("custom", func(context.Context, *api.Context) (any, error) { return "x", nil })

	assert.Contains(t, extended.IDs(), "custom")
	assert.NotContains(t, base.IDs(), "custom")
	assert.Equal(t, []string{
		ExtractWechatImagePrompt, GenerateImagePromptsFromOutline, ParseOutlineText, StringifyOutline,
	}, base.IDs())
}

func TestParseOutlineText(t *testing.T) {
	pc := newContext(t, nil)
	pc.OutlineRaw = "标题：A<page>标题：B"

	out, err := parseOutlineText(context.Background(), pc)
	require.NoError(t, err)
	pages, ok := out.([]api.OutlinePage)
	require.True(t, ok)
	require.Len(t, pages, 2)
	assert.Equal(t, "B", pages[1].Title)
}

func TestGenerateImagePrompts_FromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ImagePromptTemplate),
		[]byte("{{topic}}|{{page_type}}|{{page_content}}|{{ missing }}"), 0o600))

	pc := newContext(t, &api.Template{ID: "t", BaseDir: dir})
	pc.Outline = []api.OutlinePage{
		{PageNum: 1, Type: "cover", MainContent: "one"},
		{PageNum: 2, Type: "content", MainContent: "two"},
	}

	out, err := GenerateImagePrompts(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Tea|cover|one|{{ missing }}",
		"Tea|content|two|{{ missing }}",
	}, out)
}

func TestGenerateImagePrompts_OutlineJSON(t *testing.T) {
	files := fstest.MapFS{ImagePromptTemplate: {Data: []byte("{{outline_json}}")}}
	pc := newContext(t, &api.Template{ID: "t", Files: files})
	pc.Outline = []api.OutlinePage{{PageNum: 1, Type: "cover", Title: "T"}}

	out, err := GenerateImagePrompts(context.Background(), pc)
	require.NoError(t, err)
	prompts := out.([]string)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "\n  {\n    \"page_num\": 1,")
}

func TestGenerateImagePrompts_EmptyOutlineSkipsFile(t *testing.T) {
	pc := newContext(t, &api.Template{ID: "t", BaseDir: t.TempDir()})

	out, err := GenerateImagePrompts(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, []string{}, out)
}

func TestGenerateImagePrompts_MissingFile(t *testing.T) {
	pc := newContext(t, &api.Template{ID: "t", BaseDir: t.TempDir()})
	pc.Outline = []api.OutlinePage{{PageNum: 1}}

	_, err := GenerateImagePrompts(context.Background(), pc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ImagePromptTemplate)
}

func TestStringifyOutline(t *testing.T) {
	pc := newContext(t, nil)

	out, err := stringifyOutline(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	pc.Outline = []api.OutlinePage{{PageNum: 1, Title: "T"}}
	out, err = stringifyOutline(context.Background(), pc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"page_num":1,"type":"","title":"T","main_content":"","image_suggestion":""}]`, out.(string))
}

func TestExtractWechatImagePrompt(t *testing.T) {
	pc := newContext(t, nil)

	out, err := extractWechatImagePrompt(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, []string{}, out)

	pc.ContentData = &api.ContentData{ImagePrompt: "ink wash teapot"}
	out, err = extractWechatImagePrompt(context.Background(), pc)
	require.NoError(t, err)
	assert.Equal(t, []string{"ink wash teapot"}, out)
}
