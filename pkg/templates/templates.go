// Package templates defines the built-in templates. Their prompt files are
// embedded in the binary.
package templates

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/processors"
)

const (
	RedNoteStandard = "rednote-standard"
	WechatArticle   = "wechat-article"

	// KeyOutlineJSON holds the outline as indented JSON for the copy prompt.
	KeyOutlineJSON = "outlineJson"
	// KeyWechatImagePrompts holds the single header image prompt.
	KeyWechatImagePrompts = "wechatImagePrompts"
)

//go:embed rednote wechat
var files embed.FS

func generateImages(pc *api.Context) bool {
	return pc.GenerateImages
}

// Builtins returns fresh copies of the built-in templates.
func Builtins() []*api.Template {
	return []*api.Template{RedNote(), Wechat()}
}

// RedNote is the multi-page social post template: outline, parsed pages,
// per-page image prompts, optional images and the final copy.
func RedNote() *api.Template {
	return &api.Template{
		ID:          RedNoteStandard,
		Description: "Multi-page RedNote post with outline, image prompts and copy",
		Files:       sub("rednote"),
		Steps: []api.StepConfig{
			{
				ID:        "outline",
				Name:      "Generate outline",
				Type:      api.StepTypeGenerateText,
				Template:  "outline.j2",
				OutputKey: api.KeyOutlineRaw,
				InputMapping: map[string]string{
					"topic":       api.KeyTopic,
					"style":       api.KeyStyle,
					"image_count": api.KeyImageCount,
				},
			},
			{
				ID:        "parse_outline",
				Name:      "Parse outline",
				Type:      api.StepTypeTransform,
				HandlerID: processors.ParseOutlineText,
				OutputKey: api.KeyOutline,
			},
			{
				ID:        "image_prompts",
				Name:      "Build image prompts",
				Type:      api.StepTypeTransform,
				HandlerID: processors.GenerateImagePromptsFromOutline,
				OutputKey: api.KeyImagePrompts,
			},
			{
				ID:              "images",
				Name:            "Generate images",
				Type:            api.StepTypeGenerateImages,
				PromptSourceKey: api.KeyImagePrompts,
				Condition:       generateImages,
			},
			{
				ID:        "outline_json",
				Name:      "Serialise outline",
				Type:      api.StepTypeTransform,
				HandlerID: processors.StringifyOutline,
				OutputKey: KeyOutlineJSON,
			},
			{
				ID:        "content",
				Name:      "Write copy",
				Type:      api.StepTypeGenerateJSON,
				Template:  "content.j2",
				OutputKey: api.KeyContentData,
				InputMapping: map[string]string{
					"topic":   api.KeyTopic,
					"style":   api.KeyStyle,
					"outline": KeyOutlineJSON,
				},
			},
		},
	}
}

// Wechat is the long-form article template with one optional header image.
func Wechat() *api.Template {
	return &api.Template{
		ID:          WechatArticle,
		Description: "WeChat official account article with a header image",
		Files:       sub("wechat"),
		Steps: []api.StepConfig{
			{
				ID:        "article",
				Name:      "Write article",
				Type:      api.StepTypeGenerateJSON,
				Template:  "article.j2",
				OutputKey: api.KeyContentData,
			},
			{
				ID:        "header_prompt",
				Name:      "Extract header image prompt",
				Type:      api.StepTypeTransform,
				HandlerID: processors.ExtractWechatImagePrompt,
				OutputKey: KeyWechatImagePrompts,
			},
			{
				ID:              "header_image",
				Name:            "Generate header image",
				Type:            api.StepTypeGenerateImages,
				PromptSourceKey: KeyWechatImagePrompts,
				Condition:       generateImages,
			},
		},
	}
}

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(files, dir)
	if err != nil {
		panic(fmt.Sprintf("embedded template dir %s: %v", dir, err))
	}
	return fsys
}
