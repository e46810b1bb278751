package api

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Well-known context keys.
const (
	KeyTopic           = "topic"
	KeyStyle           = "style"
	KeyImageCount      = "imageCount"
	KeyModel           = "model"
	KeyImageModel      = "imageModel"
	KeyTemplate        = "template"
	KeyGenerateImages  = "generateImages"
	KeyReferenceImages = "referenceImages"
	KeyTemplateBaseDir = "templateBaseDir"
	KeyOutlineRaw      = "outlineRaw"
	KeyOutline         = "outline"
	KeyImagePrompts    = "imagePrompts"
	KeyContentData     = "contentData"
	KeyGeneratedImages = "generatedImages"
)

// inputKeys are always present in a context.
var inputKeys = []string{
	KeyTopic, KeyStyle, KeyImageCount, KeyModel, KeyImageModel,
	KeyTemplate, KeyGenerateImages, KeyReferenceImages, KeyTemplateBaseDir,
}

// OutlinePage is one page of a parsed outline.
type OutlinePage struct {
	PageNum         int    `json:"page_num" mapstructure:"page_num"`
	Type            string `json:"type" mapstructure:"type"`
	Title           string `json:"title" mapstructure:"title"`
	MainContent     string `json:"main_content" mapstructure:"main_content"`
	ImageSuggestion string `json:"image_suggestion" mapstructure:"image_suggestion"`
}

// ContentData is the final copy produced by a content step. Fields the model
// returns beyond the known ones are kept in Extra.
type ContentData struct {
	Titles      []string       `mapstructure:"titles"`
	Copywriting string         `mapstructure:"copywriting"`
	Content     string         `mapstructure:"content"`
	Tags        []string       `mapstructure:"tags"`
	ImagePrompt string         `mapstructure:"image_prompt"`
	Extra       map[string]any `mapstructure:",remain"`
}

// Body returns the copywriting, falling back to content.
func (c *ContentData) Body() string {
	if c.Copywriting != "" {
		return c.Copywriting
	}
	return c.Content
}

// MarshalJSON flattens Extra next to the known fields.
func (c ContentData) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+5)
	maps.Copy(m, c.Extra)
	if c.Titles != nil {
		m["titles"] = c.Titles
	}
	if c.Copywriting != "" {
		m["copywriting"] = c.Copywriting
	}
	if c.Content != "" {
		m["content"] = c.Content
	}
	if c.Tags != nil {
		m["tags"] = c.Tags
	}
	if c.ImagePrompt != "" {
		m["image_prompt"] = c.ImagePrompt
	}
	return json.Marshal(m)
}

// Context is the accumulator shared by all steps of one run. Known keys map
// to typed fields; any other key lives in Extra.
type Context struct {
	Input
	TemplateBaseDir string

	OutlineRaw      string
	Outline         []OutlinePage
	ImagePrompts    []string
	ContentData     *ContentData
	GeneratedImages []string

	Extra map[string]any

	written  map[string]bool
	template *Template
}

// NewContext seeds a context from validated input and the template being run.
func NewContext(in Input, tmpl *Template) *Context {
	c := &Context{
		Input:    in,
		Extra:    make(map[string]any),
		written:  make(map[string]bool),
		template: tmpl,
	}
	if tmpl != nil {
		c.TemplateBaseDir = tmpl.BaseDir
	}
	return c
}

// ReadTemplateFile reads a file relative to the running template.
func (c *Context) ReadTemplateFile(name string) ([]byte, error) {
	if c.template == nil {
		return (&Template{BaseDir: c.TemplateBaseDir}).ReadFile(name)
	}
	return c.template.ReadFile(name)
}

func (c *Context) field(key string) any {
	switch key {
	case KeyTopic:
		return &c.Topic
	case KeyStyle:
		return &c.Style
	case KeyImageCount:
		return &c.ImageCount
	case KeyModel:
		return &c.Model
	case KeyImageModel:
		return &c.ImageModel
	case KeyTemplate:
		return &c.Input.Template
	case KeyGenerateImages:
		return &c.GenerateImages
	case KeyReferenceImages:
		return &c.ReferenceImages
	case KeyTemplateBaseDir:
		return &c.TemplateBaseDir
	case KeyOutlineRaw:
		return &c.OutlineRaw
	case KeyOutline:
		return &c.Outline
	case KeyImagePrompts:
		return &c.ImagePrompts
	case KeyContentData:
		return &c.ContentData
	case KeyGeneratedImages:
		return &c.GeneratedImages
	}
	return nil
}

// Has reports whether key holds a value.
func (c *Context) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Get returns the value stored under key. Output keys are present only after
// a step wrote them.
func (c *Context) Get(key string) (any, bool) {
	ptr := c.field(key)
	if ptr == nil {
		v, ok := c.Extra[key]
		return v, ok
	}
	if !slices.Contains(inputKeys, key) && !c.written[key] {
		return nil, false
	}
	return reflect.ValueOf(ptr).Elem().Interface(), true
}

// Set stores value under key. Values for known keys are decoded into their
// typed field, so JSON-shaped data (maps, []any) is accepted. A nil value
// unsets the key.
func (c *Context) Set(key string, value any) error {
	ptr := c.field(key)
	if ptr == nil {
		if value == nil {
			delete(c.Extra, key)
		} else {
			c.Extra[key] = value
		}
		return nil
	}

	target := reflect.ValueOf(ptr).Elem()
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		delete(c.written, key)
		return nil
	}

	if err := decodeValue(value, ptr); err != nil {
		return fmt.Errorf("context key %q: %w", key, err)
	}
	c.written[key] = true
	return nil
}

// Vars returns every present key as a variable set for prompt rendering.
// The API key is never exposed.
func (c *Context) Vars() map[string]any {
	vars := make(map[string]any, len(c.Extra)+len(inputKeys)+5)
	maps.Copy(vars, c.Extra)
	for _, key := range c.knownKeys() {
		if v, ok := c.Get(key); ok {
			vars[key] = v
		}
	}
	return vars
}

// Keys lists present keys in sorted order.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.Extra)+len(inputKeys))
	for k := range c.Vars() {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Context) knownKeys() []string {
	return append(slices.Clone(inputKeys),
		KeyOutlineRaw, KeyOutline, KeyImagePrompts, KeyContentData, KeyGeneratedImages)
}

func decodeValue(value, ptr any) error {
	target := reflect.ValueOf(ptr).Elem()
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(target.Type()) {
		target.Set(v)
		return nil
	}
	if target.Kind() == reflect.Pointer && v.Type().AssignableTo(target.Type().Elem()) {
		p := reflect.New(target.Type().Elem())
		p.Elem().Set(v)
		target.Set(p)
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           ptr,
		DecodeHook:       mapstructure.DecodeHookFuncKind(rejectObjectAsList),
		WeaklyTypedInput: true,
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("decoding %T: %w", value, err)
	}
	return nil
}

// rejectObjectAsList stops weak typing from wrapping a JSON object into a
// one-element list of zero values.
func rejectObjectAsList(from, to reflect.Kind, data any) (any, error) {
	if from == reflect.Map && (to == reflect.Slice || to == reflect.Array) {
		return nil, fmt.Errorf("expected a list, got an object")
	}
	return data, nil
}

// String lists present keys, for logs.
func (c *Context) String() string {
	return "Context{" + strings.Join(c.Keys(), ", ") + "}"
}
