// Package gemini adapts the Google Gen AI SDK to api.Generator.
package gemini

import (
	"context"
	"fmt"
	"iter"
	"os"
	"time"

	"google.golang.org/genai"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvAPIKey          = "GEMINI_API_KEY"
	EnvCredentials     = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvProject         = "GOOGLE_CLOUD_PROJECT"
	EnvLocation        = "GOOGLE_CLOUD_LOCATION"
	DefaultLocation    = "global"
	vertexAPIVersion   = "v1"
	maskVisibleRunes   = 4
	maskMinSecretRunes = 8
)

// AuthMode names how the client authenticates.
type AuthMode string

const (
	AuthAPIKey AuthMode = "api-key"
	AuthVertex AuthMode = "vertex"
	AuthAuto   AuthMode = "auto"
)

// Config selects the backend and credentials.
type Config struct {
	APIKey          string
	CredentialsFile string
	Project         string
	Location        string
}

// ConfigFromEnv builds a Config from an explicit key and the environment.
// An empty apiKey falls back to GEMINI_API_KEY.
func ConfigFromEnv(apiKey string) Config {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	location := os.Getenv(EnvLocation)
	if location == "" {
		location = DefaultLocation
	}
	return Config{
		APIKey:          apiKey,
		CredentialsFile: os.Getenv(EnvCredentials),
		Project:         os.Getenv(EnvProject),
		Location:        location,
	}
}

// Mode reports which authentication path NewClient takes.
func (c Config) Mode() AuthMode {
	switch {
	case c.APIKey != "":
		return AuthAPIKey
	case c.CredentialsFile != "":
		return AuthVertex
	default:
		return AuthAuto
	}
}

func (c Config) clientConfig() *genai.ClientConfig {
	switch c.Mode() {
	case AuthAPIKey:
		return &genai.ClientConfig{APIKey: c.APIKey, Backend: genai.BackendGeminiAPI}
	case AuthVertex:
		location := c.Location
		if location == "" {
			location = DefaultLocation
		}
		return &genai.ClientConfig{
			Backend:     genai.BackendVertexAI,
			Project:     c.Project,
			Location:    location,
			HTTPOptions: genai.HTTPOptions{APIVersion: vertexAPIVersion},
		}
	default:
		return &genai.ClientConfig{}
	}
}

// MaskSecret shows the first and last four characters of a secret.
func MaskSecret(s string) string {
	r := []rune(s)
	if len(r) < maskMinSecretRunes {
		return "****"
	}
	return string(r[:maskVisibleRunes]) + "..." + string(r[len(r)-maskVisibleRunes:])
}

// modelsAPI is the part of *genai.Models the client uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	All(ctx context.Context) iter.Seq2[*genai.Model, error]
}

// Client implements api.Generator on top of the Gen AI SDK.
type Client struct {
	models modelsAPI
	mode   AuthMode
	now    func() time.Time
}

var _ api.Generator = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the time source used for image file names.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a long-lived client for one invocation.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, cfg.clientConfig())
	if err != nil {
		return nil, fmt.Errorf("creating genai client (%s): %w", cfg.Mode(), err)
	}
	c := newClient(gc.Models, opts...)
	c.mode = cfg.Mode()
	return c, nil
}

func newClient(models modelsAPI, opts ...Option) *Client {
	c := &Client{models: models, mode: AuthAuto, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode reports the authentication path the client was built with.
func (c *Client) Mode() AuthMode {
	return c.mode
}
