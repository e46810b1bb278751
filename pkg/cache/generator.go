// Package cache memoises text and JSON generations in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

const (
	DefaultPrefix = "proteus:gen:"
	DefaultTTL    = 24 * time.Hour
)

// Generator wraps an api.Generator and serves repeated text and JSON
// requests from Redis. Image requests always reach the inner generator.
type Generator struct {
	inner  api.Generator
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ api.Generator = (*Generator)(nil)

type Option func(*Generator)

// WithTTL sets the expiration for cached responses. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(g *Generator) {
		g.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached responses.
func WithPrefix(prefix string) Option {
	return func(g *Generator) {
		g.prefix = prefix
	}
}

// NewFromClient wraps inner with a cache on an existing client.
func NewFromClient(inner api.Generator, client backend.UniversalClient, opts ...Option) *Generator {
	g := &Generator{
		inner:  inner,
		client: client,
		prefix: DefaultPrefix,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewFromURL parses a redis:// URL and verifies the server is reachable.
func NewFromURL(ctx context.Context, inner api.Generator, url string, opts ...Option) (*Generator, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := backend.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewFromClient(inner, client, opts...), nil
}

// Close releases the Redis connection.
func (g *Generator) Close() error {
	return g.client.Close()
}

func (g *Generator) key(kind, model, prompt string, refs []api.ReferenceImage) string {
	h := sha256.New()
	for _, part := range []string{kind, model, prompt} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	for _, ref := range refs {
		sum := sha256.Sum256(ref.Data)
		h.Write([]byte(ref.MIMEType))
		h.Write(sum[:])
	}
	return g.prefix + kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// lookup returns the cached payload. Cache errors are logged and treated as
// a miss.
func (g *Generator) lookup(ctx context.Context, key string) ([]byte, bool) {
	val, err := g.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, backend.Nil) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	slog.Debug("cache hit", "key", key)
	return val, true
}

func (g *Generator) store(ctx context.Context, key string, data []byte) {
	if err := g.client.Set(ctx, key, data, g.ttl).Err(); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

func (g *Generator) GenerateText(ctx context.Context, model, prompt string, refs []api.ReferenceImage) (string, error) {
	key := g.key("text", model, prompt, refs)
	if val, ok := g.lookup(ctx, key); ok {
		return string(val), nil
	}

	text, err := g.inner.GenerateText(ctx, model, prompt, refs)
	if err != nil {
		return "", err
	}
	g.store(ctx, key, []byte(text))
	return text, nil
}

func (g *Generator) GenerateJSON(ctx context.Context, model, prompt string, refs []api.ReferenceImage) (any, error) {
	key := g.key("json", model, prompt, refs)
	if val, ok := g.lookup(ctx, key); ok {
		var v any
		if err := json.Unmarshal(val, &v); err == nil {
			return v, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", key)
	}

	v, err := g.inner.GenerateJSON(ctx, model, prompt, refs)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	g.store(ctx, key, data)
	return v, nil
}

func (g *Generator) GenerateImage(ctx context.Context, req api.ImageRequest) (string, error) {
	return g.inner.GenerateImage(ctx, req)
}
