package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
	"github.com/boyd4y/forgemcp-proteus/pkg/cache"
	"github.com/boyd4y/forgemcp-proteus/pkg/content"
	"github.com/boyd4y/forgemcp-proteus/pkg/gemini"
	"github.com/boyd4y/forgemcp-proteus/pkg/metrics"
	"github.com/boyd4y/forgemcp-proteus/pkg/processing"
	"github.com/boyd4y/forgemcp-proteus/pkg/templates"
)

var (
	templatesDir string

	flagInput     api.Input
	inputFile     string
	outputRoot    string
	cacheRedisURL string
	cacheTTL      time.Duration
	metricsFile   string
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagInput.Topic, "topic", "t", "", "topic to write about")
	f.StringVarP(&flagInput.Style, "style", "s", "", "writing style: Casual, Professional, Emotional or Educational")
	f.StringVar(&flagInput.Template, "template", "", "template id (default "+api.DefaultTemplate+")")
	f.IntVarP(&flagInput.ImageCount, "image-count", "n", 0, fmt.Sprintf("number of pages/images (%d-%d)", api.MinImageCount, api.MaxImageCount))
	f.BoolVar(&flagInput.GenerateImages, "generate-images", false, "generate images with the image model")
	f.StringVar(&flagInput.Model, "model", "", "text model (default "+api.DefaultTextModel+", or $GEMINI_MODEL)")
	f.StringVar(&flagInput.ImageModel, "image-model", "", "image model (default "+api.DefaultImageModel+")")
	f.StringVar(&flagInput.APIKey, "api-key", "", "Gemini API key (default $GEMINI_API_KEY)")
	f.StringSliceVar(&flagInput.ReferenceImages, "reference-image", nil, "reference image path, repeatable")
	f.StringVar(&inputFile, "input-file", "", "YAML or JSON file with input fields; flags override it")
	f.StringVar(&outputRoot, "output-dir", "", "root directory for generated images (default ./output)")
	f.StringVar(&cacheRedisURL, "cache-redis-url", "", "cache text and JSON generations in Redis, e.g. redis://localhost:6379/0")
	f.DurationVar(&cacheTTL, "cache-ttl", cache.DefaultTTL, "expiration for cached generations")
	f.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format on exit")
}

func runGenerate(cmd *cobra.Command, args []string) int {
	in, code := resolveInput(cmd, args)
	if code != 0 {
		return code
	}

	registry, err := loadTemplateRegistry()
	if err != nil {
		slog.Error("failed to load templates", "error", err)
		return exitLoadTemplatesFailed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec *metrics.Recorder
	if metricsFile != "" {
		rec = metrics.NewRecorder()
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	var engineOpts []processing.Option
	if rec != nil {
		engineOpts = append(engineOpts, processing.WithRecorder(rec))
	}
	if outputRoot != "" {
		engineOpts = append(engineOpts, processing.WithOutputRoot(outputRoot))
	}

	svc := content.NewService(registry, generatorFactory(rec, &closers), content.WithEngineOptions(engineOpts...))
	result := svc.Generate(ctx, in)

	if err := printJSON(os.Stdout, result); err != nil {
		slog.Error("failed to write result", "error", err)
		return exitGenerateFailed
	}

	if rec != nil {
		if err := rec.WriteToTextfile(metricsFile); err != nil {
			slog.Error("failed to write metrics", "path", metricsFile, "error", err)
			return exitWriteMetricsFailed
		}
	}

	if !result.OK {
		slog.Error("generation failed", "code", result.Code, "error", result.Error)
		return exitGenerateFailed
	}
	slog.Info("done", "summary", result.Summary)
	return 0
}

// resolveInput merges the input file, positional arguments and flags, in
// increasing precedence.
func resolveInput(cmd *cobra.Command, args []string) (api.Input, int) {
	var in api.Input
	if inputFile != "" {
		loaded, err := processing.LoadInputFile(inputFile)
		if err != nil {
			slog.Error("failed to load input file", "filename", inputFile, "error", err)
			return in, exitLoadInputFailed
		}
		in = loaded
	}

	if len(args) > 0 {
		in.Topic = args[0]
	}
	if len(args) > 1 {
		in.Style = args[1]
	}

	f := cmd.Flags()
	if f.Changed("topic") {
		in.Topic = flagInput.Topic
	}
	if f.Changed("style") {
		in.Style = flagInput.Style
	}
	if f.Changed("template") {
		in.Template = flagInput.Template
	}
	if f.Changed("image-count") {
		in.ImageCount = flagInput.ImageCount
	}
	if f.Changed("generate-images") {
		in.GenerateImages = flagInput.GenerateImages
	}
	if f.Changed("model") {
		in.Model = flagInput.Model
	}
	if f.Changed("image-model") {
		in.ImageModel = flagInput.ImageModel
	}
	if f.Changed("api-key") {
		in.APIKey = flagInput.APIKey
	}
	if f.Changed("reference-image") {
		in.ReferenceImages = flagInput.ReferenceImages
	}

	if in.Topic == "" {
		slog.Error("a topic is required, as the first argument or --topic")
		return in, exitInvalidArguments
	}
	return in, 0
}

func loadTemplateRegistry() (*processing.Registry, error) {
	return processing.LoadRegistry(processing.RegistryOptions{
		Builtins:     templates.Builtins(),
		TemplatesDir: templatesDir,
		ConfigPaths:  processing.DefaultConfigPaths(),
	})
}

// generatorFactory builds the Gemini client, instrumented and optionally
// cached. Closers collect resources to release after the run.
func generatorFactory(rec *metrics.Recorder, closers *[]io.Closer) content.GeneratorFactory {
	return func(ctx context.Context, in api.Input) (api.Generator, error) {
		cfg := gemini.ConfigFromEnv(in.APIKey)
		client, err := gemini.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logAuth(cfg)

		gen := rec.Instrument(client)
		if cacheRedisURL == "" {
			return gen, nil
		}

		cached, err := cache.NewFromURL(ctx, gen, cacheRedisURL, cache.WithTTL(cacheTTL))
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, cached)
		slog.Info("caching generations", "ttl", cacheTTL)
		return cached, nil
	}
}

func logAuth(cfg gemini.Config) {
	switch cfg.Mode() {
	case gemini.AuthAPIKey:
		slog.Info("auth mode", "mode", cfg.Mode(), "key", gemini.MaskSecret(cfg.APIKey))
	case gemini.AuthVertex:
		slog.Info("auth mode", "mode", cfg.Mode(), "credentials", cfg.CredentialsFile, "project", cfg.Project, "location", cfg.Location)
	default:
		slog.Info("auth mode", "mode", cfg.Mode(), "source", "application default credentials or environment")
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
