// Package metrics records pipeline and generation metrics with Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// LLMBuckets spans generation latencies from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Generation capabilities.
const (
	CapabilityText  = "text"
	CapabilityJSON  = "json"
	CapabilityImage = "image"
)

// Recorder owns a private registry so several runs in one process do not
// collide. A nil *Recorder ignores every observation.
type Recorder struct {
	registry *prometheus.Registry

	StepsTotal        *prometheus.CounterVec
	StepDuration      *prometheus.HistogramVec
	ImagesTotal       *prometheus.CounterVec
	GenerationsTotal  *prometheus.CounterVec
	GenerationLatency *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		StepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proteus_step_executions_total",
				Help: "Step executions",
			},
			[]string{"type", "outcome"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proteus_step_duration_seconds",
				Help:    "Step duration",
				Buckets: LLMBuckets,
			},
			[]string{"type"},
		),
		ImagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proteus_images_total",
				Help: "Image items",
			},
			[]string{"outcome"},
		),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proteus_generations_total",
				Help: "Generation calls",
			},
			[]string{"capability", "model", "status"},
		),
		GenerationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proteus_generation_latency_seconds",
				Help:    "Generation latency",
				Buckets: LLMBuckets,
			},
			[]string{"capability", "model"},
		),
	}
	r.registry.MustRegister(r.StepsTotal, r.StepDuration, r.ImagesTotal, r.GenerationsTotal, r.GenerationLatency)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStep counts a step outcome. Skipped steps carry no duration.
func (r *Recorder) ObserveStep(stepType, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.StepsTotal.WithLabelValues(stepType, outcome).Inc()
	if d > 0 {
		r.StepDuration.WithLabelValues(stepType).Observe(d.Seconds())
	}
}

// ObserveImage counts one image item.
func (r *Recorder) ObserveImage(outcome string) {
	if r == nil {
		return
	}
	r.ImagesTotal.WithLabelValues(outcome).Inc()
}

func (r *Recorder) observeGeneration(capability, model string, start time.Time, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.GenerationsTotal.WithLabelValues(capability, model, status).Inc()
	r.GenerationLatency.WithLabelValues(capability, model).Observe(time.Since(start).Seconds())
}

// WriteToTextfile writes all metrics in the node exporter textfile format.
func (r *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Instrument wraps g so every call is counted and timed.
func (r *Recorder) Instrument(g api.Generator) api.Generator {
	if r == nil {
		return g
	}
	return &instrumented{inner: g, rec: r}
}

type instrumented struct {
	inner api.Generator
	rec   *Recorder
}

func (i *instrumented) GenerateText(ctx context.Context, model, prompt string, refs []api.ReferenceImage) (string, error) {
	start := time.Now()
	out, err := i.inner.GenerateText(ctx, model, prompt, refs)
	i.rec.observeGeneration(CapabilityText, model, start, err)
	return out, err
}

func (i *instrumented) GenerateJSON(ctx context.Context, model, prompt string, refs []api.ReferenceImage) (any, error) {
	start := time.Now()
	out, err := i.inner.GenerateJSON(ctx, model, prompt, refs)
	i.rec.observeGeneration(CapabilityJSON, model, start, err)
	return out, err
}

func (i *instrumented) GenerateImage(ctx context.Context, req api.ImageRequest) (string, error) {
	start := time.Now()
	out, err := i.inner.GenerateImage(ctx, req)
	i.rec.observeGeneration(CapabilityImage, req.Model, start, err)
	return out, err
}
