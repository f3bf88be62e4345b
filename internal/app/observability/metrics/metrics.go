package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	PlanSavesTotal       metric.Int64Counter
	PlanSaveDuration     metric.Float64Histogram
	DraftOperationsTotal metric.Int64Counter
	SuggestionsTotal     metric.Int64Counter
	SuggestionDuration   metric.Float64Histogram
	ImageUploadsTotal    metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Instruments created before the provider is installed are forwarded to it later.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("backpackor")
		m := &AppMetrics{}

		m.PlanSavesTotal = must(meter.Int64Counter(
			"planner_plan_saves_total",
			metric.WithDescription("Trip plan confirmations by outcome"),
			metric.WithUnit("{save}"),
		))
		m.PlanSaveDuration = must(meter.Float64Histogram(
			"planner_plan_save_duration_seconds",
			metric.WithDescription("Duration of the draft to database reconciliation"),
			metric.WithUnit("s"),
		))
		m.DraftOperationsTotal = must(meter.Int64Counter(
			"planner_draft_operations_total",
			metric.WithDescription("Editor operations applied to session drafts"),
			metric.WithUnit("{operation}"),
		))
		m.SuggestionsTotal = must(meter.Int64Counter(
			"planner_suggestions_total",
			metric.WithDescription("AI itinerary suggestions by status"),
			metric.WithUnit("{request}"),
		))
		m.SuggestionDuration = must(meter.Float64Histogram(
			"planner_suggestion_duration_seconds",
			metric.WithDescription("Latency of the generative model call"),
			metric.WithUnit("s"),
		))
		m.ImageUploadsTotal = must(meter.Int64Counter(
			"storage_image_uploads_total",
			metric.WithDescription("Image uploads to the bucket by kind and status"),
			metric.WithUnit("{upload}"),
		))

		appMetrics = m
	})
}

func must[T any](instrument T, err error) T {
	if err != nil {
		panic("metrics: " + err.Error())
	}
	return instrument
}

// Get returns the process metrics, creating them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func RecordPlanSave(ctx context.Context, outcome string, elapsed time.Duration) {
	m := Get()
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.PlanSavesTotal.Add(ctx, 1, attrs)
	m.PlanSaveDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func RecordDraftOperation(ctx context.Context, operation, outcome string) {
	Get().DraftOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordSuggestion(ctx context.Context, status string, elapsed time.Duration) {
	m := Get()
	m.SuggestionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.SuggestionDuration.Record(ctx, elapsed.Seconds())
}

func RecordImageUpload(ctx context.Context, kind, status string) {
	Get().ImageUploadsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}
