// Package observability provides tracing and metrics for the notes
// pipeline.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the name of the tracer for pipeline operations.
	TracerName = "minute.pipeline"
)

// Span attribute keys
const (
	AttrRunID        = "run_id"
	AttrStage        = "stage"
	AttrChunk        = "chunk"
	AttrTotalChunks  = "total_chunks"
	AttrProvider     = "provider"
	AttrModel        = "model"
	AttrInputTokens  = "input_tokens"
	AttrOutputTokens = "output_tokens"
	AttrErrorCode    = "error_code"
	AttrRetryable    = "retryable"
)

// Span names
const (
	SpanRun     = "pipeline.run"
	SpanLLMCall = "pipeline.llm_call"
)

// Tracer provides distributed tracing for pipeline runs.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a pipeline tracer.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// StartRunSpan starts the root span for one pipeline run.
func (t *Tracer) StartRunSpan(ctx context.Context, runID string, totalChunks int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanRun,
		trace.WithAttributes(
			attribute.String(AttrRunID, runID),
			attribute.Int(AttrTotalChunks, totalChunks),
		),
	)
}

// StartStageSpan starts a span for one pipeline stage.
func (t *Tracer) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("pipeline.stage.%s", stage),
		trace.WithAttributes(
			attribute.String(AttrStage, stage),
		),
	)
}

// StartLLMSpan starts a span for one model call.
func (t *Tracer) StartLLMSpan(ctx context.Context, model string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanLLMCall,
		trace.WithAttributes(
			attribute.String(AttrModel, model),
		),
	)
}

// RecordFailure marks a span failed with the classified error code.
func RecordFailure(span trace.Span, err error, code string, retryable bool) {
	span.RecordError(err)
	span.SetAttributes(
		attribute.String(AttrErrorCode, code),
		attribute.Bool(AttrRetryable, retryable),
	)
	span.SetStatus(codes.Error, err.Error())
}
