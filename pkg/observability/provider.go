package observability

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/otherjamesbrown/minute-cli/pkg/llm"
)

// InstrumentProvider wraps a model provider so every request gets an LLM
// span plus call latency and token metrics. A nil metrics set disables the
// metrics side but spans are still emitted.
func InstrumentProvider(p llm.Provider, tracer *Tracer, metrics *PipelineMetrics) llm.Provider {
	return &instrumentedProvider{inner: p, tracer: tracer, metrics: metrics}
}

type instrumentedProvider struct {
	inner   llm.Provider
	tracer  *Tracer
	metrics *PipelineMetrics
}

func (ip *instrumentedProvider) Name() string { return ip.inner.Name() }

func (ip *instrumentedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	sctx, span := ip.tracer.StartLLMSpan(ctx, ip.inner.Name())
	defer span.End()
	span.SetAttributes(attribute.String(AttrStage, req.Stage))

	start := time.Now()
	resp, err := ip.inner.Complete(sctx, req)
	ip.observe(err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int(AttrInputTokens, resp.TokensUsed.Prompt),
		attribute.Int(AttrOutputTokens, resp.TokensUsed.Completion),
	)
	if ip.metrics != nil {
		provider, model := splitProviderName(ip.inner.Name())
		ip.metrics.ObserveModelTokens(provider, model, resp.TokensUsed.Prompt, resp.TokensUsed.Completion)
	}
	return resp, nil
}

func (ip *instrumentedProvider) CompleteStructured(ctx context.Context, req llm.CompletionRequest, target interface{}) error {
	sctx, span := ip.tracer.StartLLMSpan(ctx, ip.inner.Name())
	defer span.End()
	span.SetAttributes(attribute.String(AttrStage, req.Stage))

	start := time.Now()
	err := ip.inner.CompleteStructured(sctx, req, target)
	ip.observe(err, time.Since(start))
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (ip *instrumentedProvider) observe(err error, d time.Duration) {
	if ip.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	provider, model := splitProviderName(ip.inner.Name())
	ip.metrics.ObserveModelCall(provider, model, status, d)
}

// splitProviderName splits a "provider/model" name into its labels.
func splitProviderName(name string) (provider, model string) {
	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return name, ""
}
