package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/otherjamesbrown/minute-cli/config"
	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
	"github.com/otherjamesbrown/minute-cli/pkg/llm"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
	"github.com/otherjamesbrown/minute-cli/pkg/observability"
	"github.com/otherjamesbrown/minute-cli/pkg/progress"
	"github.com/otherjamesbrown/minute-cli/pkg/transcript"
)

// PipelineConfig configures one pipeline instance.
type PipelineConfig struct {
	Chunking    transcript.ChunkerConfig
	GeneratePRD bool
}

// PipelineConfigFromCLI derives a pipeline configuration from the CLI
// configuration.
func PipelineConfigFromCLI(cfg *config.CLIConfig) PipelineConfig {
	return PipelineConfig{
		Chunking: transcript.ChunkerConfig{
			ChunkSize:              cfg.Chunking.ChunkSize,
			OverlapSize:            cfg.Chunking.OverlapSize,
			PreserveSpeakerContext: cfg.Chunking.PreserveSpeakers(),
		},
		GeneratePRD: cfg.PRDEnabled(),
	}
}

// Result is the outcome of one successful pipeline run.
type Result struct {
	RunID            string
	Output           FinalOutput
	TotalChunks      int
	PRDGenerated     bool
	ChangesApplied   []string
	ProcessingTimeMs int64
}

// Pipeline orchestrates the full transcript-to-notes run: chunking,
// extraction, refinement, generation, editing. Stages run strictly in
// order; the first failure terminates the run with a classified error
// and no partial output.
type Pipeline struct {
	cfg      PipelineConfig
	provider llm.Provider
	reporter progress.Reporter
	log      logging.Logger
	tracer   *observability.Tracer
	metrics  *observability.PipelineMetrics
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithMetrics attaches Prometheus metrics to the pipeline.
func WithMetrics(m *observability.PipelineMetrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline builds a pipeline around a model provider and a progress
// reporter.
func NewPipeline(cfg PipelineConfig, provider llm.Provider, reporter progress.Reporter, log logging.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		provider: provider,
		reporter: reporter,
		log:      log,
		tracer:   observability.NewTracer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.provider = observability.InstrumentProvider(p.provider, p.tracer, p.metrics)
	return p
}

// Run processes a raw transcript into a FinalOutput. The transcript is
// normalized and validated before any model call.
func (p *Pipeline) Run(ctx context.Context, rawTranscript string) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	ctx = context.WithValue(ctx, logging.RunIDKey, runID)
	log := p.log.WithContext(ctx)

	log.Info("pipeline starting",
		logging.F("provider", p.provider.Name()),
		logging.F("transcript_chars", len(rawTranscript)))

	result, err := p.run(ctx, runID, rawTranscript, log)
	elapsed := time.Since(start)
	if err != nil {
		classified := pkgerrors.Classify(err, p.reporter.CurrentStage())
		p.reporter.Fail(classified.Message)
		if p.metrics != nil {
			p.metrics.ObserveRun("error", elapsed)
			p.metrics.ObserveError(classified.Stage, string(classified.Code))
		}
		log.Error("pipeline failed",
			logging.Err(classified),
			logging.F("stage", classified.Stage),
			logging.F("code", string(classified.Code)))
		return nil, classified
	}

	result.ProcessingTimeMs = elapsed.Milliseconds()
	if p.metrics != nil {
		p.metrics.ObserveRun("ok", elapsed)
	}
	log.Info("pipeline complete",
		logging.F("chunks", result.TotalChunks),
		logging.F("duration_ms", result.ProcessingTimeMs))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, runID, rawTranscript string, log logging.Logger) (*Result, error) {
	ctx, runSpan := p.tracer.StartRunSpan(ctx, runID, 0)
	defer runSpan.End()

	// Stage 1: chunking. Purely local, no model calls.
	chunks, metadata, err := p.stageChunking(ctx, rawTranscript, log)
	if err != nil {
		return nil, err
	}

	// Stage 2: extraction.
	p.setStage(pkgerrors.StageExtraction, fmt.Sprintf("Extracting from %d chunk(s)", len(chunks)))
	extracted, err := runStage(p, ctx, pkgerrors.StageExtraction, func(ctx context.Context) (*ExtractionResult, error) {
		return NewExtractor(p.provider, p.reporter, p.log).ExtractFromChunks(ctx, chunks, runID)
	})
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.ChunksProcessed.Add(float64(extracted.TotalChunks))
	}
	p.reporter.Succeed(fmt.Sprintf("Extracted from %d chunk(s)", extracted.TotalChunks))

	// Stage 3: refinement.
	p.setStage(pkgerrors.StageRefinement, "Consolidating meeting record")
	refined, err := runStage(p, ctx, pkgerrors.StageRefinement, func(ctx context.Context) (*RefinedMeeting, error) {
		return NewRefiner(p.provider, p.log).Refine(ctx, extracted.Extractions, metadata.Attendees, runID)
	})
	if err != nil {
		return nil, err
	}
	p.reporter.Succeed(fmt.Sprintf("Consolidated %d decision(s), %d action item(s)",
		len(refined.Decisions), len(refined.ActionItems)))

	// Stage 4: generation.
	p.setStage(pkgerrors.StageGeneration, "Generating documents")
	generated, err := runStage(p, ctx, pkgerrors.StageGeneration, func(ctx context.Context) (*GenerateResult, error) {
		return NewGenerator(p.provider, p.log).Generate(ctx, refined, GenerateOptions{
			GeneratePRD: p.cfg.GeneratePRD,
			Metadata:    metadata,
		}, runID)
	})
	if err != nil {
		return nil, err
	}
	if generated.PRDGenerated {
		p.reporter.Succeed("Generated meeting notes and PRD")
	} else {
		p.reporter.Succeed("Generated meeting notes")
	}

	// Stage 5: editing.
	p.setStage(pkgerrors.StageEditing, "Polishing documents")
	edited, err := runStage(p, ctx, pkgerrors.StageEditing, func(ctx context.Context) (*EditResult, error) {
		return NewEditor(p.provider, p.log).Edit(ctx, generated.Notes, generated.PRD, runID)
	})
	if err != nil {
		return nil, err
	}
	p.reporter.Succeed(fmt.Sprintf("Polished documents (%d change(s))", len(edited.ChangesApplied)))

	return &Result{
		RunID:          runID,
		Output:         edited.Output,
		TotalChunks:    extracted.TotalChunks,
		PRDGenerated:   generated.PRDGenerated,
		ChangesApplied: edited.ChangesApplied,
	}, nil
}

// stageChunking normalizes, validates, and chunks the transcript.
func (p *Pipeline) stageChunking(ctx context.Context, rawTranscript string, log logging.Logger) ([]transcript.Chunk, transcript.Metadata, error) {
	p.setStage(pkgerrors.StageChunking, "Preparing transcript")
	stageStart := time.Now()
	_, span := p.tracer.StartStageSpan(ctx, pkgerrors.StageChunking)
	defer span.End()

	normalized := transcript.Normalize(rawTranscript)
	if err := transcript.Validate(normalized); err != nil {
		classified := pkgerrors.Classify(err, pkgerrors.StageChunking)
		observability.RecordFailure(span, classified, string(classified.Code),
			pkgerrors.IsRetryable(classified.Code))
		return nil, transcript.Metadata{}, err
	}

	chunker := transcript.NewChunker(p.cfg.Chunking)
	chunks := chunker.Split(normalized)
	metadata := transcript.ExtractMetadata(normalized)

	if p.metrics != nil {
		p.metrics.TranscriptsTokens.Observe(float64(transcript.EstimateTokens(normalized)))
		p.metrics.ObserveStage(pkgerrors.StageChunking, time.Since(stageStart))
	}
	log.Debug("transcript chunked",
		logging.F("chunks", len(chunks)),
		logging.F("tokens", transcript.EstimateTokens(normalized)),
		logging.F("attendees", len(metadata.Attendees)))
	p.reporter.Succeed(fmt.Sprintf("Prepared transcript (%d chunk(s))", len(chunks)))
	return chunks, metadata, nil
}

// runStage runs fn under a stage span, recording duration and failure
// metrics.
func runStage[T any](p *Pipeline, ctx context.Context, stage string, fn func(context.Context) (*T, error)) (*T, error) {
	stageStart := time.Now()
	sctx, span := p.tracer.StartStageSpan(ctx, stage)
	defer span.End()

	out, err := fn(sctx)
	if err != nil {
		classified := pkgerrors.Classify(err, stage)
		observability.RecordFailure(span, classified, string(classified.Code),
			pkgerrors.IsRetryable(classified.Code))
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.ObserveStage(stage, time.Since(stageStart))
	}
	return out, nil
}

func (p *Pipeline) setStage(stage, msg string) {
	p.reporter.SetStage(stage)
	p.reporter.Start(msg)
}
