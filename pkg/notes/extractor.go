package notes

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
	"github.com/otherjamesbrown/minute-cli/pkg/llm"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
	"github.com/otherjamesbrown/minute-cli/pkg/progress"
	"github.com/otherjamesbrown/minute-cli/pkg/transcript"
)

// interChunkDelay spaces out extraction requests to reduce burst load on
// the upstream service.
const interChunkDelay = 100 * time.Millisecond

// genericCarry stands in when a model returns an empty continuity summary
// mid-run. The next chunk still gets a non-empty carry.
const genericCarry = "The meeting discussion continues from the previous segment."

// Extractor runs the per-chunk extraction stage. Chunks are processed
// strictly in order: each request carries the continuity summary produced
// by the previous one.
type Extractor struct {
	provider llm.Provider
	prompts  *PromptTemplates
	reporter progress.Reporter
	log      logging.Logger
	delay    time.Duration
}

// NewExtractor returns an extractor using the default prompts.
func NewExtractor(provider llm.Provider, reporter progress.Reporter, log logging.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		prompts:  DefaultPromptTemplates(),
		reporter: reporter,
		log:      log,
		delay:    interChunkDelay,
	}
}

// ExtractFromChunks extracts structured fragments from every chunk, in
// index order. The first failing chunk aborts the run; accumulated
// extractions from prior chunks are discarded with it.
func (e *Extractor) ExtractFromChunks(ctx context.Context, chunks []transcript.Chunk, traceID string) (*ExtractionResult, error) {
	start := time.Now()
	total := len(chunks)
	extractions := make([]ChunkExtraction, 0, total)

	carry := ""
	for i, chunk := range chunks {
		e.reporter.UpdateWithCount("Extracting from transcript", i+1, total)

		extraction, err := e.extractChunk(ctx, chunk, carry, i+1, total, traceID)
		if err != nil {
			classified := pkgerrors.Classify(err, pkgerrors.StageExtraction)
			return nil, classified.WithChunk(i+1, total)
		}

		e.log.Debug("chunk extracted",
			logging.F("chunk", i+1),
			logging.F("total", total),
			logging.F("decisions", len(extraction.Decisions)),
			logging.F("action_items", len(extraction.ActionItems)),
			logging.F("deliverables", len(extraction.Deliverables)))

		if extraction.SummaryForNextChunk == "" && i < total-1 {
			e.log.Warn("model returned empty continuity summary", logging.F("chunk", i+1))
			extraction.SummaryForNextChunk = genericCarry
		}
		carry = extraction.SummaryForNextChunk
		extractions = append(extractions, *extraction)

		if i < total-1 && e.delay > 0 {
			select {
			case <-time.After(e.delay):
			case <-ctx.Done():
				classified := pkgerrors.Classify(ctx.Err(), pkgerrors.StageExtraction)
				return nil, classified.WithChunk(i+2, total)
			}
		}
	}

	return &ExtractionResult{
		Extractions:      extractions,
		TotalChunks:      total,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (e *Extractor) extractChunk(ctx context.Context, chunk transcript.Chunk, carry string, num, total int, traceID string) (*ChunkExtraction, error) {
	promptData := struct {
		Index           int
		Total           int
		PreviousSummary string
		Speakers        []string
		Content         string
		Overlap         string
	}{
		Index:           num,
		Total:           total,
		PreviousSummary: carry,
		Speakers:        chunk.SpeakersPresent,
		Content:         chunk.Content,
		Overlap:         chunk.OverlapContent,
	}

	prompt, err := e.prompts.render("extraction", promptData)
	if err != nil {
		return nil, fmt.Errorf("render extraction prompt: %w", err)
	}

	var extraction ChunkExtraction
	req := llm.CompletionRequest{
		SystemPrompt: extractionSystemPrompt,
		Prompt:       prompt,
		JSONMode:     true,
		TraceID:      traceID,
		Stage:        pkgerrors.StageExtraction,
	}
	if err := e.provider.CompleteStructured(ctx, req, &extraction); err != nil {
		return nil, fmt.Errorf("chunk extraction: %w", err)
	}
	if err := extraction.Validate(); err != nil {
		return nil, fmt.Errorf("extraction rejected: %w", err)
	}
	return &extraction, nil
}
