package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
	"github.com/otherjamesbrown/minute-cli/pkg/llm"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
	"github.com/otherjamesbrown/minute-cli/pkg/progress"
	"github.com/otherjamesbrown/minute-cli/pkg/transcript"
)

func testChunks(n int) []transcript.Chunk {
	chunks := make([]transcript.Chunk, n)
	for i := range chunks {
		chunks[i] = transcript.Chunk{
			Index:           i,
			Content:         fmt.Sprintf("Sarah: this is segment %d of the meeting.", i+1),
			SpeakersPresent: []string{"Sarah"},
		}
	}
	return chunks
}

func newTestExtractor(provider llm.Provider) *Extractor {
	e := NewExtractor(provider, progress.NewSilent(), logging.Nop())
	e.delay = 0
	return e
}

func TestExtractFromChunksOrdering(t *testing.T) {
	call := 0
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		call++
		return mustJSON(ChunkExtraction{
			KeyPoints:           []string{fmt.Sprintf("point %d", call)},
			SummaryForNextChunk: fmt.Sprintf("summary after segment %d", call),
		}), nil
	}}

	result, err := newTestExtractor(provider).ExtractFromChunks(context.Background(), testChunks(3), "run-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalChunks)
	require.Len(t, result.Extractions, 3)
	for i, ex := range result.Extractions {
		assert.Equal(t, fmt.Sprintf("summary after segment %d", i+1), ex.SummaryForNextChunk)
	}

	// Each request after the first carries the previous carry.
	require.Len(t, provider.calls, 3)
	assert.NotContains(t, provider.calls[0].Prompt, "Context from the previous segment")
	assert.Contains(t, provider.calls[1].Prompt, "summary after segment 1")
	assert.Contains(t, provider.calls[2].Prompt, "summary after segment 2")
}

func TestExtractFromChunksFailureAborts(t *testing.T) {
	call := 0
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		call++
		if call == 2 {
			return "", errors.New("boom")
		}
		return mustJSON(ChunkExtraction{SummaryForNextChunk: "carry"}), nil
	}}

	result, err := newTestExtractor(provider).ExtractFromChunks(context.Background(), testChunks(3), "run-1")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 2, provider.callCount(), "remaining chunks must not be attempted")

	var pe *pkgerrors.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, pkgerrors.StageExtraction, pe.Stage)
	assert.Equal(t, 2, pe.Chunk)
	assert.Equal(t, 3, pe.TotalChunks)
}

func TestExtractFromChunksQuoteRequired(t *testing.T) {
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		return mustJSON(ChunkExtraction{
			Decisions:           []DecisionFragment{{Decision: "ship it"}},
			SummaryForNextChunk: "carry",
		}), nil
	}}

	_, err := newTestExtractor(provider).ExtractFromChunks(context.Background(), testChunks(1), "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quote")
}

func TestExtractFromChunksTimeoutClassified(t *testing.T) {
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		return "", context.DeadlineExceeded
	}}

	_, err := newTestExtractor(provider).ExtractFromChunks(context.Background(), testChunks(2), "run-1")
	require.Error(t, err)

	var pe *pkgerrors.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, pkgerrors.ErrTimeout, pe.Code)
	assert.Equal(t, 1, pe.Chunk)
}

func TestExtractFromChunksEmptyCarryRepaired(t *testing.T) {
	call := 0
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		call++
		// First segment returns no continuity summary.
		return mustJSON(ChunkExtraction{SummaryForNextChunk: ""}), nil
	}}

	result, err := newTestExtractor(provider).ExtractFromChunks(context.Background(), testChunks(2), "run-1")
	require.NoError(t, err)

	assert.Equal(t, genericCarry, result.Extractions[0].SummaryForNextChunk)
	assert.Contains(t, provider.calls[1].Prompt, genericCarry)
	// The last segment may legitimately end without a carry.
	assert.Empty(t, result.Extractions[1].SummaryForNextChunk)
}

func TestExtractFromChunksOverlapPreview(t *testing.T) {
	chunks := testChunks(2)
	chunks[0].HasOverlap = true
	chunks[0].OverlapContent = "Mike: preview of the next part."

	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		return mustJSON(ChunkExtraction{SummaryForNextChunk: "carry"}), nil
	}}

	_, err := newTestExtractor(provider).ExtractFromChunks(context.Background(), chunks, "run-1")
	require.NoError(t, err)
	assert.True(t, strings.Contains(provider.calls[0].Prompt, "preview of the next part"))
	assert.NotContains(t, provider.calls[1].Prompt, "context only, do not extract")
}
