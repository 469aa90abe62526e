package notes

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minute-cli/pkg/llm"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
)

func TestRefineAssignsStableIdentifiers(t *testing.T) {
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		return mustJSON(RefinedMeeting{
			Decisions: []Decision{
				{ID: "bogus", Decision: "use React", Quote: "q1"},
				{ID: "", Decision: "ship in Q3", Quote: "q2"},
			},
			ActionItems: []ActionItem{
				{ID: "x", Task: "wireframes", Owner: "Mike", Quote: "q3"},
				{Task: "budget review", Quote: "q4"},
			},
			Deliverables:   []Deliverable{{Name: "Frontend", Quote: "q5"}},
			MeetingSummary: "A planning meeting.",
			Attendees:      []string{"Sarah", "Mike"},
		}), nil
	}}

	extractions := []ChunkExtraction{{
		Decisions: []DecisionFragment{{Decision: "use React", Quote: "q1"}},
	}}
	refined, err := NewRefiner(provider, logging.Nop()).Refine(context.Background(), extractions, nil, "run-1")
	require.NoError(t, err)

	require.Len(t, refined.Decisions, 2)
	assert.Equal(t, "D1", refined.Decisions[0].ID)
	assert.Equal(t, "D2", refined.Decisions[1].ID)
	require.Len(t, refined.ActionItems, 2)
	assert.Equal(t, "A1", refined.ActionItems[0].ID)
	assert.Equal(t, "A2", refined.ActionItems[1].ID)
	require.Len(t, refined.Deliverables, 1)
	assert.Equal(t, "DEL1", refined.Deliverables[0].ID)
}

func TestRefineZeroExtractions(t *testing.T) {
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		return "", fmt.Errorf("must not be called")
	}}

	for _, extractions := range [][]ChunkExtraction{
		nil,
		{},
		{{SummaryForNextChunk: "nothing found"}},
	} {
		refined, err := NewRefiner(provider, logging.Nop()).Refine(context.Background(), extractions, []string{"Sarah"}, "run-1")
		require.NoError(t, err)

		assert.Zero(t, provider.callCount(), "degenerate input must not reach the model")
		assert.Empty(t, refined.Decisions)
		assert.Empty(t, refined.ActionItems)
		assert.Empty(t, refined.Deliverables)
		assert.NotEmpty(t, refined.MeetingSummary)
		assert.Equal(t, []string{"Sarah"}, refined.Attendees)
		assert.NotNil(t, refined.OpenQuestions)
	}
}

func TestRefineAttendeeUnion(t *testing.T) {
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		return mustJSON(RefinedMeeting{
			MeetingSummary: "Short sync.",
			Attendees:      []string{"Mike", "Sarah"},
		}), nil
	}}

	extractions := []ChunkExtraction{{KeyPoints: []string{"a point"}}}
	refined, err := NewRefiner(provider, logging.Nop()).Refine(context.Background(), extractions, []string{"Sarah", "Priya"}, "run-1")
	require.NoError(t, err)

	// Chunker-observed speakers first, then model additions, no dupes.
	assert.Equal(t, []string{"Sarah", "Priya", "Mike"}, refined.Attendees)
}

func TestRefineAttendeeUnionIgnoresCase(t *testing.T) {
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		return mustJSON(RefinedMeeting{
			MeetingSummary: "Short sync.",
			Attendees:      []string{"sarah", "MIKE"},
		}), nil
	}}

	extractions := []ChunkExtraction{{KeyPoints: []string{"a point"}}}
	refined, err := NewRefiner(provider, logging.Nop()).Refine(context.Background(), extractions, []string{"Sarah"}, "run-1")
	require.NoError(t, err)

	// First spelling seen wins.
	assert.Equal(t, []string{"Sarah", "MIKE"}, refined.Attendees)
}

func TestRefineFragmentsReachTheModel(t *testing.T) {
	provider := &fakeProvider{respond: func(req llm.CompletionRequest) (string, error) {
		return mustJSON(RefinedMeeting{MeetingSummary: "ok"}), nil
	}}

	extractions := []ChunkExtraction{{
		Decisions: []DecisionFragment{{Decision: "adopt the new rollout plan", Quote: "we will adopt the new rollout plan"}},
	}}
	_, err := NewRefiner(provider, logging.Nop()).Refine(context.Background(), extractions, nil, "run-1")
	require.NoError(t, err)

	require.Equal(t, 1, provider.callCount())
	assert.Contains(t, provider.calls[0].Prompt, "adopt the new rollout plan")
	assert.Contains(t, provider.calls[0].SystemPrompt, "Merge duplicate")
}
