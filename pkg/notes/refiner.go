package notes

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/text/cases"

	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
	"github.com/otherjamesbrown/minute-cli/pkg/llm"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
)

// emptyMeetingSummary is used when a transcript yielded no extractions.
const emptyMeetingSummary = "No decisions, action items, or deliverables were identified in this meeting."

// Refiner consolidates per-chunk extractions into one canonical meeting
// record with stable identifiers.
type Refiner struct {
	provider llm.Provider
	prompts  *PromptTemplates
	log      logging.Logger
}

// NewRefiner returns a refiner using the default prompts.
func NewRefiner(provider llm.Provider, log logging.Logger) *Refiner {
	return &Refiner{provider: provider, prompts: DefaultPromptTemplates(), log: log}
}

// Refine merges all extractions into a RefinedMeeting in a single model
// call. Identifiers are assigned locally after the call, so they are
// sequential and gap-free regardless of what the model returns. The
// attendees argument is the speaker list observed by the chunker and is
// unioned into the result.
func (r *Refiner) Refine(ctx context.Context, extractions []ChunkExtraction, attendees []string, traceID string) (*RefinedMeeting, error) {
	if emptyExtractions(extractions) {
		return &RefinedMeeting{
			Decisions:      []Decision{},
			ActionItems:    []ActionItem{},
			Deliverables:   []Deliverable{},
			MeetingSummary: emptyMeetingSummary,
			Attendees:      unionNames(attendees, nil),
			OpenQuestions:  []string{},
		}, nil
	}

	extractionsJSON, err := json.MarshalIndent(extractions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal extractions: %w", err)
	}

	promptData := struct {
		Attendees       []string
		Count           int
		ExtractionsJSON string
	}{
		Attendees:       attendees,
		Count:           len(extractions),
		ExtractionsJSON: string(extractionsJSON),
	}
	prompt, err := r.prompts.render("refinement", promptData)
	if err != nil {
		return nil, fmt.Errorf("render refinement prompt: %w", err)
	}

	var refined RefinedMeeting
	req := llm.CompletionRequest{
		SystemPrompt: refinementSystemPrompt,
		Prompt:       prompt,
		JSONMode:     true,
		TraceID:      traceID,
		Stage:        pkgerrors.StageRefinement,
	}
	if err := r.provider.CompleteStructured(ctx, req, &refined); err != nil {
		return nil, pkgerrors.Classify(fmt.Errorf("refinement: %w", err), pkgerrors.StageRefinement)
	}

	assignIdentifiers(&refined)
	refined.Attendees = unionNames(attendees, refined.Attendees)
	if refined.MeetingSummary == "" {
		refined.MeetingSummary = emptyMeetingSummary
	}
	if refined.OpenQuestions == nil {
		refined.OpenQuestions = []string{}
	}

	r.log.Debug("refinement complete",
		logging.F("decisions", len(refined.Decisions)),
		logging.F("action_items", len(refined.ActionItems)),
		logging.F("deliverables", len(refined.Deliverables)))
	return &refined, nil
}

// assignIdentifiers stamps D1.., A1.., DEL1.. in first-appearance order,
// overwriting whatever the model put there.
func assignIdentifiers(refined *RefinedMeeting) {
	if refined.Decisions == nil {
		refined.Decisions = []Decision{}
	}
	if refined.ActionItems == nil {
		refined.ActionItems = []ActionItem{}
	}
	if refined.Deliverables == nil {
		refined.Deliverables = []Deliverable{}
	}
	for i := range refined.Decisions {
		refined.Decisions[i].ID = fmt.Sprintf("D%d", i+1)
	}
	for i := range refined.ActionItems {
		refined.ActionItems[i].ID = fmt.Sprintf("A%d", i+1)
	}
	for i := range refined.Deliverables {
		refined.Deliverables[i].ID = fmt.Sprintf("DEL%d", i+1)
	}
}

// emptyExtractions reports whether there is nothing at all to refine.
func emptyExtractions(extractions []ChunkExtraction) bool {
	for _, e := range extractions {
		if len(e.Decisions) > 0 || len(e.ActionItems) > 0 ||
			len(e.Deliverables) > 0 || len(e.KeyPoints) > 0 {
			return false
		}
	}
	return true
}

// unionNames merges two name lists, preserving first-appearance order.
// Names differing only in case ("sarah" vs "Sarah") count as the same
// person; the first spelling seen wins.
func unionNames(a, b []string) []string {
	fold := cases.Fold()
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{})
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			if name == "" {
				continue
			}
			key := fold.String(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
