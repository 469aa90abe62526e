package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
	"github.com/otherjamesbrown/minute-cli/pkg/llm"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
)

// Editor runs the final consistency pass over the generated documents in
// a single model call.
type Editor struct {
	provider llm.Provider
	prompts  *PromptTemplates
	log      logging.Logger
}

// NewEditor returns an editor using the default prompts.
func NewEditor(provider llm.Provider, log logging.Logger) *Editor {
	return &Editor{provider: provider, prompts: DefaultPromptTemplates(), log: log}
}

// editedDocuments is the shape the editing call returns.
type editedDocuments struct {
	Notes          MeetingNotes `json:"notes"`
	PRD            *PRDDocument `json:"prd,omitempty"`
	ChangesApplied []string     `json:"changesApplied"`
}

// Edit polishes the notes (and PRD, when present) for consistency.
// Markdown and JSON in the result are re-rendered from the edited
// documents, never taken from the model. An edit that fabricates new
// decisions or action items is rejected in favor of the originals.
func (e *Editor) Edit(ctx context.Context, meetingNotes MeetingNotes, prd *PRDDocument, traceID string) (*EditResult, error) {
	start := time.Now()

	notesJSON, err := json.MarshalIndent(meetingNotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal notes: %w", err)
	}
	prdJSON := ""
	if prd != nil {
		raw, err := json.MarshalIndent(prd, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal prd: %w", err)
		}
		prdJSON = string(raw)
	}

	promptData := struct {
		NotesJSON string
		PRDJSON   string
	}{NotesJSON: string(notesJSON), PRDJSON: prdJSON}
	prompt, err := e.prompts.render("editing", promptData)
	if err != nil {
		return nil, fmt.Errorf("render editing prompt: %w", err)
	}

	var edited editedDocuments
	req := llm.CompletionRequest{
		SystemPrompt: editingSystemPrompt,
		Prompt:       prompt,
		JSONMode:     true,
		TraceID:      traceID,
		Stage:        pkgerrors.StageEditing,
	}
	if err := e.provider.CompleteStructured(ctx, req, &edited); err != nil {
		return nil, pkgerrors.Classify(fmt.Errorf("editing: %w", err), pkgerrors.StageEditing)
	}

	finalNotes := edited.Notes
	if fabricated(meetingNotes, edited.Notes) {
		e.log.Warn("edit added decisions or action items, keeping originals",
			logging.F("decisions_before", len(meetingNotes.Decisions)),
			logging.F("decisions_after", len(edited.Notes.Decisions)),
			logging.F("action_items_before", len(meetingNotes.ActionItems)),
			logging.F("action_items_after", len(edited.Notes.ActionItems)))
		finalNotes = meetingNotes
	}

	finalPRD := edited.PRD
	if prd == nil {
		// The editor never introduces a PRD on its own.
		finalPRD = nil
	} else if finalPRD == nil {
		finalPRD = prd
	}

	markdown := RenderMarkdown(finalNotes, finalPRD)
	jsonOut, err := RenderJSON(finalNotes, finalPRD)
	if err != nil {
		return nil, err
	}

	return &EditResult{
		Output: FinalOutput{
			Notes:    finalNotes,
			PRD:      finalPRD,
			Markdown: markdown,
			JSON:     jsonOut,
		},
		ChangesApplied:   edited.ChangesApplied,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// fabricated reports whether an edit grew the decision or action-item
// lists. Editing may rephrase and merge but never invent.
func fabricated(before, after MeetingNotes) bool {
	return len(after.Decisions) > len(before.Decisions) ||
		len(after.ActionItems) > len(before.ActionItems)
}
