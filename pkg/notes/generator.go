package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
	"github.com/otherjamesbrown/minute-cli/pkg/llm"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
	"github.com/otherjamesbrown/minute-cli/pkg/transcript"
)

// defaultTitle is used when neither a deliverable nor a decision can
// supply one.
const defaultTitle = "Meeting Notes"

// GenerateOptions controls the Generator.
type GenerateOptions struct {
	// GeneratePRD requests a PRD. It is still skipped when the meeting
	// produced no deliverables.
	GeneratePRD bool

	// Metadata is the transcript-level metadata from the chunker.
	Metadata transcript.Metadata
}

// Generator maps the canonical record into user-facing documents. The
// notes document is a deterministic transformation; only the optional
// PRD involves a model call.
type Generator struct {
	provider llm.Provider
	prompts  *PromptTemplates
	log      logging.Logger
}

// NewGenerator returns a generator using the default prompts.
func NewGenerator(provider llm.Provider, log logging.Logger) *Generator {
	return &Generator{provider: provider, prompts: DefaultPromptTemplates(), log: log}
}

// Generate produces the notes document, the optional PRD, and the
// deterministic Markdown rendering of both.
func (g *Generator) Generate(ctx context.Context, refined *RefinedMeeting, opts GenerateOptions, traceID string) (*GenerateResult, error) {
	start := time.Now()

	meetingNotes := g.GenerateMeetingNotes(refined, opts.Metadata)

	var prd *PRDDocument
	if opts.GeneratePRD {
		var err error
		prd, err = g.GeneratePRD(ctx, refined, traceID)
		if err != nil {
			return nil, err
		}
	}

	return &GenerateResult{
		Notes:            meetingNotes,
		PRD:              prd,
		PRDGenerated:     prd != nil,
		Markdown:         RenderMarkdown(meetingNotes, prd),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// GenerateMeetingNotes is a pure mapping from the canonical record to the
// notes document. No model call is involved.
func (g *Generator) GenerateMeetingNotes(refined *RefinedMeeting, md transcript.Metadata) MeetingNotes {
	meetingNotes := MeetingNotes{
		Title:         deriveTitle(refined),
		Date:          md.Date,
		Attendees:     refined.Attendees,
		Summary:       refined.MeetingSummary,
		Decisions:     make([]Decision, len(refined.Decisions)),
		ActionItems:   make([]ActionItem, len(refined.ActionItems)),
		OpenQuestions: refined.OpenQuestions,
	}
	copy(meetingNotes.Decisions, refined.Decisions)

	for i, item := range refined.ActionItems {
		if item.Owner == "" {
			item.Owner = OwnerTBD
		}
		if !validPriority(item.Priority) {
			item.Priority = PriorityMedium
		}
		item.Status = StatusOpen
		meetingNotes.ActionItems[i] = item
	}

	for _, d := range refined.Deliverables {
		meetingNotes.KeyDiscussionPoints = append(meetingNotes.KeyDiscussionPoints, DiscussionPoint{
			Topic:   d.Name,
			Summary: d.Description,
		})
	}
	return meetingNotes
}

// GeneratePRD synthesizes a PRD from the meeting's deliverables. It
// returns nil with no model call when there are no deliverables; that is
// the gate, not a failure.
func (g *Generator) GeneratePRD(ctx context.Context, refined *RefinedMeeting, traceID string) (*PRDDocument, error) {
	if len(refined.Deliverables) == 0 {
		g.log.Debug("no deliverables, skipping PRD")
		return nil, nil
	}

	deliverablesJSON, err := json.MarshalIndent(refined.Deliverables, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal deliverables: %w", err)
	}
	decisionsJSON, err := json.MarshalIndent(refined.Decisions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal decisions: %w", err)
	}
	questionsJSON, err := json.MarshalIndent(refined.OpenQuestions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal open questions: %w", err)
	}

	promptData := struct {
		DeliverablesJSON  string
		DecisionsJSON     string
		OpenQuestionsJSON string
	}{
		DeliverablesJSON:  string(deliverablesJSON),
		DecisionsJSON:     string(decisionsJSON),
		OpenQuestionsJSON: string(questionsJSON),
	}
	prompt, err := g.prompts.render("prd", promptData)
	if err != nil {
		return nil, fmt.Errorf("render prd prompt: %w", err)
	}

	var prd PRDDocument
	req := llm.CompletionRequest{
		SystemPrompt: prdSystemPrompt,
		Prompt:       prompt,
		JSONMode:     true,
		TraceID:      traceID,
		Stage:        pkgerrors.StageGeneration,
	}
	if err := g.provider.CompleteStructured(ctx, req, &prd); err != nil {
		return nil, pkgerrors.Classify(fmt.Errorf("prd generation: %w", err), pkgerrors.StageGeneration)
	}

	// Requirement IDs follow the same stability rule as the record's
	// identifiers.
	for i := range prd.Requirements {
		prd.Requirements[i].ID = fmt.Sprintf("R%d", i+1)
	}
	return &prd, nil
}

func deriveTitle(refined *RefinedMeeting) string {
	if len(refined.Deliverables) > 0 {
		return refined.Deliverables[0].Name
	}
	if len(refined.Decisions) > 0 {
		return refined.Decisions[0].Decision
	}
	return defaultTitle
}

func validPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}
