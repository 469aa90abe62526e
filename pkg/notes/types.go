// Package notes implements the transcript-to-notes pipeline: per-chunk
// structured extraction, consolidation into a canonical meeting record,
// document generation, and a final editing pass.
package notes

import "fmt"

// Action item priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Action item statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// MoSCoW requirement priorities used in PRD documents.
const (
	ReqMust   = "must"
	ReqShould = "should"
	ReqCould  = "could"
	ReqWont   = "wont"
)

// OwnerTBD marks an action item whose owner was not resolved.
const OwnerTBD = "TBD"

// DecisionFragment is an unrefined decision candidate from one chunk.
// Quote is a verbatim excerpt substantiating it.
type DecisionFragment struct {
	Decision string `json:"decision"`
	Quote    string `json:"quote"`
}

// ActionItemFragment is an unrefined action-item candidate from one chunk.
type ActionItemFragment struct {
	Task  string `json:"task"`
	Owner string `json:"owner,omitempty"`
	Due   string `json:"due,omitempty"`
	Quote string `json:"quote"`
}

// DeliverableFragment is an unrefined deliverable candidate from one chunk.
type DeliverableFragment struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quote       string `json:"quote"`
}

// ChunkExtraction is the structured result of extracting one chunk.
// SummaryForNextChunk is the only continuity channel between chunks.
type ChunkExtraction struct {
	Decisions           []DecisionFragment    `json:"decisions"`
	ActionItems         []ActionItemFragment  `json:"actionItems"`
	Deliverables        []DeliverableFragment `json:"deliverables"`
	KeyPoints           []string              `json:"keyPoints"`
	SummaryForNextChunk string                `json:"summaryForNextChunk"`
}

// Validate rejects extractions that violate quote anchoring: every
// fragment must cite a literal excerpt. A violation fails the whole
// chunk, there is no partial acceptance.
func (ce *ChunkExtraction) Validate() error {
	for i, d := range ce.Decisions {
		if d.Decision == "" {
			return fmt.Errorf("decision %d has no text", i+1)
		}
		if d.Quote == "" {
			return fmt.Errorf("decision %d (%q) has no supporting quote", i+1, d.Decision)
		}
	}
	for i, a := range ce.ActionItems {
		if a.Task == "" {
			return fmt.Errorf("action item %d has no task", i+1)
		}
		if a.Quote == "" {
			return fmt.Errorf("action item %d (%q) has no supporting quote", i+1, a.Task)
		}
	}
	for i, d := range ce.Deliverables {
		if d.Name == "" {
			return fmt.Errorf("deliverable %d has no name", i+1)
		}
		if d.Quote == "" {
			return fmt.Errorf("deliverable %d (%q) has no supporting quote", i+1, d.Name)
		}
	}
	return nil
}

// ExtractionResult bundles the per-chunk extractions of one run.
type ExtractionResult struct {
	Extractions      []ChunkExtraction `json:"extractions"`
	TotalChunks      int               `json:"totalChunks"`
	ProcessingTimeMs int64             `json:"processingTimeMs"`
}

// Decision is a refined, identifier-stable decision (D1, D2, ...).
type Decision struct {
	ID       string `json:"id" yaml:"id"`
	Decision string `json:"decision" yaml:"decision"`
	Quote    string `json:"quote,omitempty" yaml:"quote,omitempty"`
}

// ActionItem is a refined, identifier-stable action item (A1, A2, ...).
type ActionItem struct {
	ID       string `json:"id" yaml:"id"`
	Task     string `json:"task" yaml:"task"`
	Owner    string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Due      string `json:"due,omitempty" yaml:"due,omitempty"`
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty"`
	Status   string `json:"status,omitempty" yaml:"status,omitempty"`
	Quote    string `json:"quote,omitempty" yaml:"quote,omitempty"`
}

// Deliverable is a refined, identifier-stable deliverable (DEL1, ...).
type Deliverable struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quote       string `json:"quote,omitempty"`
}

// RefinedMeeting is the canonical record for one transcript: the single
// source of truth the documents are generated from.
type RefinedMeeting struct {
	Decisions      []Decision    `json:"decisions"`
	ActionItems    []ActionItem  `json:"actionItems"`
	Deliverables   []Deliverable `json:"deliverables"`
	MeetingSummary string        `json:"meetingSummary"`
	Attendees      []string      `json:"attendees"`
	OpenQuestions  []string      `json:"openQuestions"`
}

// DiscussionPoint is one topic in the notes document.
type DiscussionPoint struct {
	Topic   string `json:"topic" yaml:"topic"`
	Summary string `json:"summary" yaml:"summary"`
}

// MeetingNotes is the user-facing notes document.
type MeetingNotes struct {
	Title               string            `json:"title" yaml:"title"`
	Date                string            `json:"date,omitempty" yaml:"date,omitempty"`
	Attendees           []string          `json:"attendees" yaml:"attendees"`
	Summary             string            `json:"summary" yaml:"summary"`
	Decisions           []Decision        `json:"decisions" yaml:"decisions"`
	ActionItems         []ActionItem      `json:"actionItems" yaml:"actionItems"`
	KeyDiscussionPoints []DiscussionPoint `json:"keyDiscussionPoints" yaml:"keyDiscussionPoints"`
	OpenQuestions       []string          `json:"openQuestions" yaml:"openQuestions"`
}

// Requirement is one PRD requirement row.
type Requirement struct {
	ID          string `json:"id" yaml:"id"`
	Requirement string `json:"requirement" yaml:"requirement"`
	Priority    string `json:"priority" yaml:"priority"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Timeline is the optional PRD delivery timeline.
type Timeline struct {
	Target     string   `json:"target,omitempty" yaml:"target,omitempty"`
	Milestones []string `json:"milestones,omitempty" yaml:"milestones,omitempty"`
}

// PRDDocument is produced only when the meeting discussed at least one
// deliverable.
type PRDDocument struct {
	FeatureName   string        `json:"featureName" yaml:"featureName"`
	Overview      string        `json:"overview" yaml:"overview"`
	Requirements  []Requirement `json:"requirements" yaml:"requirements"`
	Timeline      *Timeline     `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	Dependencies  []string      `json:"dependencies" yaml:"dependencies"`
	OpenQuestions []string      `json:"openQuestions" yaml:"openQuestions"`
}

// FinalOutput is the terminal artifact of a pipeline run. Markdown and
// JSON are derived from Notes/PRD and can always be regenerated.
type FinalOutput struct {
	Notes    MeetingNotes `json:"notes" yaml:"notes"`
	PRD      *PRDDocument `json:"prd,omitempty" yaml:"prd,omitempty"`
	Markdown string       `json:"-" yaml:"-"`
	JSON     string       `json:"-" yaml:"-"`
}

// GenerateResult is the Generator's output.
type GenerateResult struct {
	Notes            MeetingNotes
	PRD              *PRDDocument
	PRDGenerated     bool
	Markdown         string
	ProcessingTimeMs int64
}

// EditResult is the Editor's output. ChangesApplied is advisory only.
type EditResult struct {
	Output           FinalOutput
	ChangesApplied   []string
	ProcessingTimeMs int64
}
