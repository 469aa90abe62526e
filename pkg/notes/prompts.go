package notes

import (
	"bytes"
	"fmt"
	"text/template"
)

// PromptTemplates holds the prompt templates for each pipeline stage.
type PromptTemplates struct {
	Templates map[string]*template.Template
}

// DefaultPromptTemplates returns the default prompt templates.
func DefaultPromptTemplates() *PromptTemplates {
	templates := make(map[string]*template.Template)

	templates["extraction"] = template.Must(template.New("extraction").Parse(extractionPromptTemplate))
	templates["refinement"] = template.Must(template.New("refinement").Parse(refinementPromptTemplate))
	templates["prd"] = template.Must(template.New("prd").Parse(prdPromptTemplate))
	templates["editing"] = template.Must(template.New("editing").Parse(editingPromptTemplate))

	return &PromptTemplates{Templates: templates}
}

// render renders a named prompt template.
func (p *PromptTemplates) render(name string, data interface{}) (string, error) {
	tmpl, ok := p.Templates[name]
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const extractionSystemPrompt = `You are an expert meeting analyst. You extract decisions, action items, and deliverables from meeting transcript segments.

Rules:
- Only report items that are explicitly stated in the segment. Never infer or invent.
- Every decision, action item, and deliverable must include a "quote": a verbatim excerpt from the segment that substantiates it.
- If the segment contains none of a category, return an empty array for it.
- Always return valid JSON matching the requested shape.`

const extractionPromptTemplate = `Extract structured information from segment {{.Index}} of {{.Total}} of a meeting transcript.
{{if .PreviousSummary}}
Context from the previous segment:
{{.PreviousSummary}}
{{end}}
Speakers present: {{range $i, $s := .Speakers}}{{if $i}}, {{end}}{{$s}}{{end}}

Segment:
"""
{{.Content}}
"""
{{if .Overlap}}
Preview of the following segment (context only, do not extract from it):
"""
{{.Overlap}}
"""
{{end}}
Return JSON:
{
  "decisions": [{"decision": "what was decided", "quote": "verbatim supporting excerpt"}],
  "actionItems": [{"task": "what must be done", "owner": "person responsible, if stated", "due": "deadline, if stated", "quote": "verbatim supporting excerpt"}],
  "deliverables": [{"name": "deliverable name", "description": "what it is", "quote": "verbatim supporting excerpt"}],
  "keyPoints": ["notable discussion point"],
  "summaryForNextChunk": "2-3 sentences of continuity context for the next segment"
}`

const refinementSystemPrompt = `You are an expert meeting analyst. You consolidate fragmented extractions from transcript segments into one canonical meeting record.

Rules:
- Merge duplicate or overlapping decisions, action items, and deliverables that describe the same underlying fact into one entry. Adjacent segments overlap, so restatements are common.
- Keep entries in first-appearance order. Do not invent entries that are not in the fragments.
- Keep the best supporting quote for each merged entry.
- Deduplicate near-identical open questions.
- Always return valid JSON matching the requested shape.`

const refinementPromptTemplate = `Consolidate the following per-segment extractions from one meeting into a single canonical record.

Attendees observed in the transcript: {{range $i, $s := .Attendees}}{{if $i}}, {{end}}{{$s}}{{end}}

Extractions ({{.Count}} segments):
{{.ExtractionsJSON}}

Return JSON:
{
  "decisions": [{"decision": "...", "quote": "..."}],
  "actionItems": [{"task": "...", "owner": "...", "due": "...", "quote": "..."}],
  "deliverables": [{"name": "...", "description": "...", "quote": "..."}],
  "meetingSummary": "3-5 sentence summary of the whole meeting",
  "attendees": ["name"],
  "openQuestions": ["unresolved question raised in the meeting"]
}`

const prdSystemPrompt = `You are a product manager. You draft a concise product requirements document (PRD) from meeting outcomes.

Rules:
- Base the PRD only on the deliverables, decisions, and open questions provided. Do not invent scope.
- Prioritize requirements with MoSCoW values: "must", "should", "could", "wont".
- Always return valid JSON matching the requested shape.`

const prdPromptTemplate = `Draft a PRD for the deliverables agreed in a meeting.

Deliverables:
{{.DeliverablesJSON}}

Decisions:
{{.DecisionsJSON}}

Open questions:
{{.OpenQuestionsJSON}}

Return JSON:
{
  "featureName": "name of the feature or product",
  "overview": "short overview of what is being built and why",
  "requirements": [{"id": "R1", "requirement": "...", "priority": "must|should|could|wont", "status": "proposed"}],
  "timeline": {"target": "target date if one was discussed", "milestones": ["milestone"]},
  "dependencies": ["dependency"],
  "openQuestions": ["question"]
}`

const editingSystemPrompt = `You are an expert editor of meeting documentation. You polish a meeting-notes document (and, when present, a PRD) for consistency.

Rules:
- Normalize attendee name formatting and use it consistently.
- Every action-item owner must appear in the attendee list or be "TBD".
- Remove redundancy between the summary and the decision list.
- Make action items concretely actionable.
- Open questions must be phrased as genuine questions.
- When a PRD is present, align its feature identity and open questions with the notes.
- Never invent new facts, decisions, action items, or requirements. Never delete valid content. Keep all identifiers unchanged.
- Always return valid JSON matching the requested shape.`

const editingPromptTemplate = `Edit the following documents for consistency and polish.

Meeting notes:
{{.NotesJSON}}
{{if .PRDJSON}}
PRD:
{{.PRDJSON}}
{{end}}
Return JSON:
{
  "notes": { ...the edited notes document, same shape as the input... },
  {{if .PRDJSON}}"prd": { ...the edited PRD, same shape as the input... },
  {{end}}"changesApplied": ["short description of each change made"]
}`
