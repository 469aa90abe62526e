package notes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderMarkdown renders the notes document, and the PRD when present,
// as a deterministic Markdown document. No model is involved; rendering
// the same documents always yields the same text.
func RenderMarkdown(meetingNotes MeetingNotes, prd *PRDDocument) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", meetingNotes.Title)
	if meetingNotes.Date != "" {
		fmt.Fprintf(&b, "**Date:** %s\n\n", meetingNotes.Date)
	}
	if len(meetingNotes.Attendees) > 0 {
		fmt.Fprintf(&b, "**Attendees:** %s\n\n", strings.Join(meetingNotes.Attendees, ", "))
	}

	if meetingNotes.Summary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(meetingNotes.Summary)
		b.WriteString("\n\n")
	}

	if len(meetingNotes.Decisions) > 0 {
		b.WriteString("## Decisions\n\n")
		for _, d := range meetingNotes.Decisions {
			fmt.Fprintf(&b, "- **%s:** %s\n", d.ID, d.Decision)
		}
		b.WriteString("\n")
	}

	if len(meetingNotes.ActionItems) > 0 {
		b.WriteString("## Action Items\n\n")
		b.WriteString("| Owner | Task | Due | Priority |\n")
		b.WriteString("|-------|------|-----|----------|\n")
		for _, a := range meetingNotes.ActionItems {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				mdCell(a.Owner), mdCell(a.Task), mdCell(orDash(a.Due)), mdCell(a.Priority))
		}
		b.WriteString("\n")
	}

	if len(meetingNotes.KeyDiscussionPoints) > 0 {
		b.WriteString("## Key Discussion Points\n\n")
		for _, p := range meetingNotes.KeyDiscussionPoints {
			if p.Summary != "" {
				fmt.Fprintf(&b, "- **%s:** %s\n", p.Topic, p.Summary)
			} else {
				fmt.Fprintf(&b, "- **%s**\n", p.Topic)
			}
		}
		b.WriteString("\n")
	}

	if len(meetingNotes.OpenQuestions) > 0 {
		b.WriteString("## Open Questions\n\n")
		for _, q := range meetingNotes.OpenQuestions {
			fmt.Fprintf(&b, "- [ ] %s\n", q)
		}
		b.WriteString("\n")
	}

	if prd != nil {
		b.WriteString("---\n\n")
		renderPRD(&b, prd)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderPRD(b *strings.Builder, prd *PRDDocument) {
	fmt.Fprintf(b, "# PRD: %s\n\n", prd.FeatureName)

	if prd.Overview != "" {
		b.WriteString("## Overview\n\n")
		b.WriteString(prd.Overview)
		b.WriteString("\n\n")
	}

	if len(prd.Requirements) > 0 {
		b.WriteString("## Requirements\n\n")
		b.WriteString("| ID | Requirement | Priority |\n")
		b.WriteString("|----|-------------|----------|\n")
		for _, r := range prd.Requirements {
			fmt.Fprintf(b, "| %s | %s | %s |\n", r.ID, mdCell(r.Requirement), r.Priority)
		}
		b.WriteString("\n")
	}

	if prd.Timeline != nil && (prd.Timeline.Target != "" || len(prd.Timeline.Milestones) > 0) {
		b.WriteString("## Timeline\n\n")
		if prd.Timeline.Target != "" {
			fmt.Fprintf(b, "**Target:** %s\n\n", prd.Timeline.Target)
		}
		for _, m := range prd.Timeline.Milestones {
			fmt.Fprintf(b, "- %s\n", m)
		}
		b.WriteString("\n")
	}

	if len(prd.Dependencies) > 0 {
		b.WriteString("## Dependencies\n\n")
		for _, d := range prd.Dependencies {
			fmt.Fprintf(b, "- %s\n", d)
		}
		b.WriteString("\n")
	}

	if len(prd.OpenQuestions) > 0 {
		b.WriteString("## Open Questions\n\n")
		for _, q := range prd.OpenQuestions {
			fmt.Fprintf(b, "- [ ] %s\n", q)
		}
		b.WriteString("\n")
	}
}

// RenderJSON renders {notes, prd} as pretty-printed JSON.
func RenderJSON(meetingNotes MeetingNotes, prd *PRDDocument) (string, error) {
	payload := struct {
		Notes MeetingNotes `json:"notes"`
		PRD   *PRDDocument `json:"prd,omitempty"`
	}{Notes: meetingNotes, PRD: prd}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render json: %w", err)
	}
	return string(out), nil
}

// mdCell escapes pipe characters so table cells stay aligned.
func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
