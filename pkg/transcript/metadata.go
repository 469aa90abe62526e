package transcript

import (
	"regexp"
	"strings"
)

// Metadata holds general information detected in a transcript before any
// model call. Fields left empty simply were not found.
type Metadata struct {
	Title     string
	Date      string
	Attendees []string
}

// headerWindow is how far into the transcript we look for a title.
const headerWindow = 500

var (
	headingRegex = regexp.MustCompile(`^#{1,3}\s+(.+)$`)
	titleRegex   = regexp.MustCompile(`(?i)^(?:meeting|call|discussion|subject|topic|re)\s*:\s*(.+)$`)

	isoDateRegex     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	monthDateRegex   = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`)
	numericDateRegex = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
)

// ExtractMetadata pulls out a title, a date, and the attendee list. The
// title is searched only near the top of the transcript; dates anywhere;
// attendees are the distinct valid speakers.
func ExtractMetadata(text string) Metadata {
	md := Metadata{Attendees: SpeakersIn(text)}

	head := text
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	for _, line := range strings.Split(head, "\n") {
		line = strings.TrimSpace(line)
		if m := headingRegex.FindStringSubmatch(line); m != nil {
			md.Title = strings.TrimSpace(m[1])
			break
		}
		if m := titleRegex.FindStringSubmatch(line); m != nil {
			md.Title = strings.TrimSpace(m[1])
			break
		}
	}

	if m := isoDateRegex.FindString(text); m != "" {
		md.Date = m
	} else if m := monthDateRegex.FindString(text); m != "" {
		md.Date = m
	} else if m := numericDateRegex.FindString(text); m != "" {
		md.Date = m
	}
	return md
}
