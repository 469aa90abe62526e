package transcript

import (
	"regexp"
	"strings"
)

// speakerLineRegex matches a speaker turn: a capitalized name followed by
// a colon, optionally prefixed by a timestamp like [00:14:02] or 10:35.
var speakerLineRegex = regexp.MustCompile(`^(?:[\[(]?\d{1,2}:\d{2}(?::\d{2})?[\])]?\s*[-–]?\s*)?([A-Z][A-Za-z0-9 .'\-]{0,49}):`)

// fillerWords are tokens that look like speaker labels but are not names.
// The set also covers structural headers like "Subject:" that the
// metadata extractor handles separately.
var fillerWords = map[string]struct{}{
	"yeah": {}, "okay": {}, "ok": {}, "um": {}, "uh": {}, "hmm": {},
	"right": {}, "well": {}, "so": {}, "like": {}, "note": {},
	"update": {}, "warning": {}, "error": {}, "subject": {}, "topic": {},
	"re": {}, "meeting": {}, "call": {}, "discussion": {}, "agenda": {},
	"action": {}, "date": {}, "time": {}, "location": {}, "attendees": {},
}

// ValidSpeaker reports whether a candidate label is plausibly a person's
// name rather than a filler word or structural marker.
func ValidSpeaker(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 50 {
		return false
	}
	if _, filler := fillerWords[strings.ToLower(name)]; filler {
		return false
	}
	allDigits := true
	for _, r := range name {
		if r < '0' || r > '9' {
			allDigits = false
			break
		}
	}
	return !allDigits
}

// speakerAt returns the valid speaker name a line opens with, or "".
func speakerAt(line string) string {
	m := speakerLineRegex.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if !ValidSpeaker(name) {
		return ""
	}
	return name
}

// SpeakersIn returns the distinct valid speakers in text, in order of
// first appearance.
func SpeakersIn(text string) []string {
	var speakers []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		name := speakerAt(line)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		speakers = append(speakers, name)
	}
	return speakers
}

// LastSpeakerBefore scans up to lookback characters before offset and
// returns the most recent valid speaker, or "" when none is found.
func LastSpeakerBefore(text string, offset, lookback int) string {
	if offset > len(text) {
		offset = len(text)
	}
	start := offset - lookback
	if start < 0 {
		start = 0
	}
	window := text[start:offset]
	last := ""
	for _, line := range strings.Split(window, "\n") {
		if name := speakerAt(line); name != "" {
			last = name
		}
	}
	return last
}
