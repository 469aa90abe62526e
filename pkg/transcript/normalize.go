// Package transcript provides transcript normalization, validation,
// speaker detection, metadata extraction, and speaker-aware chunking for
// the notes pipeline.
package transcript

import (
	"fmt"
	"regexp"
	"strings"

	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
)

// MinLength is the minimum normalized transcript length in characters.
// Anything shorter cannot contain a meaningful meeting.
const MinLength = 100

var blankRunRegex = regexp.MustCompile(`\n{3,}`)

// Normalize unifies line endings, collapses runs of three or more blank
// lines to two, and trims surrounding whitespace.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRunRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Validate rejects transcripts that are empty, too short, or not text.
// It runs before any model call and raises a transcript-classified
// pipeline error.
func Validate(text string) error {
	if text == "" {
		return transcriptError("transcript is empty")
	}
	if len(text) < MinLength {
		return transcriptError(fmt.Sprintf("transcript is too short (%d characters, need at least %d)", len(text), MinLength))
	}

	// Binary sniff: control bytes in the first kilobyte that plain text
	// never contains.
	head := text
	if len(head) > 1024 {
		head = head[:1024]
	}
	for i := 0; i < len(head); i++ {
		b := head[i]
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			return transcriptError("transcript appears to be binary (control characters detected)")
		}
	}
	return nil
}

func transcriptError(msg string) *pkgerrors.PipelineError {
	return &pkgerrors.PipelineError{
		Code:    pkgerrors.ErrTranscript,
		Stage:   pkgerrors.StageChunking,
		Message: msg,
	}
}
