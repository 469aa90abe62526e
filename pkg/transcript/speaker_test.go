package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSpeaker(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Sarah", true},
		{"Mike Chen", true},
		{"Dr. O'Brien", true},
		{"J", false},
		{"42", false},
		{"Okay", false},
		{"Um", false},
		{"Subject", false},
		{strings.Repeat("A", 51), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSpeaker(tt.name))
		})
	}
}

func TestSpeakersIn(t *testing.T) {
	text := "Sarah: let's get started.\n" +
		"Mike: sounds good.\n" +
		"Sarah: first item is the launch.\n" +
		"[00:14:02] Priya: I can take that.\n" +
		"Okay: not a speaker.\n" +
		"just narrative text here\n"

	assert.Equal(t, []string{"Sarah", "Mike", "Priya"}, SpeakersIn(text))
}

func TestSpeakersInTimestampVariants(t *testing.T) {
	text := "10:35 Sarah: morning everyone.\n" +
		"(1:02:11) Mike: morning.\n"
	got := SpeakersIn(text)
	assert.Contains(t, got, "Sarah")
	assert.Contains(t, got, "Mike")
}

func TestSpeakersInEmpty(t *testing.T) {
	assert.Empty(t, SpeakersIn("no labels anywhere in this text"))
}

func TestLastSpeakerBefore(t *testing.T) {
	text := "Sarah: intro.\nMike: a very long turn that keeps going " +
		strings.Repeat("and going ", 50) +
		"\nmore narrative without labels\n"

	offset := len(text) - 10
	assert.Equal(t, "Mike", LastSpeakerBefore(text, offset, speakerLookback))

	// Lookback too small to reach any label.
	assert.Equal(t, "", LastSpeakerBefore(text, offset, 5))

	// Offset beyond the text is clamped.
	assert.Equal(t, "Mike", LastSpeakerBefore(text, len(text)+100, speakerLookback))
}
