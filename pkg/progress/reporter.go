// Package progress provides stage-aware progress reporting for the notes
// pipeline. Reporters are injected at pipeline construction; the choice of
// reporter never affects pipeline behavior.
package progress

import (
	"os"

	"golang.org/x/term"

	"github.com/otherjamesbrown/minute-cli/config"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
)

// Reporter receives progress events from the pipeline.
type Reporter interface {
	// Start begins reporting with an initial message.
	Start(msg string)

	// Update replaces the current message.
	Update(msg string)

	// UpdateWithCount replaces the current message with an N-of-M counter,
	// e.g. per-chunk extraction progress.
	UpdateWithCount(msg string, current, total int)

	// Succeed finishes the current activity as successful.
	Succeed(msg string)

	// Fail finishes the current activity as failed.
	Fail(msg string)

	// Debug emits a diagnostic line (verbose mode only).
	Debug(msg string)

	// Info emits an informational line.
	Info(msg string)

	// SetStage records the pipeline stage now running.
	SetStage(stage string)

	// CurrentStage returns the stage most recently set, or empty.
	CurrentStage() string
}

// New returns a reporter for the given mode. Interactive mode falls back
// to silent when stderr is not a terminal (piped or CI runs).
func New(mode config.ProgressMode, log logging.Logger) Reporter {
	switch mode {
	case config.ProgressVerbose:
		return NewVerbose(log)
	case config.ProgressSilent:
		return NewSilent()
	default:
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			return NewSilent()
		}
		return NewInteractive(os.Stderr)
	}
}
