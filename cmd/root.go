package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
)

// errSilent signals that the error has already been rendered for the
// user and must not be printed again by cobra.
var errSilent = errors.New("")

// NewRootCommand assembles the minute CLI.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "minute",
		Short: "Turn meeting transcripts into structured notes",
		Long: `minute turns unstructured meeting transcripts into polished, structured
meeting notes, and a requirements document when the meeting discussed
deliverables.

Configuration lives in ~/.minute/config.yaml; API keys are stored
encrypted in ~/.minute/credentials.yaml (see 'minute auth').

COMMON WORKFLOWS:
  Store a key:       minute auth set openai
  Process a meeting: minute notes meeting.txt
  Machine output:    minute notes meeting.txt --output json
  Preview chunking:  minute chunks meeting.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewNotesCommand(nil))
	root.AddCommand(NewChunksCommand(nil))
	root.AddCommand(NewAuthCommand(nil))
	root.AddCommand(NewConfigCommand(nil))
	root.AddCommand(NewModelsCommand(nil))
	root.AddCommand(NewVersionCommand())

	return root
}

// asPipelineError unwraps err into a PipelineError if it is one.
func asPipelineError(err error, target **pkgerrors.PipelineError) bool {
	return errors.As(err, target)
}
