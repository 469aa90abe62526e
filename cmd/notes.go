package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minute-cli/config"
	"github.com/otherjamesbrown/minute-cli/credentials"
	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
	"github.com/otherjamesbrown/minute-cli/pkg/llm"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
	"github.com/otherjamesbrown/minute-cli/pkg/notes"
	"github.com/otherjamesbrown/minute-cli/pkg/observability"
	"github.com/otherjamesbrown/minute-cli/pkg/progress"
)

// NotesCommandDeps holds dependencies for the notes command.
type NotesCommandDeps struct {
	LoadConfig  func() (*config.CLIConfig, error)
	NewProvider func(cfg *config.CLIConfig) (llm.Provider, error)
	NewReporter func(mode config.ProgressMode, log logging.Logger) progress.Reporter
	Metrics     func() *observability.PipelineMetrics
	ReadFile    func(path string) ([]byte, error)
	Stdout      io.Writer
	Stderr      io.Writer
}

// DefaultNotesDeps returns default dependencies for production use.
func DefaultNotesDeps() *NotesCommandDeps {
	return &NotesCommandDeps{
		LoadConfig: config.LoadConfig,
		NewProvider: func(cfg *config.CLIConfig) (llm.Provider, error) {
			store, err := credentials.NewStore()
			if err != nil {
				return nil, err
			}
			return llm.Resolve(cfg, store)
		},
		NewReporter: progress.New,
		Metrics:     observability.DefaultPipelineMetrics,
		ReadFile:    os.ReadFile,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
}

// notesOptions holds the notes command flags.
type notesOptions struct {
	provider     string
	model        string
	baseURL      string
	timeout      time.Duration
	outputFormat string
	outputPath   string
	progressMode string
	chunkSize    int
	overlapSize  int
	noPRD        bool
}

// NewNotesCommand creates the 'notes' command.
func NewNotesCommand(deps *NotesCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultNotesDeps()
	}
	opts := &notesOptions{}

	cmd := &cobra.Command{
		Use:   "notes <transcript-file>",
		Short: "Turn a meeting transcript into structured notes",
		Long: `Turn an unstructured meeting transcript into structured meeting notes.

The transcript is chunked, each chunk is analyzed by the configured model,
the results are consolidated into a canonical record, and the final
documents are generated and polished. When the meeting discussed
deliverables, a PRD is produced alongside the notes (disable with --no-prd).

Use "-" as the file argument to read the transcript from stdin.

Examples:
  # Basic run, Markdown to stdout
  minute notes meeting.txt

  # JSON output to a file, custom model
  minute notes meeting.txt --output json --out notes.json --model gpt-4o

  # Local model via ollama
  minute notes meeting.txt --provider ollama --model llama3

  # Long transcript, larger budget
  minute notes all-hands.txt --timeout 5m --chunk-size 8000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotes(cmd.Context(), deps, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "", "Model provider: openai, anthropic, ollama")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model identifier")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Override the provider endpoint URL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-request time budget (e.g. 120s, 5m)")
	cmd.Flags().StringVarP(&opts.outputFormat, "output", "o", "", "Output format: text (Markdown), json, yaml")
	cmd.Flags().StringVar(&opts.outputPath, "out", "", "Write the result to a file instead of stdout")
	cmd.Flags().StringVar(&opts.progressMode, "progress", "", "Progress mode: interactive, verbose, silent")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Chunk size in estimated tokens")
	cmd.Flags().IntVar(&opts.overlapSize, "overlap", 0, "Chunk overlap in estimated tokens")
	cmd.Flags().BoolVar(&opts.noPRD, "no-prd", false, "Never generate a PRD")

	return cmd
}

func runNotes(ctx context.Context, deps *NotesCommandDeps, opts *notesOptions, path string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyNotesFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	raw, err := readTranscript(deps, path)
	if err != nil {
		return err
	}

	log := newCommandLogger(cfg)
	provider, err := deps.NewProvider(cfg)
	if err != nil {
		return renderPipelineError(deps.Stderr, err)
	}

	reporter := deps.NewReporter(cfg.Progress, log)
	var pipelineOpts []notes.PipelineOption
	if deps.Metrics != nil {
		pipelineOpts = append(pipelineOpts, notes.WithMetrics(deps.Metrics()))
	}
	pipeline := notes.NewPipeline(notes.PipelineConfigFromCLI(cfg), provider, reporter, log, pipelineOpts...)

	result, err := pipeline.Run(ctx, string(raw))
	if err != nil {
		return renderPipelineError(deps.Stderr, err)
	}

	var body string
	switch cfg.OutputFormat {
	case config.OutputFormatJSON:
		body = result.Output.JSON + "\n"
	case config.OutputFormatYAML:
		var buf bytes.Buffer
		if err := writeFormatted(&buf, config.OutputFormatYAML, result.Output); err != nil {
			return err
		}
		body = buf.String()
	default:
		body = result.Output.Markdown
	}

	if opts.outputPath != "" {
		if err := os.WriteFile(opts.outputPath, []byte(body), 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(deps.Stderr, "Wrote %s (%d chunk(s), %s)\n",
			opts.outputPath, result.TotalChunks, formatDurationMs(result.ProcessingTimeMs))
		return nil
	}
	fmt.Fprint(deps.Stdout, body)
	return nil
}

// applyNotesFlags overlays command-line flags on the loaded config.
func applyNotesFlags(cfg *config.CLIConfig, opts *notesOptions) {
	if opts.provider != "" {
		cfg.Provider = opts.provider
	}
	if opts.model != "" {
		cfg.Model = opts.model
	}
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	if opts.timeout > 0 {
		cfg.Timeout = opts.timeout
	}
	if opts.outputFormat != "" {
		cfg.OutputFormat = config.OutputFormat(opts.outputFormat)
	}
	if opts.progressMode != "" {
		cfg.Progress = config.ProgressMode(opts.progressMode)
	}
	if opts.chunkSize > 0 {
		cfg.Chunking.ChunkSize = opts.chunkSize
	}
	if opts.overlapSize > 0 {
		cfg.Chunking.OverlapSize = opts.overlapSize
	}
	if opts.noPRD {
		disabled := false
		cfg.GeneratePRD = &disabled
	}
}

func readTranscript(deps *NotesCommandDeps, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	raw, err := deps.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return raw, nil
}

// renderPipelineError prints the actionable message for a classified
// failure and returns a silent error so cobra does not double-print.
func renderPipelineError(w io.Writer, err error) error {
	var pe *pkgerrors.PipelineError
	if asPipelineError(err, &pe) {
		fmt.Fprintln(w, pe.UserMessage())
		return errSilent
	}
	return err
}

func newCommandLogger(cfg *config.CLIConfig) logging.Logger {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	return logging.NewLogger(&logging.Config{Level: level})
}
