package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minute-cli/config"
	"github.com/otherjamesbrown/minute-cli/pkg/transcript"
)

// ChunksCommandDeps holds dependencies for the chunks command.
type ChunksCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
	ReadFile   func(path string) ([]byte, error)
	Stdout     io.Writer
}

// DefaultChunksDeps returns default dependencies for production use.
func DefaultChunksDeps() *ChunksCommandDeps {
	return &ChunksCommandDeps{
		LoadConfig: config.LoadConfig,
		ReadFile:   os.ReadFile,
		Stdout:     os.Stdout,
	}
}

// chunkPreview is the machine-readable chunk summary.
type chunkPreview struct {
	Index       int      `json:"index" yaml:"index"`
	StartOffset int      `json:"startOffset" yaml:"start_offset"`
	EndOffset   int      `json:"endOffset" yaml:"end_offset"`
	Tokens      int      `json:"tokens" yaml:"tokens"`
	HasOverlap  bool     `json:"hasOverlap" yaml:"has_overlap"`
	Speakers    []string `json:"speakers" yaml:"speakers"`
}

// chunksReport is the full dry-run report.
type chunksReport struct {
	File        string         `json:"file" yaml:"file"`
	TotalTokens int            `json:"totalTokens" yaml:"total_tokens"`
	ChunkCount  int            `json:"chunkCount" yaml:"chunk_count"`
	Title       string         `json:"title,omitempty" yaml:"title,omitempty"`
	Date        string         `json:"date,omitempty" yaml:"date,omitempty"`
	Attendees   []string       `json:"attendees" yaml:"attendees"`
	Chunks      []chunkPreview `json:"chunks" yaml:"chunks"`
}

// NewChunksCommand creates the 'chunks' command: a dry run of the
// chunker with no model calls.
func NewChunksCommand(deps *ChunksCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultChunksDeps()
	}

	var (
		outputFormat string
		chunkSize    int
		overlapSize  int
	)

	cmd := &cobra.Command{
		Use:   "chunks <transcript-file>",
		Short: "Preview how a transcript will be chunked",
		Long: `Preview how a transcript will be split into chunks, without calling
any model. Useful for estimating cost and checking that chunk boundaries
fall at sensible places.

Examples:
  minute chunks meeting.txt
  minute chunks meeting.txt --chunk-size 2000 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChunks(deps, args[0], outputFormat, chunkSize, overlapSize)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Chunk size in estimated tokens")
	cmd.Flags().IntVar(&overlapSize, "overlap", 0, "Chunk overlap in estimated tokens")

	return cmd
}

func runChunks(deps *ChunksCommandDeps, path, outputFormat string, chunkSize, overlapSize int) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if chunkSize > 0 {
		cfg.Chunking.ChunkSize = chunkSize
	}
	if overlapSize > 0 {
		cfg.Chunking.OverlapSize = overlapSize
	}
	format, err := resolveFormat(outputFormat, cfg)
	if err != nil {
		return err
	}

	raw, err := deps.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	normalized := transcript.Normalize(string(raw))
	if err := transcript.Validate(normalized); err != nil {
		return err
	}

	chunker := transcript.NewChunker(transcript.ChunkerConfig{
		ChunkSize:              cfg.Chunking.ChunkSize,
		OverlapSize:            cfg.Chunking.OverlapSize,
		PreserveSpeakerContext: cfg.Chunking.PreserveSpeakers(),
	})
	chunks := chunker.Split(normalized)
	metadata := transcript.ExtractMetadata(normalized)

	report := chunksReport{
		File:        path,
		TotalTokens: transcript.EstimateTokens(normalized),
		ChunkCount:  len(chunks),
		Title:       metadata.Title,
		Date:        metadata.Date,
		Attendees:   metadata.Attendees,
	}
	for _, c := range chunks {
		report.Chunks = append(report.Chunks, chunkPreview{
			Index:       c.Index,
			StartOffset: c.StartOffset,
			EndOffset:   c.EndOffset,
			Tokens:      transcript.EstimateTokens(c.Content),
			HasOverlap:  c.HasOverlap,
			Speakers:    c.SpeakersPresent,
		})
	}

	if format != config.OutputFormatText {
		return writeFormatted(deps.Stdout, format, report)
	}

	fmt.Fprintf(deps.Stdout, "File:      %s\n", report.File)
	if report.Title != "" {
		fmt.Fprintf(deps.Stdout, "Title:     %s\n", report.Title)
	}
	if report.Date != "" {
		fmt.Fprintf(deps.Stdout, "Date:      %s\n", report.Date)
	}
	if len(report.Attendees) > 0 {
		fmt.Fprintf(deps.Stdout, "Attendees: %d\n", len(report.Attendees))
	}
	fmt.Fprintf(deps.Stdout, "Tokens:    ~%d\n", report.TotalTokens)
	fmt.Fprintf(deps.Stdout, "Chunks:    %d\n\n", report.ChunkCount)
	for _, c := range report.Chunks {
		overlap := ""
		if c.HasOverlap {
			overlap = " +overlap"
		}
		fmt.Fprintf(deps.Stdout, "  [%d] %d-%d (~%d tokens, %d speaker(s))%s\n",
			c.Index, c.StartOffset, c.EndOffset, c.Tokens, len(c.Speakers), overlap)
	}
	return nil
}
