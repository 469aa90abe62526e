package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/minute-cli/config"
	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
	"github.com/otherjamesbrown/minute-cli/pkg/llm"
	"github.com/otherjamesbrown/minute-cli/pkg/logging"
	"github.com/otherjamesbrown/minute-cli/pkg/observability"
	"github.com/otherjamesbrown/minute-cli/pkg/progress"
)

const testTranscript = `Meeting: Frontend Planning

Sarah: Thanks for joining, everyone. We need to settle the stack today.
Sarah: Let's go with React for the frontend.
Mike: Sounds good to me, React it is.
Sarah: Mike, can you have the wireframes ready by Friday?
Mike: Yes, I'll have the wireframes ready by Friday.`

// scriptedProvider answers each pipeline stage with canned JSON.
type scriptedProvider struct {
	calls int
	fail  bool
}

func (s *scriptedProvider) Name() string { return "fake/test-model" }

func (s *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "ok"}, nil
}

func (s *scriptedProvider) CompleteStructured(ctx context.Context, req llm.CompletionRequest, target interface{}) error {
	s.calls++
	if s.fail {
		return context.DeadlineExceeded
	}
	var raw string
	switch req.Stage {
	case pkgerrors.StageExtraction:
		raw = `{
			"decisions": [{"decision": "Use React for the frontend", "quote": "Let's go with React for the frontend"}],
			"actionItems": [{"task": "Have the wireframes ready", "owner": "Mike", "due": "Friday", "quote": "Mike, can you have the wireframes ready by Friday?"}],
			"deliverables": [],
			"keyPoints": [],
			"summaryForNextChunk": "The team chose React."
		}`
	case pkgerrors.StageRefinement:
		raw = `{
			"decisions": [{"decision": "Use React for the frontend", "quote": "Let's go with React for the frontend"}],
			"actionItems": [{"task": "Have the wireframes ready", "owner": "Mike", "due": "Friday", "quote": "q"}],
			"deliverables": [],
			"meetingSummary": "The team agreed to build the frontend in React.",
			"attendees": ["Sarah", "Mike"],
			"openQuestions": []
		}`
	case pkgerrors.StageEditing:
		raw = `{
			"notes": {
				"title": "Use React for the frontend",
				"attendees": ["Sarah", "Mike"],
				"summary": "The team agreed to build the frontend in React.",
				"decisions": [{"id": "D1", "decision": "Use React for the frontend", "quote": "q"}],
				"actionItems": [{"id": "A1", "task": "Have the wireframes ready", "owner": "Mike", "due": "Friday", "priority": "medium", "status": "open"}],
				"keyDiscussionPoints": [],
				"openQuestions": []
			},
			"changesApplied": ["normalized attendee names"]
		}`
	default:
		return fmt.Errorf("unexpected stage %q", req.Stage)
	}
	return json.Unmarshal([]byte(raw), target)
}

func testNotesDeps(t *testing.T, provider llm.Provider) (*NotesCommandDeps, *bytes.Buffer, string) {
	t.Helper()
	t.Setenv("MINUTE_CONFIG_DIR", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.txt")
	require.NoError(t, os.WriteFile(path, []byte(testTranscript), 0o600))

	stdout := &bytes.Buffer{}
	deps := &NotesCommandDeps{
		LoadConfig:  config.LoadConfig,
		NewProvider: func(cfg *config.CLIConfig) (llm.Provider, error) { return provider, nil },
		NewReporter: func(mode config.ProgressMode, log logging.Logger) progress.Reporter {
			return progress.NewSilent()
		},
		ReadFile: os.ReadFile,
		Stdout:   stdout,
		Stderr:   &bytes.Buffer{},
	}
	return deps, stdout, path
}

func TestNotesCommandMarkdown(t *testing.T) {
	provider := &scriptedProvider{}
	deps, stdout, path := testNotesDeps(t, provider)

	cmd := NewNotesCommand(deps)
	cmd.SetArgs([]string{path, "--progress", "silent"})
	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "# Use React for the frontend")
	assert.Contains(t, out, "## Decisions")
	assert.Contains(t, out, "| Mike | Have the wireframes ready | Friday | medium |")
	assert.Equal(t, 3, provider.calls, "extraction, refinement, editing")
}

func TestNotesCommandJSON(t *testing.T) {
	deps, stdout, path := testNotesDeps(t, &scriptedProvider{})

	cmd := NewNotesCommand(deps)
	cmd.SetArgs([]string{path, "--output", "json", "--progress", "silent"})
	require.NoError(t, cmd.Execute())

	var decoded struct {
		Notes struct {
			Title     string `json:"title"`
			Decisions []struct {
				ID string `json:"id"`
			} `json:"decisions"`
		} `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, "Use React for the frontend", decoded.Notes.Title)
	require.Len(t, decoded.Notes.Decisions, 1)
	assert.Equal(t, "D1", decoded.Notes.Decisions[0].ID)
}

func TestNotesCommandYAML(t *testing.T) {
	deps, stdout, path := testNotesDeps(t, &scriptedProvider{})

	cmd := NewNotesCommand(deps)
	cmd.SetArgs([]string{path, "--output", "yaml", "--progress", "silent"})
	require.NoError(t, cmd.Execute())

	var decoded struct {
		Notes struct {
			Title     string `yaml:"title"`
			Decisions []struct {
				ID string `yaml:"id"`
			} `yaml:"decisions"`
		} `yaml:"notes"`
	}
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, "Use React for the frontend", decoded.Notes.Title)
	require.Len(t, decoded.Notes.Decisions, 1)
	assert.Equal(t, "D1", decoded.Notes.Decisions[0].ID)
	assert.NotContains(t, stdout.String(), "markdown:", "derived renderings stay out of the structured output")
}

func TestNotesCommandWritesFile(t *testing.T) {
	deps, stdout, path := testNotesDeps(t, &scriptedProvider{})
	outPath := filepath.Join(t.TempDir(), "notes.md")

	cmd := NewNotesCommand(deps)
	cmd.SetArgs([]string{path, "--out", outPath, "--progress", "silent"})
	require.NoError(t, cmd.Execute())

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "## Action Items")
	assert.Empty(t, stdout.String(), "document goes to the file, not stdout")
}

func TestNotesCommandRecordsMetrics(t *testing.T) {
	deps, _, path := testNotesDeps(t, &scriptedProvider{})
	m := observability.NewPipelineMetrics(prometheus.NewRegistry())
	deps.Metrics = func() *observability.PipelineMetrics { return m }

	cmd := NewNotesCommand(deps)
	cmd.SetArgs([]string{path, "--progress", "silent"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ModelCallsTotal.WithLabelValues("fake", "test-model", "ok")),
		"extraction, refinement, editing each record one model call")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChunksProcessed))

	assert.NotNil(t, DefaultNotesDeps().Metrics, "production deps carry the metrics set")
}

func TestNotesCommandPipelineFailure(t *testing.T) {
	provider := &scriptedProvider{fail: true}
	deps, _, path := testNotesDeps(t, provider)
	stderr := &bytes.Buffer{}
	deps.Stderr = stderr

	cmd := NewNotesCommand(deps)
	cmd.SetArgs([]string{path, "--progress", "silent"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "exceeded the configured time budget")
	assert.Contains(t, stderr.String(), "Raise the budget")
}

func TestNotesCommandMissingFile(t *testing.T) {
	deps, _, _ := testNotesDeps(t, &scriptedProvider{})

	cmd := NewNotesCommand(deps)
	cmd.SetArgs([]string{"/does/not/exist.txt", "--progress", "silent"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading transcript")
}
