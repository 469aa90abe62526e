package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minute-cli/config"
)

func testChunksDeps(t *testing.T, transcript string) (*ChunksCommandDeps, *bytes.Buffer, string) {
	t.Helper()
	t.Setenv("MINUTE_CONFIG_DIR", t.TempDir())

	path := filepath.Join(t.TempDir(), "meeting.txt")
	require.NoError(t, os.WriteFile(path, []byte(transcript), 0o600))

	stdout := &bytes.Buffer{}
	return &ChunksCommandDeps{
		LoadConfig: config.LoadConfig,
		ReadFile:   os.ReadFile,
		Stdout:     stdout,
	}, stdout, path
}

func TestChunksCommandText(t *testing.T) {
	deps, stdout, path := testChunksDeps(t, testTranscript)

	cmd := NewChunksCommand(deps)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "Title:     Frontend Planning")
	assert.Contains(t, out, "Chunks:    1")
	assert.Contains(t, out, "[0] 0-")
}

func TestChunksCommandJSON(t *testing.T) {
	long := strings.Repeat("Sarah: we keep discussing the roadmap in detail here.\n", 400)
	deps, stdout, path := testChunksDeps(t, long)

	cmd := NewChunksCommand(deps)
	cmd.SetArgs([]string{path, "--output", "json", "--chunk-size", "1000"})
	require.NoError(t, cmd.Execute())

	var report chunksReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Greater(t, report.ChunkCount, 1)
	assert.Len(t, report.Chunks, report.ChunkCount)
	assert.Contains(t, report.Attendees, "Sarah")
}

func TestChunksCommandRejectsShortInput(t *testing.T) {
	deps, _, path := testChunksDeps(t, "too short")

	cmd := NewChunksCommand(deps)
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}
