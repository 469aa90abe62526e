package transcript

import "strings"

// charsPerToken is the character-to-token approximation used everywhere
// in the pipeline. It intentionally overestimates for dense text so the
// chunker stays inside model context windows.
const charsPerToken = 4

// cutSearchWindow is how far back from a chunk boundary we look for a
// natural break.
const cutSearchWindow = 500

// speakerLookback is how far back we scan for an in-flight speaker when
// a chunk begins mid-turn.
const speakerLookback = 5000

// ChunkerConfig controls chunk sizing. Sizes are in estimated tokens.
type ChunkerConfig struct {
	ChunkSize              int
	OverlapSize            int
	PreserveSpeakerContext bool
}

// DefaultChunkerConfig mirrors the shipped configuration defaults.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkSize:              4000,
		OverlapSize:            200,
		PreserveSpeakerContext: true,
	}
}

// Chunk is one window of the transcript. StartOffset and EndOffset are
// character offsets into the normalized transcript; chunks tile it with
// no gaps. OverlapContent is read-only lookahead into the next chunk and
// is never counted in the offsets.
type Chunk struct {
	Index           int      `json:"index"`
	Content         string   `json:"content"`
	StartOffset     int      `json:"startOffset"`
	EndOffset       int      `json:"endOffset"`
	SpeakersPresent []string `json:"speakersPresent"`
	HasOverlap      bool     `json:"hasOverlap"`
	OverlapContent  string   `json:"overlapContent,omitempty"`
}

// EstimateTokens approximates the token count of text as ceil(len/4).
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// Chunker splits transcripts into model-sized windows at natural
// boundaries.
type Chunker struct {
	cfg ChunkerConfig
}

// NewChunker returns a chunker for cfg, filling zero sizes from the
// defaults.
func NewChunker(cfg ChunkerConfig) *Chunker {
	def := DefaultChunkerConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.OverlapSize < 0 {
		cfg.OverlapSize = def.OverlapSize
	}
	return &Chunker{cfg: cfg}
}

// CountChunks predicts how many chunks Split will produce for text. It
// walks the same cut sequence Split does, skipping the per-chunk work,
// so natural-boundary cutbacks never put the prediction out of step
// with the real run.
func (c *Chunker) CountChunks(text string) int {
	if EstimateTokens(text) <= c.cfg.ChunkSize {
		return 1
	}
	stride := c.stride()
	count := 0
	for start := 0; start < len(text); {
		count++
		start = c.cutEnd(text, start, stride)
	}
	return count
}

// stride is the chunk advance in characters: chunk size minus the
// overlap (capped at half the chunk size so it never collapses).
func (c *Chunker) stride() int {
	overlap := c.cfg.OverlapSize
	if max := c.cfg.ChunkSize / 2; overlap > max {
		overlap = max
	}
	return (c.cfg.ChunkSize - overlap) * charsPerToken
}

// cutEnd returns where the chunk starting at start ends.
func (c *Chunker) cutEnd(text string, start, stride int) int {
	end := start + stride
	if end >= len(text) {
		return len(text)
	}
	return c.cutPoint(text, start, end)
}

// Split divides text into chunks. Short transcripts come back as a
// single chunk untouched. Longer ones are cut at natural boundaries:
// preferably the start of a speaker turn, then a paragraph break, then a
// line break, then a sentence end, searching backward through the last
// 500 characters of each window.
func (c *Chunker) Split(text string) []Chunk {
	if EstimateTokens(text) <= c.cfg.ChunkSize {
		chunk := Chunk{
			Index:           0,
			Content:         text,
			StartOffset:     0,
			EndOffset:       len(text),
			SpeakersPresent: SpeakersIn(text),
		}
		return []Chunk{chunk}
	}

	// The chunker walks the tiling stride so chunk counts stay
	// predictable; overlap is added back as lookahead below.
	stride := c.stride()
	overlapChars := c.cfg.OverlapSize * charsPerToken

	var chunks []Chunk
	start := 0
	for start < len(text) {
		end := c.cutEnd(text, start, stride)

		chunk := Chunk{
			Index:       len(chunks),
			Content:     text[start:end],
			StartOffset: start,
			EndOffset:   end,
		}
		if end < len(text) && overlapChars > 0 {
			overlapEnd := end + overlapChars
			if overlapEnd > len(text) {
				overlapEnd = len(text)
			}
			chunk.HasOverlap = true
			chunk.OverlapContent = text[end:overlapEnd]
		}
		chunk.SpeakersPresent = c.speakersFor(text, chunk)
		chunks = append(chunks, chunk)
		start = end
	}
	return chunks
}

// cutPoint searches backward from end for the best place to cut, looking
// no further back than cutSearchWindow characters. Boundaries are tried
// in preference order; when nothing usable is found the hard limit
// stands.
func (c *Chunker) cutPoint(text string, start, end int) int {
	searchStart := end - cutSearchWindow
	if searchStart < start {
		searchStart = start
	}
	window := text[searchStart:end]

	// Start of the last speaker turn: the turn moves whole into the next
	// chunk.
	if cut := lastSpeakerLineStart(window); cut > 0 {
		return searchStart + cut
	}
	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return searchStart + idx + 2
	}
	if idx := strings.LastIndex(window, "\n"); idx > 0 {
		return searchStart + idx + 1
	}
	for _, term := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(window, term); idx > 0 {
			return searchStart + idx + len(term)
		}
	}
	return end
}

// lastSpeakerLineStart returns the offset within window of the last line
// that opens a valid speaker turn, or -1.
func lastSpeakerLineStart(window string) int {
	best := -1
	lineStart := 0
	for lineStart < len(window) {
		lineEnd := strings.IndexByte(window[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(window)
		} else {
			lineEnd += lineStart
		}
		if lineStart > 0 && speakerAt(window[lineStart:lineEnd]) != "" {
			best = lineStart
		}
		lineStart = lineEnd + 1
	}
	return best
}

// speakersFor lists the speakers active in a chunk. When a chunk starts
// mid-turn and speaker context is preserved, the speaker whose turn is
// in flight is looked up in the preceding text and prepended.
func (c *Chunker) speakersFor(text string, chunk Chunk) []string {
	speakers := SpeakersIn(chunk.Content)
	if !c.cfg.PreserveSpeakerContext || chunk.StartOffset == 0 {
		return speakers
	}
	carried := LastSpeakerBefore(text, chunk.StartOffset, speakerLookback)
	if carried == "" {
		return speakers
	}
	for _, s := range speakers {
		if s == carried {
			return speakers
		}
	}
	return append([]string{carried}, speakers...)
}
