package schema

import (
	"errors"
	"strings"
	"time"
)

// HeadingRef is one entry of a boundary's heading stack: an ancestor
// heading in effect at the chunk's position, innermost last.
type HeadingRef struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id,omitempty"`
}

// ChunkBoundary describes a chunk's positional span together with the
// context that carries over the boundary.
type ChunkBoundary struct {
	StartPos     int          `json:"start_pos"`
	EndPos       int          `json:"end_pos"`
	Context      Context      `json:"context"`
	HeadingStack []HeadingRef `json:"heading_stack,omitempty"`
	References   ReferenceSet `json:"references"`
}

// ChunkMetadata is the descriptive metadata attached to a chunk.
// SequenceNum is a float: whole numbers for chunks produced by a strategy,
// fractional offsets for parts split off later, so relative order survives
// without renumbering siblings.
type ChunkMetadata struct {
	ChunkID         string             `json:"chunk_id"`
	SequenceNum     float64            `json:"sequence_num"`
	StartPage       int                `json:"start_page,omitempty"`
	EndPage         int                `json:"end_page,omitempty"`
	SectionTitle    string             `json:"section_title,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	WordCount       int                `json:"word_count"`
	Patterns        map[string]float64 `json:"patterns,omitempty"`
	SourceReference map[string]any     `json:"source_reference,omitempty"`
}

// Chunk is a bounded, self-describing slice of a document. Content is a
// snapshot of the covered elements, not a view into the original document.
//
// Size is derived from content on every call unless an explicit override
// has been set with SetSize. The only producer of an override is chunk
// merging, where the contract fixes the merged size to the sum of the
// member sizes. All other transformations build new Chunk values without
// an override, so a cached size can never go stale.
type Chunk struct {
	Content  []ContentElement `json:"content"`
	Boundary ChunkBoundary    `json:"boundary"`
	Metadata ChunkMetadata    `json:"metadata"`

	sizeOverride *int
}

// NewChunk builds a chunk from a content snapshot, boundary and metadata.
func NewChunk(content []ContentElement, boundary ChunkBoundary, metadata ChunkMetadata) Chunk {
	return Chunk{
		Content:  content,
		Boundary: boundary,
		Metadata: metadata,
	}
}

// Size returns the chunk's size in words: the explicit override when one
// is set, otherwise the word count of all text-bearing content elements.
func (c Chunk) Size() int {
	if c.sizeOverride != nil {
		return *c.sizeOverride
	}
	return ElementsWordCount(c.Content)
}

// SetSize fixes the chunk's size to an explicit value.
func (c *Chunk) SetSize(size int) {
	c.sizeOverride = &size
}

// HasSizeOverride reports whether Size returns a fixed value instead of
// recomputing from content.
func (c Chunk) HasSizeOverride() bool {
	return c.sizeOverride != nil
}

var (
	// ErrEmptyChunk reports a chunk with no content elements.
	ErrEmptyChunk = errors.New("chunk has no content")
	// ErrBoundaryMismatch reports boundary positions that do not match the
	// first and last content elements.
	ErrBoundaryMismatch = errors.New("chunk boundary does not match content positions")
	// ErrMissingChunkID reports a chunk without an identifier.
	ErrMissingChunkID = errors.New("chunk has no id")
)

// Validate checks the chunk's structural invariants: non-empty content,
// boundary positions matching the content ends, and a present chunk ID.
func (c Chunk) Validate() error {
	if len(c.Content) == 0 {
		return ErrEmptyChunk
	}
	if c.Metadata.ChunkID == "" {
		return ErrMissingChunkID
	}
	if c.Boundary.StartPos != c.Content[0].Position ||
		c.Boundary.EndPos != c.Content[len(c.Content)-1].Position {
		return ErrBoundaryMismatch
	}
	return nil
}

// Words returns all words of the chunk's text-bearing elements in order,
// together with a parallel slice of the element position each word came
// from.
func (c Chunk) Words() (words []string, positions []int) {
	for _, e := range c.Content {
		if !e.IsTextual() {
			continue
		}
		for _, w := range strings.Fields(e.Text) {
			words = append(words, w)
			positions = append(positions, e.Position)
		}
	}
	return words, positions
}

// ElementsInRange returns a copy of the content elements whose position
// lies in [startPos, endPos].
func (c Chunk) ElementsInRange(startPos, endPos int) []ContentElement {
	var out []ContentElement
	for _, e := range c.Content {
		if e.Position >= startPos && e.Position <= endPos {
			out = append(out, e)
		}
	}
	return out
}
