package schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/docchunk/schema"
)

func textElem(pos int, text string) schema.ContentElement {
	return schema.ContentElement{Type: schema.ElementText, Position: pos, Text: text}
}

func TestChunk(t *testing.T) {
	newChunk := func(elems ...schema.ContentElement) schema.Chunk {
		return schema.NewChunk(elems,
			schema.ChunkBoundary{
				StartPos: elems[0].Position,
				EndPos:   elems[len(elems)-1].Position,
			},
			schema.ChunkMetadata{
				ChunkID:   "chunk_test",
				CreatedAt: time.Now().UTC(),
				WordCount: schema.ElementsWordCount(elems),
			})
	}

	t.Run("SizeFromContent", func(t *testing.T) {
		c := newChunk(textElem(0, "one two three"), textElem(1, "four five"))
		assert.Equal(t, 5, c.Size())
		assert.False(t, c.HasSizeOverride())
	})

	t.Run("SizeOverride", func(t *testing.T) {
		c := newChunk(textElem(0, "one two three"))
		c.SetSize(42)
		assert.Equal(t, 42, c.Size())
		assert.True(t, c.HasSizeOverride())
	})

	t.Run("NonTextualIgnoredBySize", func(t *testing.T) {
		c := newChunk(
			textElem(0, "one two"),
			schema.ContentElement{Type: schema.ElementFigure, Position: 1, Text: "Figure 1: a diagram"},
		)
		assert.Equal(t, 2, c.Size())
	})

	t.Run("ValidateOK", func(t *testing.T) {
		c := newChunk(textElem(3, "hello world"), textElem(4, "more text"))
		require.NoError(t, c.Validate())
	})

	t.Run("ValidateEmpty", func(t *testing.T) {
		c := schema.NewChunk(nil, schema.ChunkBoundary{}, schema.ChunkMetadata{ChunkID: "x"})
		assert.ErrorIs(t, c.Validate(), schema.ErrEmptyChunk)
	})

	t.Run("ValidateBoundaryMismatch", func(t *testing.T) {
		c := schema.NewChunk(
			[]schema.ContentElement{textElem(5, "text")},
			schema.ChunkBoundary{StartPos: 0, EndPos: 9},
			schema.ChunkMetadata{ChunkID: "x"})
		assert.ErrorIs(t, c.Validate(), schema.ErrBoundaryMismatch)
	})

	t.Run("ValidateMissingID", func(t *testing.T) {
		c := schema.NewChunk(
			[]schema.ContentElement{textElem(0, "text")},
			schema.ChunkBoundary{StartPos: 0, EndPos: 0},
			schema.ChunkMetadata{})
		assert.ErrorIs(t, c.Validate(), schema.ErrMissingChunkID)
	})

	t.Run("Words", func(t *testing.T) {
		c := newChunk(
			textElem(0, "alpha beta"),
			schema.ContentElement{Type: schema.ElementHeading, Position: 1, Text: "Skip Me"},
			textElem(2, "gamma"),
		)
		words, positions := c.Words()
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, words)
		assert.Equal(t, []int{0, 0, 2}, positions)
	})

	t.Run("ElementsInRange", func(t *testing.T) {
		c := newChunk(textElem(2, "a"), textElem(3, "b"), textElem(4, "c"))
		got := c.ElementsInRange(3, 4)
		require.Len(t, got, 2)
		assert.Equal(t, 3, got[0].Position)
		assert.Equal(t, 4, got[1].Position)
	})
}

func TestReferenceSets(t *testing.T) {
	ref := func(id, target string, pos int) schema.Reference {
		return schema.Reference{ID: id, Target: target, Position: pos}
	}

	t.Run("MergeDeduplicates", func(t *testing.T) {
		a := schema.ReferenceSet{Outgoing: []schema.Reference{ref("r1", "Figure 1", 2)}}
		b := schema.ReferenceSet{Outgoing: []schema.Reference{
			ref("r1", "Figure 1", 2),
			ref("r2", "Table 3", 5),
		}}
		merged := schema.MergeReferenceSets(a, b)
		assert.Len(t, merged.Outgoing, 2)
	})

	t.Run("FilterRange", func(t *testing.T) {
		set := schema.ReferenceSet{
			Internal: []schema.Reference{ref("fig1", "Figure 1", 4)},
			Outgoing: []schema.Reference{ref("r1", "Figure 1", 2), ref("r2", "Table 3", 9)},
		}
		got := set.FilterRange(0, 5)
		assert.Len(t, got.Internal, 1)
		require.Len(t, got.Outgoing, 1)
		assert.Equal(t, "r1", got.Outgoing[0].ID)
	})
}

func TestContextMerge(t *testing.T) {
	a := schema.Context{Topics: []string{"alpha", "beta"}, Entities: []string{"Acme"}}
	b := schema.Context{Topics: []string{"beta", "gamma"}}
	merged := a.Merge(b)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, merged.Topics)
	assert.Equal(t, []string{"Acme"}, merged.Entities)
}

func TestContentElement(t *testing.T) {
	t.Run("EndsTerminated", func(t *testing.T) {
		assert.True(t, textElem(0, "A sentence.").EndsTerminated())
		assert.True(t, textElem(0, "Really?").EndsTerminated())
		assert.False(t, textElem(0, "trailing clause").EndsTerminated())
		assert.False(t, schema.ContentElement{Type: schema.ElementText}.EndsTerminated())
	})

	t.Run("IsChapterBoundary", func(t *testing.T) {
		flagged := schema.ContentElement{
			Type: schema.ElementHeading, Level: 1, Text: "Chapter 2",
			Metadata: map[string]any{"is_chapter_boundary": true},
		}
		assert.True(t, flagged.IsChapterBoundary())
		assert.False(t, textElem(0, "Chapter 2").IsChapterBoundary())
	})
}
