package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/docchunk/chunker"
	"github.com/sevigo/docchunk/chunktest"
	"github.com/sevigo/docchunk/schema"
	"github.com/sevigo/docchunk/strategy"
)

// pipelineConfig disables the balancing knobs that would reshape the tiny
// test documents, so assertions can target the strategy output directly.
func pipelineConfig() strategy.Config {
	return strategy.Config{
		Strategy:        strategy.StrategySemantic,
		MaxChunkSize:    50,
		OverlapTokens:   0,
		MinChunkSize:    0,
		TrackReferences: true,
	}
}

func newManager(t *testing.T, cfg strategy.Config) *chunker.Manager {
	t.Helper()
	log, _ := chunktest.NewTestLogger(t)
	m, err := chunker.New(cfg, chunker.WithLogger(log))
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	t.Run("UnknownStrategyFailsFast", func(t *testing.T) {
		cfg := pipelineConfig()
		cfg.Strategy = "recursive"
		_, err := chunker.New(cfg)
		assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
	})
}

func TestChunkDocument(t *testing.T) {
	t.Run("EmptyDocument", func(t *testing.T) {
		m := newManager(t, pipelineConfig())
		_, err := m.ChunkDocument(nil)
		assert.ErrorIs(t, err, chunker.ErrEmptyDocument)

		_, err = m.ChunkDocument(&schema.Document{})
		assert.ErrorIs(t, err, chunker.ErrEmptyDocument)
	})

	t.Run("SmallDocumentSingleChunk", func(t *testing.T) {
		m := newManager(t, pipelineConfig())
		chunks, err := m.ChunkDocument(chunktest.TestDocument())
		require.NoError(t, err)
		require.Len(t, chunks, 1)

		c := chunks[0]
		assert.Equal(t, 0, c.Boundary.StartPos)
		assert.Equal(t, 4, c.Boundary.EndPos)
		assert.NotEmpty(t, c.Metadata.ChunkID)
		assert.Equal(t, chunks, m.Chunks())

		// The figure reference resolves inside the same chunk.
		require.Len(t, c.Boundary.References.Internal, 1)
		assert.Equal(t, "Figure 1", c.Boundary.References.Internal[0].Target)
		assert.Empty(t, c.Boundary.References.Outgoing)
	})

	t.Run("OrderingAndCoverage", func(t *testing.T) {
		cfg := pipelineConfig()
		cfg.MaxChunkSize = 30
		m := newManager(t, cfg)
		doc := chunktest.LargeDocument(12)

		chunks, err := m.ChunkDocument(doc)
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)

		assert.Equal(t, doc.Content[0].Position, chunks[0].Boundary.StartPos)
		assert.Equal(t, doc.Content[len(doc.Content)-1].Position, chunks[len(chunks)-1].Boundary.EndPos)
		for i := 1; i < len(chunks); i++ {
			assert.Less(t, chunks[i-1].Metadata.SequenceNum, chunks[i].Metadata.SequenceNum)
			gap := chunks[i].Boundary.StartPos - chunks[i-1].Boundary.EndPos
			assert.Equal(t, 1, gap, "chunks %d and %d must be contiguous", i-1, i)
		}
	})

	t.Run("SoftSizeBound", func(t *testing.T) {
		cfg := pipelineConfig()
		cfg.MaxChunkSize = 20
		m := newManager(t, cfg)

		chunks, err := m.ChunkDocument(chunktest.LargeDocument(9))
		require.NoError(t, err)
		for _, c := range chunks {
			assert.LessOrEqual(t, c.Size(), cfg.MaxChunkSize,
				"chunk %s oversized", c.Metadata.ChunkID)
		}
	})

	t.Run("UndersizedChunksMerged", func(t *testing.T) {
		cfg := pipelineConfig()
		cfg.MaxChunkSize = 200
		cfg.MinChunkSize = 30
		m := newManager(t, cfg)

		chunks, err := m.ChunkDocument(chunktest.LargeDocument(9))
		require.NoError(t, err)
		require.NotEmpty(t, chunks)
		// Headings would otherwise cut the document into tiny sections.
		for i, c := range chunks {
			if i == len(chunks)-1 {
				continue
			}
			assert.GreaterOrEqual(t, c.Size(), cfg.MinChunkSize,
				"chunk %s undersized", c.Metadata.ChunkID)
		}
	})

	t.Run("CrossChunkReferenceResolution", func(t *testing.T) {
		m := newManager(t, pipelineConfig())
		doc := &schema.Document{Content: []schema.ContentElement{
			{Type: schema.ElementHeading, Position: 0, Text: "Chapter 1", Level: 1},
			{Type: schema.ElementText, Position: 1, Text: "See Figure 1 for the layout."},
			{Type: schema.ElementReference, Position: 2, ID: "fig1", Target: "Figure 1", RefType: "figure"},
			{Type: schema.ElementHeading, Position: 3, Text: "Chapter 2", Level: 1},
			{Type: schema.ElementFigure, Position: 4, Text: "Figure 1: Layout", ID: "Figure 1"},
			{Type: schema.ElementText, Position: 5, Text: "The layout drives the rest."},
		}}

		chunks, err := m.ChunkDocument(doc)
		require.NoError(t, err)
		require.Len(t, chunks, 2)

		out := chunks[0].Boundary.References.Outgoing
		require.Len(t, out, 1)
		require.NotNil(t, out[0].ResolvesToChunk)
		assert.Equal(t, 1, *out[0].ResolvesToChunk)

		in := chunks[1].Boundary.References.Incoming
		require.Len(t, in, 1)
		require.NotNil(t, in[0].FromChunk)
		assert.Equal(t, 0, *in[0].FromChunk)
		assert.Equal(t, "Figure 1", in[0].Target)
	})

	t.Run("UnresolvedReferenceStaysOutgoing", func(t *testing.T) {
		m := newManager(t, pipelineConfig())
		doc := &schema.Document{Content: []schema.ContentElement{
			{Type: schema.ElementText, Position: 0, Text: "The appendix covers the proof."},
			{Type: schema.ElementReference, Position: 1, ID: "ref9", Target: "Appendix Z", RefType: "section"},
		}}

		chunks, err := m.ChunkDocument(doc)
		require.NoError(t, err)
		require.Len(t, chunks, 1)

		out := chunks[0].Boundary.References.Outgoing
		require.Len(t, out, 1)
		assert.Nil(t, out[0].ResolvesToChunk)
	})

	t.Run("ReferenceIndexOnDocument", func(t *testing.T) {
		m := newManager(t, pipelineConfig())
		doc := chunktest.TestDocument()
		_, err := m.ChunkDocument(doc)
		require.NoError(t, err)

		idx, ok := doc.Metadata.Custom["reference_index"].(map[string][]schema.Reference)
		require.True(t, ok)
		assert.Contains(t, idx, "Figure 1")
	})

	t.Run("OverlapNotDuplicatedByCoherencePass", func(t *testing.T) {
		cfg := pipelineConfig()
		cfg.MaxChunkSize = 10
		cfg.OverlapTokens = 6
		m := newManager(t, cfg)
		doc := &schema.Document{Content: []schema.ContentElement{
			{Type: schema.ElementText, Position: 0, Text: "one two three four five six."},
			{Type: schema.ElementText, Position: 1, Text: "seven eight nine ten"},
			{Type: schema.ElementText, Position: 2, Text: "eleven twelve thirteen fourteen fifteen."},
		}}

		chunks, err := m.ChunkDocument(doc)
		require.NoError(t, err)
		require.Len(t, chunks, 2)

		// The unterminated element is carried into the next chunk once, as
		// the overlap seed, and must not appear there a second time.
		assert.Equal(t, 1, chunks[1].Content[0].Position)
		for _, c := range chunks {
			seen := make(map[int]int)
			for _, e := range c.Content {
				seen[e.Position]++
			}
			for pos, n := range seen {
				assert.LessOrEqual(t, n, 1,
					"chunk %s repeats position %d", c.Metadata.ChunkID, pos)
			}
		}
		assert.Equal(t, 9, chunks[1].Metadata.WordCount)
	})

	t.Run("SplitTieFallsBackToMidpoint", func(t *testing.T) {
		cfg := pipelineConfig()
		cfg.MaxChunkSize = 15
		cfg.OverlapTokens = 15
		m := newManager(t, cfg)
		doc := &schema.Document{Content: []schema.ContentElement{
			{Type: schema.ElementText, Position: 0, Text: "alpha bravo charlie delta echo."},
			{Type: schema.ElementText, Position: 1, Text: "foxtrot golf hotel india juliet."},
			{Type: schema.ElementFigure, Position: 2, Text: "Figure 1: Overview", ID: "Figure 1"},
			{Type: schema.ElementText, Position: 3, Text: "kilo lima mike november oscar."},
			{Type: schema.ElementText, Position: 4, Text: "papa quebec romeo sierra tango."},
		}}

		chunks, err := m.ChunkDocument(doc)
		require.NoError(t, err)
		require.Len(t, chunks, 3)

		// The overlap-inflated trailing chunk has equally scored boundaries
		// either side of the figure, so the split lands on the midpoint.
		assert.True(t, strings.HasSuffix(chunks[1].Metadata.ChunkID, "_split1"))
		assert.Equal(t, 2, chunks[1].Boundary.EndPos)
		assert.Equal(t, 3, chunks[2].Boundary.StartPos)
	})

	t.Run("SentenceMovedAcrossBoundary", func(t *testing.T) {
		cfg := pipelineConfig()
		cfg.MaxChunkSize = 10
		m := newManager(t, cfg)
		doc := &schema.Document{Content: []schema.ContentElement{
			{Type: schema.ElementText, Position: 0, Text: "A finished first sentence."},
			{Type: schema.ElementText, Position: 1, Text: "A dangling clause that"},
			{Type: schema.ElementText, Position: 2, Text: "continues and finally ends here."},
		}}

		chunks, err := m.ChunkDocument(doc)
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks[:len(chunks)-1] {
			lastText := ""
			for i := len(c.Content) - 1; i >= 0; i-- {
				if c.Content[i].IsTextual() {
					lastText = c.Content[i].Text
					break
				}
			}
			assert.NotEqual(t, "A dangling clause that", lastText)
		}
	})
}
