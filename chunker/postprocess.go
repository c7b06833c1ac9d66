package chunker

import (
	"math"

	"github.com/sevigo/docchunk/schema"
	"github.com/sevigo/docchunk/strategy"
)

// splitCandidateWindow bounds how far from the midpoint the optimal-split
// scoring looks for a boundary.
const splitCandidateWindow = 5

// balance evens out chunk sizes: runs of consecutive undersized chunks are
// merged while the combination still fits the maximum, and oversized
// chunks are split at the best-scoring boundary near their midpoint.
func (m *Manager) balance(chunks []schema.Chunk) []schema.Chunk {
	merged := m.mergeUndersizedRuns(chunks)

	var out []schema.Chunk
	for _, c := range merged {
		if c.Size() > m.cfg.MaxChunkSize && len(c.Content) > 1 {
			out = append(out, m.splitAtOptimalPoint(c)...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

func (m *Manager) mergeUndersizedRuns(chunks []schema.Chunk) []schema.Chunk {
	var out []schema.Chunk
	i := 0
	for i < len(chunks) {
		c := chunks[i]
		if c.Size() >= m.cfg.MinChunkSize {
			out = append(out, c)
			i++
			continue
		}

		run := []schema.Chunk{c}
		total := c.Size()
		j := i + 1
		for j < len(chunks) && chunks[j].Size() < m.cfg.MinChunkSize && total+chunks[j].Size() <= m.cfg.MaxChunkSize {
			run = append(run, chunks[j])
			total += chunks[j].Size()
			j++
		}

		if len(run) > 1 {
			out = append(out, mergeChunkValues(run))
			m.logger.Debug("merged undersized run", "chunks", len(run), "size", total)
		} else {
			out = append(out, c)
		}
		i = j
	}
	return out
}

// splitAtOptimalPoint cuts an oversized chunk in two at the best-scoring
// element boundary within a window around the midpoint. A candidate scores
// for ending on sentence-terminated text, for a following heading or
// section break, and loses half a point per element of distance from the
// midpoint. Ties and all-negative windows fall back to the exact midpoint.
func (m *Manager) splitAtOptimalPoint(c schema.Chunk) []schema.Chunk {
	n := len(c.Content)
	mid := n / 2
	if mid >= n-1 {
		mid = n - 2
	}

	bestIdx := -1
	bestScore := math.Inf(-1)
	tied := false
	lo := max(0, mid-splitCandidateWindow)
	hi := min(n-2, mid+splitCandidateWindow)
	for i := lo; i <= hi; i++ {
		score := 0.0
		if c.Content[i].IsTextual() && c.Content[i].EndsTerminated() {
			score += 5
		}
		switch c.Content[i+1].Type {
		case schema.ElementHeading:
			score += 10
		case schema.ElementSectionBreak:
			score += 8
		}
		score -= 0.5 * math.Abs(float64(i-mid))

		switch {
		case score > bestScore:
			bestScore = score
			bestIdx = i
			tied = false
		case score == bestScore:
			tied = true
		}
	}
	if bestIdx < 0 || bestScore < 0 || tied {
		bestIdx = mid
	}

	left := subChunk(c, c.Content[:bestIdx+1], "_split1", 0)
	right := subChunk(c, c.Content[bestIdx+1:], "_split2", 0.5)
	return []schema.Chunk{left, right}
}

// subChunk derives a new chunk from a contiguous slice of a base chunk's
// content, inheriting context and heading stack and recording provenance.
func subChunk(base schema.Chunk, content []schema.ContentElement, idSuffix string, seqOffset float64) schema.Chunk {
	startPos := content[0].Position
	endPos := content[len(content)-1].Position

	boundary := schema.ChunkBoundary{
		StartPos:     startPos,
		EndPos:       endPos,
		Context:      base.Boundary.Context,
		HeadingStack: append([]schema.HeadingRef(nil), base.Boundary.HeadingStack...),
		References:   base.Boundary.References.FilterRange(startPos, endPos),
	}
	metadata := schema.ChunkMetadata{
		ChunkID:      base.Metadata.ChunkID + idSuffix,
		SequenceNum:  base.Metadata.SequenceNum + seqOffset,
		StartPage:    base.Metadata.StartPage,
		EndPage:      base.Metadata.EndPage,
		SectionTitle: base.Metadata.SectionTitle,
		CreatedAt:    base.Metadata.CreatedAt,
		WordCount:    schema.ElementsWordCount(content),
		SourceReference: map[string]any{
			"split_from":        base.Metadata.ChunkID,
			"original_sequence": base.Metadata.SequenceNum,
		},
	}
	return schema.NewChunk(append([]schema.ContentElement(nil), content...), boundary, metadata)
}

// ensureCoherence keeps sentences whole across boundaries: when a chunk
// ends in unterminated text, that trailing element moves to the head of
// the next chunk, with boundaries and word counts adjusted on both sides.
func (m *Manager) ensureCoherence(chunks []schema.Chunk) []schema.Chunk {
	if len(chunks) < 2 {
		return chunks
	}

	out := append([]schema.Chunk(nil), chunks...)
	for i := 0; i < len(out)-1; i++ {
		c := out[i]
		if len(c.Content) < 2 {
			continue
		}
		last := c.Content[len(c.Content)-1]
		if !last.IsTextual() || last.EndsTerminated() {
			continue
		}

		// Overlap seeding may already have copied this element to the head
		// of the next chunk; relocating it then would duplicate it there.
		if len(out[i+1].Content) > 0 && out[i+1].Content[0].Position == last.Position {
			continue
		}

		moved := last.WordCount()

		trimmed := c
		trimmed.Content = append([]schema.ContentElement(nil), c.Content[:len(c.Content)-1]...)
		trimmed.Boundary.EndPos = trimmed.Content[len(trimmed.Content)-1].Position
		trimmed.Metadata.WordCount -= moved

		next := out[i+1]
		grown := next
		grown.Content = append([]schema.ContentElement{last}, next.Content...)
		grown.Boundary.StartPos = last.Position
		grown.Metadata.WordCount += moved

		out[i] = trimmed
		out[i+1] = grown
		m.logger.Debug("moved unterminated sentence across boundary",
			"from_chunk", c.Metadata.ChunkID, "position", last.Position)
	}
	return out
}

// enforceSizes is the final size pass: remaining oversized chunks are
// re-split with the shared helper, then still-undersized chunks are merged
// forward into their successors while the sum stays within the maximum.
func (m *Manager) enforceSizes(chunks []schema.Chunk) []schema.Chunk {
	var sized []schema.Chunk
	for _, c := range chunks {
		if c.Size() > m.cfg.MaxChunkSize {
			sized = append(sized, strategy.SplitOversized(c, m.cfg.MaxChunkSize)...)
		} else {
			sized = append(sized, c)
		}
	}

	var out []schema.Chunk
	i := 0
	for i < len(sized) {
		c := sized[i]
		j := i + 1
		for c.Size() < m.cfg.MinChunkSize && j < len(sized) && c.Size()+sized[j].Size() <= m.cfg.MaxChunkSize {
			c = mergeChunkValues([]schema.Chunk{c, sized[j]})
			j++
		}
		out = append(out, c)
		i = j
	}

	if len(out) != len(chunks) {
		m.logger.Debug("size enforcement reshaped chunk list", "before", len(chunks), "after", len(out))
	}
	return out
}
