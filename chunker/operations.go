package chunker

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/docchunk/schema"
)

// MergeChunks merges the chunks at the given indices into a single chunk
// that replaces them, positioned at the lowest index. Content is
// concatenated in index order, references are unioned with
// de-duplication, and the merged size is fixed to the sum of the member
// sizes.
func (m *Manager) MergeChunks(indices []int) (schema.Chunk, error) {
	if len(indices) == 0 {
		return schema.Chunk{}, ErrNoChunks
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(m.chunks) {
			return schema.Chunk{}, fmt.Errorf("%w: %d (have %d chunks)", ErrInvalidChunkIndex, idx, len(m.chunks))
		}
	}

	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	members := make([]schema.Chunk, 0, len(sorted))
	drop := make(map[int]struct{}, len(sorted))
	for _, idx := range sorted {
		members = append(members, m.chunks[idx])
		drop[idx] = struct{}{}
	}
	merged := mergeChunkValues(members)

	next := make([]schema.Chunk, 0, len(m.chunks)-len(sorted)+1)
	for i, c := range m.chunks {
		if i == sorted[0] {
			next = append(next, merged)
		}
		if _, dropped := drop[i]; dropped {
			continue
		}
		next = append(next, c)
	}
	m.chunks = next

	m.logger.Debug("merged chunks", "indices", sorted, "result", merged.Metadata.ChunkID)
	return merged, nil
}

// mergeChunkValues combines chunks into one value without touching any
// chunk list. The merged chunk spans from the first member's start to the
// last member's end, unions contexts and references, and keeps the first
// member's heading stack and sequence number.
func mergeChunkValues(members []schema.Chunk) schema.Chunk {
	first := members[0]
	last := members[len(members)-1]

	var content []schema.ContentElement
	context := schema.Context{}
	sets := make([]schema.ReferenceSet, 0, len(members))
	mergedFrom := make([]string, 0, len(members))
	size := 0
	wordCount := 0
	for _, c := range members {
		content = append(content, c.Content...)
		context = context.Merge(c.Boundary.Context)
		sets = append(sets, c.Boundary.References)
		mergedFrom = append(mergedFrom, c.Metadata.ChunkID)
		size += c.Size()
		wordCount += c.Metadata.WordCount
	}

	boundary := schema.ChunkBoundary{
		StartPos:     first.Boundary.StartPos,
		EndPos:       last.Boundary.EndPos,
		Context:      context,
		HeadingStack: append([]schema.HeadingRef(nil), first.Boundary.HeadingStack...),
		References:   schema.MergeReferenceSets(sets...),
	}
	metadata := schema.ChunkMetadata{
		ChunkID:      newID("merged"),
		SequenceNum:  first.Metadata.SequenceNum,
		StartPage:    first.Metadata.StartPage,
		EndPage:      last.Metadata.EndPage,
		SectionTitle: first.Metadata.SectionTitle,
		CreatedAt:    time.Now().UTC(),
		WordCount:    wordCount,
		SourceReference: map[string]any{
			"merged_from": mergedFrom,
			"original_sequence_range": []float64{
				first.Metadata.SequenceNum,
				last.Metadata.SequenceNum,
			},
		},
	}

	merged := schema.NewChunk(content, boundary, metadata)
	merged.SetSize(size)
	return merged
}

// SplitChunk splits the chunk at idx at the given word offsets and
// replaces it with the resulting parts. Offsets count words of the
// chunk's text-bearing elements and must fall strictly inside the word
// range. Element granularity is coarser than words: each part receives the
// elements whose position falls into its share of the chunk's span.
func (m *Manager) SplitChunk(idx int, offsets []int) ([]schema.Chunk, error) {
	if idx < 0 || idx >= len(m.chunks) {
		return nil, fmt.Errorf("%w: %d (have %d chunks)", ErrInvalidChunkIndex, idx, len(m.chunks))
	}
	chunk := m.chunks[idx]

	words, positions := chunk.Words()
	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: no offsets given", ErrInvalidSplitPoint)
	}
	for _, off := range offsets {
		if off <= 0 || off >= len(words) {
			return nil, fmt.Errorf("%w: %d (chunk has %d words)", ErrInvalidSplitPoint, off, len(words))
		}
	}

	cuts := append([]int(nil), offsets...)
	sort.Ints(cuts)
	cuts = append(cuts, len(words))

	parts := make([]schema.Chunk, 0, len(cuts))
	startIdx := 0
	prevEnd := chunk.Content[0].Position - 1
	for p, cut := range cuts {
		startPos := prevEnd + 1
		endPos := positions[cut-1]
		if p == len(cuts)-1 {
			endPos = chunk.Content[len(chunk.Content)-1].Position
		}
		content := chunk.ElementsInRange(startPos, endPos)
		if len(content) == 0 {
			// Several offsets inside one element degenerate to a shared
			// snapshot of that element.
			startPos = positions[startIdx]
			content = chunk.ElementsInRange(startPos, endPos)
		}

		boundary := schema.ChunkBoundary{
			StartPos:     content[0].Position,
			EndPos:       content[len(content)-1].Position,
			Context:      chunk.Boundary.Context,
			HeadingStack: append([]schema.HeadingRef(nil), chunk.Boundary.HeadingStack...),
			References:   chunk.Boundary.References.FilterRange(startPos, endPos),
		}
		metadata := schema.ChunkMetadata{
			ChunkID:      newID("split"),
			SequenceNum:  chunk.Metadata.SequenceNum + float64(p)*0.1,
			SectionTitle: chunk.Metadata.SectionTitle,
			CreatedAt:    time.Now().UTC(),
			WordCount:    cut - startIdx,
			SourceReference: map[string]any{
				"split_from":        chunk.Metadata.ChunkID,
				"original_sequence": chunk.Metadata.SequenceNum,
			},
		}
		parts = append(parts, schema.NewChunk(content, boundary, metadata))

		startIdx = cut
		prevEnd = endPos
	}

	next := make([]schema.Chunk, 0, len(m.chunks)+len(parts)-1)
	next = append(next, m.chunks[:idx]...)
	next = append(next, parts...)
	next = append(next, m.chunks[idx+1:]...)
	m.chunks = next

	m.logger.Debug("split chunk", "chunk", chunk.Metadata.ChunkID, "parts", len(parts))
	return parts, nil
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}
