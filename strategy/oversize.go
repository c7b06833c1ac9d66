package strategy

import (
	"fmt"

	"github.com/sevigo/docchunk/schema"
)

// SplitOversized splits a chunk whose size exceeds maxSize into part
// chunks. Content accumulates into a part until the next element would
// push it over the limit; an element that alone exceeds the limit is
// word-sliced into single-element parts. Parts inherit the base chunk's
// context and heading stack, take fractional sequence numbers after the
// base, and carry a split_from provenance entry.
//
// A chunk that cannot be split further (a single element at most) is
// returned unchanged.
func SplitOversized(c schema.Chunk, maxSize int) []schema.Chunk {
	var (
		parts   []schema.Chunk
		buf     []schema.ContentElement
		bufSize int
		partNum int
	)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		partNum++
		parts = append(parts, partChunk(c, buf, partNum))
		buf = nil
		bufSize = 0
	}

	for _, elem := range c.Content {
		elemSize := elem.WordCount()

		if elemSize > maxSize {
			flush()
			for _, sub := range sliceElement(elem, maxSize) {
				partNum++
				parts = append(parts, partChunk(c, []schema.ContentElement{sub}, partNum))
			}
			continue
		}

		if bufSize+elemSize > maxSize && len(buf) > 0 {
			flush()
		}
		buf = append(buf, elem)
		bufSize += elemSize
	}
	flush()

	if len(parts) <= 1 {
		return []schema.Chunk{c}
	}
	return parts
}

func partChunk(base schema.Chunk, content []schema.ContentElement, partNum int) schema.Chunk {
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
		ChunkID:      fmt.Sprintf("%s_part%d", base.Metadata.ChunkID, partNum),
		SequenceNum:  base.Metadata.SequenceNum + float64(partNum)*0.1,
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
