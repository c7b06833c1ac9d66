package chunker

import (
	"github.com/sevigo/docchunk/schema"
)

// validate checks the post-processed chunk sequence: every chunk must be
// internally consistent and adjacent chunks must cover the document
// without gaps. Overlapping starts are only an error when overlap is
// disabled, since overlap deliberately repeats trailing elements. Size
// bounds are soft and only logged.
func (m *Manager) validate(chunks []schema.Chunk) error {
	if len(chunks) == 0 {
		return chunkingErr("validate", ErrNoChunks)
	}

	for i, c := range chunks {
		if err := c.Validate(); err != nil {
			return chunkingErrf("validate", "chunk %d (%s): %w", i, c.Metadata.ChunkID, err)
		}
		if c.Size() > m.cfg.MaxChunkSize {
			m.logger.Warn("chunk exceeds max size",
				"chunk", c.Metadata.ChunkID, "size", c.Size(), "max", m.cfg.MaxChunkSize)
		}
		if c.Size() < m.cfg.MinChunkSize {
			m.logger.Warn("chunk below min size",
				"chunk", c.Metadata.ChunkID, "size", c.Size(), "min", m.cfg.MinChunkSize)
		}
	}

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		gap := cur.Boundary.StartPos - prev.Boundary.EndPos
		if gap > 1 {
			return chunkingErrf("validate", "gap between chunk %d (end %d) and chunk %d (start %d)",
				i-1, prev.Boundary.EndPos, i, cur.Boundary.StartPos)
		}
		if m.cfg.OverlapTokens == 0 && cur.Boundary.StartPos < prev.Boundary.EndPos {
			return chunkingErrf("validate", "chunk %d (start %d) overlaps chunk %d (end %d)",
				i, cur.Boundary.StartPos, i-1, prev.Boundary.EndPos)
		}
	}
	return nil
}
