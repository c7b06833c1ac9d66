package chunker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sevigo/docchunk/schema"
)

// chunkRecord is the on-disk form of a chunk. The size is persisted
// explicitly so a reload can detect whether it was overridden.
type chunkRecord struct {
	Content  []schema.ContentElement `json:"content"`
	Boundary schema.ChunkBoundary    `json:"boundary"`
	Metadata schema.ChunkMetadata    `json:"metadata"`
	Size     int                     `json:"size"`
}

// SaveChunks writes each managed chunk as an indented JSON file named
// chunk_NNNN.json under dir, creating the directory if needed. On a
// partial failure the chunks written so far remain on disk and the error
// names the chunk that failed.
func (m *Manager) SaveChunks(dir string) (int, error) {
	if len(m.chunks) == 0 {
		return 0, ErrNoChunks
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating chunk directory: %w", err)
	}

	saved := 0
	for i, c := range m.chunks {
		rec := chunkRecord{
			Content:  c.Content,
			Boundary: c.Boundary,
			Metadata: c.Metadata,
			Size:     c.Size(),
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return saved, fmt.Errorf("encoding chunk %s: %w", c.Metadata.ChunkID, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("chunk_%04d.json", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return saved, fmt.Errorf("writing chunk %s: %w", c.Metadata.ChunkID, err)
		}
		saved++
	}

	m.logger.Info("saved chunks", "dir", dir, "count", saved)
	return saved, nil
}

// LoadChunks reads chunk_*.json files from dir in name order and replaces
// the managed chunk list with the loaded chunks. Sizes are recomputed
// from content rather than trusted from disk.
func (m *Manager) LoadChunks(dir string) ([]schema.Chunk, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "chunk_*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing chunk files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no chunk files in %s", ErrNoChunks, dir)
	}
	sort.Strings(paths)

	chunks := make([]schema.Chunk, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var rec chunkRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		chunks = append(chunks, schema.NewChunk(rec.Content, rec.Boundary, rec.Metadata))
	}

	m.chunks = chunks
	m.logger.Info("loaded chunks", "dir", dir, "count", len(chunks))
	return chunks, nil
}
