package chunker

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDocument is returned when a document has no content to chunk.
	ErrEmptyDocument = errors.New("document has no content")

	// ErrNoChunks is returned when an operation has no chunks to work on.
	ErrNoChunks = errors.New("no chunks available")

	// ErrInvalidChunkIndex is returned when a chunk index is out of range.
	ErrInvalidChunkIndex = errors.New("chunk index out of range")

	// ErrInvalidSplitPoint is returned when a split offset does not fall
	// strictly inside the chunk's word range.
	ErrInvalidSplitPoint = errors.New("split point out of range")
)

// ChunkingError wraps a failure during splitting, post-processing or
// validation. ChunkDocument aborts with it and returns no partial result.
type ChunkingError struct {
	Stage string
	Err   error
}

func (e *ChunkingError) Error() string {
	return fmt.Sprintf("chunking failed during %s: %v", e.Stage, e.Err)
}

func (e *ChunkingError) Unwrap() error {
	return e.Err
}

func chunkingErr(stage string, err error) *ChunkingError {
	return &ChunkingError{Stage: stage, Err: err}
}

func chunkingErrf(stage, format string, args ...any) *ChunkingError {
	return &ChunkingError{Stage: stage, Err: fmt.Errorf(format, args...)}
}
