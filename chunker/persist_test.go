package chunker_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/docchunk/chunker"
)

func TestSaveAndLoadChunks(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		m := chunkedManager(t)
		saved := m.Chunks()
		dir := t.TempDir()

		n, err := m.SaveChunks(dir)
		require.NoError(t, err)
		assert.Equal(t, len(saved), n)

		files, err := filepath.Glob(filepath.Join(dir, "chunk_*.json"))
		require.NoError(t, err)
		assert.Len(t, files, n)

		fresh := newManager(t, pipelineConfig())
		loaded, err := fresh.LoadChunks(dir)
		require.NoError(t, err)
		require.Len(t, loaded, len(saved))

		for i := range saved {
			assert.Equal(t, saved[i].Metadata.ChunkID, loaded[i].Metadata.ChunkID)
			assert.Equal(t, saved[i].Boundary.StartPos, loaded[i].Boundary.StartPos)
			assert.Equal(t, saved[i].Boundary.EndPos, loaded[i].Boundary.EndPos)
			require.Len(t, loaded[i].Content, len(saved[i].Content))
			for j, e := range saved[i].Content {
				// Free-form element metadata does not survive JSON typing
				// exactly, so compare the structural fields.
				assert.Equal(t, e.Type, loaded[i].Content[j].Type)
				assert.Equal(t, e.Position, loaded[i].Content[j].Position)
				assert.Equal(t, e.Text, loaded[i].Content[j].Text)
			}
			assert.Equal(t, saved[i].Metadata.WordCount, loaded[i].Metadata.WordCount)
			assert.Equal(t, saved[i].Size(), loaded[i].Size())
			assert.True(t, saved[i].Metadata.CreatedAt.Equal(loaded[i].Metadata.CreatedAt))
		}
		assert.Equal(t, loaded, fresh.Chunks())
	})

	t.Run("SaveWithoutChunks", func(t *testing.T) {
		m := newManager(t, pipelineConfig())
		_, err := m.SaveChunks(t.TempDir())
		assert.ErrorIs(t, err, chunker.ErrNoChunks)
	})

	t.Run("LoadFromEmptyDir", func(t *testing.T) {
		m := newManager(t, pipelineConfig())
		_, err := m.LoadChunks(t.TempDir())
		assert.ErrorIs(t, err, chunker.ErrNoChunks)
	})

	t.Run("LoadRejectsCorruptFile", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "chunk_0000.json"), []byte("{not json"), 0o644))

		m := newManager(t, pipelineConfig())
		_, err := m.LoadChunks(dir)
		assert.Error(t, err)
	})

	t.Run("ReloadRecomputesSize", func(t *testing.T) {
		m := chunkedManager(t)
		merged, err := m.MergeChunks([]int{0, 1})
		require.NoError(t, err)
		require.True(t, merged.HasSizeOverride())

		dir := t.TempDir()
		_, err = m.SaveChunks(dir)
		require.NoError(t, err)

		fresh := newManager(t, pipelineConfig())
		loaded, err := fresh.LoadChunks(dir)
		require.NoError(t, err)
		assert.False(t, loaded[0].HasSizeOverride())
		assert.Equal(t, merged.Size(), loaded[0].Size())
	})
}
