package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalUploadStore_SavePDF(t *testing.T) {
	tempDir := t.TempDir()
	logger := zap.NewNop()
	store := NewLocalUploadStore(tempDir, logger)

	t.Run("saves document successfully", func(t *testing.T) {
		content := []byte("%PDF-1.4 content")

		path, err := store.SavePDF("facture_2024S1001.pdf", content)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "facture_2024S1001.pdf"), path)

		saved, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, saved)
	})

	t.Run("suffixes colliding names", func(t *testing.T) {
		first, err := store.SavePDF("duplicate.pdf", []byte("a"))
		require.NoError(t, err)
		second, err := store.SavePDF("duplicate.pdf", []byte("b"))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.Equal(t, filepath.Join(tempDir, "duplicate-1.pdf"), second)
	})

	t.Run("strips directory components", func(t *testing.T) {
		path, err := store.SavePDF("../../etc/evil.pdf", []byte("x"))

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "evil.pdf"), path)
	})

	t.Run("rejects non-pdf extensions", func(t *testing.T) {
		_, err := store.SavePDF("notes.txt", []byte("x"))
		assert.Error(t, err)
	})

	t.Run("accepts uppercase extension", func(t *testing.T) {
		path, err := store.SavePDF("UPPER.PDF", []byte("x"))
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("rejects empty filename", func(t *testing.T) {
		_, err := store.SavePDF("", []byte("x"))
		assert.Error(t, err)
	})
}

func TestLocalUploadStore_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	store := NewLocalUploadStore(tempDir, zap.NewNop())

	t.Run("accepts path inside base", func(t *testing.T) {
		assert.NoError(t, store.ValidatePath(filepath.Join(tempDir, "ok.pdf")))
	})

	t.Run("rejects path outside base", func(t *testing.T) {
		err := store.ValidatePath(filepath.Join(tempDir, "..", "escape.pdf"))
		assert.Error(t, err)
	})

	t.Run("rejects sibling directory with shared prefix", func(t *testing.T) {
		err := store.ValidatePath(tempDir + "-sibling/file.pdf")
		assert.Error(t, err)
	})
}
