package attachment

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewDiskStore(t.TempDir(), logger)
	require.NoError(t, err)
	return store
}

func TestStoreReceipt(t *testing.T) {
	t.Run("RejectsNonPDF", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.StoreReceipt(1, 2, strings.NewReader("not a pdf"), "image/png")
		assert.ErrorIs(t, err, ErrUnsupportedMediaType)

		entries, err := os.ReadDir(store.Dir())
		require.NoError(t, err)
		assert.Empty(t, entries, "a rejected upload must not leave a file behind")
	})

	t.Run("DeterministicFilename", func(t *testing.T) {
		store := newTestStore(t)
		pinned := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
		store.now = func() time.Time { return pinned }

		name, err := store.StoreReceipt(7, 42, strings.NewReader("%PDF-1.4"), PDFMediaType)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("cost_7_42_%d.pdf", pinned.Unix()), name)

		content, err := os.ReadFile(filepath.Join(store.Dir(), name))
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(content))
	})

	t.Run("SameSecondOverwrites", func(t *testing.T) {
		store := newTestStore(t)
		pinned := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
		store.now = func() time.Time { return pinned }

		first, err := store.StoreReceipt(1, 1, strings.NewReader("first"), PDFMediaType)
		require.NoError(t, err)
		second, err := store.StoreReceipt(1, 1, strings.NewReader("second"), PDFMediaType)
		require.NoError(t, err)

		assert.Equal(t, first, second)

		content, err := os.ReadFile(filepath.Join(store.Dir(), second))
		require.NoError(t, err)
		assert.Equal(t, "second", string(content))
	})
}

func TestDelete(t *testing.T) {
	t.Run("RemovesFile", func(t *testing.T) {
		store := newTestStore(t)

		name, err := store.StoreReceipt(1, 1, strings.NewReader("%PDF-1.4"), PDFMediaType)
		require.NoError(t, err)

		require.NoError(t, store.Delete(name))
		assert.NoFileExists(t, filepath.Join(store.Dir(), name))
	})

	t.Run("Idempotent", func(t *testing.T) {
		store := newTestStore(t)

		name, err := store.StoreReceipt(1, 1, strings.NewReader("%PDF-1.4"), PDFMediaType)
		require.NoError(t, err)

		require.NoError(t, store.Delete(name))
		require.NoError(t, store.Delete(name), "deleting an already-missing file must not fail")
	})

	t.Run("MissingFileIsNoOp", func(t *testing.T) {
		store := newTestStore(t)

		assert.NoError(t, store.Delete("cost_9_9_1700000000.pdf"))
	})
}
