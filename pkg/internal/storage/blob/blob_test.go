package blob_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/ebookshelf/pkg/internal/storage/blob"
)

func newLocal(t *testing.T) (*blob.LocalStore, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()

	return blob.NewLocalStore(fs, "/uploads/"), fs
}

func TestLocalStoreAndRemove(t *testing.T) {
	ctx := context.Background()
	store, fs := newLocal(t)

	ref, err := store.Store(ctx, strings.NewReader("%PDF-1.4"), 8, "application/pdf", "pdfs/01ABC-book.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/pdfs/01ABC-book.pdf", ref)

	data, err := afero.ReadFile(fs, "pdfs/01ABC-book.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, store.Remove(ctx, ref))

	exists, err := afero.Exists(fs, "pdfs/01ABC-book.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	// 幂等
	assert.NoError(t, store.Remove(ctx, ref))
}

func TestLocalStoreIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	store, fs := newLocal(t)

	_, err := store.Store(ctx, strings.NewReader("first"), 5, "image/png", "covers/a.png")
	require.NoError(t, err)

	_, err = store.Store(ctx, strings.NewReader("second"), 6, "image/png", "covers/a.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, blob.ErrExists))

	data, err := afero.ReadFile(fs, "covers/a.png")
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, _ := newLocal(t)

	for _, key := range []string{"", "../etc/passwd", "covers/../../x", "covers//a"} {
		_, err := store.Store(ctx, strings.NewReader("x"), 1, "", key)
		assert.ErrorIs(t, err, blob.ErrInvalidKey, key)
	}

	assert.ErrorIs(t, store.Remove(ctx, "https://elsewhere.example/covers/a.png"), blob.ErrInvalidKey)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestLocalStoreCleansUpPartialWrite(t *testing.T) {
	ctx := context.Background()
	store, fs := newLocal(t)

	_, err := store.Store(ctx, io.MultiReader(bytes.NewReader([]byte("abc")), failingReader{}), 10, "", "pdfs/partial.pdf")
	require.Error(t, err)

	exists, _ := afero.Exists(fs, "pdfs/partial.pdf")
	assert.False(t, exists)
}

func TestLocalStoreList(t *testing.T) {
	ctx := context.Background()
	store, _ := newLocal(t)

	for _, key := range []string{"covers/a.png", "covers/b.png", "pdfs/a.pdf"} {
		_, err := store.Store(ctx, strings.NewReader(key), int64(len(key)), "", key)
		require.NoError(t, err)
	}

	covers, err := store.List(ctx, "covers/")
	require.NoError(t, err)
	require.Len(t, covers, 2)
	assert.Equal(t, "covers/a.png", covers[0].Key)
	assert.Equal(t, "/uploads/covers/a.png", covers[0].Reference)

	none, err := store.List(ctx, "missing/")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLocalFileSystemServesFilesOnly(t *testing.T) {
	ctx := context.Background()
	store, _ := newLocal(t)

	_, err := store.Store(ctx, strings.NewReader("png-bytes"), 9, "image/png", "covers/c.png")
	require.NoError(t, err)

	srv := httptest.NewServer(http.StripPrefix("/uploads", http.FileServer(store.FileSystem())))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/uploads/covers/c.png")
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png-bytes", string(body))

	resp, err = http.Get(srv.URL + "/uploads/covers/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCleanKey(t *testing.T) {
	key, err := blob.CleanKey("/covers/x.png")
	require.NoError(t, err)
	assert.Equal(t, "covers/x.png", key)

	_, err = blob.CleanKey("covers/./x.png")
	assert.ErrorIs(t, err, blob.ErrInvalidKey)
}
