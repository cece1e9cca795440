package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/blob"
	"github.com/yeisme/ebookshelf/pkg/internal/testutil"
)

func TestSweepRemovesOnlyOldUnreferencedBlobs(t *testing.T) {
	repo := testutil.NewRepository(t)
	blobs, fs := testutil.NewBlobStore(t)
	ctx := context.Background()

	store := func(key string) string {
		ref, err := blobs.Store(ctx, strings.NewReader("x"), 1, "application/pdf", key)
		require.NoError(t, err)

		return ref
	}

	kept := store("pdfs/kept.pdf")
	orphan := store("covers/orphan.png")
	fresh := store("pdfs/fresh.pdf")

	book := testutil.Book(0, "Dune", "Herbert")
	book.PDFPath = kept
	testutil.Seed(t, repo, book)

	// orphan 与 kept 早于宽限期，fresh 是刚上传的
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, fs.Chtimes("covers/orphan.png", old, old))
	require.NoError(t, fs.Chtimes("pdfs/kept.pdf", old, old))

	sweeper := service.NewSweeper(repo, blobs, configs.SweepConfig{GracePeriod: 24 * time.Hour}, nil)

	res, err := sweeper.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Scanned)
	assert.Equal(t, []string{orphan}, res.Removed)
	assert.Zero(t, res.Failed)

	exists := func(ref string) bool {
		ok, _ := afero.Exists(fs, strings.TrimPrefix(ref, "/uploads/"))
		return ok
	}

	assert.True(t, exists(kept))
	assert.True(t, exists(fresh))
	assert.False(t, exists(orphan))
}

func TestSweepDryRunKeepsFiles(t *testing.T) {
	repo := testutil.NewRepository(t)
	blobs, fs := testutil.NewBlobStore(t)
	ctx := context.Background()

	ref, err := blobs.Store(ctx, strings.NewReader("x"), 1, "image/png", "covers/orphan.png")
	require.NoError(t, err)

	sweeper := service.NewSweeper(repo, blobs, configs.SweepConfig{GracePeriod: time.Hour, DryRun: true}, nil)
	sweeper.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })

	res, err := sweeper.Run(ctx)
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, []string{ref}, res.Removed)

	ok, err := afero.Exists(fs, "covers/orphan.png")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSweepKeepsReferencesAfterPrefixChange(t *testing.T) {
	repo := testutil.NewRepository(t)
	blobs, fs := testutil.NewBlobStore(t)
	ctx := context.Background()

	cover, err := blobs.Store(ctx, strings.NewReader("png"), 3, "image/png", "covers/01J-dune.png")
	require.NoError(t, err)
	pdf, err := blobs.Store(ctx, strings.NewReader("pdf"), 3, "application/pdf", "pdfs/01J-dune.pdf")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(pdf, "/uploads/"))

	book := testutil.Book(0, "Dune", "Herbert")
	book.CoverPath = &cover
	book.PDFPath = pdf
	testutil.Seed(t, repo, book)

	cdn := testutil.Book(1, "Solaris", "Lem")
	cdn.PDFPath = "https://cdn.example.org/library/pdfs/01J-solaris.pdf"
	testutil.Seed(t, repo, cdn)

	_, err = blobs.Store(ctx, strings.NewReader("pdf"), 3, "application/pdf", "pdfs/01J-solaris.pdf")
	require.NoError(t, err)
	orphan, err := blobs.Store(ctx, strings.NewReader("pdf"), 3, "application/pdf", "pdfs/01J-orphan.pdf")
	require.NoError(t, err)

	moved := blob.NewLocalStore(fs, "/files")

	sweeper := service.NewSweeper(repo, moved, configs.SweepConfig{GracePeriod: 24 * time.Hour}, nil)
	sweeper.SetClock(func() time.Time { return time.Now().Add(48 * time.Hour) })

	res, err := sweeper.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Scanned)
	assert.Equal(t, []string{"/files/" + strings.TrimPrefix(orphan, "/uploads/")}, res.Removed)

	for _, key := range []string{"covers/01J-dune.png", "pdfs/01J-dune.pdf", "pdfs/01J-solaris.pdf"} {
		ok, err := afero.Exists(fs, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}
}
