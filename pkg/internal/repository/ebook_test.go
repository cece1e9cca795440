package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/ebookshelf/pkg/internal/model"
	"github.com/yeisme/ebookshelf/pkg/internal/repository"
	"github.com/yeisme/ebookshelf/pkg/internal/testutil"
	"github.com/yeisme/ebookshelf/pkg/internal/types"
)

func strPtr(s string) *string { return &s }

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	b := testutil.Book(0, "Dune", "Frank Herbert")
	b.CoverPath = strPtr("/uploads/covers/dune.png")

	id, err := repo.Insert(ctx, &b)
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "fr", got.Language)
	require.NotNil(t, got.CoverPath)
	assert.Equal(t, "/uploads/covers/dune.png", *got.CoverPath)
	assert.True(t, got.CreatedAt.Equal(testutil.BaseTime))

	_, err = repo.GetByID(ctx, id+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInsertSetsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	b := model.Ebook{Title: "T", Author: "A", Language: "en", PDFPath: "/uploads/pdfs/t.pdf"}
	_, err := repo.Insert(ctx, &b)
	require.NoError(t, err)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestQueryPageOrderAndTotal(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	books := make([]model.Ebook, 0, 10)
	for i := 0; i < 10; i++ {
		books = append(books, testutil.Book(i, fmt.Sprintf("Book %02d", i), "Author"))
	}

	testutil.Seed(t, repo, books...)

	items, total, err := repo.QueryPage(ctx, types.EbookFilter{}, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	require.Len(t, items, 4)
	// 倒序：第二页是 Book 05..02
	assert.Equal(t, "Book 05", items[0].Title)
	assert.Equal(t, "Book 02", items[3].Title)

	items, total, err = repo.QueryPage(ctx, types.EbookFilter{}, 40, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestQueryPageTieBreaksOnID(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	a := testutil.Book(0, "First", "X")
	b := testutil.Book(0, "Second", "X")
	ids := testutil.Seed(t, repo, a, b)

	items, _, err := repo.QueryPage(ctx, types.EbookFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ids[1], items[0].ID)
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	fiction := testutil.Book(0, "The Stranger", "Albert Camus")
	fiction.Categories = "fiction,classic"

	nonfiction := testutil.Book(1, "Sapiens", "Yuval Harari")
	nonfiction.Categories = "nonfiction"
	nonfiction.Language = "en"

	history := testutil.Book(2, "Histoire", "Anon")
	history.Categories = "history"
	history.Description = "A long story about DUNES"

	percent := testutil.Book(3, "100% Go_lang", "Gopher")
	percent.Language = "fr-CA"

	testutil.Seed(t, repo, fiction, nonfiction, history, percent)

	cases := []struct {
		name   string
		filter types.EbookFilter
		want   []string
	}{
		{"text title case-insensitive", types.EbookFilter{Text: "stranger"}, []string{"The Stranger"}},
		{"text author", types.EbookFilter{Text: "HARARI"}, []string{"Sapiens"}},
		{"text description", types.EbookFilter{Text: "dunes"}, []string{"Histoire"}},
		{"text categories", types.EbookFilter{Text: "classic"}, []string{"The Stranger"}},
		{"language exact", types.EbookFilter{Language: "fr"}, []string{"Histoire", "The Stranger"}},
		{"language no prefix match", types.EbookFilter{Language: "fr-CA"}, []string{"100% Go_lang"}},
		{"category substring", types.EbookFilter{Category: "fiction"}, []string{"Sapiens", "The Stranger"}},
		{"category and language", types.EbookFilter{Category: "fiction", Language: "en"}, []string{"Sapiens"}},
		{"percent literal", types.EbookFilter{Text: "%"}, []string{"100% Go_lang"}},
		{"underscore literal", types.EbookFilter{Text: "o_l"}, []string{"100% Go_lang"}},
		{"escape char literal", types.EbookFilter{Text: "!"}, nil},
		{"whitespace is absent", types.EbookFilter{Text: "   ", Language: " "}, []string{"100% Go_lang", "Histoire", "Sapiens", "The Stranger"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := repo.QueryPage(ctx, tc.filter, 0, 50)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), total)

			titles := make([]string, 0, len(items))
			for _, it := range items {
				titles = append(titles, it.Title)
			}

			assert.ElementsMatch(t, tc.want, titles)
		})
	}
}

func TestFiltersAccentedText(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	emile := testutil.Book(0, "Émile", "Rousseau")
	emile.Categories = "Éducation,philosophie"

	etranger := testutil.Book(1, "L'étranger", "Camus")

	testutil.Seed(t, repo, emile, etranger)

	cases := []struct {
		name   string
		filter types.EbookFilter
		want   []string
	}{
		{"exact accented title", types.EbookFilter{Text: "Émile"}, []string{"Émile"}},
		{"upper ascii tail", types.EbookFilter{Text: "ÉMILE"}, []string{"Émile"}},
		{"ascii substring of accented title", types.EbookFilter{Text: "mile"}, []string{"Émile"}},
		{"author case-insensitive", types.EbookFilter{Text: "rousseau"}, []string{"Émile"}},
		{"lower accented title", types.EbookFilter{Text: "étranger"}, []string{"L'étranger"}},
		{"accented category", types.EbookFilter{Category: "Éducation"}, []string{"Émile"}},
		{"accented category upper tail", types.EbookFilter{Category: "ÉDUCATION"}, []string{"Émile"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := repo.QueryPage(ctx, tc.filter, 0, 50)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), total)

			got := make([]string, 0, len(items))
			for _, it := range items {
				got = append(got, it.Title)
			}

			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestUpdateByIDPartial(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	b := testutil.Book(0, "Old", "Author")
	b.PriceCents = 500
	ids := testutil.Seed(t, repo, b)

	price := int64(0)
	n, err := repo.UpdateByID(ctx, ids[0], repository.EbookPatch{PriceCents: &price, Categories: strPtr("sf")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Old", got.Title)
	assert.Equal(t, int64(0), got.PriceCents)
	assert.Equal(t, "sf", got.Categories)
	assert.True(t, got.CreatedAt.Equal(testutil.BaseTime))

	n, err = repo.UpdateByID(ctx, ids[0], repository.EbookPatch{})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.UpdateByID(ctx, ids[0]+1, repository.EbookPatch{Title: strPtr("x")})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	ids := testutil.Seed(t, repo, testutil.Book(0, "A", "B"), testutil.Book(1, "C", "D"))

	n, err := repo.DeleteByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Zero(t, n)

	// ID 不复用
	more := testutil.Seed(t, repo, testutil.Book(2, "E", "F"))
	assert.Greater(t, more[0], ids[1])

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestReferencedBlobs(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	a := testutil.Book(0, "A", "X")
	a.CoverPath = strPtr("/uploads/covers/a.png")
	b := testutil.Book(1, "B", "X")

	testutil.Seed(t, repo, a, b)

	refs, err := repo.ReferencedBlobs(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 3)
	assert.Contains(t, refs, "/uploads/covers/a.png")
	assert.Contains(t, refs, a.PDFPath)
	assert.Contains(t, refs, b.PDFPath)
}
