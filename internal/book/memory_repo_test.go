package book

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/internal/paging"
	"bookcatalog/internal/store"
)

func seedCatalog(t *testing.T, repo *MemoryRepo) {
	t.Helper()
	books := []Book{
		{ISBN: "1", Title: "Watchmen", Subtitle: "Deluxe", Author: "Alan Moore", Publisher: "DC", Year: "1987", Pages: "416", Genre: "Comics"},
		{ISBN: "2", Title: "Nemo: Heart of Ice", Subtitle: "LoEG", Author: "Alan Moore", Publisher: "Top Shelf", Year: "2013", Pages: "56", Genre: "Comics"},
		{ISBN: "3", Title: "Nemo: Roses of Berlin", Subtitle: "LoEG", Author: "Alan Moore", Publisher: "Top Shelf", Year: "2014", Pages: "56", Genre: "Comics"},
		{ISBN: "4", Title: "Finding Nemo", Subtitle: "Junior Novel", Author: "Gail Herman", Publisher: "Disney", Year: "2003", Pages: "96", Genre: "Children"},
		{ISBN: "5", Title: "Sandman", Subtitle: "Preludes", Author: "Neil Gaiman", Publisher: "Vertigo", Year: "1989", Pages: "240", Genre: "Comics"},
	}
	for i := range books {
		require.NoError(t, repo.Save(context.Background(), &books[i]))
	}
}

func all() paging.Request {
	return paging.Request{Page: 0, Size: paging.MaxSize}
}

func TestMemoryRepo_FindAll(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	seedCatalog(t, repo)

	t.Run("empty filter returns every book", func(t *testing.T) {
		page, err := repo.FindAll(ctx, Filter{}, all())
		require.NoError(t, err)
		assert.Equal(t, 5, page.TotalElements)
		assert.Len(t, page.Content, 5)
	})

	t.Run("single field matches substring ignoring case", func(t *testing.T) {
		page, err := repo.FindAll(ctx, Filter{Title: "nemo"}, all())
		require.NoError(t, err)
		require.Len(t, page.Content, 3)
		for _, b := range page.Content {
			assert.Contains(t, strings.ToLower(b.Title), "nemo")
		}
	})

	t.Run("two fields narrow below either alone", func(t *testing.T) {
		byAuthor, err := repo.FindAll(ctx, Filter{Author: "Alan Moore"}, all())
		require.NoError(t, err)
		byTitle, err := repo.FindAll(ctx, Filter{Title: "Nemo"}, all())
		require.NoError(t, err)
		both, err := repo.FindAll(ctx, Filter{Author: "Alan Moore", Title: "Nemo"}, all())
		require.NoError(t, err)

		assert.Equal(t, 3, byAuthor.TotalElements)
		assert.Equal(t, 3, byTitle.TotalElements)
		assert.Equal(t, 2, both.TotalElements)
		for _, b := range both.Content {
			assert.Equal(t, "Alan Moore", b.Author)
			assert.Contains(t, b.Title, "Nemo")
		}
	})

	t.Run("page 2 of size 1 over three results", func(t *testing.T) {
		page, err := repo.FindAll(ctx, Filter{Author: "Alan Moore"}, paging.Request{Page: 2, Size: 1})
		require.NoError(t, err)
		assert.Len(t, page.Content, 1)
		assert.Equal(t, 3, page.TotalElements)
		assert.Equal(t, 1, page.NumberOfElements)
	})

	t.Run("sorted before paged", func(t *testing.T) {
		req := paging.Request{Page: 0, Size: 2, Sort: []paging.Order{{Field: "year", Desc: true}}}
		page, err := repo.FindAll(ctx, Filter{}, req)
		require.NoError(t, err)
		require.Len(t, page.Content, 2)
		assert.Equal(t, "2014", page.Content[0].Year)
		assert.Equal(t, "2013", page.Content[1].Year)
	})

	t.Run("out of range size gives an empty page", func(t *testing.T) {
		page, err := repo.FindAll(ctx, Filter{}, paging.Request{Page: 0, Size: 0})
		require.NoError(t, err)
		assert.Empty(t, page.Content)
		assert.Equal(t, 5, page.TotalElements)
	})
	t.Run("page whose offset overflows gives an empty page", func(t *testing.T) {
		req := paging.FromQuery(url.Values{"page": {"461168601842738791"}, "size": {"20"}}, SortColumns)
		page, err := repo.FindAll(ctx, Filter{}, req)
		require.NoError(t, err)
		assert.Empty(t, page.Content)
		assert.Equal(t, 5, page.TotalElements)
	})
}

func TestMemoryRepo_Save(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	b := validBook()
	require.NoError(t, repo.Save(ctx, &b))
	assert.NotEmpty(t, b.ID)

	t.Run("update keeps the id", func(t *testing.T) {
		id := b.ID
		b.Title = "Zen Speaks!"
		require.NoError(t, repo.Save(ctx, &b))
		assert.Equal(t, id, b.ID)

		got, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Zen Speaks!", got.Title)
	})

	t.Run("duplicate isbn", func(t *testing.T) {
		dup := validBook()
		err := repo.Save(ctx, &dup)
		assert.ErrorIs(t, err, store.ErrIntegrityViolation)
		assert.Empty(t, dup.ID)
	})

	t.Run("find by isbn", func(t *testing.T) {
		got, err := repo.FindByISBN(ctx, "0385472579")
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)

		_, err = repo.FindByISBN(ctx, "1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryRepo_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	b := validBook()
	require.NoError(t, repo.Save(ctx, &b))

	owned := true
	repo.ReferencedBy(func(id string) bool { return owned && id == b.ID })

	assert.ErrorIs(t, repo.Delete(ctx, b.ID), store.ErrIntegrityViolation)

	owned = false
	require.NoError(t, repo.Delete(ctx, b.ID))

	exists, err := repo.ExistsByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrNotFound)
}
