package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

func TestCatalog(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items := Catalog(now)

	require.Len(t, items, Len())
	require.NotEmpty(t, items)

	seen := make(map[string]bool)
	for i, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true

		assert.NotEmpty(t, item.Name)
		assert.Contains(t, item.URL, "https://")
		assert.Contains(t, domain.DefaultCategories, item.Category)
		assert.Zero(t, item.ClickCount)
		assert.False(t, item.IsPinned)
		assert.True(t, item.CreatedAt.Equal(now.Add(time.Duration(i)*time.Millisecond)))
	}
}

func TestCatalogFreshCopies(t *testing.T) {
	now := time.Now().UTC()
	a := Catalog(now)
	b := Catalog(now)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.NotEqual(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].URL, b[i].URL)
	}

	a[0].Tags[0] = "mutated"
	assert.NotEqual(t, "mutated", Catalog(now)[0].Tags[0])
}

func TestCatalogRanksInReverseOrder(t *testing.T) {
	items := Catalog(time.Now().UTC())
	ranked := domain.Rank(items, domain.Filter{})

	require.Len(t, ranked, len(items))
	for i := range ranked {
		assert.Equal(t, items[len(items)-1-i].Name, ranked[i].Name)
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := parse([]byte("[]"))
	assert.Error(t, err)

	_, err = parse([]byte(": not yaml ["))
	assert.Error(t, err)
}
