package itemrepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ingredient-parser/internal/infrastructure/config"
	"ingredient-parser/internal/pkg/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(name string, created time.Time) common.Item {
	return common.Item{
		ID:         uuid.New(),
		Name:       name,
		Category:   "dairy",
		UsageCount: 1,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

// eachBackend 對每個後端執行相同的測試
func eachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryRepository())
	})
	t.Run("sqlite", func(t *testing.T) {
		repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "items.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		fn(t, repo)
	})
}

func TestRepository_FindByNameIsCaseInsensitive(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		maito := newItem("Maito", created)
		require.NoError(t, repo.Add(ctx, maito))
		require.NoError(t, repo.Add(ctx, newItem("Ähtärin Juusto", created)))

		found, err := repo.FindByName(ctx, "  maito ")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, maito.ID, found[0].ID)
		assert.Equal(t, "Maito", found[0].Name)
		assert.True(t, created.Equal(found[0].CreatedAt))

		found, err = repo.FindByName(ctx, "ähtärin juusto")
		require.NoError(t, err)
		assert.Len(t, found, 1)

		// 只比對完整名稱
		found, err = repo.FindByName(ctx, "mai")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestRepository_FindByNameReturnsAllMatchesOldestFirst(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		newer := newItem("maito", base.Add(time.Hour))
		older := newItem("MAITO", base)
		require.NoError(t, repo.Add(ctx, newer))
		require.NoError(t, repo.Add(ctx, older))

		found, err := repo.FindByName(ctx, "Maito")
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, older.ID, found[0].ID)
		assert.Equal(t, newer.ID, found[1].ID)
	})
}

func TestRepository_AddDuplicate(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		item := newItem("voi", time.Now())
		require.NoError(t, repo.Add(ctx, item))
		assert.ErrorIs(t, repo.Add(ctx, item), ErrDuplicateItem)
	})
}

func TestRepository_UpdateAndIncrementUsage(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		item := newItem("kahvi", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		item.Category = ""
		require.NoError(t, repo.Add(ctx, item))

		require.NoError(t, repo.IncrementUsage(ctx, item.ID))
		require.NoError(t, repo.IncrementUsage(ctx, item.ID))

		got, err := repo.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.UsageCount)

		got.Category = "drinks"
		got.UpdatedAt = got.UpdatedAt.Add(time.Minute)
		require.NoError(t, repo.Update(ctx, got))

		again, err := repo.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "drinks", again.Category)
		assert.Equal(t, 3, again.UsageCount)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestRepository_MissingItem(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		missing := newItem("ghost", time.Now())

		_, err := repo.Get(ctx, missing.ID)
		assert.ErrorIs(t, err, ErrItemNotFound)
		assert.ErrorIs(t, repo.Update(ctx, missing), ErrItemNotFound)
		assert.ErrorIs(t, repo.IncrementUsage(ctx, missing.ID), ErrItemNotFound)
	})
}

func TestRepository_Ping(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		assert.NoError(t, repo.Ping(context.Background()))
	})
}

func TestSQLiteRepository_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "items.db")

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	item := newItem("Kaurajuoma", time.Now())
	require.NoError(t, repo.Add(ctx, item))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer reopened.Close()

	found, err := reopened.FindByName(ctx, "kaurajuoma")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, item.ID, found[0].ID)
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryRepository()
	_, err := repo.FindByName(ctx, "maito")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Add(ctx, newItem("maito", time.Now())), context.Canceled)
}

func TestNew(t *testing.T) {
	repo, err := New(config.ItemsConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepository{}, repo)

	repo, err = New(config.ItemsConfig{
		Backend:    config.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "items.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepository{}, repo)
	require.NoError(t, repo.Close())

	_, err = New(config.ItemsConfig{Backend: "mongo"})
	assert.Error(t, err)
}
