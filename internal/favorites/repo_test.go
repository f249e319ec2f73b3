package favorites

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"cuisinehub/pkg/database"
	"cuisinehub/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	_, err = db.Exec(`INSERT INTO users (id, username, email, password_hash) VALUES ('u1', 'alice', 'alice@example.com', 'x')`)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO recipes (id, title, country, description, servings)
		VALUES (1, 'Ratatouille', 'France', 'Légumes mijotés.', 4),
		       (2, 'Tajine', 'Maroc', '', 6)`)
	require.NoError(t, err)
	return db
}

func TestAddIsNotIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	require.NoError(t, repo.Add(ctx, "u1", 1))
	require.ErrorIs(t, repo.Add(ctx, "u1", 1), ErrAlreadyFavorite)

	// a different recipe is a different membership
	require.NoError(t, repo.Add(ctx, "u1", 2))
}

func TestIsFavoriteAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	ok, err := repo.IsFavorite(ctx, "u1", 1)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Add(ctx, "u1", 1))

	ok, err = repo.IsFavorite(ctx, "u1", 1)
	require.NoError(t, err)
	require.True(t, ok)

	removed, err := repo.Remove(ctx, "u1", 1)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = repo.Remove(ctx, "u1", 1)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestListJoinsRecipeRowsWithFallbacks(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	require.NoError(t, repo.Add(ctx, "u1", 1))
	require.NoError(t, repo.Add(ctx, "u1", 2))

	recipes, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	titles := []string{recipes[0].Title, recipes[1].Title}
	require.ElementsMatch(t, []string{"Ratatouille", "Tajine"}, titles)

	// rows with no stored difficulty/image get the display defaults
	for _, rec := range recipes {
		require.Equal(t, models.DefaultDifficulty, rec.Difficulty)
		require.Equal(t, models.PlaceholderImage, rec.ImageURL)
	}
}
