package recipes

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
	return db
}

func sampleDetails() models.RecipeDetails {
	lat, lng := 45.76, 4.84
	return models.RecipeDetails{
		Recipe: models.Recipe{
			Title:           "Quenelles de brochet",
			Country:         "France",
			Region:          "Lyon",
			Description:     "Un classique des bouchons lyonnais.",
			PreparationTime: 30,
			CookingTime:     25,
			Difficulty:      "Moyen",
			Servings:        4,
			Latitude:        &lat,
			Longitude:       &lng,
		},
		Ingredients: []models.Ingredient{
			{Name: "Brochet", Quantity: "400", Unit: "g"},
			{Name: "Crème", Quantity: "20", Unit: "cl"},
		},
		Steps: []models.Step{
			{OrderNumber: 1, Title: "Préparer", Description: "Mixer la chair."},
			{OrderNumber: 2, Title: "Pocher", Description: "Pocher les quenelles."},
		},
	}
}

func TestCreateAndGetDetails(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	id, err := repo.Create(ctx, sampleDetails())
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	details, err := repo.GetDetails(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, details)
	require.Equal(t, "Quenelles de brochet", details.Recipe.Title)
	require.Equal(t, "Lyon", details.Recipe.Region)
	require.Len(t, details.Ingredients, 2)
	require.Len(t, details.Steps, 2)
	require.Equal(t, 1, details.Steps[0].OrderNumber)
	require.Equal(t, 2, details.Steps[1].OrderNumber)

	missing, err := repo.GetDetails(ctx, id+100)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestStepsComeBackInOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	d := sampleDetails()
	// insert out of order on purpose
	d.Steps = []models.Step{
		{OrderNumber: 3, Description: "troisième"},
		{OrderNumber: 1, Description: "première"},
		{OrderNumber: 2, Description: "deuxième"},
	}
	id, err := repo.Create(ctx, d)
	require.NoError(t, err)

	details, err := repo.GetDetails(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"première", "deuxième", "troisième"},
		[]string{details.Steps[0].Description, details.Steps[1].Description, details.Steps[2].Description})
}

func TestReadTimeFallbacks(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	d := sampleDetails()
	d.Recipe.Difficulty = ""
	d.Recipe.ImageURL = ""
	id, err := repo.Create(ctx, d)
	require.NoError(t, err)

	rec, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, models.DefaultDifficulty, rec.Difficulty)
	require.Equal(t, models.PlaceholderImage, rec.ImageURL)
}

func TestListFiltersAndSort(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	first := sampleDetails()
	first.Recipe.Title = "Ratatouille"
	firstID, err := repo.Create(ctx, first)
	require.NoError(t, err)

	second := sampleDetails()
	second.Recipe.Title = "Couscous royal"
	second.Recipe.Country = "Maroc"
	secondID, err := repo.Create(ctx, second)
	require.NoError(t, err)

	items, total, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 2)
	// newest first breaks creation ties on id
	require.Equal(t, secondID, items[0].ID)

	items, total, err = repo.List(ctx, ListFilter{Sort: "oldest"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, firstID, items[0].ID)

	items, total, err = repo.List(ctx, ListFilter{Country: "Maroc"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Couscous royal", items[0].Title)

	items, total, err = repo.List(ctx, ListFilter{Query: "rata"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Ratatouille", items[0].Title)

	_, total, err = repo.List(ctx, ListFilter{Query: "introuvable"})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestExploreRequiresCoordinates(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	withCoords := sampleDetails()
	_, err := repo.Create(ctx, withCoords)
	require.NoError(t, err)

	without := sampleDetails()
	without.Recipe.Title = "Sans carte"
	without.Recipe.Latitude = nil
	without.Recipe.Longitude = nil
	_, err = repo.Create(ctx, without)
	require.NoError(t, err)

	items, err := repo.Explore(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Latitude)
	require.NotNil(t, items[0].Longitude)
}

func TestIngredientsForRecipes(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	first := sampleDetails()
	firstID, err := repo.Create(ctx, first)
	require.NoError(t, err)

	second := sampleDetails()
	second.Recipe.Servings = 2
	second.Ingredients = []models.Ingredient{{Name: "Tomates", Quantity: "3"}}
	secondID, err := repo.Create(ctx, second)
	require.NoError(t, err)

	// unknown ids are skipped, requested order is preserved
	out, err := repo.IngredientsForRecipes(ctx, []int64{secondID, 999, firstID})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, 2, out[0].Servings)
	require.Len(t, out[0].Ingredients, 1)
	require.Equal(t, 4, out[1].Servings)
	require.Len(t, out[1].Ingredients, 2)

	out, err = repo.IngredientsForRecipes(ctx, []int64{12345})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	id, err := repo.Create(ctx, sampleDetails())
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)

	// cascade removed children
	details, err := repo.GetDetails(ctx, id)
	require.NoError(t, err)
	require.Nil(t, details)
}
