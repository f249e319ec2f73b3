package recipes

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cuisinehub/internal/shopping"
	"cuisinehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// ListFilter narrows the catalog listing. Zero values mean "no filter".
type ListFilter struct {
	Query      string
	Country    string
	CategoryID int64
	Sort       string // "newest" (default) or "oldest"
	Limit      int
	Offset     int
}

const recipeColumns = `id, title, country, region, description, image_url,
	preparation_time, cooking_time, difficulty, servings, is_premium,
	category_id, story_intro, latitude, longitude, created_at, updated_at`

func (r *Repo) List(ctx context.Context, f ListFilter) ([]models.Recipe, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}
	if f.Country != "" {
		where = append(where, "country = ?")
		args = append(args, f.Country)
	}
	if f.CategoryID > 0 {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}

	whereSQL := strings.Join(where, " AND ")

	var total int
	countSQL := "SELECT COUNT(*) FROM recipes WHERE " + whereSQL
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	order := "created_at DESC, id DESC"
	if f.Sort == "oldest" {
		order = "created_at ASC, id ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	querySQL := fmt.Sprintf("SELECT %s FROM recipes WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		recipeColumns, whereSQL, order)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	return recipes, total, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	row := r.DB.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM recipes WHERE id = ?", recipeColumns), id)
	rec, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &rec, nil
}

// GetDetails loads the full read model for one recipe page. Steps come
// back ordered by order_number.
func (r *Repo) GetDetails(ctx context.Context, id int64) (*models.RecipeDetails, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	details := &models.RecipeDetails{Recipe: *rec}

	ingRows, err := r.DB.QueryContext(ctx,
		"SELECT id, recipe_id, name, quantity, COALESCE(unit, '') FROM ingredients WHERE recipe_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("get ingredients: %w", err)
	}
	defer ingRows.Close()
	for ingRows.Next() {
		var ing models.Ingredient
		if err := ingRows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.Quantity, &ing.Unit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		details.Ingredients = append(details.Ingredients, ing)
	}
	if err := ingRows.Err(); err != nil {
		return nil, err
	}

	stepRows, err := r.DB.QueryContext(ctx,
		"SELECT id, recipe_id, order_number, title, description, COALESCE(story_content, '') FROM steps WHERE recipe_id = ? ORDER BY order_number", id)
	if err != nil {
		return nil, fmt.Errorf("get steps: %w", err)
	}
	defer stepRows.Close()
	for stepRows.Next() {
		var st models.Step
		if err := stepRows.Scan(&st.ID, &st.RecipeID, &st.OrderNumber, &st.Title, &st.Description, &st.StoryContent); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		details.Steps = append(details.Steps, st)
	}
	return details, stepRows.Err()
}

// Create inserts a recipe with its ingredients and steps in one
// transaction. Either everything lands or nothing does.
func (r *Repo) Create(ctx context.Context, d models.RecipeDetails) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rec := d.Recipe
	res, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (title, country, region, description, image_url,
			preparation_time, cooking_time, difficulty, servings, is_premium,
			category_id, story_intro, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Title, rec.Country, nullString(rec.Region), rec.Description,
		nullString(rec.ImageURL), rec.PreparationTime, rec.CookingTime,
		nullString(rec.Difficulty), rec.Servings, boolToInt(rec.IsPremium),
		rec.CategoryID, nullString(rec.StoryIntro), rec.Latitude, rec.Longitude)
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}
	recipeID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recipe id: %w", err)
	}

	for _, ing := range d.Ingredients {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO ingredients (recipe_id, name, quantity, unit) VALUES (?, ?, ?, ?)",
			recipeID, ing.Name, ing.Quantity, nullString(ing.Unit)); err != nil {
			return 0, fmt.Errorf("insert ingredient: %w", err)
		}
	}
	for i, st := range d.Steps {
		order := st.OrderNumber
		if order == 0 {
			order = i + 1
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO steps (recipe_id, order_number, title, description, story_content) VALUES (?, ?, ?, ?, ?)",
			recipeID, order, st.Title, st.Description, nullString(st.StoryContent)); err != nil {
			return 0, fmt.Errorf("insert step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return recipeID, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Explore returns recipes that carry map coordinates.
func (r *Repo) Explore(ctx context.Context) ([]models.Recipe, error) {
	rows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM recipes WHERE latitude IS NOT NULL AND longitude IS NOT NULL ORDER BY country, title", recipeColumns))
	if err != nil {
		return nil, fmt.Errorf("explore recipes: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

func (r *Repo) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, icon FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *Repo) Inspirations(ctx context.Context) ([]models.Inspiration, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, title, image_url FROM inspirations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list inspirations: %w", err)
	}
	defer rows.Close()

	var out []models.Inspiration
	for rows.Next() {
		var ins models.Inspiration
		if err := rows.Scan(&ins.ID, &ins.Title, &ins.ImageURL); err != nil {
			return nil, fmt.Errorf("scan inspiration: %w", err)
		}
		out = append(out, ins)
	}
	return out, rows.Err()
}

// IngredientsForRecipes loads the aggregation inputs for a set of
// recipe ids. Unknown ids are skipped, not errors.
func (r *Repo) IngredientsForRecipes(ctx context.Context, ids []int64) ([]shopping.RecipeIngredients, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, servings FROM recipes WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	defer rows.Close()

	servingsByID := make(map[int64]int)
	var found []int64
	for rows.Next() {
		var id int64
		var servings int
		if err := rows.Scan(&id, &servings); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		servingsByID[id] = servings
		found = append(found, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}

	ingRows, err := r.DB.QueryContext(ctx,
		"SELECT id, recipe_id, name, quantity, COALESCE(unit, '') FROM ingredients WHERE recipe_id IN ("+placeholders+") ORDER BY recipe_id, id", args...)
	if err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	defer ingRows.Close()

	byRecipe := make(map[int64][]models.Ingredient)
	for ingRows.Next() {
		var ing models.Ingredient
		if err := ingRows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.Quantity, &ing.Unit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		byRecipe[ing.RecipeID] = append(byRecipe[ing.RecipeID], ing)
	}
	if err := ingRows.Err(); err != nil {
		return nil, err
	}

	// preserve the order the ids were requested in
	out := make([]shopping.RecipeIngredients, 0, len(found))
	for _, id := range ids {
		if _, ok := servingsByID[id]; !ok {
			continue
		}
		out = append(out, shopping.RecipeIngredients{
			Servings:    servingsByID[id],
			Ingredients: byRecipe[id],
		})
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (models.Recipe, error) {
	var rec models.Recipe
	var region, imageURL, difficulty, storyIntro sql.NullString
	var categoryID sql.NullInt64
	var lat, lng sql.NullFloat64
	var updatedAt sql.NullTime

	err := row.Scan(&rec.ID, &rec.Title, &rec.Country, &region, &rec.Description,
		&imageURL, &rec.PreparationTime, &rec.CookingTime, &difficulty,
		&rec.Servings, &rec.IsPremium, &categoryID, &storyIntro,
		&lat, &lng, &rec.CreatedAt, &updatedAt)
	if err != nil {
		return rec, err
	}

	rec.Region = region.String
	rec.ImageURL = imageURL.String
	rec.Difficulty = difficulty.String
	rec.StoryIntro = storyIntro.String
	if categoryID.Valid {
		rec.CategoryID = &categoryID.Int64
	}
	if lat.Valid {
		rec.Latitude = &lat.Float64
	}
	if lng.Valid {
		rec.Longitude = &lng.Float64
	}
	if updatedAt.Valid {
		rec.UpdatedAt = &updatedAt.Time
	}

	// read-time fallbacks for rows written before these fields existed
	if rec.Difficulty == "" {
		rec.Difficulty = models.DefaultDifficulty
	}
	if rec.ImageURL == "" {
		rec.ImageURL = models.PlaceholderImage
	}
	return rec, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
