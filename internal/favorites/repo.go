package favorites

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"cuisinehub/pkg/models"
)

// ErrAlreadyFavorite reports a duplicate add for the same user/recipe pair.
var ErrAlreadyFavorite = fmt.Errorf("recipe already in favorites")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Add(ctx context.Context, userID string, recipeID int64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO favorite_recipes (user_id, recipe_id) VALUES (?, ?)",
		userID, recipeID)
	if err != nil {
		if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrAlreadyFavorite
		}
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, userID string, recipeID int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM favorite_recipes WHERE user_id = ? AND recipe_id = ?",
		userID, recipeID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) IsFavorite(ctx context.Context, userID string, recipeID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM favorite_recipes WHERE user_id = ? AND recipe_id = ?",
		userID, recipeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return true, nil
}

// List returns the user's favorite recipes joined with the recipe rows,
// most recently added first.
func (r *Repo) List(ctx context.Context, userID string) ([]models.Recipe, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, r.title, r.country, COALESCE(r.region, ''), r.description,
			COALESCE(r.image_url, ''), r.preparation_time, r.cooking_time,
			COALESCE(r.difficulty, ''), r.servings, r.is_premium
		FROM favorite_recipes f
		JOIN recipes r ON r.id = f.recipe_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		var rec models.Recipe
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Country, &rec.Region,
			&rec.Description, &rec.ImageURL, &rec.PreparationTime,
			&rec.CookingTime, &rec.Difficulty, &rec.Servings, &rec.IsPremium); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		if rec.Difficulty == "" {
			rec.Difficulty = models.DefaultDifficulty
		}
		if rec.ImageURL == "" {
			rec.ImageURL = models.PlaceholderImage
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}
