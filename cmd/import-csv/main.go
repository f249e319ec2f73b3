package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"cuisinehub/pkg/database"
)

func main() {
	var (
		recipesIn    = flag.String("recipes", "data/recipes.csv", "input CSV path for recipes")
		categoriesIn = flag.String("categories", "", "optional input CSV path for categories")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if *categoriesIn != "" {
		if err := importCategories(ctx, db, *categoriesIn); err != nil {
			log.Fatalf("import categories failed: %v", err)
		}
	}
	n, err := importRecipes(ctx, db, *recipesIn)
	if err != nil {
		log.Fatalf("import recipes failed: %v", err)
	}

	log.Printf("✅ imported %d recipes from %s", n, *recipesIn)
}

func importCategories(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO categories (id, name, icon)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  icon = excluded.icon
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		name := valueAt(header, row, "name")
		if id == "" || name == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, id, name, valueAt(header, row, "icon")); err != nil {
			return err
		}
	}
	return nil
}

// importRecipes upserts one recipe per row, plus optional pipe-separated
// ingredient ("name:quantity:unit|...") and step ("description|...")
// columns.
func importRecipes(ctx context.Context, db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO recipes (id, title, country, region, description, image_url,
			preparation_time, cooking_time, difficulty, servings, is_premium,
			story_intro, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  country = excluded.country,
		  region = excluded.region,
		  description = excluded.description,
		  image_url = excluded.image_url,
		  preparation_time = excluded.preparation_time,
		  cooking_time = excluded.cooking_time,
		  difficulty = excluded.difficulty,
		  servings = excluded.servings,
		  is_premium = excluded.is_premium,
		  story_intro = excluded.story_intro,
		  latitude = excluded.latitude,
		  longitude = excluded.longitude
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		title := valueAt(header, row, "title")
		if id == "" || title == "" {
			continue
		}

		prepTime, err := parseNullInt(valueAt(header, row, "preparation_time"))
		if err != nil {
			return count, fmt.Errorf("parse preparation_time for %s: %w", id, err)
		}
		cookTime, err := parseNullInt(valueAt(header, row, "cooking_time"))
		if err != nil {
			return count, fmt.Errorf("parse cooking_time for %s: %w", id, err)
		}
		servings, err := parseNullInt(valueAt(header, row, "servings"))
		if err != nil {
			return count, fmt.Errorf("parse servings for %s: %w", id, err)
		}
		if !servings.Valid {
			servings = sql.NullInt64{Int64: 4, Valid: true}
		}
		// timings are NOT NULL columns, missing values become 0
		if !prepTime.Valid {
			prepTime = sql.NullInt64{Valid: true}
		}
		if !cookTime.Valid {
			cookTime = sql.NullInt64{Valid: true}
		}
		lat, err := parseNullFloat(valueAt(header, row, "latitude"))
		if err != nil {
			return count, fmt.Errorf("parse latitude for %s: %w", id, err)
		}
		lng, err := parseNullFloat(valueAt(header, row, "longitude"))
		if err != nil {
			return count, fmt.Errorf("parse longitude for %s: %w", id, err)
		}

		isPremium := 0
		if v := strings.ToLower(valueAt(header, row, "is_premium")); v == "1" || v == "true" || v == "oui" {
			isPremium = 1
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			title,
			valueAt(header, row, "country"),
			nullString(valueAt(header, row, "region")),
			valueAt(header, row, "description"),
			nullString(valueAt(header, row, "image_url")),
			prepTime,
			cookTime,
			nullString(valueAt(header, row, "difficulty")),
			servings,
			isPremium,
			nullString(valueAt(header, row, "story_intro")),
			lat,
			lng,
		); err != nil {
			return count, err
		}

		recipeID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return count, fmt.Errorf("recipe id %q must be numeric: %w", id, err)
		}
		if err := replaceIngredients(ctx, db, recipeID, valueAt(header, row, "ingredients")); err != nil {
			return count, fmt.Errorf("ingredients for %s: %w", id, err)
		}
		if err := replaceSteps(ctx, db, recipeID, valueAt(header, row, "steps")); err != nil {
			return count, fmt.Errorf("steps for %s: %w", id, err)
		}
		count++
	}
	return count, nil
}

func replaceIngredients(ctx context.Context, db *sql.DB, recipeID int64, raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM ingredients WHERE recipe_id = ?", recipeID); err != nil {
		return err
	}
	for _, entry := range strings.Split(raw, "|") {
		parts := strings.SplitN(entry, ":", 3)
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}
		quantity, unit := "", ""
		if len(parts) > 1 {
			quantity = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			unit = strings.TrimSpace(parts[2])
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO ingredients (recipe_id, name, quantity, unit) VALUES (?, ?, ?, ?)",
			recipeID, name, quantity, nullString(unit)); err != nil {
			return err
		}
	}
	return nil
}

func replaceSteps(ctx context.Context, db *sql.DB, recipeID int64, raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM steps WHERE recipe_id = ?", recipeID); err != nil {
		return err
	}
	order := 0
	for _, entry := range strings.Split(raw, "|") {
		description := strings.TrimSpace(entry)
		if description == "" {
			continue
		}
		order++
		if _, err := db.ExecContext(ctx,
			"INSERT INTO steps (recipe_id, order_number, title, description) VALUES (?, ?, ?, ?)",
			recipeID, order, fmt.Sprintf("Étape %d", order), description); err != nil {
			return err
		}
	}
	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNullInt(raw string) (sql.NullInt64, error) {
	if raw == "" {
		return sql.NullInt64{}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

func parseNullFloat(raw string) (sql.NullFloat64, error) {
	if raw == "" {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
