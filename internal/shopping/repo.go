package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cuisinehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// CreateList inserts the list header, then the full item batch keyed to
// the new list id. The two writes are separate statements: if the batch
// fails after the header succeeded, the header stays behind with zero
// items. Known gap, no compensating delete; callers surface the error
// as a whole-operation failure.
func (r *Repo) CreateList(ctx context.Context, list models.ShoppingList, data models.ShoppingListData) (int64, error) {
	recipeIDs, err := json.Marshal(list.RecipeIDs)
	if err != nil {
		return 0, fmt.Errorf("marshal recipe ids: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO shopping_lists (user_id, name, total_recipes, servings, recipe_ids)
		VALUES (?, ?, ?, ?, ?)
	`, list.UserID, list.Name, data.TotalRecipes, data.Servings, string(recipeIDs))
	if err != nil {
		return 0, fmt.Errorf("insert shopping list: %w", err)
	}
	listID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("shopping list id: %w", err)
	}

	if err := r.insertItems(ctx, listID, data); err != nil {
		return listID, fmt.Errorf("insert shopping list items: %w", err)
	}
	return listID, nil
}

func (r *Repo) insertItems(ctx context.Context, listID int64, data models.ShoppingListData) error {
	stmt, err := r.DB.PrepareContext(ctx, `
		INSERT INTO shopping_list_items (shopping_list_id, name, quantity, unit, category, is_checked)
		VALUES (?, ?, ?, ?, ?, 0)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, group := range data.Ingredients {
		for _, item := range group.Items {
			if _, err := stmt.ExecContext(ctx, listID, item.Name, item.Quantity, item.Unit, group.Category); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.ShoppingList, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, name, total_recipes, servings, recipe_ids, created_at
		FROM shopping_lists
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	defer rows.Close()

	out := make([]models.ShoppingList, 0, 8)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetList(ctx context.Context, listID int64) (*models.ShoppingList, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, name, total_recipes, servings, recipe_ids, created_at
		FROM shopping_lists
		WHERE id = ?
	`, listID)

	l, err := scanList(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (*models.ShoppingList, error) {
	var l models.ShoppingList
	var recipeIDs string
	var created time.Time
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.TotalRecipes, &l.Servings, &recipeIDs, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan shopping list: %w", err)
	}
	l.CreatedAt = created
	_ = json.Unmarshal([]byte(recipeIDs), &l.RecipeIDs)
	return &l, nil
}

// GetItems returns the flat item sequence of a list in insertion order.
// Category grouping is derived from this, never stored.
func (r *Repo) GetItems(ctx context.Context, listID int64) ([]models.ShoppingListItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, shopping_list_id, name, quantity, unit, category, is_checked
		FROM shopping_list_items
		WHERE shopping_list_id = ?
		ORDER BY id
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := make([]models.ShoppingListItem, 0, 16)
	for rows.Next() {
		var it models.ShoppingListItem
		var unit sql.NullString
		var checked int
		if err := rows.Scan(&it.ID, &it.ShoppingListID, &it.Name, &it.Quantity, &unit, &it.Category, &checked); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Unit = unit.String
		it.IsChecked = checked != 0
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GroupItems recomputes the category partition from a flat item list,
// preserving first-appearance order of categories and of items.
func GroupItems(items []models.ShoppingListItem) []models.CategoryGroup {
	groups := make(map[string]int)
	var out []models.CategoryGroup
	for _, it := range items {
		idx, ok := groups[it.Category]
		if !ok {
			idx = len(out)
			groups[it.Category] = idx
			out = append(out, models.CategoryGroup{Category: it.Category})
		}
		out[idx].Items = append(out[idx].Items, it)
	}
	return out
}

// ErrItemNotFound covers both a missing item and an item belonging to
// another user's list; callers cannot tell the two apart.
var ErrItemNotFound = errors.New("shopping list item not found")

// SetChecked updates the single mutable field of an item. The update is
// scoped to lists owned by userID so a caller can never flip items on
// someone else's list.
func (r *Repo) SetChecked(ctx context.Context, userID string, itemID int64, checked bool) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE shopping_list_items
		SET is_checked = ?
		WHERE id = ?
		  AND shopping_list_id IN (SELECT id FROM shopping_lists WHERE user_id = ?)
	`, boolToInt(checked), itemID, userID)
	if err != nil {
		return fmt.Errorf("set checked: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Items adapts the repo to ItemStore for one user, so the state
// machine can persist toggles with the ownership check applied.
func (r *Repo) Items(userID string) ItemStore {
	return userItems{repo: r, userID: userID}
}

type userItems struct {
	repo   *Repo
	userID string
}

func (s userItems) SetChecked(ctx context.Context, itemID int64, checked bool) error {
	return s.repo.SetChecked(ctx, s.userID, itemID, checked)
}

func (r *Repo) DeleteList(ctx context.Context, userID string, listID int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM shopping_lists
		WHERE id = ? AND user_id = ?
	`, listID, userID)
	if err != nil {
		return false, fmt.Errorf("delete shopping list: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
