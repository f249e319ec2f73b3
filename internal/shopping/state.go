package shopping

import (
	"context"
	"fmt"

	"cuisinehub/pkg/models"
)

// ItemStore persists the checked flag of a single shopping list item.
// The HTTP client satisfies it through Client.Items; the sqlite repo
// through Repo.Items, which pins the toggles to one user's lists.
type ItemStore interface {
	SetChecked(ctx context.Context, itemID int64, checked bool) error
}

type itemKey struct {
	Category string
	Name     string
}

// State tracks the checked/unchecked status of every item in one
// shopping list and keeps the completion ratio consistent with it.
//
// The (category, name) key assumes item names are unique within a
// category; duplicate names returned by aggregation merge into one
// entry, matching the upstream contract.
//
// State is confined to a single goroutine (the UI/event loop in the
// app, a single test or request in this codebase) and needs no lock.
type State struct {
	store    ItemStore
	checked  map[itemKey]bool
	progress float64
}

// NewState builds the local key -> checked mapping from the
// authoritative categorized list, mirroring it exactly.
func NewState(data models.ShoppingListData, store ItemStore) *State {
	s := &State{
		store:   store,
		checked: make(map[itemKey]bool),
	}
	for _, group := range data.Ingredients {
		for _, item := range group.Items {
			s.checked[itemKey{Category: group.Category, Name: item.Name}] = item.IsChecked
		}
	}
	s.recompute()
	return s
}

// ToggleItem flips the item's local flag immediately, then persists the
// new value. A persistence failure rolls the flag back to its pre-toggle
// value and returns the error; no retry is attempted.
func (s *State) ToggleItem(ctx context.Context, category string, itemID int64, name string) error {
	key := itemKey{Category: category, Name: name}
	prev, ok := s.checked[key]
	if !ok {
		return fmt.Errorf("toggle item: unknown item %q in category %q", name, category)
	}

	next := !prev
	s.checked[key] = next
	s.recompute()

	if s.store != nil {
		if err := s.store.SetChecked(ctx, itemID, next); err != nil {
			s.checked[key] = prev
			s.recompute()
			return fmt.Errorf("toggle item: %w", err)
		}
	}
	return nil
}

// IsChecked reports the current local flag for an item.
func (s *State) IsChecked(category, name string) bool {
	return s.checked[itemKey{Category: category, Name: name}]
}

// Progress is checked/total across all categories. An empty mapping is
// degenerate: the recompute is skipped and the prior value stands.
func (s *State) Progress() float64 {
	return s.progress
}

// TotalItems is the number of tracked items.
func (s *State) TotalItems() int {
	return len(s.checked)
}

// CheckedCount is the number of items currently checked.
func (s *State) CheckedCount() int {
	n := 0
	for _, v := range s.checked {
		if v {
			n++
		}
	}
	return n
}

func (s *State) recompute() {
	total := len(s.checked)
	if total == 0 {
		// 0/0: skip the update, keep the prior progress value
		return
	}
	s.progress = float64(s.CheckedCount()) / float64(total)
}

// SortForDisplay returns the items of one category reordered for
// rendering: unchecked first, checked last, original relative order
// preserved within each partition. The input slice is not mutated;
// persistence identity keeps the original sequence.
func (s *State) SortForDisplay(category string, items []models.ShoppingListItem) []models.ShoppingListItem {
	out := make([]models.ShoppingListItem, 0, len(items))
	for _, it := range items {
		if !s.IsChecked(category, it.Name) {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if s.IsChecked(category, it.Name) {
			out = append(out, it)
		}
	}
	return out
}

// Snapshot re-applies the local flags onto a copy of the categorized
// list, e.g. for sharing or re-rendering.
func (s *State) Snapshot(data models.ShoppingListData) models.ShoppingListData {
	out := models.ShoppingListData{
		TotalRecipes: data.TotalRecipes,
		Servings:     data.Servings,
		Ingredients:  make([]models.CategoryGroup, len(data.Ingredients)),
	}
	for i, group := range data.Ingredients {
		items := make([]models.ShoppingListItem, len(group.Items))
		copy(items, group.Items)
		for j := range items {
			items[j].IsChecked = s.IsChecked(group.Category, items[j].Name)
		}
		out.Ingredients[i] = models.CategoryGroup{Category: group.Category, Items: items}
	}
	return out
}
