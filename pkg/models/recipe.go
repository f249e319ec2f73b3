package models

import "time"

// Fallback values applied when a stored recipe row has gaps.
// Old generator runs left difficulty/image empty on some rows.
const (
	DefaultDifficulty = "Facile"
	PlaceholderImage  = "https://source.unsplash.com/800x600/?food"
)

type Recipe struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Country         string     `json:"country"`
	Region          string     `json:"region,omitempty"`
	Description     string     `json:"description"`
	ImageURL        string     `json:"image_url"`
	PreparationTime int        `json:"preparation_time"`
	CookingTime     int        `json:"cooking_time"`
	Difficulty      string     `json:"difficulty"` // Facile / Moyen / Difficile
	Servings        int        `json:"servings"`
	IsPremium       bool       `json:"is_premium"`
	CategoryID      *int64     `json:"category_id,omitempty"`
	StoryIntro      string     `json:"story_intro,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

type Ingredient struct {
	ID       int64  `json:"id"`
	RecipeID int64  `json:"recipe_id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

type Step struct {
	ID           int64  `json:"id"`
	RecipeID     int64  `json:"recipe_id"`
	OrderNumber  int    `json:"order_number"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	StoryContent string `json:"story_content,omitempty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type Inspiration struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// RecipeDetails is the full read model for one recipe page:
// the row itself plus its ordered steps and ingredient list.
type RecipeDetails struct {
	Recipe      Recipe       `json:"recipe"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
}
