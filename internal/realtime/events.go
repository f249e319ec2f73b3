package realtime

// Feed event kinds, also the "type" field on the wire.
const (
	KindWelcome     = "welcome"
	KindListSaved   = "shopping_list.saved"
	KindListDeleted = "shopping_list.deleted"
	KindRecipeReady = "recipe.ready"
)

// Event is anything the hub can fan out. The hub wraps it in an
// envelope carrying the kind and a timestamp, so event types only
// describe their payload.
type Event interface {
	EventKind() string
}

// ListSavedEvent announces a newly saved shopping list.
type ListSavedEvent struct {
	UserID string `json:"user_id"`
	ListID int64  `json:"list_id"`
	Name   string `json:"name"`
}

func (ListSavedEvent) EventKind() string { return KindListSaved }

// ListDeletedEvent announces a removed shopping list.
type ListDeletedEvent struct {
	UserID string `json:"user_id"`
	ListID int64  `json:"list_id"`
}

func (ListDeletedEvent) EventKind() string { return KindListDeleted }

// RecipeReadyEvent announces that a background generation finished and
// the recipe is now readable from the catalog.
type RecipeReadyEvent struct {
	RecipeID int64  `json:"recipe_id"`
	Title    string `json:"title,omitempty"`
}

func (RecipeReadyEvent) EventKind() string { return KindRecipeReady }

type welcomeEvent struct {
	Subscribers int `json:"subscribers"`
}

func (welcomeEvent) EventKind() string { return KindWelcome }
