package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"cuisinehub/pkg/models"
)

// ErrInvalidPayload marks a generation result that could not be
// validated into a recipe. Callers distinguish it from transport
// failures with errors.Is.
var ErrInvalidPayload = errors.New("invalid generation payload")

// Request describes what to generate. Exactly one of RecipeName or
// AvailableIngredients must be set.
type Request struct {
	DishType             string   `json:"dish_type"`
	RecipeName           string   `json:"recipe_name,omitempty"`
	AvailableIngredients []string `json:"available_ingredients,omitempty"`
	DietaryConstraints   []string `json:"dietary_constraints,omitempty"`
	ExcludedIngredients  []string `json:"excluded_ingredients,omitempty"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.DishType) == "" {
		return errors.New("dish_type is required")
	}
	hasName := strings.TrimSpace(r.RecipeName) != ""
	hasIngredients := len(r.AvailableIngredients) > 0
	if hasName == hasIngredients {
		return errors.New("exactly one of recipe_name or available_ingredients is required")
	}
	return nil
}

// Generator produces the raw JSON text of a generated recipe. The
// model output is untrusted; ParsePayload validates it afterwards.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// payload mirrors the JSON shape the model is asked to produce.
type payload struct {
	Title           string `json:"title"`
	Country         string `json:"country"`
	Description     string `json:"description"`
	PreparationTime int    `json:"preparation_time"`
	CookingTime     int    `json:"cooking_time"`
	Difficulty      string `json:"difficulty"`
	Servings        int    `json:"servings"`
	StoryIntro      string `json:"story_intro"`
	Ingredients     []struct {
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
		Unit     string `json:"unit"`
	} `json:"ingredients"`
	Steps []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"steps"`
}

// ParsePayload validates raw model output into the typed recipe
// structure. Any malformed or incomplete payload yields
// ErrInvalidPayload so the caller can tell it apart from IO errors.
func ParsePayload(raw string) (*models.RecipeDetails, error) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", ErrInvalidPayload)
	}
	if len(p.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: no ingredients", ErrInvalidPayload)
	}
	if len(p.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidPayload)
	}

	details := &models.RecipeDetails{
		Recipe: models.Recipe{
			Title:           strings.TrimSpace(p.Title),
			Country:         p.Country,
			Description:     p.Description,
			PreparationTime: p.PreparationTime,
			CookingTime:     p.CookingTime,
			Difficulty:      p.Difficulty,
			Servings:        p.Servings,
			StoryIntro:      p.StoryIntro,
		},
	}
	if details.Recipe.Servings <= 0 {
		details.Recipe.Servings = 4
	}

	for _, ing := range p.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return nil, fmt.Errorf("%w: ingredient without name", ErrInvalidPayload)
		}
		details.Ingredients = append(details.Ingredients, models.Ingredient{
			Name:     strings.TrimSpace(ing.Name),
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}
	for i, st := range p.Steps {
		if strings.TrimSpace(st.Description) == "" {
			return nil, fmt.Errorf("%w: step %d without description", ErrInvalidPayload, i+1)
		}
		details.Steps = append(details.Steps, models.Step{
			OrderNumber: i + 1,
			Title:       st.Title,
			Description: st.Description,
		})
	}
	return details, nil
}

const generationModel = "gemini-2.5-flash"

const systemPrompt = `Tu es un chef cuisinier. Génère une recette complète en
français au format JSON demandé. Les quantités sont pour le nombre de
personnes indiqué, les étapes sont numérotées et détaillées.`

// GenAIGenerator backs Generate with the Gemini API, constrained to a
// JSON response schema.
type GenAIGenerator struct {
	client *genai.Client
}

func NewGenAIGenerator(ctx context.Context, apiKey string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("generation API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIGenerator{client: client}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	prompt := buildPrompt(req)

	res, err := g.client.Models.GenerateContent(ctx, generationModel, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleModel),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    recipeSchema(),
	})
	if err != nil {
		return "", fmt.Errorf("generate recipe: %w", err)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Content == nil ||
		len(res.Candidates[0].Content.Parts) != 1 || res.Candidates[0].Content.Parts[0].Text == "" {
		return "", fmt.Errorf("unexpected generation result")
	}
	return res.Candidates[0].Content.Parts[0].Text, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Type de plat: %s.\n", req.DishType)
	if req.RecipeName != "" {
		fmt.Fprintf(&b, "Recette demandée: %s.\n", req.RecipeName)
	}
	if len(req.AvailableIngredients) > 0 {
		fmt.Fprintf(&b, "Ingrédients disponibles: %s.\n", strings.Join(req.AvailableIngredients, ", "))
	}
	if len(req.DietaryConstraints) > 0 {
		fmt.Fprintf(&b, "Contraintes alimentaires: %s.\n", strings.Join(req.DietaryConstraints, ", "))
	}
	if len(req.ExcludedIngredients) > 0 {
		fmt.Fprintf(&b, "Ingrédients à exclure: %s.\n", strings.Join(req.ExcludedIngredients, ", "))
	}
	return b.String()
}

func recipeSchema() *genai.Schema {
	return &genai.Schema{
		Type: "object",
		Properties: map[string]*genai.Schema{
			"title":            {Type: "string"},
			"country":          {Type: "string"},
			"description":      {Type: "string"},
			"preparation_time": {Type: "integer", Description: "minutes"},
			"cooking_time":     {Type: "integer", Description: "minutes"},
			"difficulty":       {Type: "string", Description: "Facile, Moyen ou Difficile"},
			"servings":         {Type: "integer"},
			"story_intro":      {Type: "string"},
			"ingredients": {
				Type: "array",
				Items: &genai.Schema{
					Type: "object",
					Properties: map[string]*genai.Schema{
						"name":     {Type: "string"},
						"quantity": {Type: "string"},
						"unit":     {Type: "string"},
					},
					Required: []string{"name", "quantity"},
				},
			},
			"steps": {
				Type: "array",
				Items: &genai.Schema{
					Type: "object",
					Properties: map[string]*genai.Schema{
						"title":       {Type: "string"},
						"description": {Type: "string"},
					},
					Required: []string{"description"},
				},
			},
		},
		Required: []string{"title", "description", "ingredients", "steps"},
	}
}
