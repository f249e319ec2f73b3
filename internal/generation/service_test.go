package generation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{
			name: "by name",
			req:  Request{DishType: "plat principal", RecipeName: "Blanquette de veau"},
		},
		{
			name: "by ingredients",
			req:  Request{DishType: "entrée", AvailableIngredients: []string{"tomates", "mozzarella"}},
		},
		{
			name:    "missing dish type",
			req:     Request{RecipeName: "Tarte tatin"},
			wantErr: true,
		},
		{
			name:    "neither name nor ingredients",
			req:     Request{DishType: "dessert"},
			wantErr: true,
		},
		{
			name: "both name and ingredients",
			req: Request{
				DishType:             "plat principal",
				RecipeName:           "Paella",
				AvailableIngredients: []string{"riz"},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

const validPayload = `{
	"title": "Gratin dauphinois",
	"country": "France",
	"description": "Pommes de terre fondantes à la crème.",
	"preparation_time": 20,
	"cooking_time": 60,
	"difficulty": "Facile",
	"servings": 6,
	"ingredients": [
		{"name": "Pommes de terre", "quantity": "1", "unit": "kg"},
		{"name": "Crème", "quantity": "40", "unit": "cl"}
	],
	"steps": [
		{"title": "Préparer", "description": "Éplucher et trancher."},
		{"description": "Enfourner 1h à 180°C."}
	]
}`

func TestParsePayload(t *testing.T) {
	details, err := ParsePayload(validPayload)
	require.NoError(t, err)
	require.Equal(t, "Gratin dauphinois", details.Recipe.Title)
	require.Equal(t, 6, details.Recipe.Servings)
	require.Len(t, details.Ingredients, 2)
	require.Len(t, details.Steps, 2)

	// steps are renumbered sequentially regardless of input
	require.Equal(t, 1, details.Steps[0].OrderNumber)
	require.Equal(t, 2, details.Steps[1].OrderNumber)
}

func TestParsePayloadDefaultsServings(t *testing.T) {
	details, err := ParsePayload(`{
		"title": "Salade verte",
		"ingredients": [{"name": "Salade", "quantity": "1"}],
		"steps": [{"description": "Laver et assaisonner."}]
	}`)
	require.NoError(t, err)
	require.Equal(t, 4, details.Recipe.Servings)
}

func TestParsePayloadRejectsMalformedData(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "pas du json"},
		{"missing title", `{"ingredients":[{"name":"x"}],"steps":[{"description":"y"}]}`},
		{"no ingredients", `{"title":"t","ingredients":[],"steps":[{"description":"y"}]}`},
		{"no steps", `{"title":"t","ingredients":[{"name":"x"}],"steps":[]}`},
		{"nameless ingredient", `{"title":"t","ingredients":[{"quantity":"1"}],"steps":[{"description":"y"}]}`},
		{"empty step", `{"title":"t","ingredients":[{"name":"x"}],"steps":[{"title":"only"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePayload(tc.raw)
			require.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}
