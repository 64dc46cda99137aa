package recipes

import (
	"fmt"
	"sort"
	"time"

	"eve-craftcost/internal/fetch"
)

const recipeBaseURL = "https://ref-data.everef.net/recipes"

// Recipes are assumed stable; the TTL only matters across long-lived
// processes spanning a data export update.
const recipeTTL = 24 * time.Hour

// Activity type codes as published by the recipe endpoint.
const (
	CodeManufacturing = "1"
	CodeReaction      = "11"
)

// RecipeLine is a single input requirement of an activity.
type RecipeLine struct {
	TypeID   int32
	Name     string
	Quantity int64 // per run
}

// Activity is one alternative production process for a recipe.
type Activity struct {
	Code            string
	Lines           []RecipeLine
	ProductName     string
	ProductQuantity int64 // per run, never below 1
}

// Recipe holds all production activities for a type. A recipe with no
// activities is a pure raw material.
type Recipe struct {
	TypeID     int32
	Name       string
	Activities map[string]*Activity // keyed by activity code
}

// NoActivityError reports a recipe with no usable production activity.
type NoActivityError struct {
	TypeID int32
	Name   string
}

func (e *NoActivityError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s (type %d) has no production activity", e.Name, e.TypeID)
	}
	return fmt.Sprintf("type %d has no production activity", e.TypeID)
}

// Repository fetches and caches recipes through the cached data client.
type Repository struct {
	client fetch.Getter
}

// NewRepository creates a repository over the given fetch client.
func NewRepository(client fetch.Getter) *Repository {
	return &Repository{client: client}
}

// recipeDoc mirrors the endpoint response: activities keyed by type code.
type recipeDoc struct {
	Name       string `json:"name"`
	Activities map[string]struct {
		Materials []struct {
			TypeID   int32  `json:"typeID"`
			Name     string `json:"name"`
			Quantity int64  `json:"quantity"`
		} `json:"materials"`
		Products []struct {
			TypeID   int32  `json:"typeID"`
			Name     string `json:"name"`
			Quantity int64  `json:"quantity"`
		} `json:"products"`
	} `json:"activities"`
}

// Recipe fetches the recipe for a type ID.
func (r *Repository) Recipe(id int32) (*Recipe, error) {
	url := fmt.Sprintf("%s/%d", recipeBaseURL, id)

	var doc recipeDoc
	if err := r.client.GetJSON(url, recipeTTL, &doc); err != nil {
		return nil, err
	}

	rec := &Recipe{
		TypeID:     id,
		Name:       doc.Name,
		Activities: make(map[string]*Activity, len(doc.Activities)),
	}
	for code, raw := range doc.Activities {
		act := &Activity{Code: code, ProductQuantity: 1, ProductName: doc.Name}
		for _, m := range raw.Materials {
			if m.Quantity <= 0 {
				continue
			}
			act.Lines = append(act.Lines, RecipeLine{TypeID: m.TypeID, Name: m.Name, Quantity: m.Quantity})
		}
		if len(raw.Products) > 0 {
			if raw.Products[0].Quantity > 0 {
				act.ProductQuantity = raw.Products[0].Quantity
			}
			if raw.Products[0].Name != "" {
				act.ProductName = raw.Products[0].Name
			}
		}
		rec.Activities[code] = act
	}
	return rec, nil
}

// SelectActivity picks the activity used for expansion: manufacturing if
// present, else reaction, else the lowest activity code. Fixed policy.
func SelectActivity(rec *Recipe) (*Activity, bool) {
	if rec == nil || len(rec.Activities) == 0 {
		return nil, false
	}
	if act, ok := rec.Activities[CodeManufacturing]; ok {
		return act, true
	}
	if act, ok := rec.Activities[CodeReaction]; ok {
		return act, true
	}
	codes := make([]string, 0, len(rec.Activities))
	for code := range rec.Activities {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return rec.Activities[codes[0]], true
}
