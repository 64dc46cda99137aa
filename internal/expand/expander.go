package expand

import (
	"fmt"
	"strings"

	"eve-craftcost/internal/recipes"
)

// DefaultKeywords selects which recipe lines get broken down further:
// intermediate crafted goods and fuel blocks. Everything else is bought as-is.
var DefaultKeywords = []string{
	"components",
	"fuel block",
	"composite",
	"polymer",
	"intermediate",
}

// RecipeSource supplies recipes to the expansion walk. Injected so the
// engine runs against fixed fixtures in tests.
type RecipeSource interface {
	Recipe(id int32) (*recipes.Recipe, error)
}

// Material is one aggregated raw-input requirement.
type Material struct {
	TypeID   int32
	Name     string
	Quantity int64
}

// Expander recursively expands a recipe into a flat multiset of required
// input quantities.
type Expander struct {
	Recipes RecipeSource

	// Keywords overrides DefaultKeywords; case-insensitive substring match
	// against line names.
	Keywords []string
}

// NewExpander creates an expander over the given recipe source.
func NewExpander(src RecipeSource) *Expander {
	return &Expander{Recipes: src}
}

type visitKey struct {
	typeID int32
	depth  int
}

// walkState threads the visited set and accumulator through one expansion
// call; nothing is shared across calls.
type walkState struct {
	visited map[visitKey]bool
	totals  map[int32]*Material
	order   []int32
}

// Expand walks the recipe tree rooted at rootID for the given run count and
// returns aggregated leaf quantities (entries with quantity > 0, unordered).
// A failure fetching the root recipe, or a root with no production activity,
// aborts; failures below the root degrade that node to a leaf.
func (e *Expander) Expand(rootID int32, runs int64, maxDepth int) ([]Material, error) {
	if runs <= 0 {
		runs = 1
	}

	rec, err := e.Recipes.Recipe(rootID)
	if err != nil {
		return nil, fmt.Errorf("root recipe %d: %w", rootID, err)
	}
	act, ok := recipes.SelectActivity(rec)
	if !ok {
		return nil, &recipes.NoActivityError{TypeID: rootID, Name: rec.Name}
	}

	st := &walkState{
		visited: map[visitKey]bool{{rootID, 0}: true},
		totals:  make(map[int32]*Material),
	}
	e.walk(act, runs, 0, maxDepth, st)

	out := make([]Material, 0, len(st.order))
	for _, id := range st.order {
		if m := st.totals[id]; m.Quantity > 0 {
			out = append(out, *m)
		}
	}
	return out, nil
}

// walk expands every line of one activity at the given depth. The chosen
// activity is fixed for the node; selection never switches mid-walk.
func (e *Expander) walk(act *recipes.Activity, runs int64, depth, maxDepth int, st *walkState) {
	for _, line := range act.Lines {
		needed := line.Quantity * runs

		if depth >= maxDepth || !e.matches(line.Name) {
			st.record(line.TypeID, line.Name, needed)
			continue
		}

		// Cycle guard keyed on (typeID, depth). Deliberately weak: the same
		// type reached again at a different depth is not blocked, only the
		// depth cap bounds such walks.
		if st.visited[visitKey{line.TypeID, depth}] {
			st.record(line.TypeID, line.Name, 0)
			continue
		}

		childRec, err := e.Recipes.Recipe(line.TypeID)
		if err == nil {
			if childAct, ok := recipes.SelectActivity(childRec); ok {
				perRun := childAct.ProductQuantity
				if perRun < 1 {
					perRun = 1
				}
				childRuns := (needed + perRun - 1) / perRun
				st.visited[visitKey{line.TypeID, depth + 1}] = true
				e.walk(childAct, childRuns, depth+1, maxDepth, st)
				continue
			}
		}
		// No retrievable recipe or no activity: the full demand lands here.
		st.record(line.TypeID, line.Name, needed)
	}
}

func (e *Expander) matches(name string) bool {
	keywords := e.Keywords
	if keywords == nil {
		keywords = DefaultKeywords
	}
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (st *walkState) record(typeID int32, name string, quantity int64) {
	if m, ok := st.totals[typeID]; ok {
		m.Quantity += quantity
		if m.Name == "" {
			m.Name = name
		}
		return
	}
	st.totals[typeID] = &Material{TypeID: typeID, Name: name, Quantity: quantity}
	st.order = append(st.order, typeID)
}
