package expand

import (
	"errors"
	"testing"

	"eve-craftcost/internal/recipes"
)

// fixtureSource serves recipes from a fixed map; missing IDs fail like a
// transport error would.
type fixtureSource struct {
	recipes map[int32]*recipes.Recipe
	errs    map[int32]error
	calls   int
}

func (f *fixtureSource) Recipe(id int32) (*recipes.Recipe, error) {
	f.calls++
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	if rec, ok := f.recipes[id]; ok {
		return rec, nil
	}
	// Unknown type: endpoint returns an empty document, i.e. a leaf.
	return &recipes.Recipe{TypeID: id}, nil
}

func mfg(id int32, name string, productQty int64, lines ...recipes.RecipeLine) *recipes.Recipe {
	return &recipes.Recipe{
		TypeID: id,
		Name:   name,
		Activities: map[string]*recipes.Activity{
			recipes.CodeManufacturing: {
				Code:            recipes.CodeManufacturing,
				Lines:           lines,
				ProductName:     name,
				ProductQuantity: productQty,
			},
		},
	}
}

func line(id int32, name string, qty int64) recipes.RecipeLine {
	return recipes.RecipeLine{TypeID: id, Name: name, Quantity: qty}
}

func totals(ms []Material) map[int32]int64 {
	out := make(map[int32]int64)
	for _, m := range ms {
		out[m.TypeID] = m.Quantity
	}
	return out
}

func TestExpand_DepthZeroIsDirectLines(t *testing.T) {
	src := &fixtureSource{recipes: map[int32]*recipes.Recipe{
		1: mfg(1, "Widget", 1,
			line(2, "Gear Component", 10),
			line(3, "Bolt", 4),
			line(3, "Bolt", 6), // duplicate input in the same activity
		),
	}}
	e := NewExpander(src)

	got, err := e.Expand(1, 3, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	q := totals(got)
	if q[2] != 30 {
		t.Errorf("Gear Component = %d, want 10*3", q[2])
	}
	if q[3] != 30 {
		t.Errorf("Bolt = %d, want (4+6)*3 summed", q[3])
	}
}

func TestExpand_WidgetGearBoltScenario(t *testing.T) {
	src := &fixtureSource{recipes: map[int32]*recipes.Recipe{
		1: mfg(1, "Widget", 1, line(2, "Gear", 10)),
		2: mfg(2, "Gear", 1, line(3, "Bolt", 2)),
	}}

	// Gear matches the expansion predicate: expanded to bolts.
	e := &Expander{Recipes: src, Keywords: []string{"gear"}}
	got, err := e.Expand(1, 1, 2)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	q := totals(got)
	if q[3] != 20 {
		t.Errorf("Bolt = %d, want 20", q[3])
	}
	if _, ok := q[2]; ok {
		t.Error("Gear should be fully expanded away")
	}

	// Gear does not match: treated as a leaf.
	e = &Expander{Recipes: src, Keywords: []string{}}
	got, err = e.Expand(1, 1, 2)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	q = totals(got)
	if q[2] != 10 {
		t.Errorf("Gear = %d, want 10", q[2])
	}
}

func TestExpand_ChildRunsRoundUp(t *testing.T) {
	// Gear is produced 4 per run; needing 10 means 3 runs, which consume
	// 3 runs' worth of bolts.
	src := &fixtureSource{recipes: map[int32]*recipes.Recipe{
		1: mfg(1, "Widget", 1, line(2, "Gear", 10)),
		2: mfg(2, "Gear", 4, line(3, "Bolt", 2)),
	}}
	e := &Expander{Recipes: src, Keywords: []string{"gear"}}

	got, err := e.Expand(1, 1, 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	q := totals(got)
	if q[3] != 6 {
		t.Errorf("Bolt = %d, want ceil(10/4)=3 runs * 2", q[3])
	}
	// ceil(needed/outputPerRun) * outputPerRun >= needed
	if 3*4 < 10 {
		t.Error("rounded-up runs do not cover demand")
	}
}

func TestExpand_SelfCycleGuard(t *testing.T) {
	// Widget's recipe references Widget itself; the guard must terminate the
	// walk with a zero-quantity placeholder, which is filtered from output.
	src := &fixtureSource{recipes: map[int32]*recipes.Recipe{
		1: mfg(1, "Widget", 1,
			line(1, "Widget", 1),
			line(3, "Bolt", 5),
		),
	}}
	e := &Expander{Recipes: src, Keywords: []string{"widget"}}

	got, err := e.Expand(1, 1, 10)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	q := totals(got)
	if _, ok := q[1]; ok {
		t.Error("zero-quantity placeholder must not be surfaced")
	}
	if q[3] != 5 {
		t.Errorf("Bolt = %d, want 5", q[3])
	}
}

func TestExpand_SameTypeAtDifferentDepthsNotBlocked(t *testing.T) {
	// A -> B -> C where C is the same material as one of A's direct leaves.
	// The depth-keyed guard allows the second visit; quantities sum across
	// both paths.
	src := &fixtureSource{recipes: map[int32]*recipes.Recipe{
		1: mfg(1, "Widget", 1, line(2, "Gear", 2), line(3, "Bolt", 7)),
		2: mfg(2, "Gear", 1, line(3, "Bolt", 3)),
	}}
	e := &Expander{Recipes: src, Keywords: []string{"gear"}}

	got, err := e.Expand(1, 1, 3)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	q := totals(got)
	if q[3] != 7+2*3 {
		t.Errorf("Bolt = %d, want 13 across both paths", q[3])
	}
}

func TestExpand_NonRootFailureDegradesToLeaf(t *testing.T) {
	src := &fixtureSource{
		recipes: map[int32]*recipes.Recipe{
			1: mfg(1, "Widget", 1, line(2, "Gear", 10)),
		},
		errs: map[int32]error{2: errors.New("503 from source")},
	}
	e := &Expander{Recipes: src, Keywords: []string{"gear"}}

	got, err := e.Expand(1, 1, 2)
	if err != nil {
		t.Fatalf("Expand should not fail on non-root errors: %v", err)
	}
	q := totals(got)
	if q[2] != 10 {
		t.Errorf("Gear = %d, want full demand recorded as leaf", q[2])
	}
}

func TestExpand_RootFailureAborts(t *testing.T) {
	src := &fixtureSource{errs: map[int32]error{1: errors.New("down")}}
	e := NewExpander(src)

	if _, err := e.Expand(1, 1, 2); err == nil {
		t.Fatal("root fetch failure must abort")
	}
}

func TestExpand_RootWithoutActivityAborts(t *testing.T) {
	src := &fixtureSource{recipes: map[int32]*recipes.Recipe{
		34: {TypeID: 34, Name: "Tritanium"},
	}}
	e := NewExpander(src)

	_, err := e.Expand(34, 1, 2)
	var nae *recipes.NoActivityError
	if !errors.As(err, &nae) {
		t.Fatalf("err = %v, want *NoActivityError", err)
	}
}

func TestExpand_DefaultsRunsToOne(t *testing.T) {
	src := &fixtureSource{recipes: map[int32]*recipes.Recipe{
		1: mfg(1, "Widget", 1, line(3, "Bolt", 4)),
	}}
	e := NewExpander(src)

	got, err := e.Expand(1, 0, 0)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if totals(got)[3] != 4 {
		t.Errorf("Bolt = %d, want 4 for one run", totals(got)[3])
	}
}

func TestMatches_CaseInsensitiveSubstring(t *testing.T) {
	e := &Expander{}
	if !e.matches("Helium Fuel Block") {
		t.Error("fuel block should match default keywords")
	}
	if !e.matches("R.A.M.- Starship Tech Components") {
		t.Error("components should match default keywords")
	}
	if e.matches("Tritanium") {
		t.Error("plain mineral should not match")
	}
}
