package classify

import (
	"math/rand"
	"testing"

	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/model"
)

func node(id, meta string, parent *model.Node) *model.Node {
	return &model.Node{ID: id, Meta: meta, Parent: parent}
}

func TestClassify(t *testing.T) {
	o := model.DefaultMetaModel()

	tests := []struct {
		name       string
		parentType string
		nodeType   string
		want       Result
	}{
		// Use case
		{"actor in package", model.TypePackage, model.TypeActor, Result{UseCase, Component}},
		{"usecase in block", model.TypeBlock, model.TypeUseCase, Result{UseCase, Component}},
		{"actor in uc diagram", model.TypeUseCaseDiagram, model.TypeActor, Result{UseCase, Component}},
		{"include in package", model.TypePackage, model.TypeInclude, Result{UseCase, Connection}},
		{"base link type", model.TypeUseCaseDiagram, model.TypeUseCaseLinks, Result{UseCase, Connection}},
		{"actor in req diagram", model.TypeRequirementDiagram, model.TypeActor, Result{}},

		// Requirement
		{"requirement in package", model.TypePackage, model.TypeRequirement, Result{Requirement, Component}},
		{"requirement in req diagram", model.TypeRequirementDiagram, model.TypeRequirement, Result{Requirement, Component}},
		{"derive in req diagram", model.TypeRequirementDiagram, model.TypeDeriveReqt, Result{Requirement, Connection}},
		{"comment link in package", model.TypePackage, model.TypeCommentLink, Result{Requirement, Connection}},
		{"requirement in block", model.TypeBlock, model.TypeRequirement, Result{}},

		// Internal block
		{"block in package", model.TypePackage, model.TypeBlock, Result{InternalBlock, Component}},
		{"property in block", model.TypeBlock, model.TypeProperty, Result{InternalBlock, Component}},
		{"flowport in ibd", model.TypeInternalBlockDiagram, model.TypeFlowPort, Result{InternalBlock, Component}},
		{"connector in ibd", model.TypeInternalBlockDiagram, model.TypeConnector, Result{InternalBlock, Connection}},
		{"plain port in block", model.TypeBlock, model.TypePort, Result{}},
		{"block in uc diagram", model.TypeUseCaseDiagram, model.TypeBlock, Result{}},

		// Unrelated
		{"comment in package", model.TypePackage, model.TypeComment, Result{}},
		{"package in package", model.TypePackage, model.TypePackage, Result{}},
		{"unknown type", model.TypePackage, "Widget", Result{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := node("/p", tt.parentType, nil)
			n := node("/p/n", tt.nodeType, parent)
			if got := Classify(o, n, parent); got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifyParentGate(t *testing.T) {
	o := model.DefaultMetaModel()
	// Parents that are not a package, block or diagram container never
	// produce a category, whatever the node type.
	parents := []string{model.TypeFCO, model.TypeActor, model.TypeRequirement, model.TypeProperty, model.TypeComment, "Widget"}
	for _, pt := range parents {
		parent := node("/p", pt, nil)
		for _, nt := range o.Types() {
			n := node("/p/n", nt, parent)
			if got := Classify(o, n, parent); got.Matched() {
				t.Errorf("Classify(%s under %s) = %v, want None", nt, pt, got.Category)
			}
		}
	}
}

func TestClassifyNil(t *testing.T) {
	o := model.DefaultMetaModel()
	if got := Classify(o, nil, node("/p", model.TypePackage, nil)); got.Matched() {
		t.Error("nil node should classify as None")
	}
	if got := Classify(o, node("/a", model.TypeActor, nil), nil); got.Matched() {
		t.Error("nil parent should classify as None")
	}
}

// overlapOracle reports every type as derived from every candidate.
type overlapOracle struct{}

func (overlapOracle) MetaType(n *model.Node) string         { return n.Meta }
func (overlapOracle) IsMetaTypeOf(t, candidate string) bool { return t != "" }

func TestClassifyPrecedence(t *testing.T) {
	parent := node("/p", "Anything", nil)
	n := node("/p/n", "Anything", parent)
	if got := Classify(overlapOracle{}, n, parent); got.Category != UseCase {
		t.Errorf("Category = %v, want %v (first rule wins)", got.Category, UseCase)
	}
}

func TestClassifyOrderIndependent(t *testing.T) {
	o := model.DefaultMetaModel()
	pkg := node("/1", model.TypePackage, nil)
	children := []*model.Node{
		node("/1/a", model.TypeActor, pkg),
		node("/1/u", model.TypeUseCase, pkg),
		node("/1/l", model.TypeAssociation, pkg),
		node("/1/r", model.TypeRequirement, pkg),
		node("/1/b", model.TypeBlock, pkg),
		node("/1/c", model.TypeComment, pkg),
	}

	want := make(map[string]Result)
	for _, c := range children {
		want[c.ID] = Classify(o, c, pkg)
	}

	rng := rand.New(rand.NewSource(7))
	for range 20 {
		rng.Shuffle(len(children), func(i, j int) { children[i], children[j] = children[j], children[i] })
		for _, c := range children {
			if got := Classify(o, c, pkg); got != want[c.ID] {
				t.Fatalf("Classify(%s) = %+v, want %+v", c.ID, got, want[c.ID])
			}
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := map[Category]string{
		None:          "none",
		UseCase:       "usecase",
		Requirement:   "requirement",
		InternalBlock: "internalblock",
		Category(42):  "unknown",
	}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("Category(%d).String() = %q, want %q", int(c), got, want)
		}
	}
	if Connection.String() != "connection" || Component.String() != "component" {
		t.Error("Role.String() mismatch")
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range append([]Category{None}, Categories...) {
		got, ok := ParseCategory(c.String())
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCategory("activity"); ok {
		t.Error("ParseCategory(activity) should fail")
	}

	text, err := Requirement.MarshalText()
	if err != nil || string(text) != "requirement" {
		t.Errorf("MarshalText() = %q, %v", text, err)
	}
}

func TestCategoryUnmarshalText(t *testing.T) {
	for _, c := range append([]Category{None}, Categories...) {
		text, _ := c.MarshalText()
		var got Category
		if err := got.UnmarshalText(text); err != nil || got != c {
			t.Errorf("UnmarshalText(%q) = %v, %v", text, got, err)
		}
	}

	got := InternalBlock
	err := got.UnmarshalText([]byte("activity"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("UnmarshalText(activity) error = %v, want INVALID_FORMAT", err)
	}
	if got != InternalBlock {
		t.Errorf("failed decode changed category to %v", got)
	}
}
