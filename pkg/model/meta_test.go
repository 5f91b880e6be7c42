package model

import (
	"slices"
	"testing"
)

func TestDefaultMetaModelHierarchy(t *testing.T) {
	m := DefaultMetaModel()

	tests := []struct {
		typ       string
		candidate string
		want      bool
	}{
		{TypeActor, TypeActor, true},
		{TypeActor, TypeFCO, true},
		{TypeInclude, TypeUseCaseLinks, true},
		{TypeInclude, TypeLink, true},
		{TypeDeriveReqt, TypeReq2Req, true},
		{TypeFlowPort, TypePort, true},
		{TypeConnector, TypeEdges, true},
		{TypeUseCaseDiagram, TypeDiagram, true},

		{TypeActor, TypeUseCase, false},
		{TypeInclude, TypeReq2Req, false},
		{TypeConnector, TypeLink, false},
		{TypePort, TypeFlowPort, false},
		{"Unknown", "Unknown", true},
		{"Unknown", TypeFCO, false},
		{"", TypeFCO, false},
		{TypeActor, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.candidate, func(t *testing.T) {
			if got := m.IsMetaTypeOf(tt.typ, tt.candidate); got != tt.want {
				t.Errorf("IsMetaTypeOf(%q, %q) = %v, want %v", tt.typ, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestMetaModelDefine(t *testing.T) {
	m := DefaultMetaModel()

	if err := m.Define("SystemActor", TypeActor); err != nil {
		t.Fatalf("Define() error: %v", err)
	}
	if !m.IsMetaTypeOf("SystemActor", TypeActor) {
		t.Error("SystemActor should derive from Actor")
	}
	if err := m.Define("SystemActor", TypeActor); err != nil {
		t.Errorf("redefining with same base should be a no-op, got %v", err)
	}
	if err := m.Define("SystemActor", TypeBlock); err == nil {
		t.Error("changing base should fail")
	}
	if err := m.Define("Orphan", "NoSuchBase"); err == nil {
		t.Error("unknown base should fail")
	}
	if err := m.Define("bad name", TypeFCO); err == nil {
		t.Error("invalid type name should fail")
	}
}

func TestMetaModelDefineAll(t *testing.T) {
	m := DefaultMetaModel()

	// Base defined in the same batch, listed after its subtype alphabetically.
	err := m.DefineAll(map[string]string{
		"AHumanActor": "ZActor",
		"ZActor":      TypeActor,
	})
	if err != nil {
		t.Fatalf("DefineAll() error: %v", err)
	}
	if !m.IsMetaTypeOf("AHumanActor", TypeActor) {
		t.Error("AHumanActor should derive from Actor")
	}

	if err := m.DefineAll(map[string]string{"Loose": "Missing"}); err == nil {
		t.Error("DefineAll with unresolved base should fail")
	}
}

func TestMetaModelQueries(t *testing.T) {
	m := NewMetaModel()
	if !m.Has(TypeFCO) {
		t.Error("new model should contain FCO")
	}
	if m.Has(TypeActor) {
		t.Error("new model should not contain Actor")
	}

	d := DefaultMetaModel()
	if base, ok := d.Base(TypeFlowPort); !ok || base != TypePort {
		t.Errorf("Base(FlowPort) = %q, %v", base, ok)
	}
	types := d.Types()
	if !slices.IsSorted(types) {
		t.Error("Types() should be sorted")
	}
	if !slices.Contains(types, TypeRequirement) {
		t.Error("Types() missing Requirement")
	}

	if d.MetaType(nil) != "" {
		t.Error("MetaType(nil) should be empty")
	}
	if d.MetaType(&Node{Meta: TypeBlock}) != TypeBlock {
		t.Error("MetaType should return node meta")
	}
}
