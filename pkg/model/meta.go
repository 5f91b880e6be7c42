package model

import (
	"maps"
	"slices"

	"github.com/matzehuels/sysmlexport/pkg/errors"
)

// Meta-type names of the default SysML hierarchy.
const (
	TypeFCO = "FCO"

	// Containers
	TypePackage              = "Package"
	TypeBlock                = "Block"
	TypeDiagram              = "Diagram"
	TypeUseCaseDiagram       = "UseCaseDiagram"
	TypeRequirementDiagram   = "RequirementDiagram"
	TypeInternalBlockDiagram = "InternalBlockDiagram"

	// Elements
	TypeActor       = "Actor"
	TypeUseCase     = "UseCase"
	TypeSubject     = "Subject"
	TypeRequirement = "Requirement"
	TypeComment     = "Comment"
	TypeProperty    = "Property"
	TypePort        = "Port"
	TypeFlowPort    = "FlowPort"

	// Relationships
	TypeLink         = "Link"
	TypeUseCaseLinks = "UseCaseLinks"
	TypeInclude      = "Include"
	TypeExtend       = "Extend"
	TypeAssociation  = "Association"
	TypeReq2Req      = "Req2Req"
	TypeDeriveReqt   = "DeriveReqt"
	TypeRefine       = "Refine"
	TypeCopy         = "Copy"
	TypeCommentLink  = "CommentLink"
	TypeEdges        = "Edges"
	TypeConnector    = "Connector"
	TypeItemFlow     = "ItemFlow"
)

// defaultTypes lists the SysML hierarchy as (type, base) pairs, bases first.
var defaultTypes = [][2]string{
	{TypePackage, TypeFCO},
	{TypeBlock, TypeFCO},
	{TypeDiagram, TypeFCO},
	{TypeUseCaseDiagram, TypeDiagram},
	{TypeRequirementDiagram, TypeDiagram},
	{TypeInternalBlockDiagram, TypeDiagram},

	{TypeActor, TypeFCO},
	{TypeUseCase, TypeFCO},
	{TypeSubject, TypeFCO},
	{TypeRequirement, TypeFCO},
	{TypeComment, TypeFCO},
	{TypeProperty, TypeFCO},
	{TypePort, TypeFCO},
	{TypeFlowPort, TypePort},

	{TypeLink, TypeFCO},
	{TypeUseCaseLinks, TypeLink},
	{TypeInclude, TypeUseCaseLinks},
	{TypeExtend, TypeUseCaseLinks},
	{TypeAssociation, TypeUseCaseLinks},
	{TypeReq2Req, TypeLink},
	{TypeDeriveReqt, TypeReq2Req},
	{TypeRefine, TypeReq2Req},
	{TypeCopy, TypeReq2Req},
	{TypeCommentLink, TypeLink},
	{TypeEdges, TypeFCO},
	{TypeConnector, TypeEdges},
	{TypeItemFlow, TypeEdges},
}

// MetaModel is a single-inheritance hierarchy of meta-type names rooted at
// [TypeFCO].
//
// MetaModel is not safe for concurrent use while types are being defined.
// After setup it may be queried from any number of goroutines.
type MetaModel struct {
	bases map[string]string
}

// NewMetaModel creates a hierarchy containing only [TypeFCO].
func NewMetaModel() *MetaModel {
	return &MetaModel{bases: map[string]string{TypeFCO: ""}}
}

// DefaultMetaModel returns the SysML hierarchy.
func DefaultMetaModel() *MetaModel {
	m := NewMetaModel()
	for _, t := range defaultTypes {
		m.bases[t[0]] = t[1]
	}
	return m
}

// Define adds name as a subtype of base. Redefining a type with the same base
// is a no-op; changing the base of an existing type is an error.
func (m *MetaModel) Define(name, base string) error {
	if err := errors.ValidateTypeName(name); err != nil {
		return err
	}
	if _, ok := m.bases[base]; !ok {
		return errors.New(errors.ErrCodeInvalidModel, "type %q: unknown base type %q", name, base)
	}
	if cur, ok := m.bases[name]; ok {
		if cur == base {
			return nil
		}
		return errors.New(errors.ErrCodeInvalidModel, "type %q already derives from %q", name, cur)
	}
	m.bases[name] = base
	return nil
}

// DefineAll adds every name → base pair. Pairs may appear in any order as
// long as every base is eventually defined.
func (m *MetaModel) DefineAll(types map[string]string) error {
	pending := maps.Clone(types)
	for len(pending) > 0 {
		progressed := false
		for _, name := range slices.Sorted(maps.Keys(pending)) {
			base := pending[name]
			if _, ok := m.bases[base]; !ok {
				continue
			}
			if err := m.Define(name, base); err != nil {
				return err
			}
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			name := slices.Sorted(maps.Keys(pending))[0]
			return errors.New(errors.ErrCodeInvalidModel, "type %q: unknown base type %q", name, pending[name])
		}
	}
	return nil
}

// Base returns the direct base of name.
func (m *MetaModel) Base(name string) (string, bool) {
	b, ok := m.bases[name]
	return b, ok
}

// Has reports whether name is a defined type.
func (m *MetaModel) Has(name string) bool {
	_, ok := m.bases[name]
	return ok
}

// Types returns all defined type names, sorted.
func (m *MetaModel) Types() []string {
	return slices.Sorted(maps.Keys(m.bases))
}

// MetaType returns the meta-type name of n, or "" for a nil node.
func (m *MetaModel) MetaType(n *Node) string {
	if n == nil {
		return ""
	}
	return n.Meta
}

// IsMetaTypeOf reports whether t is candidate or derives from it.
// Unknown types only match themselves.
func (m *MetaModel) IsMetaTypeOf(t, candidate string) bool {
	if t == "" || candidate == "" {
		return false
	}
	for seen := 0; t != "" && seen <= len(m.bases); seen++ {
		if t == candidate {
			return true
		}
		t = m.bases[t]
	}
	return false
}
