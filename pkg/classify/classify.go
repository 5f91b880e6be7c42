// Package classify assigns model nodes to diagram categories.
//
// Classification looks only at a node's own meta-type and its parent's
// meta-type, so the result does not depend on traversal order.
package classify

import (
	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/model"
)

// Category is the diagram a node belongs to.
type Category int

const (
	None Category = iota
	UseCase
	Requirement
	InternalBlock
)

// Categories lists the exportable categories in precedence order.
var Categories = []Category{UseCase, Requirement, InternalBlock}

var categoryNames = map[Category]string{
	None:          "none",
	UseCase:       "usecase",
	Requirement:   "requirement",
	InternalBlock: "internalblock",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// Role tells whether a classified node is registered as a component or as a
// connection.
type Role int

const (
	Component Role = iota
	Connection
)

func (r Role) String() string {
	if r == Connection {
		return "connection"
	}
	return "component"
}

// Oracle answers meta-type questions. [model.MetaModel] implements it.
type Oracle interface {
	MetaType(n *model.Node) string
	IsMetaTypeOf(t, candidate string) bool
}

// Result is the outcome of [Classify].
type Result struct {
	Category Category
	Role     Role
}

// Matched reports whether the node belongs to any diagram.
func (r Result) Matched() bool { return r.Category != None }

// rule describes one category: which parent types may contain it, which
// node types belong to it, and which of those are connections.
type rule struct {
	category   Category
	parents    []string
	members    []string
	connection []string
}

// rules are evaluated in order and the first match wins. Member sets are
// disjoint under the default hierarchy, but an Oracle with multiple
// inheritance can satisfy several rules at once, so the order is part of the
// contract.
var rules = []rule{
	{
		category:   UseCase,
		parents:    []string{model.TypePackage, model.TypeBlock, model.TypeUseCaseDiagram},
		members:    []string{model.TypeActor, model.TypeUseCase, model.TypeUseCaseLinks},
		connection: []string{model.TypeUseCaseLinks},
	},
	{
		category:   Requirement,
		parents:    []string{model.TypePackage, model.TypeRequirementDiagram},
		members:    []string{model.TypeRequirement, model.TypeReq2Req, model.TypeCommentLink},
		connection: []string{model.TypeReq2Req, model.TypeCommentLink},
	},
	{
		category:   InternalBlock,
		parents:    []string{model.TypePackage, model.TypeBlock, model.TypeInternalBlockDiagram},
		members:    []string{model.TypeBlock, model.TypeProperty, model.TypeFlowPort, model.TypeEdges},
		connection: []string{model.TypeEdges},
	},
}

// Classify maps node to a category given its parent. A nil node or parent
// classifies as None.
func Classify(o Oracle, node, parent *model.Node) Result {
	if node == nil || parent == nil {
		return Result{}
	}
	typ := o.MetaType(node)
	parentTyp := o.MetaType(parent)

	for _, r := range rules {
		if !anyOf(o, parentTyp, r.parents) || !anyOf(o, typ, r.members) {
			continue
		}
		role := Component
		if anyOf(o, typ, r.connection) {
			role = Connection
		}
		return Result{Category: r.category, Role: role}
	}
	return Result{}
}

func anyOf(o Oracle, typ string, candidates []string) bool {
	for _, c := range candidates {
		if o.IsMetaTypeOf(typ, c) {
			return true
		}
	}
	return false
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name written by MarshalText.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, ok := ParseCategory(string(b))
	if !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown category %q", b)
	}
	*c = parsed
	return nil
}

// ParseCategory returns the category with the given name.
func ParseCategory(s string) (Category, bool) {
	for c, name := range categoryNames {
		if name == s {
			return c, true
		}
	}
	return None, false
}
