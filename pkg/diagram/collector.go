package diagram

import (
	"context"

	"github.com/matzehuels/sysmlexport/pkg/classify"
	"github.com/matzehuels/sysmlexport/pkg/errors"
	"github.com/matzehuels/sysmlexport/pkg/model"
)

// Collector accumulates the nodes of one diagram category.
type Collector interface {
	// Category returns the category this collector accepts.
	Category() classify.Category
	// AddComponent registers a non-relationship node. Re-adding an ID is a no-op.
	AddComponent(n *model.Node)
	// AddConnection registers a relationship node. It fails when the
	// endpoints are missing or cannot be resolved.
	AddConnection(ctx context.Context, n *model.Node) error
	// Has reports whether a node with id was registered.
	Has(id string) bool
	// Diagrams returns a sorted snapshot of the registries.
	Diagrams() []*Diagram
}

// New creates the collector for category c.
func New(c classify.Category, o classify.Oracle, r EndpointResolver) (Collector, error) {
	switch c {
	case classify.UseCase:
		return NewUseCaseCollector(o, r), nil
	case classify.Requirement:
		return NewRequirementCollector(o, r), nil
	case classify.InternalBlock:
		return NewInternalBlockCollector(o, r), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "no collector for category %s", c)
	}
}

// NewSet creates one collector per exportable category.
func NewSet(o classify.Oracle, r EndpointResolver) map[classify.Category]Collector {
	set := make(map[classify.Category]Collector, len(classify.Categories))
	for _, c := range classify.Categories {
		set[c], _ = New(c, o, r)
	}
	return set
}

// =============================================================================
// Use case diagrams
// =============================================================================

var (
	useCaseComponents = []kind{
		{model.TypeActor, "actor"},
		{model.TypeUseCase, "usecase"},
	}
	useCaseConnections = []kind{
		{model.TypeInclude, "include"},
		{model.TypeExtend, "extend"},
		{model.TypeAssociation, "association"},
	}
)

// UseCaseCollector collects actors, use cases and use case links.
type UseCaseCollector struct{ registry }

// NewUseCaseCollector creates an empty use case collector.
func NewUseCaseCollector(o classify.Oracle, r EndpointResolver) *UseCaseCollector {
	return &UseCaseCollector{registry: newRegistry(classify.UseCase, o, r)}
}

// AddComponent registers an actor or use case.
func (c *UseCaseCollector) AddComponent(n *model.Node) {
	c.addComponent(n, Component{
		ID:   n.ID,
		Name: n.Label(),
		Kind: c.kindOf(n, useCaseComponents, "element"),
	})
}

// AddConnection registers an include, extend or association link.
func (c *UseCaseCollector) AddConnection(ctx context.Context, n *model.Node) error {
	return c.addConnection(ctx, n, c.kindOf(n, useCaseConnections, "link"))
}

// =============================================================================
// Requirement diagrams
// =============================================================================

var requirementConnections = []kind{
	{model.TypeDeriveReqt, "derive"},
	{model.TypeRefine, "refine"},
	{model.TypeCopy, "copy"},
	{model.TypeCommentLink, "comment"},
}

// RequirementCollector collects requirements and their relations.
type RequirementCollector struct{ registry }

// NewRequirementCollector creates an empty requirement collector.
func NewRequirementCollector(o classify.Oracle, r EndpointResolver) *RequirementCollector {
	return &RequirementCollector{registry: newRegistry(classify.Requirement, o, r)}
}

// AddComponent registers a requirement with its id and text attributes.
func (c *RequirementCollector) AddComponent(n *model.Node) {
	attrs := model.Metadata{}
	if v := n.Attr("id"); v != "" {
		attrs["reqid"] = v
	}
	if v := n.Attr("text"); v != "" {
		attrs["text"] = v
	}
	c.addComponent(n, Component{
		ID:    n.ID,
		Name:  n.Label(),
		Kind:  "requirement",
		Attrs: attrs,
	})
}

// AddConnection registers a requirement relation or comment link.
func (c *RequirementCollector) AddConnection(ctx context.Context, n *model.Node) error {
	return c.addConnection(ctx, n, c.kindOf(n, requirementConnections, "trace"))
}

// =============================================================================
// Internal block diagrams
// =============================================================================

const defaultPortDirection = "inout"

var (
	internalBlockComponents = []kind{
		{model.TypeBlock, "block"},
		{model.TypeProperty, "property"},
		{model.TypeFlowPort, "flowport"},
	}
	internalBlockConnections = []kind{
		{model.TypeItemFlow, "itemflow"},
		{model.TypeConnector, "connector"},
	}
)

// InternalBlockCollector collects blocks, properties, flow ports and connectors.
type InternalBlockCollector struct{ registry }

// NewInternalBlockCollector creates an empty internal block collector.
func NewInternalBlockCollector(o classify.Oracle, r EndpointResolver) *InternalBlockCollector {
	return &InternalBlockCollector{registry: newRegistry(classify.InternalBlock, o, r)}
}

// AddComponent registers a block, property or flow port. Flow ports carry a
// direction attribute defaulting to "inout".
func (c *InternalBlockCollector) AddComponent(n *model.Node) {
	k := c.kindOf(n, internalBlockComponents, "element")
	var attrs model.Metadata
	if k == "flowport" {
		dir := n.Attr("direction")
		if dir == "" {
			dir = defaultPortDirection
		}
		attrs = model.Metadata{"direction": dir}
	}
	c.addComponent(n, Component{
		ID:    n.ID,
		Name:  n.Label(),
		Kind:  k,
		Attrs: attrs,
	})
}

// AddConnection registers a connector or item flow.
func (c *InternalBlockCollector) AddConnection(ctx context.Context, n *model.Node) error {
	return c.addConnection(ctx, n, c.kindOf(n, internalBlockConnections, "connector"))
}

// Ensure all variants implement Collector.
var (
	_ Collector = (*UseCaseCollector)(nil)
	_ Collector = (*RequirementCollector)(nil)
	_ Collector = (*InternalBlockCollector)(nil)
)
