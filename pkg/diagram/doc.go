// Package diagram collects classified model nodes into diagram registries and
// writes them out.
//
// # Collectors
//
// Each exportable category has one [Collector] variant:
//
//   - [UseCaseCollector]: actors, use cases and their include/extend/association links
//   - [RequirementCollector]: requirements, requirement relations and comment links
//   - [InternalBlockCollector]: blocks, properties, flow ports and connectors
//
// Components are registered synchronously with [Collector.AddComponent].
// Connections go through [Collector.AddConnection], which resolves both
// endpoints with an [EndpointResolver] and fails for malformed links.
//
// Registries are grouped into [Diagram] values keyed by the container node
// (the parent of the registered node). All collectors are safe for concurrent
// use.
//
// # Output
//
// [WriteJSON] serializes a set of diagrams. [ToDOT] converts one diagram to
// Graphviz DOT, and [RenderSVG] renders DOT to SVG.
package diagram
