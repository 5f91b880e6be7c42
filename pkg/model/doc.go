// Package model provides the in-memory model tree walked by the exporter.
//
// # Overview
//
// A model is a rooted tree of [Node] values. Every node has a unique path
// identifier, a display name, a meta-type name, and a reference to its
// structural parent. Relationship nodes (links, connectors) additionally carry
// the identifiers of their source and destination endpoints.
//
// [Tree] owns the nodes and serves two roles for the export run:
//
//   - Node access gateway: [Tree.LoadChildren] returns a node's ordered children
//   - Endpoint resolver: [Tree.Lookup] resolves a node by identifier
//
// [MetaModel] is the type oracle. It records a single-inheritance hierarchy of
// meta-type names and answers [MetaModel.IsMetaTypeOf] by walking base types.
// [DefaultMetaModel] returns the SysML hierarchy used by the exporter.
//
// # JSON Format
//
// Models are read with [ReadJSON] and written with [WriteJSON]:
//
//	{
//	  "nodes": [
//	    {"id": "/", "name": "ROOT", "meta": "FCO"},
//	    {"id": "/1", "parent": "/", "name": "Pkg", "meta": "Package"},
//	    {"id": "/1/a", "parent": "/1", "name": "Driver", "meta": "Actor"},
//	    {"id": "/1/u", "parent": "/1", "name": "Drive", "meta": "UseCase"},
//	    {"id": "/1/l", "parent": "/1", "meta": "Association", "src": "/1/a", "dst": "/1/u"}
//	  ]
//	}
//
// The single node without a parent is the tree root. Children keep the order
// in which they appear in the file. A parent must be listed before its
// children.
package model
