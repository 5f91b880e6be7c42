// Package pkg provides the core libraries for sysmlexport.
//
// # Overview
//
// sysmlexport walks a SysML model tree and collects use case, requirement and
// internal block diagrams from it. The pkg directory is organized as:
//
//  1. [model] - Model tree, meta-type hierarchy, JSON model files
//  2. [classify] - Diagram category of a node from its and its parent's type
//  3. [diagram] - Per-category collectors and JSON/DOT/SVG writers
//  4. [dispatch] - Routes visited nodes to collectors, once per identifier
//  5. [traverse] - Concurrent fan-out/join walk with branch error collection
//  6. [exporter] - One export run: fresh state, walk, save
//  7. [pipeline] - Load, export, render and cache
//  8. [cache] - File, Redis and null artifact caches
//
// # Architecture
//
// The typical data flow:
//
//	JSON model file
//	      ↓
//	[model] package (Tree + MetaModel)
//	      ↓
//	[traverse] package (walk) → [dispatch] → [classify] → [diagram] collectors
//	      ↓
//	[exporter] Result → [pipeline] artifacts (JSON, DOT, SVG) → [cache]
//
// # Quick Start
//
//	tree, _ := model.ImportJSON("vehicle.json")
//	meta := model.DefaultMetaModel()
//	ex := &exporter.Exporter{Loader: tree, Resolver: tree, Oracle: meta}
//	res, err := ex.Run(ctx, tree.Root())
//	if err != nil {
//	    // res holds the partial export
//	}
//	for _, d := range res.All() {
//	    fmt.Println(diagram.ToDOT(d))
//	}
package pkg
