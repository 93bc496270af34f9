// Package vargraph is a version-controlled storage engine for sequence
// variation graphs: reference genomes plus per-sample edits, represented as
// a DAG of short sequence nodes and the edges that splice them into paths
// (spec.md's OVERVIEW).
//
// A collection owns a reference block group built from one or more linear
// paths. Editing a sample never mutates that reference: pathedit resolves a
// path-relative change into new edges, blockgroup.InsertChange(s) commits
// them and records them under the sample's own block group, and
// blockgroup.Clone/DeriveSubgraph give that block group its own place in
// the sample provenance tree. AllSequences walks the resulting DAG
// source-to-sink to enumerate every haplotype the graph can spell; translate
// projects an external coordinate range back onto node-local coordinates
// for annotation lift-over.
//
// Subpackages:
//
//	store       — SQLite-backed schema, migrations, transaction helper
//	sequence    — content-addressed sequence bytes, hash interning
//	node        — node registry, START/END terminal sentinels
//	edge        — edge table, block partition, adjacency-graph construction
//	strand      — Forward/Reverse/Unknown and reverse-complement
//	collection  — collection and sample name registries
//	path        — Path, PathBlock, interval tree, range-mapping sweep
//	pathedit    — path-relative splice algorithm (the hardest subsystem)
//	blockgroup  — block group registry, sample tree, clone, enumeration
//	translate   — coordinate lift-over against a path's interval tree
//	rangeutil   — Range/RangeMapping arithmetic shared by path and translate
//	cache       — LRU memoization over path and block-group name lookups
//	internal/digraph  — adjacency graph over block ids
//	internal/storeerr — typed error kinds (NotFound, Invariant, Store, HashMismatch)
//
// See DESIGN.md for how each package traces back to its grounding source,
// and SPEC_FULL.md for the full requirements this repository implements.
package vargraph
