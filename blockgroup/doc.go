// Package blockgroup is the block group: the unit of graph identity that
// ties a collection, an optional sample, and a DAG of edges together. It
// owns the sample provenance tree, clone-on-write derivation, full
// sequence enumeration, and the orchestration that drives an edit from a
// single path-relative change into new graph edges.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/blockgroup"
//
//	bgs := blockgroup.New(db, edges, nodes, seqs, paths)
//	bg, err := bgs.Create(ctx, "test", "", "hg19")
//	err = bgs.InsertChange(ctx, change, tree)
//	all, err := bgs.AllSequences(ctx, bg.ID)
package blockgroup
