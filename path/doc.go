// Package path is the path edit engine's read side: a Path is an ordered
// walk of edges through a block group's graph, and this package
// materializes that walk into Blocks (contiguous node subsequences), its
// full sequence, an interval tree over path coordinates, and the
// cross-path range mappings pathedit and translate build on.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/path"
//
//	p, err := paths.Create(ctx, blockGroupID, "chr1", edgeIDs)
//	pathEdges, err := paths.EdgesForPath(ctx, edges, p.ID)
//	blocks, err := path.BlocksFor(ctx, edges, nodes, seqs, p, pathEdges)
//	seq := path.Sequence(blocks)
package path
