// Package edge is the edge table: directed, stranded, coordinate-annotated
// transitions between node positions, created idempotently on the full
// 6-tuple. It also implements graph materialization: partitioning a
// block-group's touched nodes into GroupBlocks at edge-endpoint boundaries
// and assembling the block adjacency graph.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/edge"
//
//	edges := edge.New(db)
//	e, err := edges.Create(ctx, edge.Data{
//	    SourceNodeID: node.StartID, SourceCoordinate: -1, SourceStrand: strand.Forward,
//	    TargetNodeID: targetID, TargetCoordinate: 0, TargetStrand: strand.Forward,
//	})
package edge
