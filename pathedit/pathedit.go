package pathedit

import (
	"github.com/vargraph/vargraph/edge"
	"github.com/vargraph/vargraph/internal/storeerr"
	"github.com/vargraph/vargraph/node"
	"github.com/vargraph/vargraph/path"
	"github.com/vargraph/vargraph/strand"
)

// Change is a single edit expressed in one path's coordinate space: the
// half-open range [Start, End) of that path is replaced by Block's
// sequence. A pure insertion sets Start == End; a pure deletion sets
// Block.SequenceStart == Block.SequenceEnd (an empty replacement node).
type Change struct {
	BlockGroupID    int64
	Path            path.Path
	Start           int64
	End             int64
	Block           path.Block
	ChromosomeIndex int64
	Phased          int64
}

// Result is what SetUpNewEdges derives from a Change: the edges to create
// and register in the block group's membership, plus enough of the
// original path's block boundaries for a caller to splice the edited
// path's own walk (spec.md §4.6 step 6) rather than only updating the
// block group's graph.
//
// Edges[:WalkLen] are the edges that replace [StartBlock, EndBlock] in the
// edited path's linear walk, in walk order. Any edges after WalkLen (at
// most one, the START-rooting edge emitted when the change begins at path
// position 0) open an alternate branch in the block group's DAG but are
// not part of this path's own walk.
type Result struct {
	Edges      []edge.Data
	WalkLen    int
	StartBlock path.Block
	EndBlock   path.Block
}

// SetUpNewEdges computes the new edges that splice change into the block
// group's graph, given an interval tree over change.Path's blocks. It does
// not touch the store — edge.Table.BulkCreate and the block-group
// membership insert are the caller's job (see blockgroup.InsertChange).
func SetUpNewEdges(change Change, tree *path.Tree) (Result, error) {
	startBlock, err := resolveStartBlock(change, tree)
	if err != nil {
		return Result{}, err
	}

	endBlocks := tree.QueryPoint(change.End)
	if len(endBlocks) != 1 {
		return Result{}, storeerr.NewInvariant("expected exactly one block at path position %d, found %d", change.End, len(endBlocks))
	}
	endBlock := endBlocks[0]

	var edges []edge.Data
	var walkLen int
	if change.Block.SequenceStart == change.Block.SequenceEnd {
		edges = deletionEdges(change, startBlock, endBlock)
		walkLen = 1
	} else {
		edges = replacementEdges(change, startBlock, endBlock)
		walkLen = 2
	}

	return Result{Edges: edges, WalkLen: walkLen, StartBlock: startBlock, EndBlock: endBlock}, nil
}

// resolveStartBlock finds the block an edit attaches to at its start
// coordinate. If the block found by position actually BEGINS at
// change.Start, the edit's first base was never inside it — the real
// attachment point is the block immediately before it (the "back-off
// rule": spec.md §4.6 step 1). Position 0 has no predecessor in path
// coordinates; QueryPoint(-1) always resolves to the path's synthetic
// start sentinel in that case.
func resolveStartBlock(change Change, tree *path.Tree) (path.Block, error) {
	startBlocks := tree.QueryPoint(change.Start)
	if len(startBlocks) != 1 {
		return path.Block{}, storeerr.NewInvariant("expected exactly one block at path position %d, found %d", change.Start, len(startBlocks))
	}

	if startBlocks[0].PathStart != change.Start {
		return startBlocks[0], nil
	}

	previous := tree.QueryPoint(change.Start - 1)
	if len(previous) != 1 {
		return path.Block{}, storeerr.NewInvariant("expected exactly one block at path position %d, found %d", change.Start-1, len(previous))
	}
	return previous[0], nil
}

func deletionEdges(change Change, startBlock, endBlock path.Block) []edge.Data {
	edges := []edge.Data{
		{
			SourceNodeID:     startBlock.NodeID,
			SourceCoordinate: change.Start - startBlock.PathStart + startBlock.SequenceStart,
			SourceStrand:     strand.Forward,
			TargetNodeID:     endBlock.NodeID,
			TargetCoordinate: change.End - endBlock.PathStart + endBlock.SequenceStart,
			TargetStrand:     strand.Forward,
		},
	}

	// A deletion at the very start of a path needs an edge from the
	// dedicated start node to the end of the deletion, marking the
	// deletion's tail as another valid start point in the block group DAG.
	// The symmetric case (deletion reaching the very end of a path) is not
	// mirrored with an END edge: it does not affect any path's sequence
	// readout, matching the reference's documented asymmetry.
	if change.Start == 0 {
		edges = append(edges, edge.Data{
			SourceNodeID:     node.StartID,
			SourceCoordinate: 0,
			SourceStrand:     strand.Forward,
			TargetNodeID:     endBlock.NodeID,
			TargetCoordinate: change.End - endBlock.PathStart + endBlock.SequenceStart,
			TargetStrand:     strand.Forward,
		})
	}

	return edges
}

func replacementEdges(change Change, startBlock, endBlock path.Block) []edge.Data {
	edges := []edge.Data{
		{
			SourceNodeID:     startBlock.NodeID,
			SourceCoordinate: change.Start - startBlock.PathStart + startBlock.SequenceStart,
			SourceStrand:     strand.Forward,
			TargetNodeID:     change.Block.NodeID,
			TargetCoordinate: change.Block.SequenceStart,
			TargetStrand:     strand.Forward,
		},
		{
			SourceNodeID:     change.Block.NodeID,
			SourceCoordinate: change.Block.SequenceEnd,
			SourceStrand:     strand.Forward,
			TargetNodeID:     endBlock.NodeID,
			TargetCoordinate: change.End - endBlock.PathStart + endBlock.SequenceStart,
			TargetStrand:     strand.Forward,
		},
	}

	// An insertion or replacement anchored at the very start of a path gets
	// the same dedicated start-node edge a deletion does, rooting the new
	// walk at START rather than leaving it reachable only through the
	// block it replaces.
	if change.Start == 0 {
		edges = append(edges, edge.Data{
			SourceNodeID:     node.StartID,
			SourceCoordinate: 0,
			SourceStrand:     strand.Forward,
			TargetNodeID:     change.Block.NodeID,
			TargetCoordinate: change.Block.SequenceStart,
			TargetStrand:     strand.Forward,
		})
	}

	return edges
}
