package pathedit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vargraph/vargraph/edge"
	"github.com/vargraph/vargraph/node"
	"github.com/vargraph/vargraph/path"
	"github.com/vargraph/vargraph/pathedit"
	"github.com/vargraph/vargraph/sequence"
	"github.com/vargraph/vargraph/store"
	"github.com/vargraph/vargraph/strand"
)

// fixture builds a single 40bp path over four 10bp nodes, mirroring the base
// sequence original_source/src/models/block_group.rs's tests splice edits
// into: "AAAAAAAAAA" + "TTTTTTTTTT" + "CCCCCCCCCC" + "GGGGGGGGGG".
type fixture struct {
	seqs  *sequence.Store
	nodes *node.Registry
	edges *edge.Table
	path  path.Path
	tree  *path.Tree
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, store.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	seqs, err := sequence.New(db)
	require.NoError(t, err)
	nodes := node.New(db)
	edges := edge.New(db)
	paths := path.NewRegistry(db)

	blockSeqs := []string{"AAAAAAAAAA", "TTTTTTTTTT", "CCCCCCCCCC", "GGGGGGGGGG"}
	var nodeIDs []int64
	for _, s := range blockSeqs {
		seq, err := seqs.Intern(ctx, sequence.DNA, s, "")
		require.NoError(t, err)
		id, err := nodes.Create(ctx, seq.Hash, "")
		require.NoError(t, err)
		nodeIDs = append(nodeIDs, id)
	}

	var edgeIDs []int64
	prev := node.StartID
	prevCoord := int64(-1)
	for i, nid := range nodeIDs {
		e, err := edges.Create(ctx, edge.Data{
			SourceNodeID: prev, SourceCoordinate: prevCoord, SourceStrand: strand.Forward,
			TargetNodeID: nid, TargetCoordinate: 0, TargetStrand: strand.Forward,
		})
		require.NoError(t, err)
		edgeIDs = append(edgeIDs, e.ID)
		prev = nid
		prevCoord = int64(len(blockSeqs[i]))
	}
	e, err := edges.Create(ctx, edge.Data{
		SourceNodeID: prev, SourceCoordinate: prevCoord, SourceStrand: strand.Forward,
		TargetNodeID: node.EndID, TargetCoordinate: -1, TargetStrand: strand.Forward,
	})
	require.NoError(t, err)
	edgeIDs = append(edgeIDs, e.ID)

	p, err := paths.Create(ctx, 1, "chr1", edgeIDs)
	require.NoError(t, err)

	pathEdges, err := paths.EdgesForPath(ctx, edges, p.ID)
	require.NoError(t, err)
	blocks, err := path.BlocksFor(ctx, edges, nodes, seqs, p, pathEdges)
	require.NoError(t, err)
	tree, err := path.IntervalTreeFor(blocks)
	require.NoError(t, err)

	// Create the replacement node used by insertion/replacement tests up
	// front so every test shares one fixture shape.
	_, err = seqs.Intern(ctx, sequence.DNA, "NNNN", "")
	require.NoError(t, err)

	return &fixture{seqs: seqs, nodes: nodes, edges: edges, path: p, tree: tree}
}

func (f *fixture) insertedNode(t *testing.T, seq string) int64 {
	t.Helper()
	ctx := context.Background()
	s, err := f.seqs.Intern(ctx, sequence.DNA, seq, "")
	require.NoError(t, err)
	id, err := f.nodes.Create(ctx, s.Hash, "")
	require.NoError(t, err)
	return id
}

func TestSetUpNewEdgesDeletionWithinBlock(t *testing.T) {
	f := newFixture(t)

	// Delete path[12:15) -- inside the second node (T-block, path coords
	// [10,20)). Deletion block has SequenceStart == SequenceEnd (empty).
	change := pathedit.Change{
		Start: 12,
		End:   15,
		Block: path.Block{NodeID: 0, SequenceStart: 3, SequenceEnd: 3},
	}

	res, err := pathedit.SetUpNewEdges(change, f.tree)
	require.NoError(t, err)
	require.Len(t, res.Edges, 1)
	require.Equal(t, 1, res.WalkLen)
	require.Equal(t, int64(2), res.Edges[0].SourceCoordinate)
	require.Equal(t, int64(5), res.Edges[0].TargetCoordinate)
}

func TestSetUpNewEdgesDeletionAtPathStart(t *testing.T) {
	f := newFixture(t)

	// Deletion reaching all the way from position 0 gets a second edge from
	// the dedicated start node to the deletion's tail.
	change := pathedit.Change{
		Start: 0,
		End:   5,
		Block: path.Block{NodeID: 0, SequenceStart: 0, SequenceEnd: 0},
	}

	res, err := pathedit.SetUpNewEdges(change, f.tree)
	require.NoError(t, err)
	require.Len(t, res.Edges, 2)
	require.Equal(t, 1, res.WalkLen)
	require.Equal(t, node.StartID, res.Edges[1].SourceNodeID)
	require.Equal(t, int64(5), res.Edges[1].TargetCoordinate)
}

func TestSetUpNewEdgesInsertionAtBlockBoundary(t *testing.T) {
	f := newFixture(t)
	insertedID := f.insertedNode(t, "NNNN")

	// Pure insertion at path position 10 (exact boundary between the A and
	// T nodes): Start == End, so only the two splice edges are produced,
	// and the back-off rule must select the A block as the attachment
	// point rather than the T block that begins there.
	change := pathedit.Change{
		Start: 10,
		End:   10,
		Block: path.Block{NodeID: insertedID, SequenceStart: 0, SequenceEnd: 4},
	}

	res, err := pathedit.SetUpNewEdges(change, f.tree)
	require.NoError(t, err)
	require.Len(t, res.Edges, 2)
	require.Equal(t, 2, res.WalkLen)
	require.Equal(t, int64(10), res.Edges[0].SourceCoordinate) // end of the A block
	require.Equal(t, insertedID, res.Edges[0].TargetNodeID)
	require.Equal(t, insertedID, res.Edges[1].SourceNodeID)
}

func TestSetUpNewEdgesReplacementSpanningBlocks(t *testing.T) {
	f := newFixture(t)
	insertedID := f.insertedNode(t, "NNNN")

	// Replace path[8:22) (spans the tail of the A block, all of the T
	// block, and the head of the C block) with a 4bp node.
	change := pathedit.Change{
		Start: 8,
		End:   22,
		Block: path.Block{NodeID: insertedID, SequenceStart: 0, SequenceEnd: 4},
	}

	res, err := pathedit.SetUpNewEdges(change, f.tree)
	require.NoError(t, err)
	require.Len(t, res.Edges, 2)
	require.Equal(t, 2, res.WalkLen)
	require.Equal(t, int64(8), res.Edges[0].SourceCoordinate)
	require.Equal(t, insertedID, res.Edges[0].TargetNodeID)
	require.Equal(t, insertedID, res.Edges[1].SourceNodeID)
	require.Equal(t, int64(2), res.Edges[1].TargetCoordinate)
}

func TestSetUpNewEdgesReplacementAtPathStartRootsAtStart(t *testing.T) {
	f := newFixture(t)
	insertedID := f.insertedNode(t, "NNNN")

	// A replacement anchored at position 0 must also get the dedicated
	// start-node edge, same as a deletion at position 0 does: otherwise
	// the new walk through insertedID is unreachable from START.
	change := pathedit.Change{
		Start: 0,
		End:   5,
		Block: path.Block{NodeID: insertedID, SequenceStart: 0, SequenceEnd: 4},
	}

	res, err := pathedit.SetUpNewEdges(change, f.tree)
	require.NoError(t, err)
	require.Len(t, res.Edges, 3)
	require.Equal(t, 2, res.WalkLen)
	require.Equal(t, node.StartID, res.Edges[2].SourceNodeID)
	require.Equal(t, insertedID, res.Edges[2].TargetNodeID)
	require.Equal(t, int64(0), res.Edges[2].TargetCoordinate)
}

func TestSetUpNewEdgesDeletionAtPathEndHasNoMirroredEdge(t *testing.T) {
	f := newFixture(t)

	// Deletion reaching the path's last base does not get a mirrored edge
	// into the dedicated end node -- only the start boundary is special
	// cased (asymmetric with TestSetUpNewEdgesDeletionAtPathStart).
	change := pathedit.Change{
		Start: 35,
		End:   40,
		Block: path.Block{NodeID: 0, SequenceStart: 0, SequenceEnd: 0},
	}

	res, err := pathedit.SetUpNewEdges(change, f.tree)
	require.NoError(t, err)
	require.Len(t, res.Edges, 1)
	require.Equal(t, 1, res.WalkLen)
}
