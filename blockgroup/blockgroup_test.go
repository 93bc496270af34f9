package blockgroup_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vargraph/vargraph/blockgroup"
	"github.com/vargraph/vargraph/edge"
	"github.com/vargraph/vargraph/node"
	"github.com/vargraph/vargraph/path"
	"github.com/vargraph/vargraph/pathedit"
	"github.com/vargraph/vargraph/sequence"
	"github.com/vargraph/vargraph/store"
	"github.com/vargraph/vargraph/strand"
)

type fixture struct {
	seqs        *sequence.Store
	nodes       *node.Registry
	edges       *edge.Table
	paths       *path.Registry
	blockGroups *blockgroup.Registry
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
	bgs := blockgroup.New(db, edges, nodes, seqs, paths)

	return &fixture{seqs: seqs, nodes: nodes, edges: edges, paths: paths, blockGroups: bgs}
}

// setupBlockGroup builds the 40bp reference used throughout these tests:
// a block group named "hg19" containing a single path "chr1" that chains
// four 10bp nodes spelling
// "AAAAAAAAAA"+"TTTTTTTTTT"+"CCCCCCCCCC"+"GGGGGGGGGG", matching the base
// fixture original_source/src/models/block_group.rs's tests build before
// exercising insert_change.
func (f *fixture) setupBlockGroup(t *testing.T) (blockgroup.BlockGroup, path.Path) {
	t.Helper()
	ctx := context.Background()

	bg, err := f.blockGroups.Create(ctx, "test", "", "hg19")
	require.NoError(t, err)

	blockSeqs := []string{"AAAAAAAAAA", "TTTTTTTTTT", "CCCCCCCCCC", "GGGGGGGGGG"}
	var nodeIDs []int64
	for _, s := range blockSeqs {
		seq, err := f.seqs.Intern(ctx, sequence.DNA, s, "")
		require.NoError(t, err)
		id, err := f.nodes.Create(ctx, seq.Hash, "")
		require.NoError(t, err)
		nodeIDs = append(nodeIDs, id)
	}

	var edgeIDs []int64
	prev := node.StartID
	prevCoord := int64(-1)
	for i, nid := range nodeIDs {
		e, err := f.edges.Create(ctx, edge.Data{
			SourceNodeID: prev, SourceCoordinate: prevCoord, SourceStrand: strand.Forward,
			TargetNodeID: nid, TargetCoordinate: 0, TargetStrand: strand.Forward,
		})
		require.NoError(t, err)
		edgeIDs = append(edgeIDs, e.ID)
		prev = nid
		prevCoord = int64(len(blockSeqs[i]))
	}
	e, err := f.edges.Create(ctx, edge.Data{
		SourceNodeID: prev, SourceCoordinate: prevCoord, SourceStrand: strand.Forward,
		TargetNodeID: node.EndID, TargetCoordinate: -1, TargetStrand: strand.Forward,
	})
	require.NoError(t, err)
	edgeIDs = append(edgeIDs, e.ID)

	p, err := f.paths.Create(ctx, bg.ID, "chr1", edgeIDs)
	require.NoError(t, err)

	require.NoError(t, f.blockGroups.RegisterEdges(ctx, bg.ID, edgeIDs, 0, 0))

	return bg, p
}

func (f *fixture) treeFor(t *testing.T, p path.Path) *path.Tree {
	t.Helper()
	ctx := context.Background()
	pathEdges, err := f.paths.EdgesForPath(ctx, f.edges, p.ID)
	require.NoError(t, err)
	blocks, err := path.BlocksFor(ctx, f.edges, f.nodes, f.seqs, p, pathEdges)
	require.NoError(t, err)
	tree, err := path.IntervalTreeFor(blocks)
	require.NoError(t, err)
	return tree
}

func TestInsertAndDeletionGetAllSequences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bg, p := f.setupBlockGroup(t)

	insertSeq, err := f.seqs.Intern(ctx, sequence.DNA, "NNNN", "")
	require.NoError(t, err)
	insertNodeID, err := f.nodes.Create(ctx, insertSeq.Hash, "")
	require.NoError(t, err)

	change := pathedit.Change{
		BlockGroupID: bg.ID,
		Path:         p,
		Start:        7,
		End:          15,
		Block:        path.Block{NodeID: insertNodeID, SequenceStart: 0, SequenceEnd: 4},
		ChromosomeIndex: 1,
	}
	require.NoError(t, f.blockGroups.InsertChange(ctx, change, f.treeFor(t, p)))

	all, err := f.blockGroups.AllSequences(ctx, bg.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"AAAAAAAAAATTTTTTTTTTCCCCCCCCCCGGGGGGGGGG",
		"AAAAAAANNNNTTTTTCCCCCCCCCCGGGGGGGGGG",
	}, all)

	deletion := pathedit.Change{
		BlockGroupID:    bg.ID,
		Path:            p,
		Start:           19,
		End:             31,
		Block:           path.Block{NodeID: 0, SequenceStart: 0, SequenceEnd: 0},
		ChromosomeIndex: 1,
	}
	require.NoError(t, f.blockGroups.InsertChange(ctx, deletion, f.treeFor(t, p)))

	all, err = f.blockGroups.AllSequences(ctx, bg.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"AAAAAAAAAATTTTTTTTTTCCCCCCCCCCGGGGGGGGGG",
		"AAAAAAANNNNTTTTTCCCCCCCCCCGGGGGGGGGG",
		"AAAAAAAAAATTTTTTTTTGGGGGGGGG",
		"AAAAAAANNNNTTTTGGGGGGGGG",
	}, all)
}

// TestInsertChangeAppendsNewPathRevisionWithSpliceSequence exercises
// spec.md §4.6 step 6 and §8's testable "path-length of the new current
// path" property directly: after InsertChange, the edited path's name
// must resolve to a brand new, higher-revision Path whose own sequence()
// reflects the splice, while the original revision's sequence is
// untouched for history.
func TestInsertChangeAppendsNewPathRevisionWithSpliceSequence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bg, p := f.setupBlockGroup(t)

	insertSeq, err := f.seqs.Intern(ctx, sequence.DNA, "NNNN", "")
	require.NoError(t, err)
	insertNodeID, err := f.nodes.Create(ctx, insertSeq.Hash, "")
	require.NoError(t, err)

	change := pathedit.Change{
		BlockGroupID:    bg.ID,
		Path:            p,
		Start:           7,
		End:             15,
		Block:           path.Block{NodeID: insertNodeID, SequenceStart: 0, SequenceEnd: 4},
		ChromosomeIndex: 1,
	}
	require.NoError(t, f.blockGroups.InsertChange(ctx, change, f.treeFor(t, p)))

	current, err := f.paths.ForBlockGroupNamed(ctx, bg.ID, "chr1")
	require.NoError(t, err)
	require.NotEqual(t, p.ID, current.ID)
	require.Equal(t, int64(1), current.Revision)

	currentEdges, err := f.paths.EdgesForPath(ctx, f.edges, current.ID)
	require.NoError(t, err)
	currentBlocks, err := path.BlocksFor(ctx, f.edges, f.nodes, f.seqs, current, currentEdges)
	require.NoError(t, err)
	require.Equal(t, "AAAAAAANNNNTTTTTCCCCCCCCCCGGGGGGGGGG", path.Sequence(currentBlocks))

	original, err := f.paths.Get(ctx, p.ID)
	require.NoError(t, err)
	originalEdges, err := f.paths.EdgesForPath(ctx, f.edges, original.ID)
	require.NoError(t, err)
	originalBlocks, err := path.BlocksFor(ctx, f.edges, f.nodes, f.seqs, original, originalEdges)
	require.NoError(t, err)
	require.Equal(t, "AAAAAAAAAATTTTTTTTTTCCCCCCCCCCGGGGGGGGGG", path.Sequence(originalBlocks))
}

func TestCreateIsIdempotentOnCollectionSampleName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bg1, err := f.blockGroups.Create(ctx, "test", "", "hg19")
	require.NoError(t, err)
	bg2, err := f.blockGroups.Create(ctx, "test", "sample1", "hg19")
	require.NoError(t, err)
	require.NotEqual(t, bg1.ID, bg2.ID)

	bg1Again, err := f.blockGroups.Create(ctx, "test", "", "hg19")
	require.NoError(t, err)
	require.Equal(t, bg1.ID, bg1Again.ID)
}

func TestCloneCopiesEdgesAndPaths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bg, p := f.setupBlockGroup(t)

	sampleBG, err := f.blockGroups.Create(ctx, "test", "sample1", "hg19")
	require.NoError(t, err)
	require.NoError(t, f.blockGroups.Clone(ctx, bg.ID, sampleBG.ID))

	clonePath, err := f.paths.ForBlockGroupNamed(ctx, sampleBG.ID, "chr1")
	require.NoError(t, err)
	require.NotEqual(t, p.ID, clonePath.ID)
	parentPathEdges, err := f.paths.EdgesForPath(ctx, f.edges, p.ID)
	require.NoError(t, err)
	clonePathEdges, err := f.paths.EdgesForPath(ctx, f.edges, clonePath.ID)
	require.NoError(t, err)
	require.Equal(t, parentPathEdges, clonePathEdges)

	parentEdges, err := f.blockGroups.EdgesForBlockGroup(ctx, bg.ID)
	require.NoError(t, err)
	cloneEdges, err := f.blockGroups.EdgesForBlockGroup(ctx, sampleBG.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, idsOf(parentEdges), idsOf(cloneEdges))

	ancestors, err := f.blockGroups.GetAncestors(ctx, sampleBG.ID)
	require.NoError(t, err)
	require.Equal(t, [][]int64{{bg.ID}}, ancestors)
}

func idsOf(edges []blockgroup.AugmentedEdge) []int64 {
	out := make([]int64, len(edges))
	for i, e := range edges {
		out[i] = e.ID
	}
	return out
}

func TestGetOrCreateSampleBlockGroupReusesExisting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bg, _ := f.setupBlockGroup(t)

	id1, err := f.blockGroups.GetOrCreateSampleBlockGroup(ctx, "test", "sample1", "hg19")
	require.NoError(t, err)
	require.NotEqual(t, bg.ID, id1)

	id2, err := f.blockGroups.GetOrCreateSampleBlockGroup(ctx, "test", "sample1", "hg19")
	require.NoError(t, err)
	require.Equal(t, id1, id2)
}

func TestGetAncestorsFindsAllChains(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bg1, err := f.blockGroups.Create(ctx, "test", "", "a")
	require.NoError(t, err)
	bg2, err := f.blockGroups.Create(ctx, "test", "s1", "a")
	require.NoError(t, err)
	bg3, err := f.blockGroups.Create(ctx, "test", "s2", "a")
	require.NoError(t, err)
	bg4, err := f.blockGroups.Create(ctx, "test", "s3", "a")
	require.NoError(t, err)

	require.NoError(t, f.blockGroups.AddRelation(ctx, bg1.ID, bg2.ID))
	require.NoError(t, f.blockGroups.AddRelation(ctx, bg2.ID, bg3.ID))
	require.NoError(t, f.blockGroups.AddRelation(ctx, bg3.ID, bg4.ID))
	require.NoError(t, f.blockGroups.AddRelation(ctx, bg1.ID, bg4.ID))
	require.NoError(t, f.blockGroups.AddRelation(ctx, bg1.ID, bg3.ID))

	ancestors, err := f.blockGroups.GetAncestors(ctx, bg4.ID)
	require.NoError(t, err)
	require.Equal(t, [][]int64{
		{bg3.ID, bg2.ID, bg1.ID},
		{bg3.ID, bg1.ID},
		{bg1.ID},
	}, ancestors)
}
