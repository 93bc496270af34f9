package pathedit_test

import (
	"context"
	"fmt"

	"github.com/vargraph/vargraph/edge"
	"github.com/vargraph/vargraph/node"
	"github.com/vargraph/vargraph/path"
	"github.com/vargraph/vargraph/pathedit"
	"github.com/vargraph/vargraph/sequence"
	"github.com/vargraph/vargraph/store"
	"github.com/vargraph/vargraph/strand"
)

func ExampleSetUpNewEdges() {
	ctx := context.Background()
	db, err := store.Open(ctx, store.Config{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer db.Close()

	seqs, err := sequence.New(db)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	nodes := node.New(db)
	edges := edge.New(db)
	paths := path.NewRegistry(db)

	seq, err := seqs.Intern(ctx, sequence.DNA, "ATCGATCG", "")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	id, err := nodes.Create(ctx, seq.Hash, "")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	e1, err := edges.Create(ctx, edge.Data{
		SourceNodeID: node.StartID, SourceCoordinate: -1, SourceStrand: strand.Forward,
		TargetNodeID: id, TargetCoordinate: 0, TargetStrand: strand.Forward,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	e2, err := edges.Create(ctx, edge.Data{
		SourceNodeID: id, SourceCoordinate: 8, SourceStrand: strand.Forward,
		TargetNodeID: node.EndID, TargetCoordinate: -1, TargetStrand: strand.Forward,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	p, err := paths.Create(ctx, 1, "chr1", []int64{e1.ID, e2.ID})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	pathEdges, err := paths.EdgesForPath(ctx, edges, p.ID)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	blocks, err := path.BlocksFor(ctx, edges, nodes, seqs, p, pathEdges)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	tree, err := path.IntervalTreeFor(blocks)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// Delete path range [2,6), a plain deletion (empty replacement block).
	change := pathedit.Change{
		Path:  p,
		Start: 2,
		End:   6,
		Block: path.Block{NodeID: 0, SequenceStart: 0, SequenceEnd: 0},
	}
	res, err := pathedit.SetUpNewEdges(change, tree)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(len(res.Edges), res.WalkLen)
	// Output: 1 1
}
