package translate

import (
	"github.com/vargraph/vargraph/node"
	"github.com/vargraph/vargraph/path"
	"github.com/vargraph/vargraph/rangeutil"
)

// NodeRange is one node-relative slice of an annotation's projection:
// annotation coordinates [start, end) on the source path correspond to
// [Range.Start, Range.End) on NodeID.
type NodeRange struct {
	NodeID int64
	Range  rangeutil.Range
}

// Translate locates every PathBlock in blocks overlapping [start, end),
// clips each to the overlap, and returns one NodeRange per overlapping
// block, terminal START/END blocks excluded (spec.md §4.11). Callers
// materialize blocks once per path (path.BlocksFor) and reuse it across
// every annotation on that path, matching the reference's per-reference
// memoized interval tree in translate_bed/translate_gff.
//
// Overlaps that land on the same node and are contiguous in both
// coordinate spaces are merged via rangeutil.MergeContinuousMappings, so a
// reference split into several GroupBlocks by an edit elsewhere still
// reads out as one contiguous feature per node when the edit did not
// touch this node.
func Translate(blocks []path.Block, start, end int64) []NodeRange {
	byNode := make(map[int64][]rangeutil.Mapping)
	var nodeOrder []int64

	for _, b := range blocks {
		if b.NodeID == node.StartID || b.NodeID == node.EndID {
			continue
		}
		if b.PathStart >= end || b.PathEnd <= start {
			continue
		}
		clippedStart, clippedEnd := b.PathStart, b.PathEnd
		if clippedStart < start {
			clippedStart = start
		}
		if clippedEnd > end {
			clippedEnd = end
		}

		nodeStart := b.SequenceStart + (clippedStart - b.PathStart)
		nodeEnd := b.SequenceEnd - (b.PathEnd - clippedEnd)

		if _, ok := byNode[b.NodeID]; !ok {
			nodeOrder = append(nodeOrder, b.NodeID)
		}
		byNode[b.NodeID] = append(byNode[b.NodeID], rangeutil.Mapping{
			Source: rangeutil.Range{Start: clippedStart, End: clippedEnd},
			Target: rangeutil.Range{Start: nodeStart, End: nodeEnd},
		})
	}

	var out []NodeRange
	for _, nodeID := range nodeOrder {
		for _, m := range rangeutil.MergeContinuousMappings(byNode[nodeID]) {
			out = append(out, NodeRange{NodeID: nodeID, Range: m.Target})
		}
	}
	return out
}
