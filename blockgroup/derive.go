package blockgroup

import (
	"context"

	"github.com/vargraph/vargraph/path"
)

// DeriveSubgraph is the user-facing operation behind subgraph projection
// (spec.md §4.10, EXPANSION C item 5): look up collectionName's base block
// group named groupName, create (or reuse) sampleName's block group of the
// same name, restrict it to the coordinate window [start, end) of
// windowPath, and record the derivation in the sample tree. Unlike
// GetOrCreateSampleBlockGroup, the child's edges come only from
// CloneSubgraph's windowed projection, not a full clone of the parent.
func (r *Registry) DeriveSubgraph(ctx context.Context, collectionName, groupName, sampleName string, windowPath path.Path, start, end int64) (int64, error) {
	parent, err := r.lookup(ctx, collectionName, "", groupName)
	if err != nil {
		return 0, err
	}

	child, err := r.Create(ctx, collectionName, sampleName, groupName)
	if err != nil {
		return 0, err
	}

	if err := r.CloneSubgraph(ctx, parent.ID, windowPath, start, end, child.ID); err != nil {
		return 0, err
	}
	if err := r.AddRelation(ctx, parent.ID, child.ID); err != nil {
		return 0, err
	}
	return child.ID, nil
}
