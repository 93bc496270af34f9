package blockgroup

import (
	"context"
	"errors"

	"github.com/vargraph/vargraph/internal/storeerr"
)

// Clone copies sourceBlockGroupID's edge membership and paths into
// targetBlockGroupID and records the derivation in the sample tree,
// matching original_source::clone. Every path under source is re-created
// under target with the same name and the same ordered edge list --
// Path.Create's own idempotent-on-(block_group_id, name, revision 0)
// behavior makes
// re-cloning onto a target that already has some of these paths a no-op
// rather than a duplicate-row error.
func (r *Registry) Clone(ctx context.Context, sourceBlockGroupID, targetBlockGroupID int64) error {
	existingPaths, err := r.paths.ForBlockGroup(ctx, sourceBlockGroupID)
	if err != nil {
		return err
	}

	sourceEdges, err := r.membership.edgesForBlockGroup(ctx, r.edges, sourceBlockGroupID)
	if err != nil {
		return err
	}
	// Clone carries the source membership's chromosome_index/phased values
	// forward per edge rather than collapsing to one value: unlike
	// InsertChange, a clone is not itself an edit, so there is no single
	// chromosome/phase to apply to every copied row. Edges are grouped by
	// that pair so rows sharing it still go through bulkCreate's chunked
	// batch insert instead of one round trip each.
	byMeta := make(map[[2]int64][]int64)
	var metaOrder [][2]int64
	for _, ae := range sourceEdges {
		key := [2]int64{ae.ChromosomeIndex, ae.Phased}
		if _, ok := byMeta[key]; !ok {
			metaOrder = append(metaOrder, key)
		}
		byMeta[key] = append(byMeta[key], ae.ID)
	}
	for _, key := range metaOrder {
		if err := r.membership.bulkCreate(ctx, targetBlockGroupID, byMeta[key], key[0], key[1]); err != nil {
			return err
		}
	}

	for _, p := range existingPaths {
		pathEdges, err := r.paths.EdgesForPath(ctx, r.edges, p.ID)
		if err != nil {
			return err
		}
		ids := make([]int64, len(pathEdges))
		for i, e := range pathEdges {
			ids[i] = e.ID
		}
		if _, err := r.paths.Create(ctx, targetBlockGroupID, p.Name, ids); err != nil {
			return err
		}
	}

	return r.AddRelation(ctx, sourceBlockGroupID, targetBlockGroupID)
}

// GetOrCreateSampleBlockGroup returns the id of sampleName's block group
// named groupName within collectionName, creating it as a clone of the
// collection's base (no-sample) block group of the same name if it does
// not already exist, matching
// original_source::get_or_create_sample_block_group. Panics in the
// reference if no base block group exists; here that becomes a returned
// NotFound error, since a storage engine library should never panic on
// caller-supplied names.
func (r *Registry) GetOrCreateSampleBlockGroup(ctx context.Context, collectionName, sampleName, groupName string) (int64, error) {
	existing, err := r.lookup(ctx, collectionName, sampleName, groupName)
	if err == nil {
		return existing.ID, nil
	}
	if !isNotFound(err) {
		return 0, err
	}

	base, err := r.lookup(ctx, collectionName, "", groupName)
	if err != nil {
		if isNotFound(err) {
			return 0, storeerr.NewNotFound("block_group", "no base block group "+collectionName+"/"+groupName)
		}
		return 0, err
	}

	created, err := r.Create(ctx, collectionName, sampleName, groupName)
	if err != nil {
		return 0, err
	}
	if err := r.Clone(ctx, base.ID, created.ID); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func isNotFound(err error) bool {
	var nf *storeerr.NotFound
	return errors.As(err, &nf)
}
