package blockgroup

import (
	"context"

	"github.com/vargraph/vargraph/edge"
	"github.com/vargraph/vargraph/internal/storeerr"
	"github.com/vargraph/vargraph/store"
)

// AugmentedEdge is an edge plus the chromosome/phase metadata of its
// membership in one block group (spec.md §4.4,
// original_source/src/models/block_group_edge.rs::AugmentedEdge). The same
// edge can carry different chromosome_index/phased values in different
// block groups, since that metadata describes the membership, not the
// edge itself -- see DESIGN.md's "where chromosome_index/phased live"
// decision.
type AugmentedEdge struct {
	edge.Edge
	ChromosomeIndex int64
	Phased          int64
}

// membership is the block_group_edges junction table.
type membership struct {
	db *store.Store
}

// bulkCreate records edgeIDs as belonging to blockGroupID, all sharing one
// chromosome_index/phased value, matching
// original_source::block_group_edge::bulk_create's chunking (100000 there;
// kept smaller here since SQLite's default parameter limit is far lower).
func (m *membership) bulkCreate(ctx context.Context, blockGroupID int64, edgeIDs []int64, chromosomeIndex, phased int64) error {
	const chunkSize = 500
	for start := 0; start < len(edgeIDs); start += chunkSize {
		end := start + chunkSize
		if end > len(edgeIDs) {
			end = len(edgeIDs)
		}
		chunk := edgeIDs[start:end]

		query := `INSERT OR IGNORE INTO block_group_edges (block_group_id, edge_id, chromosome_index, phased) VALUES `
		args := make([]interface{}, 0, len(chunk)*4)
		for i, edgeID := range chunk {
			if i > 0 {
				query += ", "
			}
			query += "(?, ?, ?, ?)"
			args = append(args, blockGroupID, edgeID, chromosomeIndex, phased)
		}
		if _, err := m.db.DB.ExecContext(ctx, query, args...); err != nil {
			return storeerr.NewStore("block_group_edges.bulk_create", err)
		}
	}
	return nil
}

// edgesForBlockGroup loads every edge currently in blockGroupID's
// membership (original_source::edges_for_block_group).
func (m *membership) edgesForBlockGroup(ctx context.Context, edges *edge.Table, blockGroupID int64) ([]AugmentedEdge, error) {
	rows, err := m.db.DB.QueryContext(ctx,
		`SELECT edge_id, chromosome_index, phased FROM block_group_edges WHERE block_group_id = ?`, blockGroupID)
	if err != nil {
		return nil, storeerr.NewStore("block_group_edges.edges_for_block_group", err)
	}
	defer rows.Close()

	var ids []int64
	meta := make(map[int64][2]int64)
	for rows.Next() {
		var id, chrom, phased int64
		if err := rows.Scan(&id, &chrom, &phased); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		meta[id] = [2]int64{chrom, phased}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	loaded, err := edges.BulkLoad(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]AugmentedEdge, 0, len(loaded))
	for _, e := range loaded {
		m := meta[e.ID]
		out = append(out, AugmentedEdge{Edge: e, ChromosomeIndex: m[0], Phased: m[1]})
	}
	return out, nil
}

// specificEdgesForBlockGroup is edgesForBlockGroup filtered to a caller
// supplied edge-id set, matching
// original_source::specific_edges_for_block_group (the reference's
// `rarray`-backed filter; Go ports this as a plain WHERE IN, since
// modernc.org/sqlite has no carray extension).
func (m *membership) specificEdgesForBlockGroup(ctx context.Context, edges *edge.Table, blockGroupID int64, edgeIDs []int64) ([]AugmentedEdge, error) {
	if len(edgeIDs) == 0 {
		return nil, nil
	}

	placeholders := ""
	args := make([]interface{}, 0, len(edgeIDs)+1)
	args = append(args, blockGroupID)
	for i, id := range edgeIDs {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, id)
	}

	rows, err := m.db.DB.QueryContext(ctx,
		`SELECT edge_id, chromosome_index, phased FROM block_group_edges
		 WHERE block_group_id = ? AND edge_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, storeerr.NewStore("block_group_edges.specific_edges_for_block_group", err)
	}
	defer rows.Close()

	var ids []int64
	meta := make(map[int64][2]int64)
	for rows.Next() {
		var id, chrom, phased int64
		if err := rows.Scan(&id, &chrom, &phased); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		meta[id] = [2]int64{chrom, phased}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	loaded, err := edges.BulkLoad(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]AugmentedEdge, 0, len(loaded))
	for _, e := range loaded {
		m := meta[e.ID]
		out = append(out, AugmentedEdge{Edge: e, ChromosomeIndex: m[0], Phased: m[1]})
	}
	return out, nil
}

// EdgesForBlockGroup is the exported form of edgesForBlockGroup, for
// callers outside this package (e.g. translate).
func (r *Registry) EdgesForBlockGroup(ctx context.Context, blockGroupID int64) ([]AugmentedEdge, error) {
	return r.membership.edgesForBlockGroup(ctx, r.edges, blockGroupID)
}

// SpecificEdgesForBlockGroup is the exported form of
// specificEdgesForBlockGroup.
func (r *Registry) SpecificEdgesForBlockGroup(ctx context.Context, blockGroupID int64, edgeIDs []int64) ([]AugmentedEdge, error) {
	return r.membership.specificEdgesForBlockGroup(ctx, r.edges, blockGroupID, edgeIDs)
}
