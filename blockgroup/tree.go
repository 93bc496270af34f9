package blockgroup

import (
	"context"

	"github.com/vargraph/vargraph/internal/storeerr"
)

// AddRelation records that child was derived from parent, one edge in the
// sample provenance DAG (spec.md §3 "Sample tree",
// original_source::add_relation). The relation is idempotent: recording
// the same (parent, child) pair twice is a no-op.
func (r *Registry) AddRelation(ctx context.Context, parentID, childID int64) error {
	_, err := r.db.DB.ExecContext(ctx,
		`INSERT INTO block_group_tree (parent_id, child_id) VALUES (?, ?) ON CONFLICT (parent_id, child_id) DO NOTHING`,
		parentID, childID)
	if err != nil {
		return storeerr.NewStore("block_group_tree.add_relation", err)
	}
	return nil
}

// GetChildren returns the block groups directly derived from parentID.
func (r *Registry) GetChildren(ctx context.Context, parentID int64) ([]int64, error) {
	return r.queryRelation(ctx, `SELECT child_id FROM block_group_tree WHERE parent_id = ?`, parentID)
}

// GetParents returns the block groups parentID was directly derived from.
func (r *Registry) GetParents(ctx context.Context, childID int64) ([]int64, error) {
	return r.queryRelation(ctx, `SELECT parent_id FROM block_group_tree WHERE child_id = ?`, childID)
}

func (r *Registry) queryRelation(ctx context.Context, query string, id int64) ([]int64, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, id)
	if err != nil {
		return nil, storeerr.NewStore("block_group_tree.query", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetAncestors returns every ancestor chain of blockGroupID, oldest
// relation last, matching original_source::get_ancestors exactly: the DAG
// is walked via reverse-DFS over the parent relation, and a block group
// with multiple parents yields one chain per parent, not a single
// "nearest" lineage (spec.md §9's sample-tree Open Question, decided as a
// DAG -- see DESIGN.md). For example with relations bg1->bg2->bg3->bg4,
// bg1->bg4, bg1->bg3, GetAncestors(bg4) returns
// [[bg3,bg2,bg1],[bg3,bg1],[bg1]].
func (r *Registry) GetAncestors(ctx context.Context, blockGroupID int64) ([][]int64, error) {
	parents, err := r.GetParents(ctx, blockGroupID)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, nil
	}

	var chains [][]int64
	for _, parent := range parents {
		grandchains, err := r.GetAncestors(ctx, parent)
		if err != nil {
			return nil, err
		}
		if len(grandchains) == 0 {
			chains = append(chains, []int64{parent})
			continue
		}
		for _, chain := range grandchains {
			full := make([]int64, 0, len(chain)+1)
			full = append(full, parent)
			full = append(full, chain...)
			chains = append(chains, full)
		}
	}
	return chains, nil
}
