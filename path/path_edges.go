package path

import (
	"context"

	"github.com/vargraph/vargraph/edge"
	"github.com/vargraph/vargraph/internal/storeerr"
	"github.com/vargraph/vargraph/store"
)

// edgeTable is the path_edges junction table: the ordered list of edge ids
// that spell one path (original_source/src/models/path_edge.rs).
type edgeTable struct {
	db *store.Store
}

func (t *edgeTable) bulkCreate(ctx context.Context, pathID int64, edgeIDs []int64) error {
	const chunkSize = 500
	for start := 0; start < len(edgeIDs); start += chunkSize {
		end := start + chunkSize
		if end > len(edgeIDs) {
			end = len(edgeIDs)
		}
		chunk := edgeIDs[start:end]

		query := `INSERT OR IGNORE INTO path_edges (path_id, idx, edge_id) VALUES `
		args := make([]interface{}, 0, len(chunk)*3)
		for i, edgeID := range chunk {
			if i > 0 {
				query += ", "
			}
			query += "(?, ?, ?)"
			args = append(args, pathID, start+i, edgeID)
		}
		if _, err := t.db.DB.ExecContext(ctx, query, args...); err != nil {
			return storeerr.NewStore("path_edges.bulk_create", err)
		}
	}
	return nil
}

func (t *edgeTable) edgesForPath(ctx context.Context, edges *edge.Table, pathID int64) ([]edge.Edge, error) {
	rows, err := t.db.DB.QueryContext(ctx,
		`SELECT edge_id FROM path_edges WHERE path_id = ? ORDER BY idx ASC`, pathID)
	if err != nil {
		return nil, storeerr.NewStore("path_edges.edges_for_path", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	loaded, err := edges.BulkLoad(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]edge.Edge, len(loaded))
	for _, e := range loaded {
		byID[e.ID] = e
	}

	out := make([]edge.Edge, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out, nil
}
