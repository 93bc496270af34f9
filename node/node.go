package node

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/vargraph/vargraph/internal/storeerr"
	"github.com/vargraph/vargraph/sequence"
	"github.com/vargraph/vargraph/store"
)

// Terminal node ids, re-exported from store for callers that only import
// this package (spec.md §6, §9 "Terminal nodes").
const (
	StartID = store.PathStartNodeID
	EndID   = store.PathEndNodeID
)

// Node is a stable integer handle to exactly one sequence, optionally
// carrying a provenance hash (spec.md §3).
type Node struct {
	ID             int64
	SequenceHash   string
	ProvenanceHash string // empty means "no provenance"
}

// IsTerminal reports whether id is one of the two reserved terminal nodes.
func IsTerminal(id int64) bool {
	return id == StartID || id == EndID
}

// Registry is the node registry, backed by store.Store.
type Registry struct {
	db *store.Store
}

// New constructs a Registry.
func New(db *store.Store) *Registry {
	return &Registry{db: db}
}

// Create returns the id of the node for (sequenceHash, provenanceHash),
// creating it if it does not already exist. provenanceHash may be empty,
// meaning "no provenance" — this lets edits at different positions that
// happen to insert the same short sequence allocate distinct nodes when
// their editing context differs (spec.md §4.2). An empty provenanceHash is
// stored as SQL NULL, which SQLite's UNIQUE index treats as distinct, so
// for that case Create looks up an existing node before inserting.
func (r *Registry) Create(ctx context.Context, sequenceHash, provenanceHash string) (int64, error) {
	if provenanceHash == "" {
		id, err := r.lookupID(ctx, sequenceHash, "")
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
	}
	return store.InsertOrFetch(ctx, "node.create",
		func(ctx context.Context) (int64, error) {
			res, err := r.db.DB.ExecContext(ctx,
				`INSERT INTO nodes (sequence_hash, provenance_hash) VALUES (?, ?)`,
				sequenceHash, nullableProvenance(provenanceHash))
			if err != nil {
				return 0, err
			}
			return res.LastInsertId()
		},
		func(ctx context.Context) (int64, error) {
			return r.lookupID(ctx, sequenceHash, provenanceHash)
		})
}

func (r *Registry) lookupID(ctx context.Context, sequenceHash, provenanceHash string) (int64, error) {
	row := r.db.DB.QueryRowContext(ctx,
		`SELECT id FROM nodes WHERE sequence_hash = ? AND provenance_hash IS ?`,
		sequenceHash, nullableProvenance(provenanceHash))
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Get fetches a single Node by id.
func (r *Registry) Get(ctx context.Context, id int64) (Node, error) {
	row := r.db.DB.QueryRowContext(ctx, `SELECT id, sequence_hash, provenance_hash FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Node{}, storeerr.NewNotFound("node", formatID(id))
	}
	return n, err
}

// GetSequencesByNodeIDs fetches every distinct sequence referenced by ids in
// one batched round trip, mirroring
// original_source/src/models/node.rs::get_sequences_by_node_ids.
func (r *Registry) GetSequencesByNodeIDs(ctx context.Context, seqStore *sequence.Store, ids []int64) (map[int64]sequence.Sequence, error) {
	out := make(map[int64]sequence.Sequence, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	nodes, err := r.getNodes(ctx, ids)
	if err != nil {
		return nil, err
	}

	hashes := make([]string, 0, len(nodes))
	seen := make(map[string]bool)
	for _, n := range nodes {
		if !seen[n.SequenceHash] {
			seen[n.SequenceHash] = true
			hashes = append(hashes, n.SequenceHash)
		}
	}

	byHash, err := seqStore.SequencesByHashes(ctx, hashes)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		out[n.ID] = byHash[n.SequenceHash]
	}
	return out, nil
}

func (r *Registry) getNodes(ctx context.Context, ids []int64) ([]Node, error) {
	const chunkSize = 500
	var out []Node
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		placeholders := ""
		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			if i > 0 {
				placeholders += ", "
			}
			placeholders += "?"
			args[i] = id
		}

		rows, err := r.db.DB.QueryContext(ctx, `SELECT id, sequence_hash, provenance_hash FROM nodes WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			n, err := scanNode(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, n)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row scanner) (Node, error) {
	var n Node
	var prov sql.NullString
	if err := row.Scan(&n.ID, &n.SequenceHash, &prov); err != nil {
		return Node{}, err
	}
	n.ProvenanceHash = prov.String
	return n, nil
}

func nullableProvenance(p string) interface{} {
	if p == "" {
		return nil
	}
	return p
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
