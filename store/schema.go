package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates every relation from spec.md §6, in dependency
// order. Terminal node ids (START = 1, END = 2) are seeded here per the
// table's closing note ("Terminal node ids ... are seeded at store init").
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sequences (
		hash TEXT PRIMARY KEY,
		seq_type TEXT NOT NULL,
		length INTEGER NOT NULL,
		content TEXT,
		file_path TEXT,
		file_start INTEGER,
		file_end INTEGER,
		name TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence_hash TEXT NOT NULL REFERENCES sequences(hash),
		provenance_hash TEXT,
		UNIQUE (sequence_hash, provenance_hash)
	)`,
	`CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_node_id INTEGER NOT NULL,
		source_coordinate INTEGER NOT NULL,
		source_strand TEXT NOT NULL,
		target_node_id INTEGER NOT NULL,
		target_coordinate INTEGER NOT NULL,
		target_strand TEXT NOT NULL,
		UNIQUE (source_node_id, source_coordinate, source_strand, target_node_id, target_coordinate, target_strand)
	)`,
	`CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS samples (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS block_groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection_name TEXT NOT NULL,
		sample_name TEXT,
		name TEXT NOT NULL,
		UNIQUE (collection_name, sample_name, name)
	)`,
	`CREATE TABLE IF NOT EXISTS block_group_edges (
		block_group_id INTEGER NOT NULL,
		edge_id INTEGER NOT NULL,
		chromosome_index INTEGER NOT NULL DEFAULT 0,
		phased INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (block_group_id, edge_id)
	)`,
	`CREATE TABLE IF NOT EXISTS paths (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		block_group_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		revision INTEGER NOT NULL DEFAULT 0,
		UNIQUE (block_group_id, name, revision)
	)`,
	`CREATE TABLE IF NOT EXISTS path_edges (
		path_id INTEGER NOT NULL,
		idx INTEGER NOT NULL,
		edge_id INTEGER NOT NULL,
		PRIMARY KEY (path_id, idx)
	)`,
	`CREATE TABLE IF NOT EXISTS block_group_tree (
		parent_id INTEGER NOT NULL,
		child_id INTEGER NOT NULL,
		PRIMARY KEY (parent_id, child_id)
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		// Seed terminal nodes (spec.md §6). sequence_hash is a dedicated
		// sentinel that is never produced by sequence.Intern, so terminal
		// nodes never collide with a real sequence's node.
		for _, row := range []struct {
			id   int64
			hash string
		}{
			{PathStartNodeID, "__PATH_START__"},
			{PathEndNodeID, "__PATH_END__"},
		} {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO sequences (hash, seq_type, length, content) VALUES (?, 'DNA', 0, '')
				 ON CONFLICT (hash) DO NOTHING`, row.hash); err != nil {
				return fmt.Errorf("migrate: seed terminal sequence: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO nodes (id, sequence_hash, provenance_hash) VALUES (?, ?, NULL)
				 ON CONFLICT (id) DO NOTHING`, row.id, row.hash); err != nil {
				return fmt.Errorf("migrate: seed terminal node: %w", err)
			}
		}

		s.Log.Debug("schema migrated")
		return nil
	})
}
