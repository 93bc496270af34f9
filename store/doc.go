// Package store is the backing relational store for the graph engine: the
// logical relations (sequences, nodes, edges, collections, samples,
// block_groups, block_group_edges, paths, path_edges, block_group_tree)
// this package owns. It wraps database/sql over modernc.org/sqlite (a
// pure-Go, CGo-free SQLite driver).
//
// Every "idempotent create" (Sequence, Node, Edge, BlockGroup) goes through
// store.InsertOrFetch, which attempts the insert and, on a UNIQUE
// constraint violation, recovers the existing row.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/store"
//
//	db, err := store.Open(ctx, store.Config{})
//	defer db.Close()
package store
