// Package node is the node registry: it binds a sequence hash (plus
// optional provenance hash) to a stable integer identity. Creation is
// idempotent on the (sequence_hash, provenance_hash) pair.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/node"
//
//	nodes := node.New(db)
//	id, err := nodes.Create(ctx, seq.Hash, "")
package node
