// Package cache composes pure latency optimizations: memoizing repeated
// path lookups and the interval trees built over their blocks, and
// memoizing block-group name lookups. None of these caches change any
// operation's result, only how many times the backing store is asked to
// recompute it.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/cache"
//
//	pc, err := cache.NewPathCache(paths, edges, nodes, seqs, 0)
//	p, err := pc.Get(ctx, blockGroupID, "chr1")
package cache
