package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vargraph/vargraph/blockgroup"
	"github.com/vargraph/vargraph/edge"
	"github.com/vargraph/vargraph/node"
	"github.com/vargraph/vargraph/path"
	"github.com/vargraph/vargraph/sequence"
)

// DefaultSize is used when a cache is constructed with size <= 0.
const DefaultSize = 1024

// PathCache memoizes Path lookups-by-name and the interval tree built over
// a path's blocks, keyed by path id. Callers repeatedly translating
// annotations against the same path (translate.Translate) or repeatedly
// splicing changes into the same path (blockgroup.InsertChanges) are the
// intended beneficiaries.
type PathCache struct {
	paths *path.Registry
	edges *edge.Table
	nodes *node.Registry
	seqs  *sequence.Store

	byName *lru.Cache[pathNameKey, path.Path]
	trees  *lru.Cache[int64, *path.Tree]
}

type pathNameKey struct {
	blockGroupID int64
	name         string
}

// NewPathCache constructs a PathCache backed by paths/edges/nodes/seqs. A
// size of 0 uses DefaultSize.
func NewPathCache(paths *path.Registry, edges *edge.Table, nodes *node.Registry, seqs *sequence.Store, size int) (*PathCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	byName, err := lru.New[pathNameKey, path.Path](size)
	if err != nil {
		return nil, fmt.Errorf("cache: path-by-name: %w", err)
	}
	trees, err := lru.New[int64, *path.Tree](size)
	if err != nil {
		return nil, fmt.Errorf("cache: path-interval-tree: %w", err)
	}
	return &PathCache{paths: paths, edges: edges, nodes: nodes, seqs: seqs, byName: byName, trees: trees}, nil
}

// Get returns blockGroupID's current (highest-revision) path named name,
// fetching and caching it on a miss. A caller that runs blockgroup.
// InsertChange/InsertChanges against this path must call InvalidateName
// afterward: that appends a new, now-current revision, and this cache
// would otherwise keep handing out the revision that was current before
// the edit.
func (c *PathCache) Get(ctx context.Context, blockGroupID int64, name string) (path.Path, error) {
	key := pathNameKey{blockGroupID, name}
	if p, ok := c.byName.Get(key); ok {
		return p, nil
	}
	p, err := c.paths.ForBlockGroupNamed(ctx, blockGroupID, name)
	if err != nil {
		return path.Path{}, err
	}
	c.byName.Add(key, p)
	return p, nil
}

// IntervalTree returns p's interval tree, building and caching it on a
// miss. A given Path id's path_edges never change after creation --
// InsertChange/InsertChanges append an edited walk as a brand new Path
// revision rather than mutating one in place -- so the tree cached here
// under p.ID never goes stale. Invalidate exists for callers holding onto
// a stale Path value (e.g. looked up before a later revision landed) that
// want to force a fresh PathCache.Get/IntervalTree pair.
func (c *PathCache) IntervalTree(ctx context.Context, p path.Path) (*path.Tree, error) {
	if t, ok := c.trees.Get(p.ID); ok {
		return t, nil
	}
	pathEdges, err := c.paths.EdgesForPath(ctx, c.edges, p.ID)
	if err != nil {
		return nil, err
	}
	blocks, err := path.BlocksFor(ctx, c.edges, c.nodes, c.seqs, p, pathEdges)
	if err != nil {
		return nil, err
	}
	tree, err := path.IntervalTreeFor(blocks)
	if err != nil {
		return nil, err
	}
	c.trees.Add(p.ID, tree)
	return tree, nil
}

// Invalidate drops p's cached interval tree. Harmless but unnecessary for
// path_edits made through blockgroup.InsertChange/InsertChanges, since
// those always land on a new Path id rather than rewriting p's own
// path_edges; kept for any future caller that does rewrite a path in
// place.
func (c *PathCache) Invalidate(p path.Path) {
	c.trees.Remove(p.ID)
}

// InvalidateName drops the cached current-path lookup for
// (blockGroupID, name), for callers that just appended a new revision via
// blockgroup.InsertChange/InsertChanges and need Get to stop returning the
// revision that used to be current.
func (c *PathCache) InvalidateName(blockGroupID int64, name string) {
	c.byName.Remove(pathNameKey{blockGroupID, name})
}

// BlockGroupCache memoizes BlockGroup name lookups
// (collection, sample, name) -> id, the same role as PathCache but for
// spec.md §4.8's name-based block-group resolution.
type BlockGroupCache struct {
	blockGroups *blockgroup.Registry
	byName      *lru.Cache[blockGroupNameKey, blockgroup.BlockGroup]
}

type blockGroupNameKey struct {
	collection string
	sample     string
	name       string
}

// NewBlockGroupCache constructs a BlockGroupCache backed by blockGroups. A
// size of 0 uses DefaultSize.
func NewBlockGroupCache(blockGroups *blockgroup.Registry, size int) (*BlockGroupCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	byName, err := lru.New[blockGroupNameKey, blockgroup.BlockGroup](size)
	if err != nil {
		return nil, fmt.Errorf("cache: block-group-by-name: %w", err)
	}
	return &BlockGroupCache{blockGroups: blockGroups, byName: byName}, nil
}

// Get returns the block group named (collection, sample, name), fetching
// and caching it on a miss.
func (c *BlockGroupCache) Get(ctx context.Context, collection, sample, name string) (blockgroup.BlockGroup, error) {
	key := blockGroupNameKey{collection, sample, name}
	if bg, ok := c.byName.Get(key); ok {
		return bg, nil
	}
	bg, err := c.blockGroups.Lookup(ctx, collection, sample, name)
	if err != nil {
		return blockgroup.BlockGroup{}, err
	}
	c.byName.Add(key, bg)
	return bg, nil
}

// Invalidate drops a cached block-group name lookup, for callers that
// rename or delete a block group out from under the cache (no such
// operation exists in this repository yet, but cloning into an existing
// name/sample pair reuses Create's idempotent lookup path, which this
// cache would otherwise shadow with stale data).
func (c *BlockGroupCache) Invalidate(collection, sample, name string) {
	c.byName.Remove(blockGroupNameKey{collection, sample, name})
}
