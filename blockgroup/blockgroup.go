package blockgroup

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/vargraph/vargraph/edge"
	"github.com/vargraph/vargraph/internal/digraph"
	"github.com/vargraph/vargraph/internal/storeerr"
	"github.com/vargraph/vargraph/node"
	"github.com/vargraph/vargraph/path"
	"github.com/vargraph/vargraph/pathedit"
	"github.com/vargraph/vargraph/sequence"
	"github.com/vargraph/vargraph/store"
)

// BlockGroup is a named DAG of edges scoped to a collection, and optionally
// to a sample's derivation of that collection (spec.md §3).
type BlockGroup struct {
	ID             int64
	CollectionName string
	SampleName     string // empty means "no sample" (the base/reference block group)
	Name           string
}

// HasSample reports whether this block group belongs to a sample's
// derivation rather than being a collection's base block group.
func (bg BlockGroup) HasSample() bool {
	return bg.SampleName != ""
}

// Registry is the block group table plus its supporting subsystems,
// backed by store.Store.
type Registry struct {
	db         *store.Store
	edges      *edge.Table
	nodes      *node.Registry
	seqs       *sequence.Store
	paths      *path.Registry
	membership *membership
}

// New constructs a Registry.
func New(db *store.Store, edges *edge.Table, nodes *node.Registry, seqs *sequence.Store, paths *path.Registry) *Registry {
	return &Registry{
		db: db, edges: edges, nodes: nodes, seqs: seqs, paths: paths,
		membership: &membership{db: db},
	}
}

// Create registers a block group, idempotently on (collection_name,
// sample_name, name) (spec.md §4.8), matching
// original_source/src/models/block_group.rs::create's constraint-violation
// recovery. sampleName == "" is stored as SQL NULL. SQLite's UNIQUE index
// treats NULLs as distinct, so it never rejects a second block group that
// lacks a sample; for that case Create first looks up an existing group
// with the same collection and name and returns it if there is one.
func (r *Registry) Create(ctx context.Context, collectionName, sampleName, name string) (BlockGroup, error) {
	if sampleName == "" {
		existing, err := r.lookup(ctx, collectionName, "", name)
		if err == nil {
			return existing, nil
		}
		if !isNotFound(err) {
			return BlockGroup{}, err
		}
	}
	return store.InsertOrFetch(ctx, "block_group.create",
		func(ctx context.Context) (BlockGroup, error) {
			res, err := r.db.DB.ExecContext(ctx,
				`INSERT INTO block_groups (collection_name, sample_name, name) VALUES (?, ?, ?)`,
				collectionName, nullableSample(sampleName), name)
			if err != nil {
				return BlockGroup{}, err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return BlockGroup{}, err
			}
			return BlockGroup{ID: id, CollectionName: collectionName, SampleName: sampleName, Name: name}, nil
		},
		func(ctx context.Context) (BlockGroup, error) {
			return r.lookup(ctx, collectionName, sampleName, name)
		})
}

func (r *Registry) lookup(ctx context.Context, collectionName, sampleName, name string) (BlockGroup, error) {
	var row *sql.Row
	if sampleName == "" {
		row = r.db.DB.QueryRowContext(ctx,
			`SELECT id, collection_name, sample_name, name FROM block_groups
			 WHERE collection_name = ? AND sample_name IS NULL AND name = ?`, collectionName, name)
	} else {
		row = r.db.DB.QueryRowContext(ctx,
			`SELECT id, collection_name, sample_name, name FROM block_groups
			 WHERE collection_name = ? AND sample_name = ? AND name = ?`, collectionName, sampleName, name)
	}
	bg, err := scanBlockGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BlockGroup{}, storeerr.NewNotFound("block_group", collectionName+"/"+sampleName+"/"+name)
	}
	return bg, err
}

// Lookup fetches a block group by (collection_name, sample_name, name),
// exported for callers (e.g. cache.BlockGroupCache) that resolve block
// groups by name rather than by id.
func (r *Registry) Lookup(ctx context.Context, collectionName, sampleName, name string) (BlockGroup, error) {
	return r.lookup(ctx, collectionName, sampleName, name)
}

// Get fetches a block group by id.
func (r *Registry) Get(ctx context.Context, id int64) (BlockGroup, error) {
	row := r.db.DB.QueryRowContext(ctx,
		`SELECT id, collection_name, sample_name, name FROM block_groups WHERE id = ?`, id)
	bg, err := scanBlockGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BlockGroup{}, storeerr.NewNotFound("block_group", storeerr.FormatID(id))
	}
	return bg, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBlockGroup(row scanner) (BlockGroup, error) {
	var bg BlockGroup
	var sampleName sql.NullString
	if err := row.Scan(&bg.ID, &bg.CollectionName, &sampleName, &bg.Name); err != nil {
		return BlockGroup{}, err
	}
	bg.SampleName = sampleName.String
	return bg, nil
}

func nullableSample(name string) interface{} {
	if name == "" {
		return nil
	}
	return name
}

// Graph materializes the block group's current GroupBlock partitioning and
// adjacency graph (spec.md §4.5), pulling every edge currently in its
// membership.
func (r *Registry) Graph(ctx context.Context, blockGroupID int64) ([]edge.GroupBlock, *digraph.Graph, error) {
	edges, err := r.membership.edgesForBlockGroup(ctx, r.edges, blockGroupID)
	if err != nil {
		return nil, nil, err
	}
	plain := make([]edge.Edge, len(edges))
	for i, ae := range edges {
		plain[i] = ae.Edge
	}
	return r.materialize(ctx, plain)
}

func (r *Registry) materialize(ctx context.Context, edges []edge.Edge) ([]edge.GroupBlock, *digraph.Graph, error) {
	nodeIDs := make(map[int64]struct{})
	for _, e := range edges {
		nodeIDs[e.SourceNodeID] = struct{}{}
		nodeIDs[e.TargetNodeID] = struct{}{}
	}
	ids := make([]int64, 0, len(nodeIDs))
	for id := range nodeIDs {
		ids = append(ids, id)
	}
	byNode, err := r.nodes.GetSequencesByNodeIDs(ctx, r.seqs, ids)
	if err != nil {
		return nil, nil, err
	}
	return edge.Materialize(edge.NodeSeqsFromSequences(byNode), edges)
}

// AllSequences enumerates every distinct sequence spelled by a walk from a
// source GroupBlock (no predecessor) to a sink GroupBlock (no successor),
// matching original_source's get_all_sequences (spec.md §4.9): the
// synthetic START/END blocks are excluded from every returned sequence,
// and a source equal to its own sink (an isolated block) yields its own
// sequence rather than being skipped.
func (r *Registry) AllSequences(ctx context.Context, blockGroupID int64) ([]string, error) {
	blocks, graph, err := r.Graph(ctx, blockGroupID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]edge.GroupBlock, len(blocks))
	var startBlockID, endBlockID int64 = -1, -1
	for _, b := range blocks {
		byID[b.ID] = b
		if b.NodeID == node.StartID {
			startBlockID = b.ID
		}
		if b.NodeID == node.EndID {
			endBlockID = b.ID
		}
	}

	var sources, sinks []int64
	for _, id := range graph.Nodes() {
		if id == startBlockID || id == endBlockID {
			continue
		}
		if len(graph.Predecessors(id)) == 0 {
			sources = append(sources, id)
		}
		if len(graph.Successors(id)) == 0 {
			sinks = append(sinks, id)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	sort.Slice(sinks, func(i, j int) bool { return sinks[i] < sinks[j] })

	seen := make(map[string]bool)
	var out []string
	for _, s := range sources {
		for _, t := range sinks {
			for _, p := range graph.AllSimplePaths(s, t) {
				seq := ""
				for _, blockID := range p {
					if blockID == startBlockID || blockID == endBlockID {
						continue
					}
					seq += byID[blockID].Seq
				}
				if !seen[seq] {
					seen[seq] = true
					out = append(out, seq)
				}
			}
		}
	}
	return out, nil
}

// InsertChange splices a single path-relative edit into a block group:
// derives the new edges via pathedit.SetUpNewEdges, creates them, records
// them as this block group's membership, and appends the edited walk as a
// new revision of change.Path (spec.md §4.6, original_source::insert_change).
func (r *Registry) InsertChange(ctx context.Context, change pathedit.Change, tree *path.Tree) error {
	res, err := pathedit.SetUpNewEdges(change, tree)
	if err != nil {
		return err
	}
	return r.applyChange(ctx, change, res)
}

// InsertChanges applies several path-relative edits against (potentially
// different) block groups and paths in sequence
// (original_source::insert_changes). Each change's own path revision is
// independent, so these cannot be collapsed into one cross-change edge
// batch the way plain membership registration could be.
func (r *Registry) InsertChanges(ctx context.Context, changes []pathedit.Change, trees map[int64]*path.Tree) error {
	for _, change := range changes {
		tree, ok := trees[change.Path.ID]
		if !ok {
			return storeerr.NewInvariant("no interval tree supplied for path %d", change.Path.ID)
		}
		res, err := pathedit.SetUpNewEdges(change, tree)
		if err != nil {
			return err
		}
		if err := r.applyChange(ctx, change, res); err != nil {
			return err
		}
	}
	return nil
}

// applyChange commits res's edges into the store, registers them under
// change.BlockGroupID's membership, and appends the edited walk as a new
// revision of change.Path (spec.md §4.6 step 6), leaving every earlier
// revision's path_edges untouched for history.
func (r *Registry) applyChange(ctx context.Context, change pathedit.Change, res pathedit.Result) error {
	ids, err := r.commitNewEdgesData(ctx, change.BlockGroupID, change.ChromosomeIndex, change.Phased, res.Edges)
	if err != nil {
		return err
	}

	pathEdges, err := r.paths.EdgesForPath(ctx, r.edges, change.Path.ID)
	if err != nil {
		return err
	}
	newWalk := spliceWalk(pathEdges, res.StartBlock.ID, res.EndBlock.ID, ids[:res.WalkLen])
	_, err = r.paths.CreateRevision(ctx, change.BlockGroupID, change.Path.Name, newWalk)
	return err
}

// spliceWalk rebuilds a path's ordered edge-id walk after an edit: the
// untouched prefix through the edge into res.StartBlock, the edit's own
// new walk edges, then the untouched suffix from the edge out of
// res.EndBlock onward. A StartBlock/EndBlock id of -1/-2 (path.go's
// START/END sentinels) means the edit attaches directly to the path's
// boundary, leaving no prefix/suffix to keep on that side.
func spliceWalk(pathEdges []edge.Edge, startBlockID, endBlockID int64, walkEdgeIDs []int64) []int64 {
	var out []int64
	if startBlockID >= 0 {
		for i := int64(0); i <= startBlockID; i++ {
			out = append(out, pathEdges[i].ID)
		}
	}
	out = append(out, walkEdgeIDs...)
	if endBlockID >= 0 {
		for i := endBlockID + 1; i < int64(len(pathEdges)); i++ {
			out = append(out, pathEdges[i].ID)
		}
	}
	return out
}

func (r *Registry) commitNewEdgesData(ctx context.Context, blockGroupID, chromosomeIndex, phased int64, data []edge.Data) ([]int64, error) {
	ids, err := r.edges.BulkCreate(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := r.membership.bulkCreate(ctx, blockGroupID, ids, chromosomeIndex, phased); err != nil {
		return nil, err
	}
	return ids, nil
}

// RegisterEdges adds already-created edges to blockGroupID's membership,
// all sharing one chromosome_index/phased value. This is the entry point
// callers building a block group's initial graph (e.g. from an imported
// path) use before any InsertChange has run.
func (r *Registry) RegisterEdges(ctx context.Context, blockGroupID int64, edgeIDs []int64, chromosomeIndex, phased int64) error {
	return r.membership.bulkCreate(ctx, blockGroupID, edgeIDs, chromosomeIndex, phased)
}
