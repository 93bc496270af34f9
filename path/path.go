package path

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"

	"github.com/biogo/store/interval"

	"github.com/vargraph/vargraph/edge"
	"github.com/vargraph/vargraph/internal/storeerr"
	"github.com/vargraph/vargraph/node"
	"github.com/vargraph/vargraph/rangeutil"
	"github.com/vargraph/vargraph/sequence"
	"github.com/vargraph/vargraph/store"
	"github.com/vargraph/vargraph/strand"
)

// Path is one revision of an ordered walk of edges through one block
// group's graph, spelling a single concrete sequence (spec.md §3). Editing
// a path never mutates its row: spec.md §4.6 step 6 appends a new Path at
// the next revision under the same (block_group_id, name), leaving every
// earlier revision intact for history. Revision 0 is a block group's
// initial, imported walk.
type Path struct {
	ID           int64
	BlockGroupID int64
	Name         string
	Revision     int64
}

// Registry is the path registry, backed by store.Store.
type Registry struct {
	db        *store.Store
	pathEdges *edgeTable
}

// NewRegistry constructs a path Registry.
func NewRegistry(db *store.Store) *Registry {
	return &Registry{db: db, pathEdges: &edgeTable{db: db}}
}

// Create registers a block group's initial path (revision 0), spelled by
// edgeIDs in order. Create is idempotent on (block_group_id, name,
// revision 0): a second call with the same name returns the existing
// revision-0 path without inserting new path_edges rows, matching
// original_source's behavior of not re-validating the edge list on
// conflict (see the reference's own TODO about this). Use CreateRevision
// to append an edited walk as a new, later revision.
func (r *Registry) Create(ctx context.Context, blockGroupID int64, name string, edgeIDs []int64) (Path, error) {
	return r.createRevision(ctx, blockGroupID, name, 0, edgeIDs, true)
}

// CreateRevision appends name's edited walk as a brand new Path row, one
// revision past whatever is currently the newest (spec.md §4.6 step 6).
// Unlike Create it never recovers an existing row on conflict: every call
// inserts a new revision, which is the point of the operation.
func (r *Registry) CreateRevision(ctx context.Context, blockGroupID int64, name string, edgeIDs []int64) (Path, error) {
	current, err := r.currentRevision(ctx, blockGroupID, name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Path{}, err
	}
	return r.createRevision(ctx, blockGroupID, name, current+1, edgeIDs, false)
}

func (r *Registry) createRevision(ctx context.Context, blockGroupID int64, name string, revision int64, edgeIDs []int64, recoverOnConflict bool) (Path, error) {
	insert := func(ctx context.Context) (Path, error) {
		res, err := r.db.DB.ExecContext(ctx,
			`INSERT INTO paths (block_group_id, name, revision) VALUES (?, ?, ?)`, blockGroupID, name, revision)
		if err != nil {
			return Path{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return Path{}, err
		}
		return Path{ID: id, BlockGroupID: blockGroupID, Name: name, Revision: revision}, nil
	}

	var p Path
	var err error
	recovered := false
	if recoverOnConflict {
		p, err = store.InsertOrFetch(ctx, "path.create",
			insert,
			func(ctx context.Context) (Path, error) {
				recovered = true
				return r.getRevision(ctx, blockGroupID, name, revision)
			})
	} else {
		p, err = insert(ctx)
	}
	if err != nil {
		return Path{}, err
	}
	if recovered {
		return p, nil
	}

	if err := r.pathEdges.bulkCreate(ctx, p.ID, edgeIDs); err != nil {
		return Path{}, err
	}
	return p, nil
}

func (r *Registry) getRevision(ctx context.Context, blockGroupID int64, name string, revision int64) (Path, error) {
	row := r.db.DB.QueryRowContext(ctx,
		`SELECT id, block_group_id, name, revision FROM paths
		 WHERE block_group_id = ? AND name = ? AND revision = ?`, blockGroupID, name, revision)
	return scanPath(row)
}

// currentRevision returns the highest revision number already stored for
// (blockGroupID, name). sql.ErrNoRows means no path by that name exists
// yet, in which case the caller treats the "current" revision as -1 so the
// first CreateRevision call lands on 0.
func (r *Registry) currentRevision(ctx context.Context, blockGroupID int64, name string) (int64, error) {
	row := r.db.DB.QueryRowContext(ctx,
		`SELECT MAX(revision) FROM paths WHERE block_group_id = ? AND name = ?`, blockGroupID, name)
	var revision sql.NullInt64
	if err := row.Scan(&revision); err != nil {
		return -1, err
	}
	if !revision.Valid {
		return -1, sql.ErrNoRows
	}
	return revision.Int64, nil
}

func (r *Registry) getByName(ctx context.Context, blockGroupID int64, name string) (Path, error) {
	row := r.db.DB.QueryRowContext(ctx,
		`SELECT id, block_group_id, name, revision FROM paths
		 WHERE block_group_id = ? AND name = ? ORDER BY revision DESC LIMIT 1`, blockGroupID, name)
	return scanPath(row)
}

// ForBlockGroupNamed fetches name's current (highest-revision) path under
// blockGroupID, wrapping a missing row as a NotFound error. Exported for
// callers (e.g. cache.PathCache) that look up a path by name rather than
// by id.
func (r *Registry) ForBlockGroupNamed(ctx context.Context, blockGroupID int64, name string) (Path, error) {
	p, err := r.getByName(ctx, blockGroupID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return Path{}, storeerr.NewNotFound("path", name)
	}
	return p, err
}

// Get fetches a single Path by id.
func (r *Registry) Get(ctx context.Context, id int64) (Path, error) {
	row := r.db.DB.QueryRowContext(ctx, `SELECT id, block_group_id, name, revision FROM paths WHERE id = ?`, id)
	p, err := scanPath(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Path{}, storeerr.NewNotFound("path", name64(id))
	}
	return p, err
}

// ForBlockGroup returns every current (highest-revision) path belonging to
// a block group — one row per distinct name, not the full edit history.
func (r *Registry) ForBlockGroup(ctx context.Context, blockGroupID int64) ([]Path, error) {
	rows, err := r.db.DB.QueryContext(ctx,
		`SELECT p.id, p.block_group_id, p.name, p.revision FROM paths p
		 INNER JOIN (
			SELECT name, MAX(revision) AS revision FROM paths WHERE block_group_id = ? GROUP BY name
		 ) latest ON latest.name = p.name AND latest.revision = p.revision
		 WHERE p.block_group_id = ?`, blockGroupID, blockGroupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Path
	for rows.Next() {
		p, err := scanPath(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// History returns every revision of name under blockGroupID, oldest first.
func (r *Registry) History(ctx context.Context, blockGroupID int64, name string) ([]Path, error) {
	rows, err := r.db.DB.QueryContext(ctx,
		`SELECT id, block_group_id, name, revision FROM paths
		 WHERE block_group_id = ? AND name = ? ORDER BY revision ASC`, blockGroupID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Path
	for rows.Next() {
		p, err := scanPath(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// EdgesForPath returns a path's edges in walk order.
func (r *Registry) EdgesForPath(ctx context.Context, edges *edge.Table, pathID int64) ([]edge.Edge, error) {
	return r.pathEdges.edgesForPath(ctx, edges, pathID)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPath(row scanner) (Path, error) {
	var p Path
	if err := row.Scan(&p.ID, &p.BlockGroupID, &p.Name, &p.Revision); err != nil {
		return Path{}, err
	}
	return p, nil
}

func name64(id int64) string {
	return storeerr.FormatID(id)
}

// Block is a contiguous slice of one node's sequence occupying a
// contiguous range of a path's coordinate space (spec.md §3 "PathBlock").
// Synthetic blocks at the dedicated start/end nodes bracket every path so
// interval-tree lookups at the very first or very last coordinate always
// resolve to a block (original_source/src/models/path.rs::blocks_for).
type Block struct {
	ID            int64
	NodeID        int64
	BlockSequence string
	SequenceStart int64
	SequenceEnd   int64
	PathStart     int64
	PathEnd       int64
	Strand        strand.Strand
}

// BlocksFor materializes path into its ordered list of Blocks, including
// the synthetic start/end boundary blocks.
func BlocksFor(ctx context.Context, edges *edge.Table, nodes *node.Registry, seqs *sequence.Store, p Path, pathEdges []edge.Edge) ([]Block, error) {
	nodeIDs := make(map[int64]bool)
	for _, e := range pathEdges {
		if e.SourceNodeID != node.StartID {
			nodeIDs[e.SourceNodeID] = true
		}
		if e.TargetNodeID != node.EndID {
			nodeIDs[e.TargetNodeID] = true
		}
	}
	ids := make([]int64, 0, len(nodeIDs))
	for id := range nodeIDs {
		ids = append(ids, id)
	}

	seqByNode, err := nodes.GetSequencesByNodeIDs(ctx, seqs, ids)
	if err != nil {
		return nil, err
	}

	blocks := make([]Block, 0, len(pathEdges)+1)
	// Start sentinel: any lookup at or before path coordinate 0 resolves here.
	blocks = append(blocks, Block{
		ID:            -1,
		NodeID:        node.StartID,
		SequenceStart: 0,
		SequenceEnd:   0,
		PathStart:     math.MinInt64 + 1,
		PathEnd:       0,
		Strand:        strand.Forward,
	})

	var pathLength int64
	for i := 0; i+1 < len(pathEdges); i++ {
		into, outOf := pathEdges[i], pathEdges[i+1]
		block, err := edgePairToBlock(ctx, int64(i), into, outOf, seqByNode, seqs, pathLength)
		if err != nil {
			return nil, err
		}
		pathLength += int64(len(block.BlockSequence))
		blocks = append(blocks, block)
	}

	// End sentinel: any lookup at or beyond the path length resolves here.
	blocks = append(blocks, Block{
		ID:            -2,
		NodeID:        node.EndID,
		SequenceStart: 0,
		SequenceEnd:   0,
		PathStart:     pathLength,
		PathEnd:       math.MaxInt64 - 1,
		Strand:        strand.Forward,
	})

	return blocks, nil
}

func edgePairToBlock(ctx context.Context, blockID int64, into, outOf edge.Edge, seqByNode map[int64]sequence.Sequence, seqs *sequence.Store, pathLength int64) (Block, error) {
	if into.TargetNodeID != outOf.SourceNodeID {
		return Block{}, storeerr.NewInvariant("consecutive path edges do not share a node: %d -> %d", into.TargetNodeID, outOf.SourceNodeID)
	}
	if into.TargetStrand != outOf.SourceStrand {
		return Block{}, storeerr.NewInvariant("edge pair strand mismatch at node %d", into.TargetNodeID)
	}

	start, end := into.TargetCoordinate, outOf.SourceCoordinate
	seq := seqByNode[into.TargetNodeID]

	raw, err := seqs.GetSubsequence(ctx, seq.Hash, start, end)
	if err != nil {
		return Block{}, err
	}

	blockSequence := raw
	if into.TargetStrand == strand.Reverse {
		blockSequence = strand.RevComp(raw)
	}

	return Block{
		ID:            blockID,
		NodeID:        into.TargetNodeID,
		BlockSequence: blockSequence,
		SequenceStart: start,
		SequenceEnd:   end,
		PathStart:     pathLength,
		PathEnd:       pathLength + int64(len(blockSequence)),
		Strand:        into.TargetStrand,
	}, nil
}

// Sequence concatenates every block's sequence into the path's full
// spelled-out sequence.
func Sequence(blocks []Block) string {
	var out []byte
	for _, b := range blocks {
		out = append(out, b.BlockSequence...)
	}
	return string(out)
}

// intervalBlock adapts a Block to biogo/store/interval's IntInterface so
// path coordinates can be queried with an interval tree
// (original_source uses the intervaltree crate for the same role).
type intervalBlock struct {
	block Block
	id    uintptr
}

func (b intervalBlock) Overlap(r interval.IntRange) bool {
	return int(b.block.PathStart) < r.End && int(b.block.PathEnd) > r.Start
}

func (b intervalBlock) ID() uintptr { return b.id }

func (b intervalBlock) Range() interval.IntRange {
	return interval.IntRange{Start: int(b.block.PathStart), End: int(b.block.PathEnd)}
}

// pointQuery is a single-point IntTree lookup, matching Overlap semantics
// on a zero-width range.
type pointQuery int

func (p pointQuery) Overlap(r interval.IntRange) bool {
	return int(p) >= r.Start && int(p) < r.End
}

// Tree wraps an interval.IntTree over a path's Blocks for path-coordinate
// point lookups.
type Tree struct {
	tree *interval.IntTree
}

// IntervalTreeFor builds a Tree over path's blocks.
func IntervalTreeFor(blocks []Block) (*Tree, error) {
	tree := &interval.IntTree{}
	for i, b := range blocks {
		if err := tree.Insert(intervalBlock{block: b, id: uintptr(i)}, false); err != nil {
			return nil, storeerr.NewInvariant("interval tree insert failed: %v", err)
		}
	}
	tree.AdjustRanges()
	return &Tree{tree: tree}, nil
}

// QueryPoint returns every Block whose path range contains position.
func (t *Tree) QueryPoint(position int64) []Block {
	var hits []Block
	t.tree.DoMatching(func(iv interval.IntInterface) bool {
		hits = append(hits, iv.(intervalBlock).block)
		return false
	}, pointQuery(position))
	return hits
}

// FindBlockMappings compares two paths' materialized blocks and returns
// every sub-range of ourBlocks that spells the same sequence content, at
// the same coordinates, as a sub-range of theirBlocks — i.e. the portions
// of sequence shared by both paths because they pass through the same
// node at the same sequence coordinates (spec.md §4.9, grounded on
// original_source's two-pointer sweep over each shared node's blocks,
// sorted by sequence_start).
func FindBlockMappings(ourBlocks, theirBlocks []Block) []rangeutil.Mapping {
	ourByNode := groupByNode(ourBlocks)
	theirByNode := groupByNode(theirBlocks)

	var mappings []rangeutil.Mapping
	for nodeID, ours := range ourByNode {
		theirs, ok := theirByNode[nodeID]
		if !ok {
			continue
		}

		sort.Slice(ours, func(i, j int) bool { return ours[i].SequenceStart < ours[j].SequenceStart })
		sort.Slice(theirs, func(i, j int) bool { return theirs[i].SequenceStart < theirs[j].SequenceStart })

		for _, ourBlock := range ours {
			theirIdx := 0
			for theirIdx < len(theirs) {
				theirBlock := theirs[theirIdx]
				if theirBlock.SequenceEnd <= ourBlock.SequenceStart {
					theirIdx++
					continue
				}

				ourRange := rangeutil.Range{Start: ourBlock.SequenceStart, End: ourBlock.SequenceEnd}
				theirRange := rangeutil.Range{Start: theirBlock.SequenceStart, End: theirBlock.SequenceEnd}
				common := ourRange.Overlap(theirRange)
				if len(common) > 0 {
					c := common[0]
					mappings = append(mappings, rangeutil.Mapping{
						Source: rangeutil.Range{
							Start: ourBlock.PathStart + (c.Start - ourBlock.SequenceStart),
							End:   ourBlock.PathStart + (c.End - ourBlock.SequenceStart),
						},
						Target: rangeutil.Range{
							Start: theirBlock.PathStart + (c.Start - theirBlock.SequenceStart),
							End:   theirBlock.PathStart + (c.End - theirBlock.SequenceStart),
						},
					})
				}

				if theirBlock.SequenceEnd < ourBlock.SequenceEnd {
					theirIdx++
					continue
				}
				break
			}
		}
	}

	sort.Slice(mappings, func(i, j int) bool { return mappings[i].Source.Start < mappings[j].Source.Start })
	return mappings
}

func groupByNode(blocks []Block) map[int64][]Block {
	out := make(map[int64][]Block)
	for _, b := range blocks {
		out[b.NodeID] = append(out[b.NodeID], b)
	}
	return out
}
