package edge

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/vargraph/vargraph/internal/digraph"
	"github.com/vargraph/vargraph/internal/storeerr"
	"github.com/vargraph/vargraph/node"
	"github.com/vargraph/vargraph/sequence"
	"github.com/vargraph/vargraph/store"
	"github.com/vargraph/vargraph/strand"
)

// Data is the value object used to create an Edge (no id yet).
type Data struct {
	SourceNodeID      int64
	SourceCoordinate  int64
	SourceStrand      strand.Strand
	TargetNodeID      int64
	TargetCoordinate  int64
	TargetStrand      strand.Strand
}

// Edge is an immutable directed transition between two node positions
// (spec.md §3). Uniqueness is on the full 6-tuple in Data.
type Edge struct {
	ID int64
	Data
}

// Table is the edge table, backed by store.Store.
type Table struct {
	db *store.Store
}

// New constructs a Table.
func New(db *store.Store) *Table {
	return &Table{db: db}
}

// Create returns the id of the edge for d, creating it if it does not
// already exist (idempotent on the 6-tuple, spec.md §4.3).
func (t *Table) Create(ctx context.Context, d Data) (Edge, error) {
	return store.InsertOrFetch(ctx, "edge.create",
		func(ctx context.Context) (Edge, error) {
			res, err := t.db.DB.ExecContext(ctx, insertSQL,
				d.SourceNodeID, d.SourceCoordinate, string(d.SourceStrand),
				d.TargetNodeID, d.TargetCoordinate, string(d.TargetStrand))
			if err != nil {
				return Edge{}, err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return Edge{}, err
			}
			return Edge{ID: id, Data: d}, nil
		},
		func(ctx context.Context) (Edge, error) {
			id, err := t.lookupID(ctx, d)
			if err != nil {
				return Edge{}, err
			}
			return Edge{ID: id, Data: d}, nil
		})
}

const insertSQL = `INSERT INTO edges
	(source_node_id, source_coordinate, source_strand, target_node_id, target_coordinate, target_strand)
	VALUES (?, ?, ?, ?, ?, ?)`

const lookupSQL = `SELECT id FROM edges WHERE
	source_node_id = ? AND source_coordinate = ? AND source_strand = ? AND
	target_node_id = ? AND target_coordinate = ? AND target_strand = ?`

func (t *Table) lookupID(ctx context.Context, d Data) (int64, error) {
	var id int64
	err := t.db.DB.QueryRowContext(ctx, lookupSQL,
		d.SourceNodeID, d.SourceCoordinate, string(d.SourceStrand),
		d.TargetNodeID, d.TargetCoordinate, string(d.TargetStrand)).Scan(&id)
	return id, err
}

// BulkCreate creates every edge in data (deduplicating against existing
// rows) and returns the ids in the same order as data, matching spec.md
// §4.3's "preserves input order in the returned ids."
func (t *Table) BulkCreate(ctx context.Context, data []Data) ([]int64, error) {
	ids := make([]int64, len(data))
	for i, d := range data {
		e, err := t.Create(ctx, d)
		if err != nil {
			return nil, err
		}
		ids[i] = e.ID
	}
	return ids, nil
}

// BulkLoad fetches edges for ids, in no particular order relative to ids
// (callers that need order should index the result by id).
func (t *Table) BulkLoad(ctx context.Context, ids []int64) ([]Edge, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const chunkSize = 500
	var out []Edge
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

		rows, err := t.db.DB.QueryContext(ctx,
			`SELECT id, source_node_id, source_coordinate, source_strand, target_node_id, target_coordinate, target_strand
			 FROM edges WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, storeerr.NewStore("edge.bulk_load", err)
		}
		for rows.Next() {
			e, err := scanEdge(rows)
			if err != nil {
				rows.Close()
				return nil, storeerr.NewStore("edge.bulk_load", err)
			}
			out = append(out, e)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, storeerr.NewStore("edge.bulk_load", err)
		}
		rows.Close()
	}
	return out, nil
}

// Get fetches a single edge by id.
func (t *Table) Get(ctx context.Context, id int64) (Edge, error) {
	row := t.db.DB.QueryRowContext(ctx,
		`SELECT id, source_node_id, source_coordinate, source_strand, target_node_id, target_coordinate, target_strand
		 FROM edges WHERE id = ?`, id)
	e, err := scanEdge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Edge{}, storeerr.NewNotFound("edge", "")
	}
	return e, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEdge(row scanner) (Edge, error) {
	var (
		e                          Edge
		sourceStrand, targetStrand string
	)
	if err := row.Scan(&e.ID, &e.SourceNodeID, &e.SourceCoordinate, &sourceStrand, &e.TargetNodeID, &e.TargetCoordinate, &targetStrand); err != nil {
		return Edge{}, err
	}
	e.SourceStrand = strand.Strand(sourceStrand)
	e.TargetStrand = strand.Strand(targetStrand)
	return e, nil
}

// NodeSeq is the minimal per-node information graph materialization needs:
// the node's sequence content and length. Callers assemble this from
// node.Registry.GetSequencesByNodeIDs + sequence.Sequence rather than edge
// depending on the store directly, keeping the materializer a pure function
// of its inputs.
type NodeSeq struct {
	Sequence string
	Length   int64
}

// NodeSeqsFromSequences adapts a node-id -> sequence.Sequence map (as
// returned by node.Registry.GetSequencesByNodeIDs) into the NodeSeq map
// BlocksFromEdges expects.
func NodeSeqsFromSequences(byNode map[int64]sequence.Sequence) map[int64]NodeSeq {
	out := make(map[int64]NodeSeq, len(byNode))
	for id, seq := range byNode {
		out[id] = NodeSeq{Sequence: seq.Content, Length: seq.Length}
	}
	return out
}

// GroupBlock is a maximal non-split segment of a node within a block-group
// (spec.md §3, §4.5), transient and never persisted.
type GroupBlock struct {
	ID     int64
	NodeID int64
	Start  int64
	End    int64
	Seq    string
}

type blockKey struct {
	nodeID     int64
	coordinate int64
}

// BlocksFromEdges partitions every non-terminal node touched by edges into
// GroupBlocks at the distinct coordinates that occur as a source-coordinate
// of an outbound edge or a target-coordinate of an inbound edge (spec.md
// §4.5 steps 1-4), and returns the set of synthetic boundary edges the
// reference also emits (one per boundary coordinate) for build_graph to
// additionally chain consecutive same-node blocks.
func BlocksFromEdges(nodeSeqs map[int64]NodeSeq, edges []Edge) ([]GroupBlock, []Edge, error) {
	bySource := make(map[int64][]int64) // nodeID -> sorted unique source coords
	byTarget := make(map[int64][]int64)
	nodeIDs := make(map[int64]struct{})

	for _, e := range edges {
		if e.SourceNodeID != node.StartID {
			nodeIDs[e.SourceNodeID] = struct{}{}
			bySource[e.SourceNodeID] = append(bySource[e.SourceNodeID], e.SourceCoordinate)
		}
		if e.TargetNodeID != node.EndID {
			nodeIDs[e.TargetNodeID] = struct{}{}
			byTarget[e.TargetNodeID] = append(byTarget[e.TargetNodeID], e.TargetCoordinate)
		}
	}

	// Sort node ids for determinism (the reference sorts by sequence hash
	// to exploit a disk cache's locality; block *identity* here is
	// transient per call, so any deterministic order is sufficient).
	ids := make([]int64, 0, len(nodeIDs))
	for id := range nodeIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var blocks []GroupBlock
	var boundaryEdges []Edge
	var blockID int64

	for _, nodeID := range ids {
		ns, ok := nodeSeqs[nodeID]
		if !ok {
			return nil, nil, storeerr.NewInvariant("no sequence available for node %d referenced by an edge", nodeID)
		}

		boundaries := blockBoundaries(bySource[nodeID], byTarget[nodeID], ns.Length)
		for _, b := range boundaries {
			boundaryEdges = append(boundaryEdges, Edge{
				ID: -1,
				Data: Data{
					SourceNodeID: nodeID, SourceCoordinate: b, SourceStrand: strand.Unknown,
					TargetNodeID: nodeID, TargetCoordinate: b, TargetStrand: strand.Unknown,
				},
			})
		}

		cuts := append([]int64{0}, boundaries...)
		cuts = append(cuts, ns.Length)
		for i := 0; i+1 < len(cuts); i++ {
			start, end := cuts[i], cuts[i+1]
			blocks = append(blocks, GroupBlock{
				ID: blockID, NodeID: nodeID, Start: start, End: end, Seq: ns.Sequence[start:end],
			})
			blockID++
		}
	}

	blocks = append(blocks,
		GroupBlock{ID: blockID, NodeID: node.StartID, Start: 0, End: 0, Seq: ""},
		GroupBlock{ID: blockID + 1, NodeID: node.EndID, Start: 0, End: 0, Seq: ""},
	)

	return blocks, boundaryEdges, nil
}

// blockBoundaries computes the sorted, deduplicated, intersected-with-(0,length)
// set of cut points for one node (spec.md §4.5 step 2).
func blockBoundaries(sourceCoords, targetCoords []int64, length int64) []int64 {
	set := make(map[int64]struct{})
	for _, c := range sourceCoords {
		if c > 0 && c < length {
			set[c] = struct{}{}
		}
	}
	for _, c := range targetCoords {
		if c > 0 && c < length {
			set[c] = struct{}{}
		}
	}
	out := make([]int64, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Materialize runs the full spec.md §4.5 pipeline: partition nodes into
// GroupBlocks, then build the block adjacency graph using both the real
// edges and the synthetic boundary edges BlocksFromEdges derives, so
// consecutive partitions of one node are linked in the graph exactly like
// an edge-driven arc would be.
func Materialize(nodeSeqs map[int64]NodeSeq, edges []Edge) ([]GroupBlock, *digraph.Graph, error) {
	blocks, boundaryEdges, err := BlocksFromEdges(nodeSeqs, edges)
	if err != nil {
		return nil, nil, err
	}
	allEdges := make([]Edge, 0, len(edges)+len(boundaryEdges))
	allEdges = append(allEdges, edges...)
	allEdges = append(allEdges, boundaryEdges...)
	return blocks, BuildGraph(allEdges, blocks), nil
}

// BuildGraph assembles the block adjacency graph over blocks (spec.md §4.5
// step 5): an arc is added for every edge whose source-coordinate equals a
// block's end on the source node and whose target-coordinate equals a
// block's start on the target node (including the synthetic boundary edges
// BlocksFromEdges returns, which chain consecutive same-node partitions).
func BuildGraph(edges []Edge, blocks []GroupBlock) *digraph.Graph {
	blocksByStart := make(map[blockKey]int64, len(blocks))
	blocksByEnd := make(map[blockKey]int64, len(blocks))
	for _, b := range blocks {
		blocksByStart[blockKey{b.NodeID, b.Start}] = b.ID
		blocksByEnd[blockKey{b.NodeID, b.End}] = b.ID
	}

	g := digraph.New()
	for _, b := range blocks {
		g.AddNode(b.ID)
	}
	for _, e := range edges {
		sourceID, okSource := blocksByEnd[blockKey{e.SourceNodeID, e.SourceCoordinate}]
		targetID, okTarget := blocksByStart[blockKey{e.TargetNodeID, e.TargetCoordinate}]
		if okSource && okTarget {
			g.AddEdge(sourceID, targetID)
		}
	}
	return g
}
