package sequence

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vargraph/vargraph/internal/storeerr"
	"github.com/vargraph/vargraph/store"
)

// Type is the sequence alphabet, per spec.md §3.
type Type string

const (
	DNA     Type = "DNA"
	RNA     Type = "RNA"
	Protein Type = "Protein"
)

// Sequence is an immutable, content-addressed DNA/RNA/protein string, or a
// handle to one stored in an external file ("shallow" sequence).
type Sequence struct {
	Hash   string
	Type   Type
	Length int64
	Name   string

	// Content holds inline bytes for a non-shallow sequence; empty for a
	// shallow sequence (FilePath set instead).
	Content string

	// Shallow sequences reference [FileStart, FileEnd) of FilePath instead
	// of storing content inline (spec.md §3, §4.1).
	FilePath  string
	FileStart int64
	FileEnd   int64
}

// IsShallow reports whether the sequence's bytes live in an external file.
func (s Sequence) IsShallow() bool { return s.FilePath != "" }

// Store is the sequence store: a thin wrapper over store.Store plus an LRU
// cache of subsequence reads (spec.md §9 "Cache layer" — SequenceCache).
type Store struct {
	db    *store.Store
	cache *lru.Cache[cacheKey, string]
}

type cacheKey struct {
	hash       string
	start, end int64
}

// New constructs a Store backed by db. A db.Config.SequenceCacheSize <= 0
// falls back to a default of 4096 entries; the cache is a pure latency optimization per spec.md
// §9 and is never required for correctness.
func New(db *store.Store) (*Store, error) {
	size := db.Config.SequenceCacheSize
	if size <= 0 {
		size = 4096
	}
	c, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("sequence: new cache: %w", err)
	}
	return &Store{db: db, cache: c}, nil
}

// Hash computes the content hash of a sequence: SHA-256 over the sequence
// type and content, namespaced so identical bytes typed differently never
// collide (spec.md §9 "Content hashing"; see SPEC_FULL.md EXPANSION B for
// why SHA-256 from
// the standard library, not a pack dependency, is used here).
func Hash(seqType Type, content string) string {
	h := sha256.New()
	h.Write([]byte(seqType))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Intern stores content (inline) under its content hash, returning the
// existing Sequence if the hash was already present. Per spec.md §4.1 it
// fails with DuplicateHashMismatch only if an existing hash maps to
// different content — detected here by comparing length/type, since two
// distinct byte strings hashing the same is the corruption spec.md
// describes, and this is the only place that could surface.
func (s *Store) Intern(ctx context.Context, seqType Type, content string, name string) (Sequence, error) {
	hash := Hash(seqType, content)
	seq := Sequence{Hash: hash, Type: seqType, Length: int64(len(content)), Content: content, Name: name}

	return store.InsertOrFetch(ctx, "sequence.intern",
		func(ctx context.Context) (Sequence, error) {
			_, err := s.db.DB.ExecContext(ctx,
				`INSERT INTO sequences (hash, seq_type, length, content, name) VALUES (?, ?, ?, ?, ?)`,
				seq.Hash, string(seq.Type), seq.Length, seq.Content, nullString(name))
			if err != nil {
				return Sequence{}, err
			}
			return seq, nil
		},
		func(ctx context.Context) (Sequence, error) {
			existing, err := s.Lookup(ctx, hash)
			if err != nil {
				return Sequence{}, err
			}
			if existing.Length != seq.Length || existing.Type != seq.Type {
				return Sequence{}, storeerr.NewHashMismatch(hash)
			}
			return existing, nil
		})
}

// InternShallow registers a file-backed sequence without reading its
// content into memory, per spec.md §3's "Shallow sequence" concept. The
// hash is computed from (seqType, filePath, start, end) since the content
// itself is not available at registration time; get_subsequence reads are
// resolved against the file later.
func (s *Store) InternShallow(ctx context.Context, seqType Type, name, filePath string, start, end int64) (Sequence, error) {
	h := sha256.New()
	h.Write([]byte(seqType))
	h.Write([]byte{0})
	h.Write([]byte(filePath))
	fmt.Fprintf(h, ":%d-%d", start, end)
	hash := hex.EncodeToString(h.Sum(nil))

	seq := Sequence{
		Hash: hash, Type: seqType, Length: end - start, Name: name,
		FilePath: filePath, FileStart: start, FileEnd: end,
	}

	return store.InsertOrFetch(ctx, "sequence.intern_shallow",
		func(ctx context.Context) (Sequence, error) {
			_, err := s.db.DB.ExecContext(ctx,
				`INSERT INTO sequences (hash, seq_type, length, file_path, file_start, file_end, name)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				seq.Hash, string(seq.Type), seq.Length, seq.FilePath, seq.FileStart, seq.FileEnd, nullString(name))
			if err != nil {
				return Sequence{}, err
			}
			return seq, nil
		},
		func(ctx context.Context) (Sequence, error) { return s.Lookup(ctx, hash) })
}

// Lookup fetches the Sequence for hash.
func (s *Store) Lookup(ctx context.Context, hash string) (Sequence, error) {
	row := s.db.DB.QueryRowContext(ctx,
		`SELECT hash, seq_type, length, content, file_path, file_start, file_end, name FROM sequences WHERE hash = ?`, hash)
	seq, err := scanSequence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Sequence{}, storeerr.NewNotFound("sequence", hash)
	}
	if err != nil {
		return Sequence{}, storeerr.NewStore("sequence.lookup", err)
	}
	return seq, nil
}

// SequencesByHashes batch-fetches sequences for a set of hashes, mirroring
// the reference's Sequence::sequences_by_hash used by
// Node::get_sequences_by_node_ids.
func (s *Store) SequencesByHashes(ctx context.Context, hashes []string) (map[string]Sequence, error) {
	out := make(map[string]Sequence, len(hashes))
	if len(hashes) == 0 {
		return out, nil
	}

	// SQLite has a default bound-parameter limit; chunk defensively the
	// same way the reference chunks node-id IN-lists at 1000.
	const chunkSize = 500
	for start := 0; start < len(hashes); start += chunkSize {
		end := start + chunkSize
		if end > len(hashes) {
			end = len(hashes)
		}
		chunk := hashes[start:end]

		placeholders, args := inClause(chunk)
		rows, err := s.db.DB.QueryContext(ctx,
			`SELECT hash, seq_type, length, content, file_path, file_start, file_end, name FROM sequences WHERE hash IN (`+placeholders+`)`,
			args...)
		if err != nil {
			return nil, storeerr.NewStore("sequence.sequences_by_hashes", err)
		}
		for rows.Next() {
			seq, err := scanSequence(rows)
			if err != nil {
				rows.Close()
				return nil, storeerr.NewStore("sequence.sequences_by_hashes", err)
			}
			out[seq.Hash] = seq
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, storeerr.NewStore("sequence.sequences_by_hashes", err)
		}
		rows.Close()
	}
	return out, nil
}

// GetSubsequence returns content[start:end) (0-based, half-open) for the
// sequence identified by hash, reading from disk for shallow sequences.
// Reads are cached by (hash, start, end) with LRU eviction (spec.md §4.1,
// §9 "Cache layer"): the size is a tuning knob, not part of the semantic
// contract.
func (s *Store) GetSubsequence(ctx context.Context, hash string, start, end int64) (string, error) {
	key := cacheKey{hash: hash, start: start, end: end}
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	seq, err := s.Lookup(ctx, hash)
	if err != nil {
		return "", err
	}
	if start < 0 || end > seq.Length || start > end {
		return "", storeerr.NewInvariant("subsequence range [%d,%d) out of bounds for sequence %s of length %d", start, end, hash, seq.Length)
	}

	var sub string
	if seq.IsShallow() {
		sub, err = readShallow(seq, start, end)
		if err != nil {
			return "", err
		}
	} else {
		sub = seq.Content[start:end]
	}

	s.cache.Add(key, sub)
	return sub, nil
}

func readShallow(seq Sequence, start, end int64) (string, error) {
	f, err := os.Open(seq.FilePath)
	if err != nil {
		return "", storeerr.NewStore("sequence.read_shallow", err)
	}
	defer f.Close()

	buf := make([]byte, end-start)
	if _, err := f.ReadAt(buf, seq.FileStart+start); err != nil {
		return "", storeerr.NewStore("sequence.read_shallow", err)
	}
	return string(buf), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSequence(row scanner) (Sequence, error) {
	var (
		seq                          Sequence
		seqType                      string
		content, filePath, name      sql.NullString
		fileStart, fileEnd           sql.NullInt64
	)
	if err := row.Scan(&seq.Hash, &seqType, &seq.Length, &content, &filePath, &fileStart, &fileEnd, &name); err != nil {
		return Sequence{}, err
	}
	seq.Type = Type(seqType)
	seq.Content = content.String
	seq.FilePath = filePath.String
	seq.FileStart = fileStart.Int64
	seq.FileEnd = fileEnd.Int64
	seq.Name = name.String
	return seq, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func inClause(vals []string) (string, []interface{}) {
	placeholders := ""
	args := make([]interface{}, len(vals))
	for i, v := range vals {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args[i] = v
	}
	return placeholders, args
}
