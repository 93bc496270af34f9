// Package storeerr defines the typed error kinds shared across the storage
// engine, per the error taxonomy in spec.md §7. Packages return these types
// rather than ad-hoc strings so callers can branch with errors.As/errors.Is.
//
// Error policy mirrors the teacher's sentinel convention (builder/errors.go,
// matrix/errors.go in the lvlath pack): sentinels carry no dynamic data,
// concrete error types carry context, and every constructor here is the only
// place a given kind is built.
package storeerr

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrDuplicateHash is the sentinel wrapped by HashMismatch; callers that only
// care about the class of error (not the specific hash) can match on it.
var ErrDuplicateHash = errors.New("storeerr: content hash collision")

// NotFound reports that a referenced entity (block-group, path, node,
// sequence, ...) does not exist. Maps to spec.md's LookupError.
type NotFound struct {
	Kind string // e.g. "block_group", "path", "node", "sequence"
	Key  string // human-readable key, e.g. "collection=x sample=y name=z"
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("storeerr: %s not found: %s", e.Kind, e.Key)
}

// NewNotFound constructs a NotFound for the given kind/key.
func NewNotFound(kind, key string) error {
	return &NotFound{Kind: kind, Key: key}
}

// Invariant reports that a write would violate a data-model invariant from
// spec.md §3 (e.g. consecutive path edges not sharing a node, strand
// mismatch on a traversed node). Maps to spec.md's InvariantViolation.
//
// Invariant errors are always fatal programmer errors per spec.md §4.6 — the
// core does not attempt to recover from them.
type Invariant struct {
	Msg string
}

func (e *Invariant) Error() string {
	return "storeerr: invariant violated: " + e.Msg
}

// NewInvariant constructs an Invariant with a formatted message.
func NewInvariant(format string, args ...interface{}) error {
	return &Invariant{Msg: fmt.Sprintf(format, args...)}
}

// Store wraps an I/O or constraint failure from the backing store that is
// not a recognized idempotent-create uniqueness race. Maps to spec.md's
// StoreError.
type Store struct {
	Op  string
	Err error
}

func (e *Store) Error() string {
	return fmt.Sprintf("storeerr: store operation %q failed: %v", e.Op, e.Err)
}

func (e *Store) Unwrap() error { return e.Err }

// NewStore wraps err as a Store error attributed to op. Returns nil if err
// is nil, so call sites can write `return storeerr.NewStore("op", err)`
// unconditionally after a fallible call.
func NewStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Store{Op: op, Err: err}
}

// HashMismatch reports that two distinct contents hashed to the same
// identifier — a corruption signal, always fatal. Maps to spec.md's
// DuplicateHashMismatch.
type HashMismatch struct {
	Hash string
}

func (e *HashMismatch) Error() string {
	return fmt.Sprintf("storeerr: hash %q maps to conflicting content: %v", e.Hash, ErrDuplicateHash)
}

func (e *HashMismatch) Unwrap() error { return ErrDuplicateHash }

// NewHashMismatch constructs a HashMismatch for the given hash.
func NewHashMismatch(hash string) error {
	return &HashMismatch{Hash: hash}
}

// FormatID renders an int64 id as a NotFound key.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
