package collection

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vargraph/vargraph/internal/storeerr"
	"github.com/vargraph/vargraph/store"
)

// Collection is a named container of block groups.
type Collection struct {
	Name string
}

// Sample is a named provenance root for block group cloning (spec.md §3
// "Sample tree").
type Sample struct {
	Name string
}

// Collections is the collection name registry.
type Collections struct {
	db *store.Store
}

// NewCollections constructs a Collections registry.
func NewCollections(db *store.Store) *Collections {
	return &Collections{db: db}
}

// Exists reports whether a collection with this name has been created.
func (c *Collections) Exists(ctx context.Context, name string) (bool, error) {
	var found string
	err := c.db.DB.QueryRowContext(ctx, `SELECT name FROM collections WHERE name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Create registers a new collection. Calling Create twice for the same name
// is an error, matching the reference's bare INSERT with no conflict
// handling — unlike BlockGroup/Node/Edge, collections carry no identity
// besides their name, so there is nothing to "fetch" on conflict.
func (c *Collections) Create(ctx context.Context, name string) (Collection, error) {
	if _, err := c.db.DB.ExecContext(ctx, `INSERT INTO collections (name) VALUES (?)`, name); err != nil {
		if store.IsUniqueViolation(err) {
			return Collection{}, storeerr.NewInvariant("collection %q already exists", name)
		}
		return Collection{}, storeerr.NewStore("collection.create", err)
	}
	return Collection{Name: name}, nil
}

// BulkCreate registers several collections in one transaction.
func (c *Collections) BulkCreate(ctx context.Context, names []string) ([]Collection, error) {
	out := make([]Collection, 0, len(names))
	err := c.db.Tx(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, `INSERT INTO collections (name) VALUES (?)`, name); err != nil {
				return storeerr.NewStore("collection.bulk_create", err)
			}
			out = append(out, Collection{Name: name})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureExists creates the collection if absent, idempotently, so callers
// do not have to pre-check existence themselves.
func (c *Collections) EnsureExists(ctx context.Context, name string) error {
	ok, err := c.Exists(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, err = c.db.DB.ExecContext(ctx, `INSERT INTO collections (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return storeerr.NewStore("collection.ensure_exists", err)
	}
	return nil
}

// Samples is the sample name registry, structurally identical to
// Collections but kept as a distinct type: samples and collections are
// different namespaces (spec.md §3) even though neither carries extra
// attributes.
type Samples struct {
	db *store.Store
}

// NewSamples constructs a Samples registry.
func NewSamples(db *store.Store) *Samples {
	return &Samples{db: db}
}

// Exists reports whether a sample with this name has been created.
func (s *Samples) Exists(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.db.DB.QueryRowContext(ctx, `SELECT name FROM samples WHERE name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Create registers a new sample.
func (s *Samples) Create(ctx context.Context, name string) (Sample, error) {
	if _, err := s.db.DB.ExecContext(ctx, `INSERT INTO samples (name) VALUES (?)`, name); err != nil {
		if store.IsUniqueViolation(err) {
			return Sample{}, storeerr.NewInvariant("sample %q already exists", name)
		}
		return Sample{}, storeerr.NewStore("sample.create", err)
	}
	return Sample{Name: name}, nil
}

// EnsureExists creates the sample if absent, idempotently.
func (s *Samples) EnsureExists(ctx context.Context, name string) error {
	ok, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, err = s.db.DB.ExecContext(ctx, `INSERT INTO samples (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return storeerr.NewStore("sample.ensure_exists", err)
	}
	return nil
}
