package sequence_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vargraph/vargraph/sequence"
	"github.com/vargraph/vargraph/store"
)

func newTestSequenceStore(t *testing.T) *sequence.Store {
	t.Helper()
	db, err := store.Open(context.Background(), store.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := sequence.New(db)
	require.NoError(t, err)
	return s
}

func TestInternIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestSequenceStore(t)

	a, err := s.Intern(ctx, sequence.DNA, "ATCG", "m123")
	require.NoError(t, err)

	b, err := s.Intern(ctx, sequence.DNA, "ATCG", "m123-again")
	require.NoError(t, err)

	require.Equal(t, a.Hash, b.Hash)
}

func TestInternEmptyContentAllowed(t *testing.T) {
	ctx := context.Background()
	s := newTestSequenceStore(t)

	seq, err := s.Intern(ctx, sequence.DNA, "", "deletion")
	require.NoError(t, err)
	require.Equal(t, int64(0), seq.Length)
}

func TestSameBytesDifferentTypeDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s := newTestSequenceStore(t)

	dna, err := s.Intern(ctx, sequence.DNA, "ACGT", "")
	require.NoError(t, err)
	protein, err := s.Intern(ctx, sequence.Protein, "ACGT", "")
	require.NoError(t, err)

	require.NotEqual(t, dna.Hash, protein.Hash)
}

func TestGetSubsequence(t *testing.T) {
	ctx := context.Background()
	s := newTestSequenceStore(t)

	seq, err := s.Intern(ctx, sequence.DNA, "ATCGATCGATCG", "")
	require.NoError(t, err)

	sub, err := s.GetSubsequence(ctx, seq.Hash, 2, 6)
	require.NoError(t, err)
	require.Equal(t, "CGAT", sub)
}

func TestGetSubsequenceOutOfBounds(t *testing.T) {
	ctx := context.Background()
	s := newTestSequenceStore(t)

	seq, err := s.Intern(ctx, sequence.DNA, "ATCG", "")
	require.NoError(t, err)

	_, err = s.GetSubsequence(ctx, seq.Hash, 0, 100)
	require.Error(t, err)
}

func TestShallowSequenceReadsFromDisk(t *testing.T) {
	ctx := context.Background()
	s := newTestSequenceStore(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "ref.fa")
	require.NoError(t, os.WriteFile(path, []byte("GGGGATCGATCGTTTT"), 0o600))

	seq, err := s.InternShallow(ctx, sequence.DNA, "shallow", path, 4, 12)
	require.NoError(t, err)
	require.True(t, seq.IsShallow())
	require.Equal(t, int64(8), seq.Length)

	sub, err := s.GetSubsequence(ctx, seq.Hash, 0, 8)
	require.NoError(t, err)
	require.Equal(t, "ATCGATCG", sub)
}

func TestSequencesByHashes(t *testing.T) {
	ctx := context.Background()
	s := newTestSequenceStore(t)

	a, err := s.Intern(ctx, sequence.DNA, "AAAA", "a")
	require.NoError(t, err)
	b, err := s.Intern(ctx, sequence.DNA, "TTTT", "b")
	require.NoError(t, err)

	byHash, err := s.SequencesByHashes(ctx, []string{a.Hash, b.Hash})
	require.NoError(t, err)
	require.Len(t, byHash, 2)
	require.Equal(t, "AAAA", byHash[a.Hash].Content)
	require.Equal(t, "TTTT", byHash[b.Hash].Content)
}
