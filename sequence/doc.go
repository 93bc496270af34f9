// Package sequence implements the content-addressed sequence store:
// intern/lookup by hash, batch lookup, subsequence reads (including
// "shallow" file-backed sequences), and an LRU-cached read path.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/sequence"
//
//	seqs, err := sequence.New(db)
//	seq, err := seqs.Intern(ctx, sequence.DNA, "ATCGATCG", "")
//	sub, err := seqs.GetSubsequence(ctx, seq.Hash, 2, 6)
package sequence
