package strand

import "fmt"

// Strand tags the direction of traversal on a node's sequence.
type Strand string

const (
	// Forward reads bases in the sequence's stored orientation.
	Forward Strand = "forward"
	// Reverse reads the reverse complement of the stored orientation.
	Reverse Strand = "reverse"
	// Unknown is used for synthetic boundary edges (spec.md §4.5 step 5)
	// that carry no biological direction.
	Unknown Strand = "unknown"
)

// Valid reports whether s is one of the three defined values.
func (s Strand) Valid() bool {
	switch s {
	case Forward, Reverse, Unknown:
		return true
	default:
		return false
	}
}

func (s Strand) String() string { return string(s) }

// revCompTable maps an upper-case base to its complement; lookups are
// case-normalized by the caller and case is reapplied afterward.
var revCompTable = map[byte]byte{
	'A': 'T',
	'T': 'A',
	'C': 'G',
	'G': 'C',
}

// RevComp returns the reverse complement of seq, preserving case letter by
// letter and leaving 'N'/'n' untouched. It is the classical bit-4 XOR trick
// (C<->G, A<->T) from original_source/src/models/path.rs::revcomp,
// reimplemented with an explicit table for clarity since Go has no terse
// byte-literal XOR idiom as readable as the Rust original's bitwise version.
func RevComp(seq string) string {
	b := []byte(seq)
	out := make([]byte, len(b))
	for i, c := range b {
		j := len(b) - 1 - i
		upper := c
		isLower := c >= 'a' && c <= 'z'
		if isLower {
			upper = c - ('a' - 'A')
		}

		var rc byte
		switch upper {
		case 'N':
			rc = upper
		default:
			comp, ok := revCompTable[upper]
			if !ok {
				// Unknown symbol: pass through unchanged rather than panic,
				// since ambiguity codes (R, Y, W, ...) may appear in real
				// FASTA input and spec.md does not define their complement.
				comp = upper
			}
			rc = comp
		}

		if isLower {
			rc += 'a' - 'A'
		}
		out[j] = rc
	}
	return string(out)
}

// MustParse parses a string into a Strand, panicking on an invalid value.
// For call sites that have already validated the value. The store's schema
// has no CHECK constraint on strand columns, so it does not validate them.
func MustParse(s string) Strand {
	st := Strand(s)
	if !st.Valid() {
		panic(fmt.Sprintf("strand: invalid strand value %q", s))
	}
	return st
}
