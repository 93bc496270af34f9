// Package strand defines the three-way Forward/Reverse/Unknown tag used on
// every edge endpoint and the reverse-complement transform paths use when
// traversing a node backward.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/strand"
//
//	s := strand.Forward
//	rc := strand.RevComp("ATCG") // "CGAT"
package strand
