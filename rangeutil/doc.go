// Package rangeutil implements half-open integer ranges and the
// cross-path range mappings produced by path.FindBlockMappings, including
// the origin-wraparound overlap case circular genome representations need.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/rangeutil"
//
//	a := rangeutil.Range{Start: 6, End: 19}
//	b := rangeutil.Range{Start: 0, End: 13}
//	overlaps := a.Overlap(b) // [{6 13}]
package rangeutil
