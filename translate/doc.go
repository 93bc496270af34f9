// Package translate projects external interval annotations (BED/GFF style
// records) onto per-node coordinates after a block-group's reference path
// has been edited: materialize a path's blocks once, then for every input
// record scan those blocks for overlaps and clip to the block's own range.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/translate"
//
//	ranges := translate.Translate(blocks, 2, 10)
package translate
