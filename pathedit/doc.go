// Package pathedit is the path-relative splice algorithm: given a single
// edit expressed in one path's own coordinate space, it derives the new
// graph edges that splice the edit's replacement block into the block
// group's DAG without touching any other path sharing the same nodes.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/pathedit"
//
//	res, err := pathedit.SetUpNewEdges(change, tree)
//	// res.Edges[:res.WalkLen] are the edited path's own new walk edges.
package pathedit
