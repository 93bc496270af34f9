// Package digraph is a small directed-graph adjacency type used internally
// by the edge materializer and the sequence enumerator: adjacency-list,
// RWMutex-guarded, directed, over int64 node identifiers with no edge
// payload.
//
// Usage:
//
//	g := digraph.New()
//	g.AddEdge(1, 2)
//	g.AddEdge(2, 3)
//	paths := g.AllSimplePaths(1, 3)
package digraph
