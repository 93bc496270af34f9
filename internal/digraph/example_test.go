package digraph_test

import (
	"fmt"

	"github.com/vargraph/vargraph/internal/digraph"
)

func ExampleGraph_AllSimplePaths() {
	g := digraph.New()
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.AddEdge(1, 3)

	paths := g.AllSimplePaths(1, 3)
	fmt.Println(len(paths))
	// Output: 2
}
