package strand_test

import (
	"fmt"

	"github.com/vargraph/vargraph/strand"
)

func ExampleRevComp() {
	fmt.Println(strand.RevComp("ATCG"))
	// Output: CGAT
}

func ExampleStrand_Valid() {
	fmt.Println(strand.Forward.Valid())
	fmt.Println(strand.Strand("diagonal").Valid())
	// Output:
	// true
	// false
}
