package collection_test

import (
	"context"
	"fmt"

	"github.com/vargraph/vargraph/collection"
	"github.com/vargraph/vargraph/store"
)

func ExampleCollections_Create() {
	ctx := context.Background()
	db, err := store.Open(ctx, store.Config{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer db.Close()

	collections := collection.NewCollections(db)
	c, err := collections.Create(ctx, "hg19")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(c.Name)
	// Output: hg19
}
