package store_test

import (
	"context"
	"fmt"

	"github.com/vargraph/vargraph/store"
)

func ExampleOpen() {
	ctx := context.Background()
	db, err := store.Open(ctx, store.Config{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer db.Close()

	fmt.Println(db.Config.DSN == "")
	// Output: true
}
