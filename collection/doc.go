// Package collection is the name registry for collections and samples: the
// two top-level namespaces a block group's identity is scoped under.
// Sample is modeled as Collection's structural twin, a bare name-keyed
// entity with no attributes beyond its name.
//
// Usage:
//
//	import "github.com/vargraph/vargraph/collection"
//
//	collections := collection.NewCollections(db)
//	c, err := collections.Create(ctx, "hg19")
package collection
