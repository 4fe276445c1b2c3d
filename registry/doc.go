// Package registry provides an immutable, name-keyed lookup table for static records.
//
// A Static table is built exactly once from a sequence of key/value entries and is
// never mutated afterwards. Every lookup is a single map access, so a table holding
// thousands of generated records answers queries in constant time and may be shared
// by any number of goroutines without locking.
//
// # Construction
//
// Build validates the entire input before returning anything:
//
//	table, err := registry.Build([]registry.Entry[*Block]{
//		{Key: "stone", Value: stone},
//		{Key: "dirt", Value: dirt},
//	})
//	if err != nil {
//		// ErrEmptyKey or ErrDuplicateKey, wrapped in *BuildError
//		log.Fatal(err)
//	}
//
// Either a complete table is returned or none at all. There is no partially built
// state visible to callers.
//
// # Lookups
//
// Two entry points read the same backing map:
//
//   - Get matches the literal key.
//   - GetNamespaced strips a known namespace prefix (default "minecraft:") first.
//
// A miss is reported through the boolean result, never through an error:
//
//	if b, ok := table.GetNamespaced("minecraft:stone"); ok {
//		fmt.Println(b.Hardness)
//	}
//
// # Lazy Initialization
//
// Lazy defers construction to the first access and guarantees it happens once,
// before any reader sees the table:
//
//	var blocks = registry.NewLazy(loadBlockEntries)
//
//	func Block(name string) (*Block, bool) {
//		return blocks.MustGet().GetNamespaced(name)
//	}
package registry
