// Package advancement defines advancement records and an immutable registry over them.
//
// An advancement is identified by a namespaced id such as "minecraft:story/mine_stone"
// or the bare form "story/mine_stone". Records link to their parent by id, forming
// disjoint trees rooted at records without a parent.
//
// # Building
//
// A Registry is built once from records supplied by a loader (see package source):
//
//	reg, err := advancement.New(records,
//		advancement.WithLogger(logger),
//		advancement.WithSource("embedded"),
//	)
//	if err != nil {
//		return err // duplicate or empty id, or a strict-mode integrity failure
//	}
//
// Dangling parents are logged and reported by Validate but do not prevent
// construction unless WithStrictParents is set. Parent cycles are only fatal with
// WithTreeCheck, since plain lookups are unaffected by them.
//
// # Lookups
//
//	rec, ok := reg.GetNamespaced("minecraft:story/mine_stone")
//	if ok {
//		parent, _ := reg.Parent(rec)
//		fmt.Println(rec.ID, "->", parent.ID)
//	}
//
// Records returned by the registry are shared and must be treated as read-only.
package advancement
