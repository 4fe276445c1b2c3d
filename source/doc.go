// Package source supplies advancement records to the registry.
//
// A Source is the external loader that feeds advancement.New. The registry itself
// never performs I/O; every format and transport lives here:
//
//   - Embedded: the vanilla data set compiled into the binary
//   - File / Reader: JSON or YAML documents
//   - Datapack: data/<namespace>/advancement/**.json trees in an fs.FS
//   - Bundle: protobuf-encoded binary bundles (see EncodeBundle)
//   - Redis: a hash of id -> record JSON
//   - Etcd: generations under /{prefix}/advancements/gen/, switched atomically
//
// Sources return records in a deterministic order so that repeated builds
// resolve identically. Redis and Etcd also implement Watcher, which reports
// content changes so that callers can build a fresh registry snapshot.
//
// Example:
//
//	src, err := source.FromConfig(ctx, cfg.Source)
//	if err != nil {
//		return err
//	}
//	records, err := src.Load(ctx)
package source
