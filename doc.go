// Package advreg provides a static, read-only registry of advancement records.
//
// Records are loaded once from a source, indexed into an immutable table and
// then looked up by name any number of times from any goroutine. The table is
// never mutated after construction; a reload produces a new snapshot.
//
// # Core Concepts
//
//   - Record: one advancement (id, optional parent, telemetry flag, display payload)
//   - Source: the external loader that supplies records (embedded, file, datapack,
//     bundle, Redis, etcd)
//   - Registry: the immutable table with literal (Get) and namespaced
//     (GetNamespaced) lookup plus parent/child navigation
//   - Live: an atomically swapped current snapshot for sources that change
//
// # Getting Started
//
// The vanilla data set is compiled in and built on first use:
//
//	rec, ok := advreg.GetNamespaced("minecraft:story/mine_stone")
//	if ok {
//		parent, _ := advreg.Default().Parent(rec)
//		fmt.Println(parent.ID) // story/root
//	}
//
// Other sources are opened explicitly. Construction errors are fatal:
//
//	reg, err := advreg.Open(ctx, source.File("advancements.yaml"),
//		advreg.WithLogger(logger),
//		advreg.WithStrictParents(),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Live Reload
//
//	live, err := advreg.NewLive(ctx, redisSource)
//	if err != nil {
//		log.Fatal(err)
//	}
//	go live.Watch(ctx)
//	rec, ok := live.Registry().Get("story/root")
//
// A failed rebuild keeps the previous snapshot.
//
// # Error Handling
//
// Construction errors are returned as *Error with a Kind (source, build,
// integrity, configuration, not_found) and can be matched with errors.Is
// against the sentinels in this package or in the registry and advancement
// packages. Lookups never return errors; a miss is (nil, false).
//
// # Observability
//
// Open starts an OpenTelemetry span "advreg.open" and, when a meter is
// configured, records advreg.build.duration and advreg.records.
package advreg
