// Package serve exposes an advancement registry over gRPC.
//
// The server registers two services:
//
//   - advreg.v1.Lookup: unary Get, GetNamespaced and Children methods
//   - grpc.health.v1.Health: the standard health checking protocol, driven by
//     health.RegistryCheck on the current registry snapshot
//
// Lookup messages are google.protobuf.Struct values, so no generated code is
// needed on either side. A request is {"key": "story/root"}; a response is
// {"record": {...}} for Get and GetNamespaced and {"records": [...]} for
// Children. A key that is not in the registry yields codes.NotFound.
//
// # Usage
//
//	srv, err := serve.NewServer(serve.StaticProvider(reg),
//	    serve.WithPort(50051),
//	    serve.WithGracefulShutdown(10*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    log.Fatal(err)
//	}
//
// Clients use Client over any grpc.ClientConnInterface:
//
//	client := serve.NewClient(conn)
//	rec, err := client.GetNamespaced(ctx, "minecraft:story/root")
//
// # Server Configuration
//
//   - WithPort: Set the gRPC server port (default: 50051)
//   - WithGracefulShutdown: Set the graceful shutdown timeout (default: 30s)
//   - WithTLS: Enable TLS with certificate and key files
//   - WithLogger: Set the request logger
//   - WithMeter: Record advreg.lookup.count per request
//
// # Graceful Shutdown
//
// Serve handles SIGINT and SIGTERM and context cancellation by stopping new
// connections and waiting for active requests within the configured timeout.
package serve
