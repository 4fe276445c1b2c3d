// Package health reports the state of an advancement registry and its data source.
//
// # Health Check Functions
//
//   - RegistryCheck: Inspect a built registry for cycles and dangling parents
//   - SourceCheck: Verify the configured source is reachable
//   - EndpointCheck: Verify TCP connectivity to a "host:port" or URL
//   - NetworkCheck: Verify TCP connectivity to a host and port
//   - PathCheck: Verify a file, bundle or datapack path has the right shape
//   - Combine: Reduce several checks to the worst status
//
// # Usage Example
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	overall := health.Combine(
//	    health.RegistryCheck(reg),
//	    health.SourceCheck(ctx, cfg.Source),
//	)
//	if overall.IsUnhealthy() {
//	    log.Printf("Health check failed: %s", overall.Message)
//	}
//
// # Registry Status
//
// An empty registry or one with a parent cycle is unhealthy. Dangling parents
// leave the registry usable, so they only degrade it.
//
// Combine reports the worst status among its inputs. A status it does not
// recognize counts as unhealthy.
//
// # Context and Timeouts
//
// NetworkCheck and EndpointCheck accept a context for timeout and cancellation
// control. If nil is passed, a default 5-second timeout is used.
package health
