// Package types holds small value types shared across advreg packages.
//
// # Health Types
//
// HealthStatus describes the state of a registry or a data source:
//
//	status := types.NewHealthyStatus("72 advancements loaded")
//	if status.IsHealthy() {
//	    // Registry is fully consistent
//	}
//
//	degraded := types.NewDegradedStatus("dangling parents", map[string]any{
//	    "dangling": 2,
//	})
//
// Degraded registries still answer lookups; Serving reports that.
package types
