// Package observability lets a process watch the engine without the engine
// depending on any logging or metrics backend.
//
// Four hook families exist: [BuildHooks] for graph rebuilds, [MutationHooks]
// for structural edits, [StoreHooks] for snapshot round trips and
// [CacheHooks] for the artifact cache. Each starts out as a no-op. The
// binary installs real implementations once at startup:
//
//	observability.SetMutationHooks(myHooks)
//
// and library code reports through the accessor of the matching family:
//
//	start := time.Now()
//	observability.Mutation().OnMutationStart(ctx, "delete", path)
//	err := apply()
//	observability.Mutation().OnMutationComplete(ctx, "delete", path, time.Since(start), err)
package observability
