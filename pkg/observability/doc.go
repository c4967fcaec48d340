/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured logs.

Hooks from several sources can be merged with Combine and passed to the engine
through waypoint.WithLifecycleHooks.
*/
package observability
