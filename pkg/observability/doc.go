/*
Package observability turns pipeline and playback lifecycle events into logs and
Prometheus metrics.

Hooks from several sources are merged with Combine and handed to the pipeline
through viben.WithLifecycleHooks.
*/
package observability
