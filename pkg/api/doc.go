// Package api contains the contracts shared by the hookflow packages: the
// capabilities a host must provide, the Workflow interface, history and plan
// types, errors and observers.
//
// Most users interact with the higher-level hookflow package, which
// re-exports the types defined here. The api package is intended for custom
// hosts, custom observers and contributors extending the engine.
//
// # Hosts
//
// A Host is the component runtime that owns state. It must be able to
// schedule a re-render (RequestUpdate) and emit named events
// (DispatchEvent). Hosts that can run a callback after each render
// implement UpdateHooker; hosts whose renders are deferred implement
// UpdateAwaiter.
//
// # Workflows
//
// A Workflow coordinates named projections. Activities are qualified
// actions of the form "projection.action", or "*.action" to reach every
// projection. Every operation is appended to the workflow history, which
// deadline guards registered with After are matched against.
//
// # Observability
//
// The Observer interface reports activity dispatches, compensations,
// deadline outcomes and completed plans. LoggingObserver writes them with
// log/slog, BasicMetrics counts them and CompositeObserver fans them out.
package api
