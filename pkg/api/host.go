package api

import "context"

// Host is the capability contract a component runtime must satisfy before
// slots can be attached to it.
//
// RequestUpdate schedules a re-render. It may render synchronously or defer the
// work; callers treat it as fire-and-forget.
//
// DispatchEvent emits a named, inspectable event carrying detail and reports
// whether the event was delivered (mirrors the DOM's return value).
type Host interface {
	RequestUpdate()
	DispatchEvent(name string, detail any) bool
}

// UpdateHooker is implemented by hosts that expose a post-render hook. The slot
// registry registers itself through it so the allocation cursor is reset
// once per completed render. Hosts without it must call Registry.Updated
// themselves.
type UpdateHooker interface {
	OnUpdated(fn func())
}

// UpdateAwaiter is implemented by hosts whose renders are deferred. It blocks
// until the render scheduled by the last RequestUpdate has committed.
type UpdateAwaiter interface {
	UpdateComplete(ctx context.Context) error
}

// EventWorkflowCompleted is the host event fired when a plan has no step left
// to run. Its detail is a map of projection name to current value.
const EventWorkflowCompleted = "WorkflowCompleted"
