// Package telemetry implements the SSE event hub for the Rover Command Container.
//
// The hub fans resolution events (commandResolved, commandRejected) out to
// subscribed clients over Server-Sent Events, keeps a bounded replay buffer
// keyed by monotonic event IDs, and emits periodic heartbeats so operators
// can tell a quiet link from a dead one.
package telemetry
