// Package api implements the HTTP JSON surface of the Rover Command Container.
//
// Endpoints under /api/v1: commands/resolve and commands/interpret (operator
// scope), schema and mode (read scope), telemetry (SSE, telemetry scope),
// and health (open). Requests are decoded strictly: unknown fields and
// trailing data are caller errors. Every response carries a correlation ID.
package api
