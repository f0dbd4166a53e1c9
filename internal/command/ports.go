// Ports (interfaces) the resolver depends on and exposes.
package command

import (
	"context"
	"time"

	"github.com/rover-control/roverlink/internal/telemetry"
)

// ResolverPort is the minimal interface the API needs from the resolver.
type ResolverPort interface {
	Resolve(ctx context.Context, req Request) (*Result, error)
}

// AuditLogger writes one record per resolution attempt.
type AuditLogger interface {
	LogResolution(ctx context.Context, kind, mode, outcome, code string, latency time.Duration)
}

// EventPublisher receives resolution events for telemetry distribution.
type EventPublisher interface {
	Publish(event telemetry.Event) error
}
