package command

import (
	"context"
	"fmt"
	"time"

	"github.com/rover-control/roverlink/internal/envelope"
	"github.com/rover-control/roverlink/internal/mode"
	"github.com/rover-control/roverlink/internal/schema"
	"github.com/rover-control/roverlink/internal/script"
	"github.com/rover-control/roverlink/internal/telemetry"
)

// Request is one resolution attempt: intent plus mode plus continuing flag,
// all supplied by external collaborators.
type Request struct {
	Kind       schema.Kind
	Fields     map[string]string
	Mode       mode.Mode
	Continuing bool
}

// Result is a successful resolution: the validated envelope, any non-fatal
// contract findings, and whether the current mode expects a response.
type Result struct {
	Envelope        *envelope.Envelope
	Warnings        []script.Finding
	ExpectsResponse bool
}

// Resolver orchestrates mode policy, schema registry, and contract checker.
type Resolver struct {
	policy   mode.Policy
	contract *script.Contract

	auditLogger AuditLogger
	events      EventPublisher
}

// Compile-time assertion that Resolver implements ResolverPort.
var _ ResolverPort = (*Resolver)(nil)

// NewResolver creates a resolver over the given policy table and script
// contract. Both are read-only after construction, so a single resolver
// serves concurrent requests without locking.
func NewResolver(policy mode.Policy, contract *script.Contract) *Resolver {
	return &Resolver{
		policy:   policy,
		contract: contract,
	}
}

// SetAuditLogger sets the audit logger. Optional; nil disables auditing.
func (r *Resolver) SetAuditLogger(logger AuditLogger) {
	r.auditLogger = logger
}

// SetEventPublisher sets the telemetry publisher. Optional.
func (r *Resolver) SetEventPublisher(events EventPublisher) {
	r.events = events
}

// Resolve validates the request and assembles the canonical envelope.
//
// Order is fixed: mode gate, then field-shape check, then (hardware scripts
// only) the contract checker. The first fatal finding aborts; non-fatal
// findings ride along as warnings on success. Identical inputs always yield
// structurally identical results.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if !schema.IsKnown(req.Kind) {
		r.logAudit(ctx, req, "REJECTED", "UNKNOWN_KIND", time.Since(start))
		r.publishRejected(req, "UNKNOWN_KIND")
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownKind, req.Kind)
	}

	// Step 1: mode gate. Fails closed.
	if !r.policy.IsAllowed(req.Kind, req.Mode) {
		r.logAudit(ctx, req, "REJECTED", "MODE_VIOLATION", time.Since(start))
		r.publishRejected(req, "MODE_VIOLATION")
		return nil, &ModeViolationError{Kind: req.Kind, Mode: req.Mode}
	}

	// Step 2: field key set must equal the schema exactly.
	if err := schema.ValidateFields(req.Kind, req.Fields); err != nil {
		r.logAudit(ctx, req, "REJECTED", "FIELD_ERROR", time.Since(start))
		r.publishRejected(req, "FIELD_ERROR")
		return nil, err
	}

	// Step 3: contract check, hardware scripts only.
	var warnings []script.Finding
	if req.Kind == schema.KindHardwareScript {
		found, err := script.Check(r.contract, req.Fields[schema.FieldAction], req.Continuing)
		if err != nil {
			r.logAudit(ctx, req, "REJECTED", "SCRIPT_CONTRACT", time.Since(start))
			r.publishRejected(req, "SCRIPT_CONTRACT")
			return nil, err
		}
		warnings = found
	}

	// Step 4: assemble. New re-checks the key-set invariant and copies the
	// field map so the envelope cannot be mutated through the request.
	env, err := envelope.New(req.Kind, req.Fields)
	if err != nil {
		r.logAudit(ctx, req, "REJECTED", "FIELD_ERROR", time.Since(start))
		r.publishRejected(req, "FIELD_ERROR")
		return nil, err
	}

	r.logAudit(ctx, req, "SUCCESS", "SUCCESS", time.Since(start))
	r.publishResolved(req, warnings)

	return &Result{
		Envelope:        env,
		Warnings:        warnings,
		ExpectsResponse: r.policy.ExpectsResponse(req.Mode),
	}, nil
}

// logAudit writes an audit record if a logger is attached.
func (r *Resolver) logAudit(ctx context.Context, req Request, outcome, code string, latency time.Duration) {
	if r.auditLogger != nil {
		r.auditLogger.LogResolution(ctx, string(req.Kind), string(req.Mode), outcome, code, latency)
	}
}

// publishResolved publishes a commandResolved event.
func (r *Resolver) publishResolved(req Request, warnings []script.Finding) {
	if r.events == nil {
		return
	}
	data := map[string]interface{}{
		"kind": string(req.Kind),
		"mode": string(req.Mode),
		"ts":   time.Now().UTC().Format(time.RFC3339),
	}
	if len(warnings) > 0 {
		data["warnings"] = len(warnings)
	}
	// Telemetry failures never fail the resolution; the envelope is already
	// valid and the caller still gets it.
	_ = r.events.Publish(telemetry.Event{Type: telemetry.EventResolved, Data: data})
}

// publishRejected publishes a commandRejected event with the taxonomy code.
func (r *Resolver) publishRejected(req Request, code string) {
	if r.events == nil {
		return
	}
	_ = r.events.Publish(telemetry.Event{Type: telemetry.EventRejected, Data: map[string]interface{}{
		"kind": string(req.Kind),
		"mode": string(req.Mode),
		"code": code,
		"ts":   time.Now().UTC().Format(time.RFC3339),
	}})
}
