// Package command implements the command resolver for the Rover Command Container.
//
// The resolver takes a caller's structured intent (kind + raw fields), the
// current transmission mode, and the continuing flag, runs the mode gate,
// the schema field check, and (for hardware scripts) the contract checker,
// then assembles the canonical envelope. Resolution is deterministic and
// side-effect-free apart from audit records and telemetry events; failures
// are always reported to the caller, never corrected or retried here.
package command
