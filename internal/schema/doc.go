// Package schema defines the command kind registry for the Rover Command Container.
//
// The registry is the static table of the five command kinds, the exact field
// set each kind requires on the wire, and the per-field shape checks. A field
// set that carries an unknown key is rejected rather than silently dropped;
// silent drops have previously caused mismatched downstream execution.
package schema
