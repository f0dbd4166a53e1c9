// Package script implements static structural checks on hardware script bodies.
//
// A basic_action command carries a small controller script that the actuator
// executes against the rover hardware. The checker never runs the script; it
// verifies line-oriented structural invariants (import first, exactly one
// controller construction, capability-set membership, terminal release call)
// and leaves the statement ordering untouched. Ordering in the source text is
// authoritative and travels verbatim in the envelope.
package script
