// Package audit implements append-only JSONL audit logging for resolutions.
//
// Every resolution attempt, accepted or rejected, produces one record with
// the caller identity, command kind, transmission mode, outcome, and
// taxonomy code. Records are never dropped silently; write failures go to
// stderr.
package audit
