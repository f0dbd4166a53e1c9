// Package envelope defines the validated command unit and its canonical wire form.
//
// An Envelope is constructed once per request, after mode and schema
// validation, and is never mutated afterwards. Serialization is a
// deterministic, total function over well-formed envelopes: the two-level
// shape is a kind discriminator plus a flat field mapping, with field keys
// emitted in sorted order.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rover-control/roverlink/internal/schema"
)

// ErrMalformed indicates bytes that do not parse as a canonical envelope.
var ErrMalformed = errors.New("MALFORMED_ENVELOPE")

// Envelope is the validated, ready-to-emit command unit.
type Envelope struct {
	Kind   schema.Kind       `json:"type"`
	Fields map[string]string `json:"fields"`
}

// New builds an envelope from a kind and raw fields, enforcing the invariant
// that the field key set exactly equals the schema for the kind. The field
// map is copied; callers keep ownership of theirs.
func New(kind schema.Kind, fields map[string]string) (*Envelope, error) {
	if err := schema.ValidateFields(kind, fields); err != nil {
		return nil, err
	}
	copied := make(map[string]string, len(fields))
	for name, value := range fields {
		copied[name] = value
	}
	return &Envelope{Kind: kind, Fields: copied}, nil
}

// Serialize renders the envelope as canonical JSON. encoding/json emits map
// keys in sorted order, which keeps the output byte-identical for
// structurally identical envelopes.
func (e *Envelope) Serialize() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize envelope: %w", err)
	}
	return data, nil
}

// Parse decodes canonical envelope bytes, rejecting unknown fields and
// trailing data, and re-validates the schema invariant.
func Parse(data []byte) (*Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var e Envelope
	if err := dec.Decode(&e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after envelope", ErrMalformed)
	}
	if err := schema.ValidateFields(e.Kind, e.Fields); err != nil {
		return nil, err
	}
	return &e, nil
}
