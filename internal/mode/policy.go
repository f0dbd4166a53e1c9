package mode

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rover-control/roverlink/internal/schema"
)

// Mode identifies the transmission channel capability. It is supplied by the
// caller per request; the core never infers it.
type Mode string

const (
	// ModeInteractive is a two-way link; the actuator returns responses.
	ModeInteractive Mode = "interactive"
	// ModeOneWay is a transmit-only link; no response ever comes back.
	ModeOneWay Mode = "one_way"
)

// ErrUnknownMode indicates a mode string outside the fixed set.
var ErrUnknownMode = errors.New("UNKNOWN_MODE")

// Rule describes what a single mode permits.
type Rule struct {
	Allowed         map[schema.Kind]bool
	ExpectsResponse bool
}

// Policy maps each transmission mode to its rule. Immutable after
// construction; safe for concurrent readers.
type Policy map[Mode]Rule

// DefaultPolicy returns the standard policy table. One-way mode excludes the
// kinds whose contract requires a return value (read_file, read_image).
func DefaultPolicy() Policy {
	return Policy{
		ModeInteractive: {
			Allowed: map[schema.Kind]bool{
				schema.KindShellExec:      true,
				schema.KindFileWrite:      true,
				schema.KindHardwareScript: true,
				schema.KindFileRead:       true,
				schema.KindImageRead:      true,
			},
			ExpectsResponse: true,
		},
		ModeOneWay: {
			Allowed: map[schema.Kind]bool{
				schema.KindShellExec:      true,
				schema.KindFileWrite:      true,
				schema.KindHardwareScript: true,
			},
			ExpectsResponse: false,
		},
	}
}

// IsAllowed reports whether kind is permitted under mode. Pure lookup, fails
// closed: unknown modes and unlisted kinds are disallowed.
func (p Policy) IsAllowed(kind schema.Kind, mode Mode) bool {
	rule, ok := p[mode]
	if !ok {
		return false
	}
	return rule.Allowed[kind]
}

// ExpectsResponse reports whether the actuator answers under mode. Unknown
// modes expect nothing.
func (p Policy) ExpectsResponse(mode Mode) bool {
	rule, ok := p[mode]
	if !ok {
		return false
	}
	return rule.ExpectsResponse
}

// AllowedKinds returns the kinds permitted under mode in deterministic order.
func (p Policy) AllowedKinds(mode Mode) []schema.Kind {
	rule, ok := p[mode]
	if !ok {
		return nil
	}
	kinds := make([]schema.Kind, 0, len(rule.Allowed))
	for kind, allowed := range rule.Allowed {
		if allowed {
			kinds = append(kinds, kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Modes returns the modes the policy covers in deterministic order.
func (p Policy) Modes() []Mode {
	modes := make([]Mode, 0, len(p))
	for m := range p {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// Validate enforces the structural invariant on the table: a mode that does
// not expect responses must not permit any kind whose contract requires a
// return value.
func (p Policy) Validate() error {
	responseKinds := map[schema.Kind]bool{
		schema.KindFileRead:  true,
		schema.KindImageRead: true,
	}
	for m, rule := range p {
		if rule.ExpectsResponse {
			continue
		}
		for kind := range responseKinds {
			if rule.Allowed[kind] {
				return fmt.Errorf("mode %q cannot allow %q: kind requires a return value", m, kind)
			}
		}
	}
	return nil
}

// Parse normalizes a mode string from the wire. Accepts hyphen and case
// variants ("one-way", "OneWay") but always returns the canonical value.
func Parse(raw string) (Mode, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case string(ModeInteractive):
		return ModeInteractive, nil
	case string(ModeOneWay), "oneway":
		return ModeOneWay, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}
