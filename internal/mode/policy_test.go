package mode

import (
	"errors"
	"testing"

	"github.com/rover-control/roverlink/internal/schema"
)

func TestDefaultPolicyGating(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		kind    schema.Kind
		mode    Mode
		allowed bool
	}{
		{schema.KindShellExec, ModeInteractive, true},
		{schema.KindFileWrite, ModeInteractive, true},
		{schema.KindHardwareScript, ModeInteractive, true},
		{schema.KindFileRead, ModeInteractive, true},
		{schema.KindImageRead, ModeInteractive, true},

		{schema.KindShellExec, ModeOneWay, true},
		{schema.KindFileWrite, ModeOneWay, true},
		{schema.KindHardwareScript, ModeOneWay, true},
		{schema.KindFileRead, ModeOneWay, false},
		{schema.KindImageRead, ModeOneWay, false},
	}

	for _, tt := range tests {
		got := policy.IsAllowed(tt.kind, tt.mode)
		if got != tt.allowed {
			t.Errorf("IsAllowed(%q, %q) = %v, want %v", tt.kind, tt.mode, got, tt.allowed)
		}
	}
}

func TestIsAllowedFailsClosed(t *testing.T) {
	policy := DefaultPolicy()

	if policy.IsAllowed(schema.KindShellExec, "satellite") {
		t.Error("unknown mode must not permit any kind")
	}
	if policy.IsAllowed("unknown_kind", ModeInteractive) {
		t.Error("unlisted kind must not be permitted")
	}
	if (Policy{}).IsAllowed(schema.KindShellExec, ModeInteractive) {
		t.Error("empty policy must not permit anything")
	}
}

func TestExpectsResponse(t *testing.T) {
	policy := DefaultPolicy()

	if !policy.ExpectsResponse(ModeInteractive) {
		t.Error("interactive mode must expect responses")
	}
	if policy.ExpectsResponse(ModeOneWay) {
		t.Error("one-way mode must not expect responses")
	}
	if policy.ExpectsResponse("satellite") {
		t.Error("unknown mode must not expect responses")
	}
}

func TestAllowedKindsDeterministic(t *testing.T) {
	policy := DefaultPolicy()

	oneWay := policy.AllowedKinds(ModeOneWay)
	want := []schema.Kind{schema.KindShellExec, schema.KindHardwareScript, schema.KindFileWrite}
	if len(oneWay) != len(want) {
		t.Fatalf("expected %d one-way kinds, got %v", len(want), oneWay)
	}
	for i := range want {
		if oneWay[i] != want[i] {
			t.Errorf("expected one-way kinds %v, got %v", want, oneWay)
			break
		}
	}

	if kinds := policy.AllowedKinds("satellite"); kinds != nil {
		t.Errorf("expected nil for unknown mode, got %v", kinds)
	}
}

func TestModesDeterministic(t *testing.T) {
	policy := DefaultPolicy()

	modes := policy.Modes()
	if len(modes) != 2 {
		t.Fatalf("expected 2 modes, got %v", modes)
	}
	if modes[0] != ModeInteractive || modes[1] != ModeOneWay {
		t.Errorf("expected [interactive one_way], got %v", modes)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy must validate: %v", err)
	}

	broken := Policy{
		ModeOneWay: {
			Allowed: map[schema.Kind]bool{
				schema.KindFileRead: true,
			},
			ExpectsResponse: false,
		},
	}
	if err := broken.Validate(); err == nil {
		t.Error("expected validation failure: no-response mode allows a read kind")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Mode
	}{
		{"interactive", ModeInteractive},
		{"Interactive", ModeInteractive},
		{"  interactive ", ModeInteractive},
		{"one_way", ModeOneWay},
		{"one-way", ModeOneWay},
		{"oneway", ModeOneWay},
		{"ONE_WAY", ModeOneWay},
	}

	for _, tt := range tests {
		got, err := Parse(tt.raw)
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	for _, raw := range []string{"", "duplex", "two_way"} {
		if _, err := Parse(raw); !errors.Is(err, ErrUnknownMode) {
			t.Errorf("Parse(%q): expected ErrUnknownMode, got %v", raw, err)
		}
	}
}
