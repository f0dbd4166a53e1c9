package schema

import (
	"errors"
	"testing"
)

func TestKindsDeterministicAndComplete(t *testing.T) {
	want := []Kind{KindShellExec, KindHardwareScript, KindFileWrite, KindFileRead, KindImageRead}

	got := Kinds()
	if len(got) != len(want) {
		t.Fatalf("expected %d kinds, got %d: %v", len(want), len(got), got)
	}
	for _, kind := range want {
		if !IsKnown(kind) {
			t.Errorf("expected kind %q to be registered", kind)
		}
	}

	again := Kinds()
	for i := range got {
		if got[i] != again[i] {
			t.Fatalf("Kinds() order not stable: %v vs %v", got, again)
		}
	}
}

func TestIsKnownRejectsUnregistered(t *testing.T) {
	if IsKnown("launch_missiles") {
		t.Error("expected unregistered kind to be unknown")
	}
	if IsKnown("") {
		t.Error("expected empty kind to be unknown")
	}
}

func TestRequiredFields(t *testing.T) {
	tests := []struct {
		kind Kind
		want []string
	}{
		{KindShellExec, []string{FieldCommand}},
		{KindFileWrite, []string{FieldFileContent, FieldFileName}},
		{KindHardwareScript, []string{FieldAction}},
		{KindFileRead, []string{FieldFileName}},
		{KindImageRead, []string{FieldFileName}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := RequiredFields(tt.kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected fields %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected fields %v, got %v", tt.want, got)
				}
			}
		})
	}

	if _, err := RequiredFields("nope"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestValidateFieldsExactSet(t *testing.T) {
	tests := []struct {
		name        string
		kind        Kind
		fields      map[string]string
		wantOK      bool
		wantMissing []string
		wantExtra   []string
	}{
		{
			name:   "shell exec valid",
			kind:   KindShellExec,
			fields: map[string]string{FieldCommand: "ls -la"},
			wantOK: true,
		},
		{
			name:        "shell exec missing command",
			kind:        KindShellExec,
			fields:      map[string]string{},
			wantMissing: []string{FieldCommand},
		},
		{
			name:      "shell exec extra field",
			kind:      KindShellExec,
			fields:    map[string]string{FieldCommand: "ls", "timeout": "5"},
			wantExtra: []string{"timeout"},
		},
		{
			name: "file write valid",
			kind: KindFileWrite,
			fields: map[string]string{
				FieldFileName:    "notes.txt",
				FieldFileContent: "hello",
			},
			wantOK: true,
		},
		{
			name: "file write empty content allowed",
			kind: KindFileWrite,
			fields: map[string]string{
				FieldFileName:    "notes.txt",
				FieldFileContent: "",
			},
			wantOK: true,
		},
		{
			name:        "file write missing content",
			kind:        KindFileWrite,
			fields:      map[string]string{FieldFileName: "notes.txt"},
			wantMissing: []string{FieldFileContent},
		},
		{
			name:        "missing and extra together",
			kind:        KindFileRead,
			fields:      map[string]string{"path": "notes.txt"},
			wantMissing: []string{FieldFileName},
			wantExtra:   []string{"path"},
		},
		{
			name:   "image read valid",
			kind:   KindImageRead,
			fields: map[string]string{FieldFileName: "photos/pano.jpg"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFields(tt.kind, tt.fields)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("expected valid fields, got %v", err)
				}
				return
			}
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if !errors.Is(err, ErrFieldError) {
				t.Error("expected error to unwrap to ErrFieldError")
			}
			if len(fieldErr.Missing) != len(tt.wantMissing) {
				t.Errorf("expected missing %v, got %v", tt.wantMissing, fieldErr.Missing)
			}
			if len(fieldErr.Extra) != len(tt.wantExtra) {
				t.Errorf("expected extra %v, got %v", tt.wantExtra, fieldErr.Extra)
			}
		})
	}
}

func TestValidateFieldsShapeChecks(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		fields map[string]string
		field  string
	}{
		{
			name:   "blank command",
			kind:   KindShellExec,
			fields: map[string]string{FieldCommand: "   "},
			field:  FieldCommand,
		},
		{
			name:   "blank action",
			kind:   KindHardwareScript,
			fields: map[string]string{FieldAction: ""},
			field:  FieldAction,
		},
		{
			name:   "file name with newline",
			kind:   KindFileRead,
			fields: map[string]string{FieldFileName: "a\nb"},
			field:  FieldFileName,
		},
		{
			name:   "file name with NUL",
			kind:   KindImageRead,
			fields: map[string]string{FieldFileName: "a\x00b"},
			field:  FieldFileName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFields(tt.kind, tt.fields)
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if _, flagged := fieldErr.Invalid[tt.field]; !flagged {
				t.Errorf("expected field %q flagged invalid, got %+v", tt.field, fieldErr)
			}
		})
	}
}

func TestValidateFieldsUnknownKind(t *testing.T) {
	err := ValidateFields("teleport", map[string]string{})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
