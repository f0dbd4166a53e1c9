package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a command kind by its wire discriminator.
type Kind string

// The five command kinds. The set is fixed; adding a kind means adding a
// registry row and an executor on the actuator side.
const (
	KindShellExec      Kind = "bash_command"
	KindFileWrite      Kind = "edit_file"
	KindHardwareScript Kind = "basic_action"
	KindFileRead       Kind = "read_file"
	KindImageRead      Kind = "read_image"
)

// Field name constants shared across kinds.
const (
	FieldCommand     = "command"
	FieldFileName    = "file_name"
	FieldFileContent = "file_content"
	FieldAction      = "action"
)

// Sentinel errors for registry lookups and validation.
var (
	ErrUnknownKind = errors.New("UNKNOWN_KIND")
	ErrFieldError  = errors.New("FIELD_ERROR")
)

// fieldCheck validates a single field value. Returns a human-readable reason
// when the value is malformed, empty string otherwise.
type fieldCheck func(value string) string

// kindSchema describes the exact field set for one command kind.
type kindSchema struct {
	required []string
	checks   map[string]fieldCheck
}

// registry is the static schema table. Read-only after init.
var registry = map[Kind]kindSchema{
	KindShellExec: {
		required: []string{FieldCommand},
		checks: map[string]fieldCheck{
			FieldCommand: nonEmptyText,
		},
	},
	KindFileWrite: {
		required: []string{FieldFileContent, FieldFileName},
		checks: map[string]fieldCheck{
			FieldFileName: pathLike,
			// file_content may legitimately be empty (truncating a file).
		},
	},
	KindHardwareScript: {
		required: []string{FieldAction},
		checks: map[string]fieldCheck{
			FieldAction: nonEmptyText,
		},
	},
	KindFileRead: {
		required: []string{FieldFileName},
		checks: map[string]fieldCheck{
			FieldFileName: pathLike,
		},
	},
	KindImageRead: {
		required: []string{FieldFileName},
		checks: map[string]fieldCheck{
			FieldFileName: pathLike,
		},
	},
}

// FieldError reports missing, superfluous, or malformed fields for a kind.
type FieldError struct {
	Kind    Kind
	Missing []string
	Extra   []string
	Invalid map[string]string // field name -> reason
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing fields %v", e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unknown fields %v", e.Extra))
	}
	for _, name := range sortedKeys(e.Invalid) {
		parts = append(parts, fmt.Sprintf("invalid field %q: %s", name, e.Invalid[name]))
	}
	if len(parts) == 0 {
		parts = append(parts, "invalid field set")
	}
	return fmt.Sprintf("FIELD_ERROR: kind %q: %s", e.Kind, strings.Join(parts, "; "))
}

// Unwrap allows errors.Is(err, ErrFieldError) matching at the API boundary.
func (e *FieldError) Unwrap() error {
	return ErrFieldError
}

// Kinds returns all registered command kinds in deterministic order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// IsKnown reports whether kind is a registered command kind.
func IsKnown(kind Kind) bool {
	_, ok := registry[kind]
	return ok
}

// RequiredFields returns the exact field name set kind requires, sorted.
func RequiredFields(kind Kind) ([]string, error) {
	entry, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	required := make([]string, len(entry.required))
	copy(required, entry.required)
	sort.Strings(required)
	return required, nil
}

// ValidateFields checks that fields' key set exactly equals the schema for
// kind and that every value passes its shape check. Both missing and
// superfluous keys fail validation.
func ValidateFields(kind Kind, fields map[string]string) error {
	entry, ok := registry[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	fieldErr := &FieldError{Kind: kind}

	requiredSet := make(map[string]bool, len(entry.required))
	for _, name := range entry.required {
		requiredSet[name] = true
		if _, present := fields[name]; !present {
			fieldErr.Missing = append(fieldErr.Missing, name)
		}
	}
	for name := range fields {
		if !requiredSet[name] {
			fieldErr.Extra = append(fieldErr.Extra, name)
		}
	}
	sort.Strings(fieldErr.Missing)
	sort.Strings(fieldErr.Extra)

	// Shape checks only run for fields that are actually present.
	for name, check := range entry.checks {
		value, present := fields[name]
		if !present || check == nil {
			continue
		}
		if reason := check(value); reason != "" {
			if fieldErr.Invalid == nil {
				fieldErr.Invalid = make(map[string]string)
			}
			fieldErr.Invalid[name] = reason
		}
	}

	if len(fieldErr.Missing) > 0 || len(fieldErr.Extra) > 0 || len(fieldErr.Invalid) > 0 {
		return fieldErr
	}
	return nil
}

// nonEmptyText rejects values that are empty or whitespace only.
func nonEmptyText(value string) string {
	if strings.TrimSpace(value) == "" {
		return "must be non-empty text"
	}
	return ""
}

// pathLike rejects values that cannot name a file on the actuator.
func pathLike(value string) string {
	if strings.TrimSpace(value) == "" {
		return "must be a non-empty path"
	}
	if strings.ContainsRune(value, '\x00') {
		return "must not contain NUL bytes"
	}
	if strings.ContainsAny(value, "\r\n") {
		return "must not contain line breaks"
	}
	return ""
}

// sortedKeys returns the keys of m in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
