package script

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Finding codes. Fatal reasons reject the envelope; UnknownCapability is a
// warning attached to an otherwise valid envelope.
const (
	ReasonMissingImport          = "MissingImport"
	ReasonMissingController      = "MissingController"
	ReasonMultipleControllers    = "MultipleControllers"
	ReasonCallBeforeConstruction = "CallBeforeConstruction"
	ReasonMissingCleanup         = "MissingCleanup"
	ReasonDisallowedConstruct    = "DisallowedConstruct"
	WarnUnknownCapability        = "UnknownCapability"
)

// ErrContract is the sentinel every fatal contract failure unwraps to.
var ErrContract = errors.New("SCRIPT_CONTRACT")

// Finding is a single checker observation tied to a source line (1-based).
type Finding struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line"`
}

// ContractError reports a fatal structural violation.
type ContractError struct {
	Reason string
	Detail string
	Line   int
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("SCRIPT_CONTRACT: %s: %s (line %d)", e.Reason, e.Detail, e.Line)
	}
	return fmt.Sprintf("SCRIPT_CONTRACT: %s: %s", e.Reason, e.Detail)
}

// Unwrap allows errors.Is(err, ErrContract) matching at the API boundary.
func (e *ContractError) Unwrap() error {
	return ErrContract
}

var (
	// receiver.method( matches controller invocations and wait statements
	// alike; the receiver name decides which is which.
	callPattern = regexp.MustCompile(`([A-Za-z_]\w*)\s*\.\s*([A-Za-z_]\w*)\s*\(`)
)

// controllerCall is one receiver.method invocation found in the body.
type controllerCall struct {
	method string
	line   int
}

// Check verifies body against the contract. It returns non-fatal findings
// (warnings) and the first fatal violation, if any. The body itself is never
// modified, split, or reordered.
func Check(c *Contract, body string, continuing bool) ([]Finding, error) {
	lines := strings.Split(body, "\n")

	// Denylist scan runs first: a denied construct rejects the script no
	// matter how well-formed the rest is.
	for i, line := range lines {
		for _, denied := range c.Denylist {
			if denied != "" && strings.Contains(line, denied) {
				return nil, &ContractError{
					Reason: ReasonDisallowedConstruct,
					Detail: fmt.Sprintf("construct %q is not permitted", denied),
					Line:   i + 1,
				}
			}
		}
	}

	// Invariant 1: the hardware import is the first effective line.
	importLine := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if trimmed != c.ImportStmt {
			return nil, &ContractError{
				Reason: ReasonMissingImport,
				Detail: fmt.Sprintf("first statement must be %q", c.ImportStmt),
				Line:   i + 1,
			}
		}
		importLine = i
		break
	}
	if importLine < 0 {
		return nil, &ContractError{
			Reason: ReasonMissingImport,
			Detail: fmt.Sprintf("script is empty; first statement must be %q", c.ImportStmt),
		}
	}

	// Invariant 2: exactly one controller construction.
	constructPattern := regexp.MustCompile(
		`^([A-Za-z_]\w*)\s*=\s*` + regexp.QuoteMeta(c.ControllerType) + `\s*\(\s*\)\s*(#.*)?$`)

	controllerVar := ""
	constructedAt := 0
	for i, line := range lines {
		m := constructPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if controllerVar != "" {
			return nil, &ContractError{
				Reason: ReasonMultipleControllers,
				Detail: fmt.Sprintf("controller already constructed as %q", controllerVar),
				Line:   i + 1,
			}
		}
		controllerVar = m[1]
		constructedAt = i + 1
	}
	if controllerVar == "" {
		return nil, &ContractError{
			Reason: ReasonMissingController,
			Detail: fmt.Sprintf("script never constructs a %s controller", c.ControllerType),
		}
	}

	// Collect controller invocations in source order. Calls on other
	// receivers (time.sleep between steps, for instance) pass through.
	var calls []controllerCall
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		for _, m := range callPattern.FindAllStringSubmatch(line, -1) {
			if m[1] != controllerVar {
				continue
			}
			if i+1 < constructedAt {
				return nil, &ContractError{
					Reason: ReasonCallBeforeConstruction,
					Detail: fmt.Sprintf("%s.%s called before the controller is constructed", m[1], m[2]),
					Line:   i + 1,
				}
			}
			calls = append(calls, controllerCall{method: m[2], line: i + 1})
		}
	}

	// Invariant 3: capability-set membership. Unknown methods warn; the
	// capability set may be extended externally.
	var warnings []Finding
	for _, call := range calls {
		if _, known := c.Capabilities[call.method]; !known {
			warnings = append(warnings, Finding{
				Code:    WarnUnknownCapability,
				Message: fmt.Sprintf("controller method %q is outside the documented capability set", call.method),
				Line:    call.line,
			})
		}
	}

	// Invariant 4: terminal release call, unless the script is marked
	// continuing for a follow-up command.
	if !continuing {
		if len(calls) == 0 || calls[len(calls)-1].method != c.ReleaseCall {
			return nil, &ContractError{
				Reason: ReasonMissingCleanup,
				Detail: fmt.Sprintf("final controller call must be %q when the script is not continuing", c.ReleaseCall),
			}
		}
	}

	return warnings, nil
}
