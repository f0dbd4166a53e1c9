package transport

import (
	"errors"
	"fmt"
	"strings"
)

// Normalized link error codes.
var (
	ErrLinkBusy        = errors.New("LINK_BUSY")
	ErrLinkUnavailable = errors.New("LINK_UNAVAILABLE")
	ErrLinkInternal    = errors.New("LINK_INTERNAL")
)

// linkTokenMap groups the vendor error tokens that map to each normalized
// code. Matching is case-insensitive substring matching; unknown tokens fall
// through to LINK_INTERNAL.
type linkTokenMap struct {
	Busy        []string
	Unavailable []string
}

// linkErrorTokens covers the radio modules the rover has shipped with. Add
// tokens here rather than matching ad hoc at call sites.
var linkErrorTokens = linkTokenMap{
	Busy: []string{
		"CHANNEL_BUSY",
		"TX_IN_PROGRESS",
		"DUTY_CYCLE_LIMIT",
		"RATE_LIMITED",
		"QUEUE_FULL",
	},
	Unavailable: []string{
		"NO_LINK",
		"LINK_DOWN",
		"MODULE_OFFLINE",
		"NOT_INITIALIZED",
		"SERIAL_DISCONNECTED",
		"TIMEOUT",
	},
}

// LinkError wraps a vendor link error with its normalized code.
type LinkError struct {
	Code     error
	Original error
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	return fmt.Sprintf("%v (link: %v)", e.Code, e.Original)
}

// Unwrap exposes the normalized code for errors.Is matching.
func (e *LinkError) Unwrap() error {
	return e.Code
}

// NormalizeLinkError maps a vendor link error to a normalized code using the
// token tables. nil passes through.
func NormalizeLinkError(vendorErr error) error {
	if vendorErr == nil {
		return nil
	}

	msg := strings.ToUpper(vendorErr.Error())
	code := ErrLinkInternal
	for _, token := range linkErrorTokens.Busy {
		if strings.Contains(msg, token) {
			code = ErrLinkBusy
		}
	}
	for _, token := range linkErrorTokens.Unavailable {
		if strings.Contains(msg, token) {
			code = ErrLinkUnavailable
		}
	}

	return &LinkError{Code: code, Original: vendorErr}
}
