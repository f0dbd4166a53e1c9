package api

import (
	"errors"
	"net/http"

	"github.com/rover-control/roverlink/internal/command"
	"github.com/rover-control/roverlink/internal/intent"
	"github.com/rover-control/roverlink/internal/mode"
	"github.com/rover-control/roverlink/internal/schema"
	"github.com/rover-control/roverlink/internal/script"
	"github.com/rover-control/roverlink/internal/transport"
)

// writeResolutionError maps the resolution/delivery error taxonomy to HTTP.
// Every branch keeps enough structure for the caller to identify the
// offending kind, mode, or field.
func writeResolutionError(w http.ResponseWriter, correlationID string, err error) {
	var modeErr *command.ModeViolationError
	if errors.As(err, &modeErr) {
		WriteError(w, correlationID, http.StatusConflict, "MODE_VIOLATION", modeErr.Error(), map[string]interface{}{
			"kind": string(modeErr.Kind),
			"mode": string(modeErr.Mode),
		})
		return
	}

	var fieldErr *schema.FieldError
	if errors.As(err, &fieldErr) {
		WriteError(w, correlationID, http.StatusBadRequest, "FIELD_ERROR", fieldErr.Error(), map[string]interface{}{
			"kind":    string(fieldErr.Kind),
			"missing": fieldErr.Missing,
			"extra":   fieldErr.Extra,
			"invalid": fieldErr.Invalid,
		})
		return
	}

	var contractErr *script.ContractError
	if errors.As(err, &contractErr) {
		WriteError(w, correlationID, http.StatusUnprocessableEntity, "SCRIPT_CONTRACT", contractErr.Error(), map[string]interface{}{
			"reason": contractErr.Reason,
			"line":   contractErr.Line,
		})
		return
	}

	switch {
	case errors.Is(err, schema.ErrUnknownKind), errors.Is(err, mode.ErrUnknownMode):
		WriteError(w, correlationID, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, intent.ErrOracleUnavailable):
		WriteError(w, correlationID, http.StatusServiceUnavailable, "ORACLE_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, transport.ErrLinkBusy):
		WriteError(w, correlationID, http.StatusServiceUnavailable, "LINK_BUSY", "Link busy, retry with backoff", nil)
	case errors.Is(err, transport.ErrLinkUnavailable):
		WriteError(w, correlationID, http.StatusServiceUnavailable, "LINK_UNAVAILABLE", "Link unavailable", nil)
	default:
		WriteError(w, correlationID, http.StatusInternalServerError, "INTERNAL", "Internal server error", map[string]interface{}{
			"original": err.Error(),
		})
	}
}
