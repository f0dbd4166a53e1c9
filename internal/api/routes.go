package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rover-control/roverlink/internal/audit"
	"github.com/rover-control/roverlink/internal/command"
	"github.com/rover-control/roverlink/internal/mode"
	"github.com/rover-control/roverlink/internal/schema"
)

// Version reported on the health endpoint.
const Version = "1.0.0"

// resolveRequest is the wire shape of POST /commands/resolve.
type resolveRequest struct {
	Type       string            `json:"type"`
	Fields     map[string]string `json:"fields"`
	Mode       string            `json:"mode"`
	Continuing bool              `json:"continuing,omitempty"`
}

// interpretRequest is the wire shape of POST /commands/interpret.
type interpretRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode"`
}

// decodeStrict decodes a JSON body rejecting unknown fields and trailing
// data.
func decodeStrict(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// handleResolve handles POST /commands/resolve.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	correlationID := newCorrelationID()

	var req resolveRequest
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, correlationID, http.StatusBadRequest, "BAD_REQUEST",
			"Malformed JSON, unknown fields, or trailing data", nil)
		return
	}

	requestMode, err := mode.Parse(req.Mode)
	if err != nil {
		writeResolutionError(w, correlationID, err)
		return
	}

	ctx := context.WithValue(r.Context(), audit.CorrelationKey, correlationID)
	result, err := s.resolver.Resolve(ctx, command.Request{
		Kind:       schema.Kind(req.Type),
		Fields:     req.Fields,
		Mode:       requestMode,
		Continuing: req.Continuing,
	})
	if err != nil {
		writeResolutionError(w, correlationID, err)
		return
	}

	s.writeResolved(w, ctx, correlationID, result, nil)
}

// handleInterpret handles POST /commands/interpret: prompt -> intent oracle
// -> resolver.
func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	correlationID := newCorrelationID()

	if s.oracle == nil {
		WriteError(w, correlationID, http.StatusServiceUnavailable, "ORACLE_UNAVAILABLE",
			"No intent oracle is configured", nil)
		return
	}

	var req interpretRequest
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, correlationID, http.StatusBadRequest, "BAD_REQUEST",
			"Malformed JSON, unknown fields, or trailing data", nil)
		return
	}
	if req.Prompt == "" {
		WriteError(w, correlationID, http.StatusBadRequest, "BAD_REQUEST",
			"prompt must not be empty", nil)
		return
	}

	requestMode, err := mode.Parse(req.Mode)
	if err != nil {
		writeResolutionError(w, correlationID, err)
		return
	}

	ctx := context.WithValue(r.Context(), audit.CorrelationKey, correlationID)
	parsed, err := s.oracle.ResolveIntent(ctx, req.Prompt)
	if err != nil {
		writeResolutionError(w, correlationID, err)
		return
	}

	result, err := s.resolver.Resolve(ctx, command.Request{
		Kind:       parsed.Kind,
		Fields:     parsed.Fields,
		Mode:       requestMode,
		Continuing: parsed.Continuing,
	})
	if err != nil {
		writeResolutionError(w, correlationID, err)
		return
	}

	s.writeResolved(w, ctx, correlationID, result, map[string]interface{}{
		"type":       string(parsed.Kind),
		"continuing": parsed.Continuing,
	})
}

// writeResolved serializes the envelope, hands it to the transport when one
// is attached, and writes the success payload.
func (s *Server) writeResolved(w http.ResponseWriter, ctx context.Context, correlationID string, result *command.Result, intentData map[string]interface{}) {
	canonical, err := result.Envelope.Serialize()
	if err != nil {
		writeResolutionError(w, correlationID, err)
		return
	}

	data := map[string]interface{}{
		"envelope":        result.Envelope,
		"canonical":       string(canonical),
		"expectsResponse": result.ExpectsResponse,
	}
	if len(result.Warnings) > 0 {
		data["warnings"] = result.Warnings
	}
	if intentData != nil {
		data["intent"] = intentData
	}

	if s.deliverer != nil {
		receipt, err := s.deliverer.Deliver(ctx, canonical)
		if err != nil {
			writeResolutionError(w, correlationID, err)
			return
		}
		data["delivery"] = receipt
	}

	WriteSuccess(w, correlationID, data)
}

// handleSchema handles GET /schema.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	correlationID := newCorrelationID()

	kinds := make([]map[string]interface{}, 0, len(schema.Kinds()))
	for _, kind := range schema.Kinds() {
		required, err := schema.RequiredFields(kind)
		if err != nil {
			continue
		}
		kinds = append(kinds, map[string]interface{}{
			"type":           string(kind),
			"requiredFields": required,
		})
	}

	data := map[string]interface{}{"kinds": kinds}
	if s.contract != nil {
		data["capabilities"] = s.contract.Capabilities
	}
	WriteSuccess(w, correlationID, data)
}

// handleMode handles GET /mode.
func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	correlationID := newCorrelationID()

	modes := make([]map[string]interface{}, 0, len(s.policy))
	for _, m := range s.policy.Modes() {
		modes = append(modes, map[string]interface{}{
			"mode":            string(m),
			"allowedKinds":    s.policy.AllowedKinds(m),
			"expectsResponse": s.policy.ExpectsResponse(m),
		})
	}
	WriteSuccess(w, correlationID, map[string]interface{}{"modes": modes})
}

// handleTelemetry handles GET /telemetry (SSE).
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	correlationID := newCorrelationID()

	if s.telemetry == nil {
		WriteError(w, correlationID, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Telemetry service not available", nil)
		return
	}
	if err := s.telemetry.Subscribe(r.Context(), w, r); err != nil {
		WriteError(w, correlationID, http.StatusInternalServerError, "INTERNAL",
			"Failed to subscribe to telemetry stream", nil)
	}
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	correlationID := newCorrelationID()

	uptime := 0.0
	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime).Seconds()
	}

	subsystems := map[string]bool{
		"resolver":  s.resolver != nil,
		"telemetry": s.telemetry != nil,
		"transport": s.deliverer != nil,
	}

	status := "ok"
	if !subsystems["resolver"] {
		status = "degraded"
	}

	health := map[string]interface{}{
		"status":     status,
		"uptimeSec":  uptime,
		"version":    Version,
		"subsystems": subsystems,
	}

	if status == "ok" {
		WriteSuccess(w, correlationID, health)
	} else {
		WriteError(w, correlationID, http.StatusServiceUnavailable, "SERVICE_DEGRADED",
			"One or more subsystems are unavailable", health)
	}
}
