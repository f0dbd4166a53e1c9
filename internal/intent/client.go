// Package intent defines the port to the external intent oracle.
//
// The oracle maps free text to a structured command intent. It is a black
// box: the container checks only that the reply parses into a (kind, fields,
// continuing) triple and leaves everything else to the resolver. Correcting
// a rejected intent (for instance, regenerating a script) is the oracle's
// job, re-invoked by the caller.
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rover-control/roverlink/internal/schema"
)

// ErrOracleUnavailable indicates the oracle endpoint could not be reached or
// answered with a non-200 status.
var ErrOracleUnavailable = errors.New("ORACLE_UNAVAILABLE")

// Intent is the oracle's structured output for one prompt.
type Intent struct {
	Kind       schema.Kind       `json:"type"`
	Fields     map[string]string `json:"fields"`
	Continuing bool              `json:"continuing,omitempty"`
}

// Oracle resolves free text to a command intent.
type Oracle interface {
	ResolveIntent(ctx context.Context, prompt string) (*Intent, error)
}

// HTTPOracle talks to an intent service over HTTP JSON.
type HTTPOracle struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPOracle creates an oracle client for the given base URL. A zero
// timeout falls back to 120 seconds; language models are slow.
func NewHTTPOracle(baseURL string, timeout time.Duration) *HTTPOracle {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPOracle{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ResolveIntent posts the prompt and decodes the intent reply.
func (o *HTTPOracle) ResolveIntent(ctx context.Context, prompt string) (*Intent, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/interpret", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: oracle returned status %d", ErrOracleUnavailable, resp.StatusCode)
	}

	var out Intent
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode intent reply: %w", err)
	}
	if out.Fields == nil {
		out.Fields = map[string]string{}
	}
	return &out, nil
}
