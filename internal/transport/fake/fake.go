// Package fake provides an in-memory Deliverer for tests and local runs.
package fake

import (
	"context"
	"sync"

	"github.com/rover-control/roverlink/internal/transport"
)

// Loopback records delivered payloads and returns a canned receipt. Safe for
// concurrent use.
type Loopback struct {
	mu         sync.Mutex
	delivered  [][]byte
	nextErr    error
	ackPayload []byte
}

// NewLoopback creates a loopback deliverer that acknowledges every delivery.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Deliver records the payload. When a failure is queued via FailNext, it is
// returned (normalized) instead, then cleared.
func (l *Loopback) Deliver(ctx context.Context, payload []byte) (*transport.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.nextErr != nil {
		err := l.nextErr
		l.nextErr = nil
		return nil, transport.NormalizeLinkError(err)
	}

	copied := make([]byte, len(payload))
	copy(copied, payload)
	l.delivered = append(l.delivered, copied)

	return &transport.Receipt{Acknowledged: true, Response: l.ackPayload}, nil
}

// FailNext makes the next Deliver call fail with err.
func (l *Loopback) FailNext(err error) {
	l.mu.Lock()
	l.nextErr = err
	l.mu.Unlock()
}

// SetResponse sets the response bytes attached to subsequent receipts.
func (l *Loopback) SetResponse(response []byte) {
	l.mu.Lock()
	l.ackPayload = response
	l.mu.Unlock()
}

// Delivered returns a copy of all recorded payloads, oldest first.
func (l *Loopback) Delivered() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, len(l.delivered))
	for i, payload := range l.delivered {
		out[i] = append([]byte(nil), payload...)
	}
	return out
}
