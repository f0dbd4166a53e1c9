package transport

import "context"

// Receipt is what a delivery attempt yields. Response is only ever populated
// on two-way links.
type Receipt struct {
	Acknowledged bool   `json:"acknowledged"`
	Response     []byte `json:"response,omitempty"`
}

// Deliverer hands a serialized envelope to the link layer. Implementations
// own all I/O, timeouts, and retry behavior; the container makes no delivery
// guarantee of its own.
type Deliverer interface {
	Deliver(ctx context.Context, payload []byte) (*Receipt, error)
}
