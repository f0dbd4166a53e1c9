// Package transport defines the delivery port for serialized envelopes.
//
// Actual delivery over the radio link is an external collaborator's job; the
// container hands it canonical envelope bytes and, in interactive mode, may
// receive a response. Link-layer errors arrive as free-form vendor strings
// and are normalized here with table-driven matching so callers only ever
// see LINK_BUSY, LINK_UNAVAILABLE, or LINK_INTERNAL.
package transport
