// Package media wraps the point-to-point audio transport. The peer
// package only sees the interfaces here; negotiation payloads stay
// opaque json blobs on both sides of the boundary.
package media

import (
	"context"
	"encoding/json"
)

// State reflects the underlying transport session's connection status.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Callbacks receive asynchronous session events. All fields are
// optional; they may fire from transport-internal goroutines.
type Callbacks struct {
	// OnCandidate fires for each locally gathered candidate blob
	// (trickle).
	OnCandidate func(candidate json.RawMessage)

	// OnStateChange fires when the session's connection status moves.
	OnStateChange func(state State)

	// OnRemoteTrack fires when the remote side's audio arrives.
	OnRemoteTrack func(track RemoteTrack)
}

// Session is one point-to-point media session under negotiation or
// established. Description and candidate blobs are opaque.
type Session interface {
	// CreateOffer produces and applies the local offer, returning it
	// for relaying.
	CreateOffer(ctx context.Context) (json.RawMessage, error)

	// Answer applies the remote offer, then produces and applies the
	// local answer, returning it for relaying.
	Answer(ctx context.Context, offer json.RawMessage) (json.RawMessage, error)

	// AcceptAnswer applies the remote answer to a session that
	// offered.
	AcceptAnswer(answer json.RawMessage) error

	// AddCandidate applies a remote candidate blob. Callers must not
	// invoke it before the remote description has been applied.
	AddCandidate(candidate json.RawMessage) error

	Close() error
}

// RemoteTrack is an inbound audio track.
type RemoteTrack interface {
	ID() string
	Read(b []byte) (int, error)
}

// Sink consumes one remote track until closed.
type Sink interface {
	Close() error
}

// Factory builds sessions and sinks. One factory is shared by all of
// a participant's links; the local source it carries is shared too,
// which is what makes mute a single switch.
type Factory interface {
	NewSession(cb Callbacks) (Session, error)
	NewSink(track RemoteTrack) Sink
}
