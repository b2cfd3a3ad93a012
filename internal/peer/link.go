// Package peer drives one negotiation state machine per remote
// participant. The Orchestrator reacts to membership notifications and
// relayed envelopes; each Link tracks where its handshake stands and
// queues candidates that arrive before they can be applied.
package peer

import (
	"encoding/json"

	"github.com/FarhadNuri/VC/internal/media"
)

// Role says which side of the handshake this link plays. The side that
// observes a participant-joined notification initiates; the newcomer
// responds to the offers it receives.
type Role uint8

const (
	RoleInitiator Role = iota
	RoleResponder
)

func (r Role) String() string {
	if r == RoleResponder {
		return "responder"
	}
	return "initiator"
}

// State is a link's negotiation progress.
type State uint8

const (
	StateIdle State = iota
	StateLocalOfferPending
	StateAwaitingAnswer
	StateRemoteOfferReceived
	StateLocalAnswerPending
	StateEstablished
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocalOfferPending:
		return "local-offer-pending"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateRemoteOfferReceived:
		return "remote-offer-received"
	case StateLocalAnswerPending:
		return "local-answer-pending"
	case StateEstablished:
		return "established"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Link is one per-remote negotiation state machine. All fields are
// guarded by the owning Orchestrator's mutex; a Link object is never
// reused once closed, so late async results bound to a superseded link
// are recognizable by identity.
type Link struct {
	remoteID string
	role     Role
	state    State
	session  media.Session

	// pending queues remote candidates that arrived before the
	// remote description was applied. Applying them early is an
	// ordering bug, so the gate is structural.
	pending       []json.RawMessage
	remoteApplied bool

	// answering guards against a second remote answer reaching one
	// link object while the first is still being applied.
	answering bool
}

// RemoteID returns the remote participant's connection id.
func (l *Link) RemoteID() string { return l.remoteID }

// Role returns the link's handshake role.
func (l *Link) Role() Role { return l.role }

// State returns the link's current negotiation state.
func (l *Link) State() State { return l.state }
