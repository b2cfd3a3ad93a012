package session

import (
	"github.com/rs/zerolog"

	"github.com/FarhadNuri/VC/internal/peer"
	"github.com/FarhadNuri/VC/internal/protocol"
)

// Events are the user-facing notifications the room loop renders.
// Fields are optional.
type Events struct {
	OnChat   func(identifier, text string)
	OnJoined func(identifier string)
	OnLeft   func(identifier string)
}

// Handler routes incoming server messages: room lifecycle responses go
// to typed channels the commands wait on, negotiation envelopes and
// membership changes drive the orchestrator, chat goes to the UI.
type Handler struct {
	client *Client
	orch   *peer.Orchestrator
	events Events
	log    zerolog.Logger

	RoomCreated chan *protocol.Message
	RoomJoined  chan *protocol.Message
	Errors      chan protocol.ErrorCode

	// Done closes when the server connection drops.
	Done chan struct{}
}

// NewHandler wires a handler between the transport and the
// orchestrator.
func NewHandler(client *Client, orch *peer.Orchestrator, events Events, log zerolog.Logger) *Handler {
	return &Handler{
		client:      client,
		orch:        orch,
		events:      events,
		log:         log,
		RoomCreated: make(chan *protocol.Message, 1),
		RoomJoined:  make(chan *protocol.Message, 1),
		Errors:      make(chan protocol.ErrorCode, 1),
		Done:        make(chan struct{}),
	}
}

// Start consumes incoming messages until the connection drops. Run it
// in its own goroutine; it is the single event loop that keeps
// per-link progress ordered the way the server sent it.
func (h *Handler) Start() {
	defer close(h.Done)

	for msg := range h.client.Incoming() {
		switch msg.Kind {

		case protocol.KindRoomCreated:
			h.RoomCreated <- msg

		case protocol.KindRoomJoined:
			h.orch.ExpectMembers(msg.Members)
			h.RoomJoined <- msg

		case protocol.KindParticipantJoined:
			h.orch.HandleParticipantJoined(msg.ConnectionID, msg.Identifier)
			if h.events.OnJoined != nil {
				h.events.OnJoined(msg.Identifier)
			}

		case protocol.KindParticipantLeft:
			h.orch.HandleParticipantLeft(msg.ConnectionID)
			if h.events.OnLeft != nil {
				h.events.OnLeft(msg.Identifier)
			}

		case protocol.KindOffer:
			h.orch.HandleOffer(msg.SenderID, msg.Blob)

		case protocol.KindAnswer:
			h.orch.HandleAnswer(msg.SenderID, msg.Blob)

		case protocol.KindICECandidate:
			h.orch.HandleCandidate(msg.SenderID, msg.Blob)

		case protocol.KindReceiveMessage:
			if h.events.OnChat != nil {
				h.events.OnChat(msg.Identifier, msg.Text)
			}

		case protocol.KindError:
			select {
			case h.Errors <- msg.ErrorCode:
			default:
			}

		default:
			h.log.Debug().Str("kind", string(msg.Kind)).Msg("unknown message kind")
		}
	}
}
