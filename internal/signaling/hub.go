package signaling

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/FarhadNuri/VC/internal/protocol"
)

// ChatMessageLimit caps broadcast chat messages, in runes.
const ChatMessageLimit = 500

// Hub is the single goroutine that owns all connected clients and
// drives the room registry. Clients never touch each other directly;
// everything flows through Run's select loop, so membership mutations
// and relay decisions are naturally serialized.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Inbound    chan inbound

	clients  map[string]*Client
	registry *Registry
	log      zerolog.Logger
}

// NewHub creates a hub over the given registry.
func NewHub(registry *Registry, log zerolog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan inbound),
		clients:    make(map[string]*Client),
		registry:   registry,
		log:        log,
	}
}

// Run starts the hub's event loop. It never returns.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client.ID] = client
			h.log.Info().Str("conn_id", client.ID).Msg("client connected")

		case client := <-h.Unregister:
			if _, ok := h.clients[client.ID]; !ok {
				continue
			}
			h.handleLeave(client)
			delete(h.clients, client.ID)
			close(client.Send)
			h.log.Info().Str("conn_id", client.ID).Msg("client disconnected")

		case in := <-h.Inbound:
			h.handleMessage(in.client, in.msg)
		}
	}
}

func (h *Hub) handleMessage(c *Client, msg *protocol.Message) {
	switch msg.Kind {
	case protocol.KindCreateRoom:
		h.handleCreate(c)
	case protocol.KindJoinRoom:
		h.handleJoin(c, msg.RoomCode)
	case protocol.KindLeaveRoom:
		h.handleLeave(c)
	case protocol.KindOffer, protocol.KindAnswer, protocol.KindICECandidate:
		h.relay(c, msg)
	case protocol.KindSendMessage:
		h.handleChat(c, msg.Text)
	default:
		h.log.Warn().Str("kind", string(msg.Kind)).Str("conn_id", c.ID).Msg("unknown message kind")
	}
}

func (h *Hub) handleCreate(c *Client) {
	// A create while already in a room implies the previous
	// membership is over.
	h.handleLeave(c)

	code, identifier, err := h.registry.CreateRoom(c.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("room creation failed")
		h.send(c, &protocol.Message{
			Kind:      protocol.KindError,
			ErrorCode: protocol.ErrCodeCapacityExhausted,
		})
		return
	}

	h.log.Info().Str("room", code).Str("conn_id", c.ID).Msg("room created")
	h.send(c, &protocol.Message{
		Kind:       protocol.KindRoomCreated,
		RoomCode:   code,
		Identifier: identifier,
	})
}

func (h *Hub) handleJoin(c *Client, code string) {
	h.handleLeave(c)

	normalized, identifier, others, err := h.registry.JoinRoom(c.ID, code)
	if err != nil {
		errCode := protocol.ErrCodeRoomNotFound
		if err == ErrRoomFull {
			errCode = protocol.ErrCodeRoomFull
		}
		h.log.Debug().Err(err).Str("room", code).Str("conn_id", c.ID).Msg("join rejected")
		h.send(c, &protocol.Message{Kind: protocol.KindError, ErrorCode: errCode})
		return
	}

	h.log.Info().Str("room", normalized).Str("identifier", identifier).Msg("participant joined")

	// The joined side learns which peers to expect offers from; the
	// existing members each initiate a link toward the newcomer.
	h.send(c, &protocol.Message{
		Kind:       protocol.KindRoomJoined,
		RoomCode:   normalized,
		Identifier: identifier,
		Members:    others,
	})
	for _, m := range others {
		h.sendTo(m.ID, &protocol.Message{
			Kind:         protocol.KindParticipantJoined,
			ConnectionID: c.ID,
			Identifier:   identifier,
		})
	}
}

// handleLeave removes c from its room, if any, and notifies the
// remaining members. Safe to call for clients without a membership.
func (h *Hub) handleLeave(c *Client) {
	info, ok := h.registry.Leave(c.ID)
	if !ok {
		return
	}

	if info.Destroyed {
		h.log.Info().Str("room", info.RoomCode).Msg("room destroyed")
		return
	}
	for _, id := range info.Remaining {
		h.sendTo(id, &protocol.Message{
			Kind:         protocol.KindParticipantLeft,
			ConnectionID: c.ID,
			Identifier:   info.Identifier,
		})
	}
	h.log.Info().Str("room", info.RoomCode).Str("identifier", info.Identifier).Msg("participant left")
}

// relay forwards a negotiation envelope to its target, stamping the
// verified sender id. Envelopes are dropped silently unless sender and
// target currently share a room: the peer state machines recover
// through their own timeouts, and a roomless sender has nothing to be
// told.
func (h *Hub) relay(c *Client, msg *protocol.Message) {
	if msg.TargetID == "" || !h.registry.SameRoom(c.ID, msg.TargetID) {
		h.log.Debug().
			Str("kind", string(msg.Kind)).
			Str("conn_id", c.ID).
			Str("target_id", msg.TargetID).
			Msg("dropping unauthorized envelope")
		return
	}
	h.sendTo(msg.TargetID, &protocol.Message{
		Kind:     msg.Kind,
		SenderID: c.ID,
		Blob:     msg.Blob,
	})
}

// handleChat broadcasts a trimmed, length-capped chat line to every
// member of the sender's room, the sender included so everyone sees
// the same ordering.
func (h *Hub) handleChat(c *Client, text string) {
	p, ok := h.registry.Lookup(c.ID)
	if !ok {
		return
	}

	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > ChatMessageLimit {
		text = string(runes[:ChatMessageLimit])
	}
	if text == "" {
		return
	}

	out := &protocol.Message{
		Kind:       protocol.KindReceiveMessage,
		Identifier: p.Identifier,
		Text:       text,
	}
	for _, id := range h.registry.MemberIDs(c.ID) {
		h.sendTo(id, out)
	}
}

func (h *Hub) sendTo(connID string, msg *protocol.Message) {
	client, ok := h.clients[connID]
	if !ok {
		// Target disconnected since the registry was consulted;
		// messages are not buffered for the dead.
		return
	}
	h.send(client, msg)
}

func (h *Hub) send(c *Client, msg *protocol.Message) {
	select {
	case c.Send <- msg:
	default:
		h.log.Warn().Str("conn_id", c.ID).Msg("send buffer full, dropping message")
	}
}
