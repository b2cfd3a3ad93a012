// Package protocol defines the WebSocket wire format shared by the
// server and the CLI client. Every frame is one JSON Message; Kind
// selects which of the optional fields are meaningful.
package protocol

import "encoding/json"

// Kind identifies a message on the wire.
type Kind string

// Client to server.
const (
	KindCreateRoom  Kind = "create-room"
	KindJoinRoom    Kind = "join-room"
	KindLeaveRoom   Kind = "leave-room"
	KindSendMessage Kind = "send-message"
)

// Negotiation envelopes travel client -> server -> client. The sender
// addresses TargetID; the server strips it and stamps SenderID before
// forwarding, so the origin can never be spoofed.
const (
	KindOffer        Kind = "offer"
	KindAnswer       Kind = "answer"
	KindICECandidate Kind = "ice-candidate"
)

// Server to client.
const (
	KindRoomCreated       Kind = "room-created"
	KindRoomJoined        Kind = "room-joined"
	KindParticipantJoined Kind = "participant-joined"
	KindParticipantLeft   Kind = "participant-left"
	KindReceiveMessage    Kind = "receive-message"
	KindError             Kind = "error"
)

// ErrorCode classifies server-reported failures.
type ErrorCode string

const (
	ErrCodeRoomNotFound      ErrorCode = "room-not-found"
	ErrCodeRoomFull          ErrorCode = "room-full"
	ErrCodeCapacityExhausted ErrorCode = "capacity-exhausted"
)

// Member is one room participant as seen by other participants.
type Member struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
}

// Message is the single envelope type for all traffic.
type Message struct {
	Kind Kind `json:"kind"`

	// Room lifecycle fields.
	RoomCode   string   `json:"room_code,omitempty"`
	Identifier string   `json:"identifier,omitempty"`
	Members    []Member `json:"members,omitempty"`

	// ConnectionID names the participant a joined/left notification
	// is about.
	ConnectionID string `json:"connection_id,omitempty"`

	// Negotiation routing. Blob is opaque to the server.
	TargetID string          `json:"target_id,omitempty"`
	SenderID string          `json:"sender_id,omitempty"`
	Blob     json.RawMessage `json:"blob,omitempty"`

	// Chat.
	Text string `json:"text,omitempty"`

	ErrorCode ErrorCode `json:"error_code,omitempty"`
}
