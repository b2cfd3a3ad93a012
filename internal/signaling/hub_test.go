package signaling

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FarhadNuri/VC/internal/protocol"
)

// newTestHub starts a hub with a fresh registry. Test clients have no
// websocket; the hub only ever touches ID and Send.
func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(NewRegistry(RegistryConfig{}), zerolog.Nop())
	go h.Run()
	return h
}

func newTestClient(h *Hub, id string) *Client {
	c := &Client{Hub: h, ID: id, Send: make(chan *protocol.Message, 256)}
	h.Register <- c
	return c
}

func recv(t *testing.T, c *Client) *protocol.Message {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("client %s: timed out waiting for message", c.ID)
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("client %s: unexpected message %s", c.ID, msg.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func createRoom(t *testing.T, h *Hub, c *Client) *protocol.Message {
	t.Helper()
	h.Inbound <- inbound{client: c, msg: &protocol.Message{Kind: protocol.KindCreateRoom}}
	msg := recv(t, c)
	require.Equal(t, protocol.KindRoomCreated, msg.Kind)
	return msg
}

func joinRoom(t *testing.T, h *Hub, c *Client, code string) *protocol.Message {
	t.Helper()
	h.Inbound <- inbound{client: c, msg: &protocol.Message{Kind: protocol.KindJoinRoom, RoomCode: code}}
	return recv(t, c)
}

func TestCreateAndJoinScenario(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, "conn-a")
	b := newTestClient(h, "conn-b")

	created := createRoom(t, h, a)
	assert.Len(t, created.RoomCode, DefaultCodeLength)
	assert.Equal(t, "User-1", created.Identifier)

	// B joins with the lower-cased code.
	joined := joinRoom(t, h, b, strings.ToLower(created.RoomCode))
	require.Equal(t, protocol.KindRoomJoined, joined.Kind)
	assert.Equal(t, created.RoomCode, joined.RoomCode)
	assert.Equal(t, "User-2", joined.Identifier)
	require.Len(t, joined.Members, 1)
	assert.Equal(t, "conn-a", joined.Members[0].ID)
	assert.Equal(t, "User-1", joined.Members[0].Identifier)

	notified := recv(t, a)
	assert.Equal(t, protocol.KindParticipantJoined, notified.Kind)
	assert.Equal(t, "conn-b", notified.ConnectionID)
	assert.Equal(t, "User-2", notified.Identifier)
}

func TestJoinErrors(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, "conn-a")

	msg := joinRoom(t, h, a, "NOPES")
	assert.Equal(t, protocol.KindError, msg.Kind)
	assert.Equal(t, protocol.ErrCodeRoomNotFound, msg.ErrorCode)

	owner := newTestClient(h, "conn-owner")
	created := createRoom(t, h, owner)
	for i := 1; i < DefaultMaxRoomSize; i++ {
		c := newTestClient(h, "conn-filler-"+string(rune('0'+i)))
		joined := joinRoom(t, h, c, created.RoomCode)
		require.Equal(t, protocol.KindRoomJoined, joined.Kind)
	}

	msg = joinRoom(t, h, a, created.RoomCode)
	assert.Equal(t, protocol.KindError, msg.Kind)
	assert.Equal(t, protocol.ErrCodeRoomFull, msg.ErrorCode)
}

func TestRelayStampsSenderAndRoutes(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, "conn-a")
	b := newTestClient(h, "conn-b")

	created := createRoom(t, h, a)
	joinRoom(t, h, b, created.RoomCode)
	recv(t, a) // participant-joined

	h.Inbound <- inbound{client: a, msg: &protocol.Message{
		Kind:     protocol.KindOffer,
		TargetID: "conn-b",
		// Senders cannot choose their own id.
		SenderID: "conn-spoofed",
		Blob:     []byte(`{"type":"offer","sdp":"v=0"}`),
	}}

	msg := recv(t, b)
	assert.Equal(t, protocol.KindOffer, msg.Kind)
	assert.Equal(t, "conn-a", msg.SenderID)
	assert.Empty(t, msg.TargetID)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0"}`, string(msg.Blob))
}

func TestRelayDropsCrossRoomEnvelopes(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, "conn-a")
	b := newTestClient(h, "conn-b")
	outsider := newTestClient(h, "conn-outsider")

	created := createRoom(t, h, a)
	joinRoom(t, h, b, created.RoomCode)
	recv(t, a)

	// An envelope from a roomless sender is dropped silently.
	h.Inbound <- inbound{client: outsider, msg: &protocol.Message{
		Kind:     protocol.KindICECandidate,
		TargetID: "conn-b",
		Blob:     []byte(`{}`),
	}}
	assertSilent(t, b)
	assertSilent(t, outsider)

	// So is one crossing room boundaries.
	createRoom(t, h, outsider)
	h.Inbound <- inbound{client: outsider, msg: &protocol.Message{
		Kind:     protocol.KindAnswer,
		TargetID: "conn-a",
		Blob:     []byte(`{}`),
	}}
	assertSilent(t, a)
}

func TestChatBroadcastIncludesSender(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, "conn-a")
	b := newTestClient(h, "conn-b")

	created := createRoom(t, h, a)
	joinRoom(t, h, b, created.RoomCode)
	recv(t, a)

	h.Inbound <- inbound{client: b, msg: &protocol.Message{
		Kind: protocol.KindSendMessage,
		Text: "  hello room  ",
	}}

	for _, c := range []*Client{a, b} {
		msg := recv(t, c)
		assert.Equal(t, protocol.KindReceiveMessage, msg.Kind)
		assert.Equal(t, "User-2", msg.Identifier)
		assert.Equal(t, "hello room", msg.Text)
	}
}

func TestChatCappedAndEmptyDropped(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, "conn-a")
	createRoom(t, h, a)

	h.Inbound <- inbound{client: a, msg: &protocol.Message{
		Kind: protocol.KindSendMessage,
		Text: strings.Repeat("x", ChatMessageLimit+50),
	}}
	msg := recv(t, a)
	assert.Len(t, msg.Text, ChatMessageLimit)

	h.Inbound <- inbound{client: a, msg: &protocol.Message{
		Kind: protocol.KindSendMessage,
		Text: "   ",
	}}
	assertSilent(t, a)

	// A roomless sender's chat goes nowhere.
	b := newTestClient(h, "conn-b")
	h.Inbound <- inbound{client: b, msg: &protocol.Message{
		Kind: protocol.KindSendMessage,
		Text: "anyone there?",
	}}
	assertSilent(t, b)
}

func TestDisconnectBehavesLikeLeave(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, "conn-a")
	b := newTestClient(h, "conn-b")

	created := createRoom(t, h, a)
	joinRoom(t, h, b, created.RoomCode)
	recv(t, a)

	h.Unregister <- a

	msg := recv(t, b)
	assert.Equal(t, protocol.KindParticipantLeft, msg.Kind)
	assert.Equal(t, "conn-a", msg.ConnectionID)
	assert.Equal(t, "User-1", msg.Identifier)

	// A second unregister for the same client is a no-op: no second
	// participant-left, no panic on the closed Send channel.
	h.Unregister <- a
	assertSilent(t, b)

	// B remains, so the room persists under its code.
	c := newTestClient(h, "conn-c")
	joined := joinRoom(t, h, c, created.RoomCode)
	assert.Equal(t, protocol.KindRoomJoined, joined.Kind)
}

func TestExplicitLeaveThenDisconnectCleansUpOnce(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, "conn-a")
	b := newTestClient(h, "conn-b")

	created := createRoom(t, h, a)
	joinRoom(t, h, b, created.RoomCode)
	recv(t, a)

	h.Inbound <- inbound{client: b, msg: &protocol.Message{Kind: protocol.KindLeaveRoom}}
	msg := recv(t, a)
	assert.Equal(t, protocol.KindParticipantLeft, msg.Kind)

	h.Unregister <- b
	assertSilent(t, a)
}

func TestLastLeaveDestroysRoomAndFreesCode(t *testing.T) {
	h := newTestHub(t)
	a := newTestClient(h, "conn-a")

	created := createRoom(t, h, a)
	h.Inbound <- inbound{client: a, msg: &protocol.Message{Kind: protocol.KindLeaveRoom}}

	b := newTestClient(h, "conn-b")
	msg := joinRoom(t, h, b, created.RoomCode)
	assert.Equal(t, protocol.KindError, msg.Kind)
	assert.Equal(t, protocol.ErrCodeRoomNotFound, msg.ErrorCode)
}
