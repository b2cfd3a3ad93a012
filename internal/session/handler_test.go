package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FarhadNuri/VC/internal/media"
	"github.com/FarhadNuri/VC/internal/peer"
	"github.com/FarhadNuri/VC/internal/protocol"
)

type nopSession struct{}

func (nopSession) CreateOffer(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (nopSession) Answer(ctx context.Context, offer json.RawMessage) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (nopSession) AcceptAnswer(answer json.RawMessage) error { return nil }

func (nopSession) AddCandidate(candidate json.RawMessage) error { return nil }

func (nopSession) Close() error { return nil }

type nopSink struct{}

func (nopSink) Close() error { return nil }

type nopFactory struct{}

func (nopFactory) NewSession(cb media.Callbacks) (media.Session, error) { return nopSession{}, nil }

func (nopFactory) NewSink(track media.RemoteTrack) media.Sink { return nopSink{} }

type chatEvent struct {
	identifier string
	text       string
}

// newTestHandler wires a handler to an unconnected client whose
// incoming channel the test feeds directly.
func newTestHandler(events Events) (*Handler, *Client, *peer.Orchestrator) {
	client := NewClient("ws://unused")
	orch := peer.New(client, nopFactory{}, zerolog.Nop())
	h := NewHandler(client, orch, events, zerolog.Nop())
	go h.Start()
	return h, client, orch
}

func awaitMsg(t *testing.T, ch chan *protocol.Message) *protocol.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHandlerRoutesRoomLifecycle(t *testing.T) {
	h, client, orch := newTestHandler(Events{})

	client.incoming <- &protocol.Message{
		Kind:       protocol.KindRoomCreated,
		RoomCode:   "AB12C",
		Identifier: "User-1",
	}
	created := awaitMsg(t, h.RoomCreated)
	assert.Equal(t, "AB12C", created.RoomCode)

	client.incoming <- &protocol.Message{
		Kind:       protocol.KindRoomJoined,
		RoomCode:   "AB12C",
		Identifier: "User-2",
		Members:    []protocol.Member{{ID: "conn-a", Identifier: "User-1"}},
	}
	joined := awaitMsg(t, h.RoomJoined)
	require.Len(t, joined.Members, 1)

	// Members from the join response are registered before the join
	// response is surfaced, so their offers are already expected.
	name, ok := orch.Identify("conn-a")
	require.True(t, ok)
	assert.Equal(t, "User-1", name)
}

func TestHandlerDispatchesEvents(t *testing.T) {
	joins := make(chan string, 4)
	leaves := make(chan string, 4)
	chats := make(chan chatEvent, 4)

	_, client, orch := newTestHandler(Events{
		OnChat:   func(identifier, text string) { chats <- chatEvent{identifier, text} },
		OnJoined: func(identifier string) { joins <- identifier },
		OnLeft:   func(identifier string) { leaves <- identifier },
	})

	client.incoming <- &protocol.Message{
		Kind:         protocol.KindParticipantJoined,
		ConnectionID: "conn-b",
		Identifier:   "User-2",
	}
	assert.Equal(t, "User-2", <-joins)
	name, ok := orch.Identify("conn-b")
	require.True(t, ok)
	assert.Equal(t, "User-2", name)

	client.incoming <- &protocol.Message{
		Kind:       protocol.KindReceiveMessage,
		Identifier: "User-2",
		Text:       "hello",
	}
	assert.Equal(t, chatEvent{"User-2", "hello"}, <-chats)

	client.incoming <- &protocol.Message{
		Kind:         protocol.KindParticipantLeft,
		ConnectionID: "conn-b",
		Identifier:   "User-2",
	}
	assert.Equal(t, "User-2", <-leaves)
	_, ok = orch.Identify("conn-b")
	assert.False(t, ok)
}

func TestHandlerErrorsNeverBlock(t *testing.T) {
	h, client, _ := newTestHandler(Events{})

	// Nobody is draining Errors; a burst must not wedge the loop.
	for i := 0; i < 3; i++ {
		client.incoming <- &protocol.Message{
			Kind:      protocol.KindError,
			ErrorCode: protocol.ErrCodeRoomNotFound,
		}
	}
	client.incoming <- &protocol.Message{
		Kind:     protocol.KindRoomCreated,
		RoomCode: "AB12C",
	}
	awaitMsg(t, h.RoomCreated)

	assert.Equal(t, protocol.ErrCodeRoomNotFound, <-h.Errors)
}

func TestHandlerDoneClosesWhenConnectionDrops(t *testing.T) {
	h, client, _ := newTestHandler(Events{})

	close(client.incoming)

	select {
	case <-h.Done:
	case <-time.After(time.Second):
		t.Fatal("Done did not close after the incoming channel drained")
	}
}
