package signaling

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/FarhadNuri/VC/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. SDP blobs fit well
	// within this.
	maxMessageSize = 64 * 1024
)

// Client wraps a single websocket connection. The hub addresses it by
// ID, the server-assigned connection identifier.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	// ID is the connection identifier, unique per live connection.
	ID string

	// Send buffers outbound messages. The hub writes here; WritePump
	// drains to the socket. Closed by the hub on unregister.
	Send chan *protocol.Message
}

// inbound pairs a parsed message with the client it came from.
type inbound struct {
	client *Client
	msg    *protocol.Message
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// It runs in a per-connection goroutine and is the only reader on the
// connection. On any read error the client is unregistered, which
// triggers the same cleanup as an explicit leave.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg protocol.Message
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Debug().Err(err).Str("conn_id", c.ID).Msg("read error")
			}
			break
		}
		c.Hub.Inbound <- inbound{client: c, msg: &msg}
	}
}

// WritePump pumps messages from the hub to the websocket connection
// and keeps the connection alive with periodic pings. It is the only
// writer on the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
