package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Watchers only send control frames
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST API already allows any origin
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection watching one course
type Client struct {
	hub *Hub

	// The WebSocket connection
	conn *websocket.Conn

	// Buffered channel of outbound seat updates
	send chan []byte

	// Course this client watches
	courseID int64

	// Peer address, for logs
	remoteAddr string

	logger zerolog.Logger

	// Last version queued to send; guarded by hub.mu
	version int64
	sent    bool
}

// readPump drains the connection so pongs and close frames are processed,
// and unregisters the client once the peer goes away.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	// Every pong extends the deadline; a silent peer times out
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		// Anything the watcher sends is discarded
		if _, _, err := c.conn.ReadMessage(); err != nil {
			// Normal closes and going-away are routine disconnects
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn().Err(err).Int64("course_id", c.courseID).Msg("Unexpected WebSocket close")
			}
			return
		}
	}
}

// writePump writes queued updates and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One JSON snapshot per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			// Keepalive; the peer answers with a pong
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
