package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Levii22/planning-poker/internal/model"
	"github.com/Levii22/planning-poker/internal/validation"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping interval, kept under pongWait so pongs arrive in time
	pingPeriod = 54 * time.Second

	// Maximum inbound frame size in bytes
	maxMessageSize = 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one WebSocket connection and the player bound to it.
//
// playerID and roomCode are empty until the connection creates or joins
// a room. They are written only by the connection's own read loop,
// before the client is registered with the hub.
type Client struct {
	conn       *websocket.Conn
	dispatcher *Dispatcher
	send       chan []byte
	limiter    *validation.RateLimiter

	playerID model.PlayerID
	roomCode model.RoomCode

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, d *Dispatcher) *Client {
	return &Client{
		conn:       conn,
		dispatcher: d,
		send:       make(chan []byte, sendBufferSize),
		limiter:    validation.NewRateLimiter(d.clock),
	}
}

// joined reports whether the connection is bound to a room member
func (c *Client) joined() bool {
	return c.playerID != ""
}

// enqueue queues a message for the write pump, dropping it if the
// client's buffer is full
func (c *Client) enqueue(message []byte) {
	select {
	case c.send <- message:
	default:
		c.dispatcher.logger.Warn("send buffer full, dropping message",
			slog.String("player_id", string(c.playerID)))
	}
}

// closeSend closes the outgoing channel exactly once
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump reads inbound frames and hands them to the dispatcher.
// It owns the read deadline: each pong from the peer extends it, so a
// peer that stops answering pings is cut off after pongWait.
func (c *Client) readPump() {
	defer func() {
		c.dispatcher.disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.dispatcher.logger.Warn("websocket read failed",
					slog.String("player_id", string(c.playerID)),
					slog.Any("error", err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.dispatcher.handleMessage(c, raw)
	}
}

// writePump drains the send channel onto the connection and keeps the
// peer alive with periodic pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Flush anything else already queued
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
