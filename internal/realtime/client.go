package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size. ICE candidates and SDP offers fit
	// comfortably; chat text is capped by the request path anyway.
	maxMessageSize = 16 * 1024

	sendBuffer = 64
)

// client is one live websocket session. It implements Conn.
type client struct {
	id       string
	username string
	conn     *websocket.Conn
	send     chan []byte
	logger   *slog.Logger
}

var errSendBufferFull = errors.New("send buffer full")

func (c *client) ID() string { return c.id }

func (c *client) Send(env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	select {
	case c.send <- b:
		return nil
	default:
		// Slow consumer: dropping beats blocking the sender's pump.
		return errSendBufferFull
	}
}

// readPump reads frames until the connection dies and hands each decoded
// envelope to dispatch. It owns connection teardown.
func (c *client) readPump(dispatch func(*client, Envelope), done func(*client)) {
	defer func() {
		done(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", "user", c.username, "err", err)
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			c.logger.Debug("websocket: malformed frame", "user", c.username)
			continue
		}
		dispatch(c, env)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		// c.send is never closed; teardown happens through conn.Close,
		// which fails the next write and ends the pump.
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
