package server

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mktdesk/streammux/internal/mux"
	"github.com/mktdesk/streammux/internal/wire"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024
)

var (
	errPortClosed  = errors.New("port closed")
	errPortBacklog = errors.New("port send buffer full")
)

// client is one attached local connection. It implements mux.Port: the
// multiplexer holds only the Send side; the pumps and the socket belong
// here.
type client struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	send chan any
	done chan struct{}
	once sync.Once
}

func newClient(id string, conn *websocket.Conn, sendBuffer int, logger *slog.Logger) *client {
	return &client{
		id:     id,
		conn:   conn,
		logger: logger.With("port", id),
		send:   make(chan any, sendBuffer),
		done:   make(chan struct{}),
	}
}

// ID implements mux.Port.
func (c *client) ID() string {
	return c.id
}

// Send implements mux.Port. Never blocks: a closed client or a full
// buffer reports an error, which the multiplexer treats as a detach.
func (c *client) Send(v any) error {
	select {
	case <-c.done:
		return errPortClosed
	default:
	}

	select {
	case c.send <- v:
		return nil
	default:
		return errPortBacklog
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// readPump parses client action frames until the connection dies, then
// detaches from the multiplexer.
func (c *client) readPump(m *mux.Mux) {
	defer func() {
		m.Detach(c.id)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("client read error", "error", err)
			}
			return
		}

		act, err := wire.ParseAction(data)
		if err != nil {
			// Bad frame: tell the client and keep the connection.
			c.logger.Warn("malformed client action", "error", err)
			c.Send(wire.NewErrorLog("malformed action dropped"))
			continue
		}

		m.Handle(c.id, act)
	}
}

// writePump drains the send buffer to the socket and keeps the
// connection alive with control pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case v := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(v); err != nil {
				c.logger.Warn("client write error", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
