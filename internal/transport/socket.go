package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Socket is one live upstream connection.
type Socket interface {
	// Send writes raw bytes to the connection.
	Send(data []byte) error

	// Messages returns a channel of raw inbound messages. It is closed
	// when the read side shuts down.
	Messages() <-chan []byte

	// Errors returns a channel of connection errors.
	Errors() <-chan error

	// Close tears the connection down.
	Close() error
}

// Dialer opens sockets. The production implementation wraps
// gorilla/websocket; tests supply fakes.
type Dialer interface {
	Dial(ctx context.Context, url string) (Socket, error)
}

// WSDialer dials real WebSocket connections.
type WSDialer struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadBuffer       int
}

// NewWSDialer builds a dialer from transport config.
func NewWSDialer(cfg Config) *WSDialer {
	return &WSDialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
		WriteTimeout:     cfg.WriteTimeout,
		ReadBuffer:       cfg.ReadBuffer,
	}
}

// Dial opens a WebSocket connection. The credential travels in the URL,
// so no auth headers are added here.
func (d *WSDialer) Dial(ctx context.Context, url string) (Socket, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	s := &wsSocket{
		conn:         conn,
		writeTimeout: d.WriteTimeout,
		messages:     make(chan []byte, d.ReadBuffer),
		errors:       make(chan error, 1),
		done:         make(chan struct{}),
	}

	// Server-initiated control pings get pongs back.
	conn.SetPingHandler(func(data string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(time.Second),
		)
	})

	go s.readLoop()

	return s, nil
}

// wsSocket implements Socket over gorilla/websocket.
type wsSocket struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	messages chan []byte
	errors   chan error
	done     chan struct{}

	// Write serialization
	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// Send writes raw bytes to the connection.
func (s *wsSocket) Send(data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Messages returns the inbound message channel.
func (s *wsSocket) Messages() <-chan []byte {
	return s.messages
}

// Errors returns the connection error channel.
func (s *wsSocket) Errors() <-chan error {
	return s.errors
}

// Close tears the connection down.
func (s *wsSocket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)

	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return s.conn.Close()
}

// readLoop reads inbound frames until the connection dies.
func (s *wsSocket) readLoop() {
	defer close(s.messages)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			// Errors after Close() are expected noise.
			select {
			case <-s.done:
			default:
				select {
				case s.errors <- err:
				default:
				}
			}
			return
		}

		select {
		case s.messages <- data:
		case <-s.done:
			return
		}
	}
}
