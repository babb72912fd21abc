package transport

import (
	"context"
	"log/slog"

	"github.com/jpillora/backoff"

	"github.com/mktdesk/streammux/internal/eventloop"
	"github.com/mktdesk/streammux/internal/wire"
)

// Conn is the upstream connection state machine. All exported methods
// except construction must be called on the event loop; socket goroutines
// re-enter the loop through posted closures.
type Conn struct {
	cfg    Config
	dialer Dialer
	loop   *eventloop.Loop
	events Events
	logger *slog.Logger

	sock Socket
	url  string
	open bool

	// awaitingToken is true between a credential prompt going out and a
	// fresh token arriving (or the prompt being abandoned).
	awaitingToken bool

	// recovering is true from socket loss until the next successful open.
	recovering bool

	// gen invalidates pump goroutines and in-flight dials of replaced
	// sockets.
	gen int

	bo *backoff.Backoff

	backoffTimer   *eventloop.Timer
	tokenTimer     *eventloop.Timer
	heartbeatTimer *eventloop.Timer
}

// NewConn creates an unconnected transport. Bind must be called before
// any other method.
func NewConn(cfg Config, dialer Dialer, loop *eventloop.Loop, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}

	return &Conn{
		cfg:    cfg,
		dialer: dialer,
		loop:   loop,
		logger: logger,
		bo: &backoff.Backoff{
			Min:    cfg.BackoffBase,
			Max:    cfg.BackoffCap,
			Factor: 2,
		},
		backoffTimer:   loop.NewTimer(),
		tokenTimer:     loop.NewTimer(),
		heartbeatTimer: loop.NewTimer(),
	}
}

// Bind wires the event sink. Separate from construction because the owner
// and the transport reference each other.
func (c *Conn) Bind(events Events) {
	c.events = events
}

// IsOpen reports whether the transport is open.
func (c *Conn) IsOpen() bool {
	return c.open
}

// Attempts returns the number of reconnect delays taken since the last
// successful open.
func (c *Conn) Attempts() int {
	return int(c.bo.Attempt())
}

// Connect opens the transport at url. A no-op while already open. An
// existing non-open socket is torn down first. Dialing is asynchronous;
// success surfaces as Events.TransportOpen.
func (c *Conn) Connect(url string) {
	if url != "" {
		c.url = url
	}
	if c.open {
		return
	}
	if c.url == "" {
		c.logger.Warn("connect requested without url")
		return
	}

	c.teardown()

	gen := c.gen
	target := c.url

	c.logger.Info("dialing upstream", "attempt", c.Attempts())

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
		defer cancel()

		s, err := c.dialer.Dial(ctx, target)
		c.loop.Post(func() { c.dialDone(gen, s, err) })
	}()
}

// UpdateToken supplies a freshly obtained credential. If a credential was
// pending it reconnects immediately; if the transport is open it rotates
// the token in-band without disruption.
func (c *Conn) UpdateToken(url, token string) {
	if c.awaitingToken || (c.recovering && !c.open) {
		c.awaitingToken = false
		c.tokenTimer.Stop()
		c.backoffTimer.Stop()
		c.Connect(url)
		return
	}

	if c.open && token != "" {
		cmd := wire.Command{Action: wire.CmdRefreshToken, Token: token}
		if err := c.Send(cmd.Encode()); err != nil {
			c.logger.Warn("in-band token refresh failed", "error", err)
		}
		if url != "" {
			c.url = url
		}
		return
	}

	// Nothing pending and not open: keep the URL for the next connect.
	if url != "" {
		c.url = url
	}
}

// ForceReconnect closes any current socket and reopens at url immediately.
// Used when upstream rejected the old credential out-of-band.
func (c *Conn) ForceReconnect(url string) {
	c.teardown()
	c.awaitingToken = false
	c.tokenTimer.Stop()
	c.backoffTimer.Stop()
	c.Connect(url)
}

// Send writes raw bytes upstream.
func (c *Conn) Send(data []byte) error {
	if !c.open || c.sock == nil {
		return ErrNotConnected
	}
	return c.sock.Send(data)
}

// Shutdown closes the socket and cancels all transport timers.
func (c *Conn) Shutdown() {
	c.teardown()
	c.awaitingToken = false
	c.recovering = false
	c.backoffTimer.Stop()
	c.tokenTimer.Stop()
}

// teardown discards the current socket, if any, without scheduling
// recovery.
func (c *Conn) teardown() {
	c.gen++
	c.open = false
	c.heartbeatTimer.Stop()
	if c.sock != nil {
		c.sock.Close()
		c.sock = nil
	}
}

// dialDone finishes an asynchronous dial.
func (c *Conn) dialDone(gen int, s Socket, err error) {
	if gen != c.gen {
		// A newer Connect or teardown superseded this dial.
		if s != nil {
			s.Close()
		}
		return
	}

	if err != nil {
		c.logger.Warn("upstream dial failed", "error", err)
		c.recover()
		return
	}

	c.sock = s
	c.open = true
	c.recovering = false
	c.awaitingToken = false
	c.bo.Reset()
	c.tokenTimer.Stop()
	c.backoffTimer.Stop()

	c.logger.Info("upstream connected")

	go c.pump(c.gen, s)
	c.startHeartbeat()
	c.events.TransportOpen()
}

// pump forwards socket events onto the loop until the socket dies.
func (c *Conn) pump(gen int, s Socket) {
	for {
		select {
		case data, ok := <-s.Messages():
			if !ok {
				c.loop.Post(func() { c.socketLost(gen, nil) })
				return
			}
			c.loop.Post(func() {
				if gen == c.gen {
					c.events.TransportMessage(data)
				}
			})

		case err := <-s.Errors():
			c.loop.Post(func() { c.socketLost(gen, err) })
			return
		}
	}
}

// socketLost handles the close event of the current socket.
func (c *Conn) socketLost(gen int, err error) {
	if gen != c.gen {
		return
	}

	c.logger.Warn("upstream connection lost", "error", err)

	c.teardown()
	c.events.TransportClosed()
	c.recover()
}

// recover begins the reconnection protocol: wait out the backoff delay,
// then prompt clients for a fresh credential. The transport is only dialed
// again once UpdateToken delivers one.
func (c *Conn) recover() {
	if c.events.ActivePorts() == 0 {
		c.logger.Info("no clients attached, recovery not scheduled")
		c.recovering = false
		return
	}

	c.recovering = true
	delay := c.bo.Duration()
	c.logger.Info("scheduling credential prompt",
		"delay", delay,
		"attempt", c.Attempts(),
	)
	c.backoffTimer.Reset(delay, c.promptForToken)
}

// promptForToken broadcasts a credential request and re-arms the fallback
// prompt. Repeats until a token arrives or the last client detaches.
func (c *Conn) promptForToken() {
	if c.open {
		return
	}
	if c.events.ActivePorts() == 0 {
		// Legal stray fire after the last detach.
		return
	}

	c.awaitingToken = true
	c.events.RequestToken()
	c.tokenTimer.Reset(c.cfg.TokenFallback, c.promptForToken)
}

// startHeartbeat arms the in-band ping cycle.
func (c *Conn) startHeartbeat() {
	c.heartbeatTimer.Reset(c.cfg.HeartbeatInterval, c.heartbeat)
}

// heartbeat sends one ping and re-arms. A failed send is logged only; the
// socket's own close event is authoritative.
func (c *Conn) heartbeat() {
	if !c.open {
		return
	}
	cmd := wire.Command{Action: wire.CmdPing}
	if err := c.Send(cmd.Encode()); err != nil {
		c.logger.Warn("heartbeat send failed", "error", err)
	}
	c.heartbeatTimer.Reset(c.cfg.HeartbeatInterval, c.heartbeat)
}
