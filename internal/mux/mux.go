package mux

import (
	"context"
	"log/slog"
	"time"

	"github.com/mktdesk/streammux/internal/eventloop"
	"github.com/mktdesk/streammux/internal/transport"
	"github.com/mktdesk/streammux/internal/wire"
)

// Port is the send handle for one attached client. The client owns the
// underlying channel; the multiplexer only ever writes to it. A failed
// Send means the client is gone.
type Port interface {
	ID() string
	Send(v any) error
}

// Config holds multiplexer settings.
type Config struct {
	SweepInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SweepInterval: 30 * time.Second,
	}
}

// Mux is the multiplexer core. One instance per process.
type Mux struct {
	cfg    Config
	logger *slog.Logger

	loop *eventloop.Loop
	conn *transport.Conn

	// All fields below are loop-confined.
	ports      map[string]*portState
	session    *sessionTracker
	sweepTimer *eventloop.Timer
}

// New creates a multiplexer with its own event loop and upstream
// transport. The transport stays closed until a client asks to connect.
func New(cfg Config, tcfg transport.Config, dialer transport.Dialer, logger *slog.Logger) *Mux {
	if logger == nil {
		logger = slog.Default()
	}

	loop := eventloop.New(1024)

	m := &Mux{
		cfg:     cfg,
		logger:  logger,
		loop:    loop,
		ports:   make(map[string]*portState),
		session: newSessionTracker(logger),
	}
	m.conn = transport.NewConn(tcfg, dialer, loop, logger.With("component", "transport"))
	m.conn.Bind(m)
	m.sweepTimer = loop.NewTimer()

	return m
}

// Run drives the event loop until ctx is cancelled, then closes the
// upstream transport.
func (m *Mux) Run(ctx context.Context) {
	m.loop.Post(m.armSweep)
	m.loop.Run(ctx)

	// The loop is stopped; nothing else touches transport state now.
	m.conn.Shutdown()
}

// Attach registers a client port with empty subscription state and
// reports current connection status to it.
func (m *Mux) Attach(p Port) {
	m.loop.Post(func() { m.attach(p) })
}

// Detach removes a client port and releases its subscriptions.
func (m *Mux) Detach(id string) {
	m.loop.Post(func() { m.detach(id, "client detach") })
}

// Handle processes one client action.
func (m *Mux) Handle(id string, act wire.ClientAction) {
	m.loop.Post(func() { m.handle(id, act) })
}

// Status returns a point-in-time status snapshot. Safe from any
// goroutine; used by the health endpoint.
func (m *Mux) Status() wire.Status {
	var st wire.Status
	m.loop.Call(func() { st = m.status() })
	return st
}

func (m *Mux) attach(p Port) {
	m.ports[p.ID()] = newPortState(p)
	m.logger.Info("client attached",
		"port", p.ID(),
		"active", len(m.ports),
	)
	m.broadcastStatus()
}

func (m *Mux) detach(id, reason string) {
	ps, ok := m.ports[id]
	if !ok {
		return
	}
	delete(m.ports, id)
	m.releaseSubscriptions(ps)

	m.logger.Info("client detached",
		"port", id,
		"reason", reason,
		"active", len(m.ports),
	)
	m.broadcastStatus()
}

func (m *Mux) handle(id string, act wire.ClientAction) {
	ps, ok := m.ports[id]
	if !ok {
		m.logger.Warn("action from unknown port", "port", id, "action", act.Action)
		return
	}

	switch act.Action {
	case wire.ActionConnect:
		m.conn.Connect(act.URL)
	case wire.ActionUpdateToken:
		m.conn.UpdateToken(act.URL, act.Token)
	case wire.ActionReconnectWithToken:
		m.conn.ForceReconnect(act.URL)
	case wire.ActionSubscribeList:
		m.addList(ps, act.List)
	case wire.ActionUnsubscribeList:
		m.removeList(ps, act.List)
	case wire.ActionSubscribeNews:
		m.setNews(ps, true)
	case wire.ActionUnsubscribeNews:
		m.setNews(ps, false)
	case wire.ActionSubscribeSEC:
		m.setSEC(ps, true)
	case wire.ActionUnsubscribeSEC:
		m.setSEC(ps, false)
	case wire.ActionSend:
		m.passthrough(ps, act.Payload)
	default:
		m.logger.Warn("unknown client action", "port", id, "action", act.Action)
		m.deliver(id, ps, wire.NewErrorLog("unknown action: "+act.Action))
	}
}

// status builds the current status notice.
func (m *Mux) status() wire.Status {
	return wire.NewStatus(m.conn.IsOpen(), m.conn.Attempts(), len(m.ports))
}

// broadcastStatus pushes the current status to every client. Sent on
// every attach, detach, and transport transition.
func (m *Mux) broadcastStatus() {
	m.broadcast(m.status())
}

// broadcast delivers v to every attached client. Clients whose channel
// rejects the send are detached implicitly.
func (m *Mux) broadcast(v any) {
	var failed []string
	for id, ps := range m.ports {
		if err := ps.port.Send(v); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		m.detach(id, "send failed")
	}
}

// deliver sends v to one client, detaching it on failure. Returns whether
// the send landed.
func (m *Mux) deliver(id string, ps *portState, v any) bool {
	if err := ps.port.Send(v); err != nil {
		m.detach(id, "send failed")
		return false
	}
	return true
}

// TransportOpen implements transport.Events. Restores the aggregate
// subscription set upstream and reports the new status.
func (m *Mux) TransportOpen() {
	m.fullResync()
	m.broadcastStatus()
}

// TransportClosed implements transport.Events.
func (m *Mux) TransportClosed() {
	m.broadcastStatus()
}

// TransportMessage implements transport.Events. Parses the envelope,
// feeds the session detector, then routes.
func (m *Mux) TransportMessage(data []byte) {
	env, err := wire.ParseEnvelope(data)
	if err != nil {
		m.logger.Warn("dropping malformed upstream message", "error", err)
		m.broadcast(wire.NewErrorLog("malformed upstream message dropped"))
		return
	}

	if change, ok := m.session.Observe(env); ok {
		m.logger.Info("trading day changed",
			"previous", change.PreviousDate,
			"new", change.NewDate,
			"session", change.Session,
		)
		m.broadcast(change)
	}

	m.route(env)
}

// RequestToken implements transport.Events.
func (m *Mux) RequestToken() {
	m.broadcast(wire.NewTokenRequest())
}

// ActivePorts implements transport.Events.
func (m *Mux) ActivePorts() int {
	return len(m.ports)
}
