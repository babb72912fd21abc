package mux

import (
	"github.com/mktdesk/streammux/internal/wire"
)

// route fans one inbound message out to the clients that want it.
// O(clients) per message. A failed delivery removes the client from the
// registry, not merely skips it.
func (m *Mux) route(env wire.Envelope) {
	kind := env.Classify()
	msg := wire.NewMessage(env.Raw)

	var failed []string
	for id, ps := range m.ports {
		if !wants(ps, kind, env) {
			continue
		}
		if err := ps.port.Send(msg); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		m.detach(id, "send failed")
	}
}

// wants decides whether one client receives a message of the given kind.
func wants(ps *portState, kind wire.Kind, env wire.Envelope) bool {
	switch kind {
	case wire.KindList:
		_, ok := ps.lists[env.List]
		return ok
	case wire.KindNews:
		return ps.news
	case wire.KindSEC:
		return ps.sec
	case wire.KindEventMatch:
		return ps.ownsAny(env.MatchedSubs)
	case wire.KindEventSnapshot:
		_, ok := ps.eventSubs[env.SubID]
		return ok
	default:
		// Status, log, session-change and anything unrecognized go to
		// everyone.
		return true
	}
}
