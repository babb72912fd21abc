package mux

import (
	"github.com/mktdesk/streammux/internal/wire"
)

// The aggregator keeps the upstream subscription set equal to the union
// of all clients' subscription state: the first subscriber triggers the
// upstream subscribe, the last unsubscriber the upstream unsubscribe.
// While the transport is closed nothing is sent; the full resync on the
// next open restores the whole set.

// addList subscribes the client to a list.
func (m *Mux) addList(ps *portState, list string) {
	if list == "" {
		return
	}
	if _, ok := ps.lists[list]; ok {
		return
	}
	ps.lists[list] = struct{}{}

	if m.listCount(list) == 1 {
		m.upstreamCommand(wire.ListCommand(wire.CmdSubscribeList, list))
	}
}

// removeList drops the client's list subscription.
func (m *Mux) removeList(ps *portState, list string) {
	if _, ok := ps.lists[list]; !ok {
		return
	}
	delete(ps.lists, list)

	if m.listCount(list) == 0 {
		m.upstreamCommand(wire.ListCommand(wire.CmdUnsubscribeList, list))
	}
}

// setNews flips the client's news flag, adjusting the upstream aggregate
// on 0->1 and 1->0 transitions.
func (m *Mux) setNews(ps *portState, on bool) {
	if ps.news == on {
		return
	}
	ps.news = on

	if on && m.newsCount() == 1 {
		m.upstreamCommand(wire.Command{Action: wire.CmdSubscribeNews})
	} else if !on && !m.anyNews() {
		m.upstreamCommand(wire.Command{Action: wire.CmdUnsubscribeNews})
	}
}

// setSEC flips the client's SEC flag, same rule as setNews.
func (m *Mux) setSEC(ps *portState, on bool) {
	if ps.sec == on {
		return
	}
	ps.sec = on

	if on && m.secCount() == 1 {
		m.upstreamCommand(wire.Command{Action: wire.CmdSubscribeSEC})
	} else if !on && !m.anySEC() {
		m.upstreamCommand(wire.Command{Action: wire.CmdUnsubscribeSEC})
	}
}

// releaseSubscriptions re-evaluates the aggregates after a client left
// the registry. Event subscriptions die with the port; upstream never
// aggregated them.
func (m *Mux) releaseSubscriptions(ps *portState) {
	for list := range ps.lists {
		if m.listCount(list) == 0 {
			m.upstreamCommand(wire.ListCommand(wire.CmdUnsubscribeList, list))
		}
	}
	if ps.news && !m.anyNews() {
		m.upstreamCommand(wire.Command{Action: wire.CmdUnsubscribeNews})
	}
	if ps.sec && !m.anySEC() {
		m.upstreamCommand(wire.Command{Action: wire.CmdUnsubscribeSEC})
	}
}

// fullResync re-issues every aggregated subscription after the transport
// (re)opened. Event subscriptions are excluded on purpose: their filter
// state is richer than the multiplexer models, so each owning client
// re-issues its own once it sees the transport come up.
func (m *Mux) fullResync() {
	seen := make(map[string]struct{})
	for _, ps := range m.ports {
		for list := range ps.lists {
			if _, ok := seen[list]; ok {
				continue
			}
			seen[list] = struct{}{}
			m.upstreamCommand(wire.ListCommand(wire.CmdSubscribeList, list))
		}
	}
	if m.anyNews() {
		m.upstreamCommand(wire.Command{Action: wire.CmdSubscribeNews})
	}
	if m.anySEC() {
		m.upstreamCommand(wire.Command{Action: wire.CmdSubscribeSEC})
	}

	m.logger.Info("subscriptions resynced",
		"lists", len(seen),
		"news", m.anyNews(),
		"sec", m.anySEC(),
	)
}

// passthrough forwards an opaque payload upstream verbatim, inspecting
// only the action and sub_id to keep routing state current.
func (m *Mux) passthrough(ps *portState, payload []byte) {
	if len(payload) == 0 {
		return
	}

	if p, err := wire.ParsePayload(payload); err == nil {
		switch p.Action {
		case wire.PayloadSubscribeEvents:
			if p.SubID != "" {
				ps.eventSubs[p.SubID] = struct{}{}
			}
		case wire.PayloadUnsubscribeEvents:
			delete(ps.eventSubs, p.SubID)
		case wire.PayloadSubscribeNews:
			ps.news = true
		case wire.PayloadUnsubscribeNews:
			ps.news = false
		case wire.PayloadSubscribeSEC:
			ps.sec = true
		case wire.PayloadUnsubscribeSEC:
			ps.sec = false
		}
	} else {
		m.logger.Warn("unparseable passthrough payload", "error", err)
	}

	if err := m.conn.Send(payload); err != nil {
		m.logger.Warn("passthrough send failed", "error", err)
	}
}

// newsCount returns how many attached clients want news.
func (m *Mux) newsCount() int {
	n := 0
	for _, ps := range m.ports {
		if ps.news {
			n++
		}
	}
	return n
}

// secCount returns how many attached clients want SEC filings.
func (m *Mux) secCount() int {
	n := 0
	for _, ps := range m.ports {
		if ps.sec {
			n++
		}
	}
	return n
}

// upstreamCommand sends an aggregate (un)subscribe upstream. A closed
// transport is fine: the next full resync covers subscribes, and there is
// nothing upstream to unsubscribe from.
func (m *Mux) upstreamCommand(cmd wire.Command) {
	if !m.conn.IsOpen() {
		return
	}
	if err := m.conn.Send(cmd.Encode()); err != nil {
		m.logger.Warn("upstream command failed",
			"action", cmd.Action,
			"list", cmd.List,
			"error", err,
		)
	}
}
