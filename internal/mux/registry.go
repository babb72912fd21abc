package mux

// portState is the registry entry for one attached client: its send
// handle plus independent subscription state.
type portState struct {
	port Port

	lists     map[string]struct{}
	news      bool
	sec       bool
	eventSubs map[string]struct{}
}

func newPortState(p Port) *portState {
	return &portState{
		port:      p,
		lists:     make(map[string]struct{}),
		eventSubs: make(map[string]struct{}),
	}
}

// listCount returns how many attached clients subscribe to list.
func (m *Mux) listCount(list string) int {
	n := 0
	for _, ps := range m.ports {
		if _, ok := ps.lists[list]; ok {
			n++
		}
	}
	return n
}

// anyNews reports whether any attached client wants news.
func (m *Mux) anyNews() bool {
	for _, ps := range m.ports {
		if ps.news {
			return true
		}
	}
	return false
}

// anySEC reports whether any attached client wants SEC filings.
func (m *Mux) anySEC() bool {
	for _, ps := range m.ports {
		if ps.sec {
			return true
		}
	}
	return false
}

// ownsAny reports whether the client owns any of the given event sub_ids.
func (ps *portState) ownsAny(subIDs []string) bool {
	for _, id := range subIDs {
		if _, ok := ps.eventSubs[id]; ok {
			return true
		}
	}
	return false
}
