package mux

import (
	"github.com/mktdesk/streammux/internal/wire"
)

// The liveness sweeper bounds how long a dead client can linger in the
// registry when its detach notification never arrived (tab crash). A
// harmless ping probe goes to every client each interval; any send that
// fails is treated as a detach.

// armSweep schedules the next sweep cycle.
func (m *Mux) armSweep() {
	m.sweepTimer.Reset(m.cfg.SweepInterval, m.sweep)
}

// sweep probes every registered client and prunes the unreachable ones.
func (m *Mux) sweep() {
	probe := wire.NewPing()

	var failed []string
	for id, ps := range m.ports {
		if err := ps.port.Send(probe); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		m.detach(id, "sweep probe failed")
	}

	m.armSweep()
}
