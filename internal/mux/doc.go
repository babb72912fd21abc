// Package mux implements the background connection multiplexer core.
//
// The multiplexer:
//   - Tracks every attached client and its subscription state
//   - Aggregates duplicate subscriptions into a minimal upstream set
//   - Routes each inbound upstream message to exactly the clients that
//     want it
//   - Detects trading-day rollovers and broadcasts them once per change
//   - Sweeps out clients whose channel died without a detach
//
// All state lives on a single event loop; public methods post onto it.
package mux
