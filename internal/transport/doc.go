// Package transport owns the single upstream WebSocket connection.
//
// The transport:
//   - Holds at most one live socket; a replacement always tears the old
//     one down first
//   - Reconnects with exponential backoff, but only ever dials after a
//     fresh credential has been supplied by a client
//   - Sends an in-band heartbeat while open
//   - Surfaces open/close/message events to its owner on the event loop
package transport
