// Package wire defines the message envelopes crossing the multiplexer's
// three boundaries:
//   - inbound upstream messages (Envelope, classified for routing)
//   - client actions arriving on a local port (ClientAction)
//   - notices pushed from the multiplexer to clients (Status, Message, ...)
//   - commands sent upstream (Command)
//
// Payloads are opaque beyond the envelope fields needed for routing.
package wire
