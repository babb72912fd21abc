package transport

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
	ErrNoURL         = errors.New("no upstream url")
)

// Config holds upstream transport settings.
type Config struct {
	BackoffBase       time.Duration // first reconnect delay
	BackoffCap        time.Duration // reconnect delay ceiling
	TokenFallback     time.Duration // credential re-request interval
	HeartbeatInterval time.Duration // in-band ping interval
	HandshakeTimeout  time.Duration // dial timeout
	WriteTimeout      time.Duration // write deadline for sends
	ReadBuffer        int           // inbound message channel size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BackoffBase:       1 * time.Second,
		BackoffCap:        30 * time.Second,
		TokenFallback:     60 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		WriteTimeout:      5 * time.Second,
		ReadBuffer:        1000,
	}
}

// Events receives transport lifecycle callbacks. Every method is invoked
// on the owning event loop.
type Events interface {
	// TransportOpen fires after a successful dial. The owner re-issues
	// aggregated subscriptions here.
	TransportOpen()

	// TransportClosed fires when an open socket is lost.
	TransportClosed()

	// TransportMessage delivers one inbound upstream message.
	TransportMessage(data []byte)

	// RequestToken asks attached clients for a fresh credential.
	RequestToken()

	// ActivePorts reports how many clients are attached. Recovery is not
	// scheduled when it returns zero.
	ActivePorts() int
}
