package wire

import "encoding/json"

// Notice types pushed from the multiplexer to clients.
const (
	NoticeStatus       = "status"
	NoticeMessage      = "message"
	NoticeLog          = "log"
	NoticeRequestToken = "request_fresh_token"
	NoticeDayChange    = "trading_day_changed"
	NoticePing         = "ping"
)

// Status reports connection health to clients. Broadcast on every attach,
// detach, and transport transition.
type Status struct {
	Type              string `json:"type"`
	IsConnected       bool   `json:"isConnected"`
	ReconnectAttempts int    `json:"reconnectAttempts"`
	ActivePorts       int    `json:"activePorts"`
}

// NewStatus builds a status notice.
func NewStatus(connected bool, attempts, ports int) Status {
	return Status{
		Type:              NoticeStatus,
		IsConnected:       connected,
		ReconnectAttempts: attempts,
		ActivePorts:       ports,
	}
}

// Message wraps a routed upstream payload, delivered verbatim.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewMessage wraps raw upstream bytes for delivery.
func NewMessage(data json.RawMessage) Message {
	return Message{Type: NoticeMessage, Data: data}
}

// Log carries an error notice to clients. Only errors are forwarded.
type Log struct {
	Type    string `json:"type"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// NewErrorLog builds an error-level log notice.
func NewErrorLog(msg string) Log {
	return Log{Type: NoticeLog, Level: "error", Message: msg}
}

// TokenRequest asks every client for a fresh credential.
type TokenRequest struct {
	Type string `json:"type"`
}

// NewTokenRequest builds a credential request notice.
func NewTokenRequest() TokenRequest {
	return TokenRequest{Type: NoticeRequestToken}
}

// DayChange announces a trading-day rollover.
type DayChange struct {
	Type         string `json:"type"`
	PreviousDate string `json:"previousDate"`
	NewDate      string `json:"newDate"`
	Session      string `json:"session"`
	Timestamp    int64  `json:"timestamp"`
}

// Ping is the liveness probe. Clients may ignore it.
type Ping struct {
	Type string `json:"type"`
}

// NewPing builds a liveness probe notice.
func NewPing() Ping {
	return Ping{Type: NoticePing}
}
