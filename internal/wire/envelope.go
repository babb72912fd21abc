package wire

import "encoding/json"

// Inbound message types the multiplexer itself reacts to. Everything else
// is routed (or broadcast) without interpretation.
const (
	TypeConnected     = "connected"
	TypeSessionChange = "session_change"
	TypeNews          = "benzinga_news"
	TypeSECFiling     = "sec_filing"
)

// Kind classifies an inbound message for routing.
type Kind int

const (
	// KindBroadcast goes to every attached client (status, log,
	// session-change and anything else unrecognized).
	KindBroadcast Kind = iota

	// KindList goes to clients subscribed to the message's list.
	KindList

	// KindNews goes to clients with the news flag set.
	KindNews

	// KindSEC goes to clients with the SEC flag set.
	KindSEC

	// KindEventMatch goes to clients owning any sub_id in matched_subs.
	KindEventMatch

	// KindEventSnapshot goes to clients owning the message's sub_id.
	KindEventSnapshot
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindNews:
		return "news"
	case KindSEC:
		return "sec"
	case KindEventMatch:
		return "event_match"
	case KindEventSnapshot:
		return "event_snapshot"
	default:
		return "broadcast"
	}
}

// Envelope holds the routing fields of an inbound upstream message plus
// the raw payload for delivery.
type Envelope struct {
	Type        string   `json:"type"`
	List        string   `json:"list,omitempty"`
	SubID       string   `json:"sub_id,omitempty"`
	MatchedSubs []string `json:"matched_subs,omitempty"`
	TradingDate string   `json:"trading_date,omitempty"`
	NewDay      bool     `json:"new_day,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ParseEnvelope decodes the routing fields of an upstream message. The
// original bytes are retained in Raw for verbatim delivery.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	env.Raw = data
	return env, nil
}

// Classify maps an envelope to its routing kind. Checks mirror the routing
// table order: list scope wins, then news, SEC, matched events, event
// snapshots, and finally broadcast.
func (e Envelope) Classify() Kind {
	switch {
	case e.List != "":
		return KindList
	case e.Type == TypeNews:
		return KindNews
	case e.Type == TypeSECFiling:
		return KindSEC
	case len(e.MatchedSubs) > 0:
		return KindEventMatch
	case e.SubID != "":
		return KindEventSnapshot
	default:
		return KindBroadcast
	}
}
