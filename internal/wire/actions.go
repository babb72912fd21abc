package wire

import "encoding/json"

// Actions a client may send to the multiplexer.
const (
	ActionConnect            = "connect"
	ActionUpdateToken        = "update_token"
	ActionReconnectWithToken = "reconnect_with_token"
	ActionSubscribeList      = "subscribe_list"
	ActionUnsubscribeList    = "unsubscribe_list"
	ActionSubscribeNews      = "subscribe_news"
	ActionUnsubscribeNews    = "unsubscribe_news"
	ActionSubscribeSEC       = "subscribe_sec"
	ActionUnsubscribeSEC     = "unsubscribe_sec"
	ActionSend               = "send"
)

// Payload actions the multiplexer inspects inside a generic send, to keep
// routing state (event sub_ids) and subscription aggregates current.
const (
	PayloadSubscribeEvents   = "subscribe_events"
	PayloadUnsubscribeEvents = "unsubscribe_events"
	PayloadSubscribeNews     = "subscribe_benzinga_news"
	PayloadUnsubscribeNews   = "unsubscribe_benzinga_news"
	PayloadSubscribeSEC      = "subscribe_sec"
	PayloadUnsubscribeSEC    = "unsubscribe_sec"
)

// ClientAction is one request from an attached client.
type ClientAction struct {
	Action  string          `json:"action"`
	URL     string          `json:"url,omitempty"`
	Token   string          `json:"token,omitempty"`
	List    string          `json:"list,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PayloadEnvelope is the part of a passthrough payload the multiplexer
// looks at. The rest is forwarded upstream untouched.
type PayloadEnvelope struct {
	Action string `json:"action"`
	SubID  string `json:"sub_id,omitempty"`
}

// ParseAction decodes a client action frame.
func ParseAction(data []byte) (ClientAction, error) {
	var act ClientAction
	if err := json.Unmarshal(data, &act); err != nil {
		return ClientAction{}, err
	}
	return act, nil
}

// ParsePayload decodes the inspected fields of a passthrough payload.
func ParsePayload(data []byte) (PayloadEnvelope, error) {
	var p PayloadEnvelope
	if err := json.Unmarshal(data, &p); err != nil {
		return PayloadEnvelope{}, err
	}
	return p, nil
}
