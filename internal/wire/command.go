package wire

import "encoding/json"

// Upstream command actions.
const (
	CmdSubscribeList   = "subscribe_list"
	CmdUnsubscribeList = "unsubscribe_list"
	CmdSubscribeNews   = "subscribe_benzinga_news"
	CmdUnsubscribeNews = "unsubscribe_benzinga_news"
	CmdSubscribeSEC    = "subscribe_sec"
	CmdUnsubscribeSEC  = "unsubscribe_sec"
	CmdPing            = "ping"
	CmdRefreshToken    = "refresh_token"
)

// Command is a JSON action message sent upstream.
type Command struct {
	Action string `json:"action"`
	List   string `json:"list,omitempty"`
	Token  string `json:"token,omitempty"`
}

// Encode marshals the command to its wire form.
func (c Command) Encode() []byte {
	data, _ := json.Marshal(c)
	return data
}

// ListCommand builds a list (un)subscribe command.
func ListCommand(action, list string) Command {
	return Command{Action: action, List: list}
}
