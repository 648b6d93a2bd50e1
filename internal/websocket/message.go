package websocket

import (
	"encoding/json"

	"github.com/bpadilla17/radladder-game/internal/game"
)

type MessageType string

const (
	// Client -> Server
	MessageTypeAnswer        MessageType = "answer"
	MessageTypePass          MessageType = "pass"
	MessageTypeAskAudience   MessageType = "ask_audience"
	MessageTypeCloseAudience MessageType = "close_audience"
	MessageTypeSafetyNet     MessageType = "safety_net"
	MessageTypeNext          MessageType = "next"
	MessageTypeAbandon       MessageType = "abandon"
	MessageTypeState         MessageType = "state"
	MessageTypePing          MessageType = "ping"

	// Server -> Client
	MessageTypeConnected      MessageType = "connected"
	MessageTypeQuestion       MessageType = "question"
	MessageTypeTick           MessageType = "tick"
	MessageTypeTimeExpired    MessageType = "time_expired"
	MessageTypeAnswerResult   MessageType = "answer_result"
	MessageTypePassUsed       MessageType = "pass_used"
	MessageTypeAudienceStats  MessageType = "audience_stats"
	MessageTypeAudienceClosed MessageType = "audience_closed"
	MessageTypeSafetyNetArmed MessageType = "safety_net_armed"
	MessageTypeGameComplete   MessageType = "game_complete"
	MessageTypeAborted        MessageType = "aborted"
	MessageTypeError          MessageType = "error"
	MessageTypePong           MessageType = "pong"
)

// eventMessages maps session events onto the messages sent to the browser.
// Events without an entry are not forwarded.
var eventMessages = map[game.EventType]MessageType{
	game.EventQuestion:       MessageTypeQuestion,
	game.EventTick:           MessageTypeTick,
	game.EventTimeExpired:    MessageTypeTimeExpired,
	game.EventAnswerResult:   MessageTypeAnswerResult,
	game.EventPassUsed:       MessageTypePassUsed,
	game.EventAudienceStats:  MessageTypeAudienceStats,
	game.EventAudienceClosed: MessageTypeAudienceClosed,
	game.EventSafetyNetArmed: MessageTypeSafetyNetArmed,
	game.EventGameComplete:   MessageTypeGameComplete,
	game.EventAborted:        MessageTypeAborted,
}

type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// InboundMessage keeps the payload raw until the command is known.
type InboundMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type AnswerPayload struct {
	Option string `json:"option"`
}

type ConnectedPayload struct {
	Session game.Snapshot `json:"session"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
