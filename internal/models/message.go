package models

// MessageType enumerates every inbound client message. The room's dispatch
// switch over this type is exhaustive; unknown types are rejected at the
// transport boundary.
type MessageType string

const (
	MsgPlayerReady     MessageType = "player_ready"
	MsgPlayerNotReady  MessageType = "player_not_ready"
	MsgDraftCards      MessageType = "draft_cards"
	MsgPlayCard        MessageType = "play_card"
	MsgPassTurn        MessageType = "pass_turn"
	MsgUseSpecialPower MessageType = "use_special_power" // reserved, no-op
)

// PlayAction is the kind of play_card action.
type PlayAction string

const (
	ActionPlace        PlayAction = "place"
	ActionReplace      PlayAction = "replace"
	ActionSpecialPower PlayAction = "special_power"
)

// PlayTarget carries the action-specific targeting data of a play_card
// message. Row/Col address the pyramid slot; the remaining fields are only
// set for special_power plays (BaseAction plus the queen/jack selections).
type PlayTarget struct {
	Row int `json:"row"`
	Col int `json:"col"`

	BaseAction      PlayAction `json:"baseAction,omitempty"`
	ExchangeTargets []Position `json:"exchangeTargets,omitempty"`
	GiveCardID      string     `json:"giveCardId,omitempty"`
	TargetPlayerID  string     `json:"targetPlayerId,omitempty"`
}

// InboundMessage is the decoded client message handed to the room. Exactly
// the fields relevant to Type are populated.
type InboundMessage struct {
	Type MessageType `json:"type"`

	// draft_cards
	CardIDs []string `json:"cardIds,omitempty"`

	// play_card
	CardID string      `json:"cardId,omitempty"`
	Action PlayAction  `json:"action,omitempty"`
	Target *PlayTarget `json:"target,omitempty"`
}
