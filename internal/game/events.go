// internal/game/events.go
package game

// EventType is an enum-like type for outbound room events.
type EventType string

const (
	EventWaitingForPlayers EventType = "waiting_for_players"
	EventPlayerReadyUpdate EventType = "player_ready_update"
	EventDraftStarted      EventType = "draft_started"
	EventDraftPackReceived EventType = "draft_pack_received"
	EventDraftComplete     EventType = "draft_complete"
	EventCardPlaced        EventType = "card_placed"
	EventCardReplaced      EventType = "card_replaced"
	EventQueenPowerUsed    EventType = "queen_power_used"
	EventJackPowerUsed     EventType = "jack_power_used"
	EventTurnChanged       EventType = "turn_changed"
	EventGameFinished      EventType = "game_finished"
	EventGameEnded         EventType = "game_ended"
	EventError             EventType = "error"
)

// Event is a single outbound notification, either broadcast to the whole
// room or sent to one client.
type Event struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}
