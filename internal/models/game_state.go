package models

// GamePhase is the room's lifecycle stage.
type GamePhase string

const (
	PhaseWaiting  GamePhase = "waiting"
	PhaseDrafting GamePhase = "drafting"
	PhasePlaying  GamePhase = "playing"
	PhaseFinished GamePhase = "finished"
)

// GameOptions is the construction-time room configuration.
type GameOptions struct {
	PlayerCount  int    `json:"playerCount"` // 3 or 4
	IsPrivate    bool   `json:"isPrivate"`
	RoomCode     string `json:"roomCode,omitempty"`
	ExcludedSuit Suit   `json:"excludedSuit,omitempty"` // 3-player games only
}

// GameState is the replicated root. Field names are the wire contract and
// must not change. Player order is turn order and is fixed once the game
// starts.
type GameState struct {
	Phase              GamePhase   `json:"phase"`
	Players            []*Player   `json:"players"`
	CurrentPlayerIndex int         `json:"currentPlayerIndex"`
	Turn               int         `json:"turn"`
	Pyramid            *Pyramid    `json:"pyramid"`
	DiscardPile        []*Card     `json:"discardPile"`
	GameOptions        GameOptions `json:"gameOptions"`
	Winner             string      `json:"winner"`
	CreatedAt          int64       `json:"createdAt"`
	LastActivity       int64       `json:"lastActivity"`
}
