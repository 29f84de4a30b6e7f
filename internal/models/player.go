package models

import "github.com/coder/websocket"

// Player is one seat in a room. The record survives disconnection: only
// IsConnected flips, hand/score/secret king are retained until disposal.
// Invariant: HandCount always mirrors len(Hand) after any mutation.
type Player struct {
	SessionID   string  `json:"sessionId"`
	Pseudo      string  `json:"pseudo"`
	IsConnected bool    `json:"isConnected"`
	IsReady     bool    `json:"isReady"`
	Hand        []*Card `json:"hand"`
	SecretKing  *Card   `json:"secretKing"`
	DraftPack   []*Card `json:"draftPack"`
	HasPicked   bool    `json:"hasPicked"`
	Score       int     `json:"score"`
	HandCount   int     `json:"handCount"`
	JoinedAt    int64   `json:"joinedAt"`

	Conn *websocket.Conn `json:"-"`
}

// SyncHandCount refreshes the replicated hand counter after a hand mutation.
func (p *Player) SyncHandCount() {
	p.HandCount = len(p.Hand)
}

// HandCard returns the card with the given id from the player's hand, or nil.
func (p *Player) HandCard(cardID string) *Card {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}

// RemoveFromHand removes the card with the given id from the hand and updates
// HandCount. Returns false if the card was not in the hand.
func (p *Player) RemoveFromHand(cardID string) bool {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			p.SyncHandCount()
			return true
		}
	}
	return false
}
