// internal/game/deck.go
package game

import (
	"math/rand"
	"strconv"

	"github.com/google/uuid"

	"regicide-server/internal/models"
)

var deckRanks = []string{"ace", "2", "3", "4", "5", "6", "7", "8", "9", "10", "jack", "queen", "king"}

// rankValue maps a rank to its numeric value (ace=1 .. king=13).
func rankValue(rank string) int {
	switch rank {
	case "ace":
		return 1
	case "jack":
		return 11
	case "queen":
		return 12
	case "king":
		return 13
	default:
		v, _ := strconv.Atoi(rank)
		return v
	}
}

// NewDeck builds the 52-card deck, one card per (suit, rank) pair, each with
// a globally unique id.
func NewDeck() []*models.Card {
	deck := make([]*models.Card, 0, 52)
	for _, suit := range models.Suits {
		for _, rank := range deckRanks {
			deck = append(deck, &models.Card{
				ID:           uuid.NewString(),
				Suit:         suit,
				Rank:         rank,
				NumericValue: rankValue(rank),
				IsVisible:    true,
			})
		}
	}
	return deck
}

// Shuffle permutes the slice in place. Cards themselves are not mutated.
func Shuffle(r *rand.Rand, cards []*models.Card) {
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
