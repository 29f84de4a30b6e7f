// internal/game/deck_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regicide-server/internal/models"
)

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, 52)

	ids := make(map[string]bool, 52)
	perSuit := make(map[models.Suit]int)
	kings := 0
	for _, c := range deck {
		assert.False(t, ids[c.ID], "duplicate card id")
		ids[c.ID] = true
		perSuit[c.Suit]++
		if c.Rank == "king" {
			kings++
		}
		assert.False(t, c.IsEmpty)
		assert.Equal(t, rankValue(c.Rank), c.NumericValue)
	}
	assert.Equal(t, 4, kings)
	for _, suit := range models.Suits {
		assert.Equal(t, 13, perSuit[suit])
	}
}

func TestRankValue(t *testing.T) {
	assert.Equal(t, 1, rankValue("ace"))
	assert.Equal(t, 2, rankValue("2"))
	assert.Equal(t, 10, rankValue("10"))
	assert.Equal(t, 11, rankValue("jack"))
	assert.Equal(t, 12, rankValue("queen"))
	assert.Equal(t, 13, rankValue("king"))
}

func TestShuffleKeepsAllCards(t *testing.T) {
	deck := NewDeck()
	before := make(map[string]bool, len(deck))
	for _, c := range deck {
		before[c.ID] = true
	}

	Shuffle(rand.New(rand.NewSource(1)), deck)

	require.Len(t, deck, 52)
	for _, c := range deck {
		assert.True(t, before[c.ID])
	}
}
