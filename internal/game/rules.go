// internal/game/rules.go
package game

import "regicide-server/internal/models"

// CanReplace reports whether newCard may take the slot of existing under the
// face-card hierarchy used on rows 2-4. Row 1 uses the simpler value rule
// (see canReplaceAt).
//
// Aces cycle over the face cards: an ace beats jack, queen, king and ace,
// but loses to any number. Any non-ace beats an ace. Numbers only beat
// numbers of lower or equal value. Jack beats ace/number/jack, queen beats
// everything but king, king beats everything.
func CanReplace(newCard, existing *models.Card) bool {
	nt := newCard.Type()
	et := existing.Type()

	if nt == models.TypeAce {
		switch et {
		case models.TypeJack, models.TypeQueen, models.TypeKing, models.TypeAce:
			return true
		default:
			return false
		}
	}

	if et == models.TypeAce {
		return true
	}

	switch nt {
	case models.TypeNumber:
		return et == models.TypeNumber && newCard.NumericValue >= existing.NumericValue
	case models.TypeJack:
		return et == models.TypeNumber || et == models.TypeJack
	case models.TypeQueen:
		return et == models.TypeNumber || et == models.TypeJack || et == models.TypeQueen
	case models.TypeKing:
		return true
	}
	return false
}

// canReplaceAt applies the per-row replacement rule: plain value comparison
// on the base row, hierarchy above it.
func canReplaceAt(newCard, existing *models.Card, row int) bool {
	if row == 1 {
		return newCard.NumericValue >= existing.NumericValue
	}
	return CanReplace(newCard, existing)
}

// canPlaceAt reports whether card may be placed on the empty slot (row,col).
// The base row is free; higher rows need a same-suit support directly below.
func (r *Room) canPlaceAt(card *models.Card, row, col int) bool {
	if row == 1 {
		return true
	}
	left := r.State.Pyramid.Get(row-1, col)
	right := r.State.Pyramid.Get(row-1, col+1)
	if left != nil && !left.IsEmpty && left.Suit == card.Suit {
		return true
	}
	if right != nil && !right.IsEmpty && right.Suit == card.Suit {
		return true
	}
	return false
}

// canPlayerPlay reports whether any card in hand has at least one legal
// target anywhere on the pyramid.
func (r *Room) canPlayerPlay(p *models.Player) bool {
	for _, card := range p.Hand {
		for row := 1; row <= 4; row++ {
			for col := 0; col < models.RowCapacities[row-1]; col++ {
				existing := r.State.Pyramid.Get(row, col)
				if existing == nil {
					continue
				}
				if existing.IsEmpty {
					if r.canPlaceAt(card, row, col) {
						return true
					}
				} else if canReplaceAt(card, existing, row) {
					return true
				}
			}
		}
	}
	return false
}
