package models

import "fmt"

// RowCapacities gives the number of slots per pyramid row, indexed by row-1.
// Row 1 is the 4-slot base, row 4 the apex.
var RowCapacities = [4]int{4, 3, 2, 1}

// TotalSlots is the fixed slot count of the board.
const TotalSlots = 10

// Pyramid is the triangular board. Every slot always holds a Card; empty
// slots hold the IsEmpty sentinel. Invariant: TotalCards + EmptySlots == 10.
type Pyramid struct {
	Row1 []*Card `json:"row1"`
	Row2 []*Card `json:"row2"`
	Row3 []*Card `json:"row3"`
	Row4 []*Card `json:"row4"`

	TotalCards int `json:"totalCards"`
	EmptySlots int `json:"emptySlots"`
}

// NewPyramid builds an all-empty board with sentinel cards in every slot.
func NewPyramid() *Pyramid {
	p := &Pyramid{}
	for row := 1; row <= 4; row++ {
		slots := make([]*Card, RowCapacities[row-1])
		for col := range slots {
			slots[col] = NewEmptyCard(fmt.Sprintf("empty_r%d_%d", row, col))
			slots[col].Position = &Position{Row: row, Col: col}
		}
		p.setRow(row, slots)
	}
	p.TotalCards = 0
	p.EmptySlots = TotalSlots
	return p
}

func (p *Pyramid) setRow(row int, cards []*Card) {
	switch row {
	case 1:
		p.Row1 = cards
	case 2:
		p.Row2 = cards
	case 3:
		p.Row3 = cards
	case 4:
		p.Row4 = cards
	}
}

// Row returns the slot slice for a row, or nil when out of bounds.
func (p *Pyramid) Row(row int) []*Card {
	switch row {
	case 1:
		return p.Row1
	case 2:
		return p.Row2
	case 3:
		return p.Row3
	case 4:
		return p.Row4
	default:
		return nil
	}
}

// Get returns the card at (row,col), or nil when out of bounds.
func (p *Pyramid) Get(row, col int) *Card {
	slots := p.Row(row)
	if slots == nil || col < 0 || col >= len(slots) {
		return nil
	}
	return slots[col]
}

// Set places card at (row,col), stamping its position and maintaining the
// occupancy counters. Overwriting an occupied slot with another occupied card
// leaves the counters untouched. Returns false when out of bounds.
func (p *Pyramid) Set(row, col int, card *Card) bool {
	slots := p.Row(row)
	if slots == nil || col < 0 || col >= len(slots) || card == nil {
		return false
	}

	wasEmpty := slots[col] == nil || slots[col].IsEmpty
	slots[col] = card
	card.Position = &Position{Row: row, Col: col}

	if wasEmpty && !card.IsEmpty {
		p.TotalCards++
		p.EmptySlots--
	} else if !wasEmpty && card.IsEmpty {
		p.TotalCards--
		p.EmptySlots++
	}
	return true
}

// IsValidEmptyPosition reports whether (row,col) is in bounds and currently
// holds the empty sentinel.
func (p *Pyramid) IsValidEmptyPosition(row, col int) bool {
	card := p.Get(row, col)
	return card != nil && card.IsEmpty
}
