// internal/models/card.go
package models

// Suit identifies one of the four card families.
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Suits lists all four suits in deck-construction order.
var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// CardType classifies a card by its rank for the replacement hierarchy.
type CardType string

const (
	TypeAce    CardType = "ace"
	TypeNumber CardType = "number"
	TypeJack   CardType = "jack"
	TypeQueen  CardType = "queen"
	TypeKing   CardType = "king"
)

// Position locates a card inside the pyramid. Row 1 is the base.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Card is the replicated card model. A card with IsEmpty=true is a sentinel
// occupying a pyramid slot, meaning "no card here" (the slot itself exists).
// Cards are immutable after construction except for Position and container
// membership; a card lives in exactly one of: the draft pool, a hand, a draft
// pack, a pyramid slot, or the discard pile.
type Card struct {
	ID           string    `json:"id"`
	Suit         Suit      `json:"suit"`
	Rank         string    `json:"rank"` // "ace", "2".."10", "jack", "queen", "king"
	NumericValue int       `json:"numericValue"`
	IsEmpty      bool      `json:"isEmpty"`
	IsVisible    bool      `json:"isVisible"`
	Position     *Position `json:"position"`
}

// Type derives the hierarchy classification from the rank.
func (c *Card) Type() CardType {
	switch c.Rank {
	case "ace":
		return TypeAce
	case "jack":
		return TypeJack
	case "queen":
		return TypeQueen
	case "king":
		return TypeKing
	default:
		return TypeNumber
	}
}

// NewEmptyCard returns the empty-slot sentinel used to fill pyramid positions.
func NewEmptyCard(id string) *Card {
	return &Card{ID: id, IsEmpty: true}
}
