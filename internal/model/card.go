package model

// Card is a single estimation card value
type Card string

// Special (non-estimate) cards
const (
	CardUnsure Card = "?"
	CardCoffee Card = "☕"
)

// cardSet is the fixed deck, in display order
var cardSet = []Card{"0", "½", "1", "2", "3", "5", "8", "13", "21", CardUnsure, CardCoffee}

// CardSet returns the fixed ordered deck available to every room
func CardSet() []Card {
	cards := make([]Card, len(cardSet))
	copy(cards, cardSet)
	return cards
}

// IsValidCard reports whether a selection is acceptable.
// A nil card is valid and means "no selection".
func IsValidCard(card *Card) bool {
	if card == nil {
		return true
	}
	for _, c := range cardSet {
		if *card == c {
			return true
		}
	}
	return false
}

// IsEstimate reports whether the card carries a numeric estimate
// (everything in the deck except ? and ☕)
func (c Card) IsEstimate() bool {
	return c != CardUnsure && c != CardCoffee
}
