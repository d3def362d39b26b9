package flashcards

// Deck steps through a set of cards. Navigation wraps at both ends, so a
// study session cycles instead of stopping at the last card.
type Deck struct {
	cards []Card
	pos   int
}

// NewDeck creates a Deck over cards.
func NewDeck(cards []Card) *Deck {
	return &Deck{cards: cards}
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Pos returns the zero-based position of the current card.
func (d *Deck) Pos() int {
	return d.pos
}

// Current returns the card at the current position, or nil for an empty
// deck.
func (d *Deck) Current() *Card {
	if len(d.cards) == 0 {
		return nil
	}
	return &d.cards[d.pos]
}

// Next advances to the following card, wrapping to the first after the
// last.
func (d *Deck) Next() *Card {
	if len(d.cards) == 0 {
		return nil
	}
	d.pos = (d.pos + 1) % len(d.cards)
	return &d.cards[d.pos]
}

// Prev steps back to the preceding card, wrapping to the last before the
// first.
func (d *Deck) Prev() *Card {
	if len(d.cards) == 0 {
		return nil
	}
	d.pos = (d.pos - 1 + len(d.cards)) % len(d.cards)
	return &d.cards[d.pos]
}
