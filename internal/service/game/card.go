package game

import (
	"fmt"

	"github.com/google/uuid"
)

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

var suits = []Suit{Hearts, Diamonds, Clubs, Spades}

var suitGlyphs = map[Suit]string{
	Hearts: "♥", Diamonds: "♦", Clubs: "♣", Spades: "♠",
}

type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

var rankValues = map[Rank]int{
	Ace: 1, Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7,
	Eight: 8, Nine: 9, Ten: 10, Jack: 11, Queen: 12, King: 13,
}

// DeckSize is the number of cards in a full deck.
const DeckSize = 52

// Card is an immutable playing card. ID only keys the card for renderers;
// matching looks at rank alone.
type Card struct {
	ID   string `json:"id"`
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
}

// Value maps the rank onto 1 (ace) through 13 (king). Unknown ranks are 0.
func (c Card) Value() int {
	return rankValues[c.Rank]
}

func (c Card) String() string {
	glyph, ok := suitGlyphs[c.Suit]
	if !ok {
		return "??"
	}
	return string(c.Rank) + glyph
}

// NewCard builds a card with a fresh id.
func NewCard(rank Rank, suit Suit) Card {
	return Card{ID: uuid.NewString(), Suit: suit, Rank: rank}
}

// ParseCard reads the short form produced by String, e.g. "10♥" or "Q♠".
func ParseCard(s string) (Card, error) {
	for suit, glyph := range suitGlyphs {
		if len(s) <= len(glyph) || s[len(s)-len(glyph):] != glyph {
			continue
		}
		rank := Rank(s[:len(s)-len(glyph)])
		if _, ok := rankValues[rank]; !ok {
			break
		}
		return NewCard(rank, suit), nil
	}
	return Card{}, fmt.Errorf("invalid card %q", s)
}

// CheckMatch reports whether card captures the pile: the pile must be
// non-empty and its top card must have the same value.
func CheckMatch(card Card, pile []Card) bool {
	if len(pile) == 0 {
		return false
	}
	return card.Value() == pile[len(pile)-1].Value()
}
