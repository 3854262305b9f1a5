package game

import (
	"math/rand"
)

// NewDeck returns all 52 suit/rank pairs in a fixed order, each with a
// fresh id.
func NewDeck(newID func() string) []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card{ID: newID(), Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle returns a uniformly permuted copy of cards (Fisher-Yates). The
// input slice is left untouched.
func Shuffle(r *rand.Rand, cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deal splits deck into playerCount contiguous blocks of
// len(deck)/playerCount cards. Leftover cards are dropped.
func Deal(deck []Card, playerCount int) [][]Card {
	if playerCount <= 0 {
		return nil
	}
	perPlayer := len(deck) / playerCount
	hands := make([][]Card, playerCount)
	for i := 0; i < playerCount; i++ {
		hand := make([]Card, perPlayer)
		copy(hand, deck[i*perPlayer:(i+1)*perPlayer])
		hands[i] = hand
	}
	return hands
}

// CardsInPlay is the number of cards a game with playerCount seats keeps
// in circulation after dealing.
func CardsInPlay(playerCount int) int {
	if playerCount <= 0 {
		return 0
	}
	return DeckSize - DeckSize%playerCount
}

var avatarColors = []string{
	"bg-blue-500", "bg-green-500", "bg-yellow-500",
	"bg-red-500", "bg-purple-500", "bg-pink-500",
	"bg-indigo-500", "bg-teal-500", "bg-orange-500",
}

// pickColors draws count distinct avatar colours at random.
func pickColors(r *rand.Rand, count int) []string {
	palette := make([]string, len(avatarColors))
	copy(palette, avatarColors)
	r.Shuffle(len(palette), func(i, j int) { palette[i], palette[j] = palette[j], palette[i] })
	if count > len(palette) {
		count = len(palette)
	}
	return palette[:count]
}
