// internal/game/deck.go
package game

import (
	"math/rand"
	"time"
)

// NewRand returns a time-seeded source for shuffling. Shuffles do not need to
// be cryptographically secure.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewDeck builds enough copies of the 13 ranks to deal deckSize cards to each
// side and returns them shuffled.
func NewDeck(deckSize int, rng *rand.Rand) []string {
	copies := deckSize * 2 / len(Ranks)
	deck := make([]string, 0, copies*len(Ranks))
	for i := 0; i < copies; i++ {
		deck = append(deck, Ranks...)
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Deal splits a deck into two contiguous halves: the first goes to the user,
// the second to the bot.
func Deal(deck []string) (user, bot []string) {
	half := len(deck) / 2
	user = append([]string(nil), deck[:half]...)
	bot = append([]string(nil), deck[half:]...)
	return user, bot
}
