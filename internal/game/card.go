// internal/game/card.go
package game

import "fmt"

// Ranks lists every card token in ascending order. Suits play no part in War.
var Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

var rankValues = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8,
	"9": 9, "10": 10, "J": 11, "Q": 12, "K": 13, "A": 14,
}

// RankValue maps a card token to its numeric rank (2 lowest, A = 14).
func RankValue(card string) (int, error) {
	v, ok := rankValues[card]
	if !ok {
		return 0, fmt.Errorf("%w: unknown card %q", ErrInvalidState, card)
	}
	return v, nil
}

// CompareCards returns a negative number when a ranks below b, zero on a tie,
// and a positive number when a ranks above b.
func CompareCards(a, b string) (int, error) {
	av, err := RankValue(a)
	if err != nil {
		return 0, err
	}
	bv, err := RankValue(b)
	if err != nil {
		return 0, err
	}
	return av - bv, nil
}
