// internal/game/rules.go
package game

import "fmt"

// Supported per-player deck sizes.
const (
	ShortDeckSize = 13
	FullDeckSize  = 26
)

// Rules holds the per-game variant options.
type Rules struct {
	DeckSize     int  `json:"deckSize"`     // cards dealt to each side: 13 or 26
	TrackHistory bool `json:"trackHistory"` // keep a replay log of every card comparison on the game
}

// DefaultRules is the short variant with history enabled.
func DefaultRules() Rules {
	return Rules{
		DeckSize:     ShortDeckSize,
		TrackHistory: true,
	}
}

// Validate reports whether the rules describe a playable game.
func (rules Rules) Validate() error {
	if rules.DeckSize != ShortDeckSize && rules.DeckSize != FullDeckSize {
		return fmt.Errorf("deckSize must be %d or %d, got %d", ShortDeckSize, FullDeckSize, rules.DeckSize)
	}
	return nil
}

// Update will update the rules with the new values provided.
// Keys that are missing or null are ignored and the old value persists.
func (rules *Rules) Update(newRules map[string]interface{}) error {
	if val, exists := newRules["trackHistory"]; exists && val != nil {
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("invalid type for trackHistory")
		}
		rules.TrackHistory = b
	}

	if val, exists := newRules["deckSize"]; exists && val != nil {
		// JSON numbers decode as float64
		switch n := val.(type) {
		case float64:
			if n != float64(int(n)) {
				return fmt.Errorf("deckSize must be a whole number")
			}
			rules.DeckSize = int(n)
		case int:
			rules.DeckSize = n
		default:
			return fmt.Errorf("invalid type for deckSize")
		}
	}

	return rules.Validate()
}

// ParseRules applies overrides on top of current and validates the result.
func ParseRules(overrides map[string]interface{}, current Rules) (Rules, error) {
	rules := current
	err := rules.Update(overrides)
	return rules, err
}
