package game

import "context"

// GameType identifies one of the hub's games.
type GameType string

const (
	GameTypeCrash    GameType = "crash"
	GameTypeRoulette GameType = "roulette"
	GameTypeCards    GameType = "cards"
)

// Valid reports whether t is a known game type.
func (t GameType) Valid() bool {
	switch t {
	case GameTypeCrash, GameTypeRoulette, GameTypeCards:
		return true
	}
	return false
}

// Ledger is the balance facade the state machines settle against.
// Implementations live in the wallet package; tests use an in-memory map.
type Ledger interface {
	Balance(ctx context.Context, player string) (float64, error)
	Debit(ctx context.Context, player string, amount float64) error
	Credit(ctx context.Context, player string, amount float64) error
}

// Card is a standard playing card.
type Card struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

var (
	cardSuits  = []string{"♠", "♥", "♦", "♣"}
	cardValues = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

// Numeric returns the blackjack value of the card, counting an ace as 11.
func (c Card) Numeric() int {
	switch c.Value {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	case "2", "3", "4", "5", "6", "7", "8", "9":
		return int(c.Value[0] - '0')
	}
	return 0
}

// Red reports whether the card is a heart or diamond.
func (c Card) Red() bool {
	return c.Suit == "♥" || c.Suit == "♦"
}
