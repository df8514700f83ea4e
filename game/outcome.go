package game

import (
	"math"
	"math/rand"

	"nexalisServer/config"
)

// GenerateCrashMultiplier draws the crash point for a round.
// 1% of rounds crash instantly at 1.00x; the rest follow an inverse
// power-law favoring low multipliers, clamped to [1.0, 1000.0].
func GenerateCrashMultiplier(rng *rand.Rand) float64 {
	u := rng.Float64()

	if u < config.InstantCrashChance {
		return 1.0
	}

	crashPoint := math.Floor((99/(100-u*99))*100) / 100
	return math.Max(config.MinCrashPoint, math.Min(crashPoint, config.MaxCrashPoint))
}

// GenerateRouletteNumber draws a uniform wheel number in [0, 36].
func GenerateRouletteNumber(rng *rand.Rand) int {
	return rng.Intn(config.RouletteMaxNumber + 1)
}

// Deck is a shuffled 52-card deck. Drawing from an exhausted deck
// reshuffles a fresh 52; generators never fail.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck builds and shuffles a standard deck.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.reshuffle()
	return d
}

func (d *Deck) reshuffle() {
	d.cards = make([]Card, 0, 52)
	for _, suit := range cardSuits {
		for _, value := range cardValues {
			d.cards = append(d.cards, Card{Suit: suit, Value: value})
		}
	}
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw pops the top card.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		d.reshuffle()
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
