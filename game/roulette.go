package game

import (
	"context"
	"log"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"nexalisServer/config"
)

type RoulettePhase string

const (
	RouletteAcceptingBets RoulettePhase = "accepting_bets"
	RouletteSpinning      RoulettePhase = "spinning"
	RouletteSettled       RoulettePhase = "settled"
)

// BetType is a roulette bet category.
type BetType string

const (
	BetStraight BetType = "straight"
	BetRed      BetType = "red"
	BetBlack    BetType = "black"
	BetEven     BetType = "even"
	BetOdd      BetType = "odd"
	BetLow      BetType = "low"
	BetHigh     BetType = "high"
	BetDozen1   BetType = "dozen1"
	BetDozen2   BetType = "dozen2"
	BetDozen3   BetType = "dozen3"
	BetColumn1  BetType = "column1"
	BetColumn2  BetType = "column2"
	BetColumn3  BetType = "column3"
)

// roulettePayouts maps bet types to payout ratios. Winnings are
// amount * (payout + 1), stake included.
var roulettePayouts = map[BetType]int{
	BetStraight: config.PayoutStraight,
	BetRed:      config.PayoutEvens,
	BetBlack:    config.PayoutEvens,
	BetEven:     config.PayoutEvens,
	BetOdd:      config.PayoutEvens,
	BetLow:      config.PayoutEvens,
	BetHigh:     config.PayoutEvens,
	BetDozen1:   config.PayoutDozens,
	BetDozen2:   config.PayoutDozens,
	BetDozen3:   config.PayoutDozens,
	BetColumn1:  config.PayoutDozens,
	BetColumn2:  config.PayoutDozens,
	BetColumn3:  config.PayoutDozens,
}

// Valid reports whether t is a known bet type.
func (t BetType) Valid() bool {
	_, ok := roulettePayouts[t]
	return ok
}

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// IsRed reports whether a wheel number is red. Zero is neither color.
func IsRed(n int) bool { return redNumbers[n] }

// IsBlack reports whether a wheel number is black.
func IsBlack(n int) bool { return n != 0 && !redNumbers[n] }

// RouletteBet is a single pending bet.
type RouletteBet struct {
	ID      string  `json:"id"`
	Type    BetType `json:"type"`
	Amount  float64 `json:"amount"`
	Numbers []int   `json:"numbers,omitempty"` // straight bets only
}

// Wins evaluates the bet against the winning number. Zero loses every
// category bet: it is neither red, black, even, odd, nor in any
// dozen or column.
func (b RouletteBet) Wins(n int) bool {
	switch b.Type {
	case BetStraight:
		for _, picked := range b.Numbers {
			if picked == n {
				return true
			}
		}
		return false
	case BetRed:
		return IsRed(n)
	case BetBlack:
		return IsBlack(n)
	case BetEven:
		return n != 0 && n%2 == 0
	case BetOdd:
		return n%2 == 1
	case BetLow:
		return n >= 1 && n <= 18
	case BetHigh:
		return n >= 19 && n <= 36
	case BetDozen1:
		return n >= 1 && n <= 12
	case BetDozen2:
		return n >= 13 && n <= 24
	case BetDozen3:
		return n >= 25 && n <= 36
	case BetColumn1:
		return n != 0 && n%3 == 1
	case BetColumn2:
		return n != 0 && n%3 == 2
	case BetColumn3:
		return n != 0 && n%3 == 0
	}
	return false
}

// RouletteBetResult is one bet's settled outcome.
type RouletteBetResult struct {
	RouletteBet
	Win       bool    `json:"win"`
	WinAmount float64 `json:"winAmount"`
}

// RouletteSpinResult summarizes a settled spin.
type RouletteSpinResult struct {
	GameID        string              `json:"gameId"`
	WinningNumber int                 `json:"winningNumber"`
	TotalWager    float64             `json:"totalWager"`
	TotalWin      float64             `json:"totalWin"`
	BetResults    []RouletteBetResult `json:"betResults"`
}

// RouletteGame is one player's table. Bets accumulate until Spin, which
// draws a winning number, settles every bet and moves to settled;
// NextRound reopens betting.
type RouletteGame struct {
	mu sync.Mutex

	GameID string
	Player string

	phase         RoulettePhase
	bets          []RouletteBet
	winningNumber int // -1 until settled

	ledger Ledger
	rng    *rand.Rand
}

// NewRouletteGame creates a table in the accepting-bets phase.
func NewRouletteGame(player string, ledger Ledger, rng *rand.Rand) *RouletteGame {
	return &RouletteGame{
		GameID:        uuid.NewString(),
		Player:        player,
		phase:         RouletteAcceptingBets,
		winningNumber: -1,
		ledger:        ledger,
		rng:           rng,
	}
}

// PlaceBet validates and debits the stake, then queues the bet.
func (g *RouletteGame) PlaceBet(ctx context.Context, betType BetType, amount float64, numbers []int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != RouletteAcceptingBets {
		return "", ErrBetsClosed
	}
	if !betType.Valid() {
		return "", ErrInvalidBetType
	}
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if betType == BetStraight && len(numbers) == 0 {
		return "", ErrNoNumbersSelected
	}

	balance, err := g.ledger.Balance(ctx, g.Player)
	if err != nil {
		return "", err
	}
	if amount > balance {
		return "", ErrInsufficientFunds
	}

	if err := g.ledger.Debit(ctx, g.Player, amount); err != nil {
		return "", err
	}

	bet := RouletteBet{
		ID:      uuid.NewString(),
		Type:    betType,
		Amount:  amount,
		Numbers: numbers,
	}
	g.bets = append(g.bets, bet)
	return bet.ID, nil
}

// RemoveBet refunds and drops a pending bet.
func (g *RouletteGame) RemoveBet(ctx context.Context, betID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != RouletteAcceptingBets {
		return ErrBetsClosed
	}
	for i, bet := range g.bets {
		if bet.ID == betID {
			if err := g.ledger.Credit(ctx, g.Player, bet.Amount); err != nil {
				log.Printf("⚠️  Failed to refund bet for %s: %v", g.Player, err)
			}
			g.bets = append(g.bets[:i], g.bets[i+1:]...)
			return nil
		}
	}
	return ErrBetNotFound
}

// ClearBets refunds and drops every pending bet.
func (g *RouletteGame) ClearBets(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != RouletteAcceptingBets {
		return
	}
	for _, bet := range g.bets {
		if err := g.ledger.Credit(ctx, g.Player, bet.Amount); err != nil {
			log.Printf("⚠️  Failed to refund bet for %s: %v", g.Player, err)
		}
	}
	g.bets = nil
}

// Spin requires at least one bet, draws the winning number and settles
// every bet against the payout table. Losing bets forfeit their stake
// (already debited at placement).
func (g *RouletteGame) Spin(ctx context.Context) (*RouletteSpinResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != RouletteAcceptingBets {
		return nil, ErrBetsClosed
	}
	if len(g.bets) == 0 {
		return nil, ErrNoBets
	}

	g.phase = RouletteSpinning
	g.winningNumber = GenerateRouletteNumber(g.rng)

	result := &RouletteSpinResult{
		GameID:        g.GameID,
		WinningNumber: g.winningNumber,
		BetResults:    make([]RouletteBetResult, 0, len(g.bets)),
	}

	for _, bet := range g.bets {
		result.TotalWager += bet.Amount

		br := RouletteBetResult{RouletteBet: bet}
		if bet.Wins(g.winningNumber) {
			br.Win = true
			br.WinAmount = bet.Amount * float64(roulettePayouts[bet.Type]+1)
			result.TotalWin += br.WinAmount
		}
		result.BetResults = append(result.BetResults, br)
	}

	// Settle even if the credit fails: the table must never stick in
	// spinning, or NextRound and PlaceBet lock out forever.
	if result.TotalWin > 0 {
		if err := g.ledger.Credit(ctx, g.Player, result.TotalWin); err != nil {
			log.Printf("⚠️  Failed to credit roulette winnings for %s: %v", g.Player, err)
		}
	}

	g.bets = nil
	g.phase = RouletteSettled
	return result, nil
}

// NextRound reopens betting after a settled spin.
func (g *RouletteGame) NextRound() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != RouletteSettled {
		return
	}
	g.phase = RouletteAcceptingBets
	g.winningNumber = -1
}

// Phase returns the current table phase.
func (g *RouletteGame) Phase() RoulettePhase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Bets returns a snapshot of pending bets.
func (g *RouletteGame) Bets() []RouletteBet {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]RouletteBet, len(g.bets))
	copy(out, g.bets)
	return out
}
