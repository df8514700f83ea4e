package game

import (
	"context"
	"log"
	"math"
	"sync"

	"github.com/google/uuid"

	"nexalisServer/config"
)

type CrashPhase string

const (
	CrashIdle      CrashPhase = "idle"
	CrashBetting   CrashPhase = "betting"
	CrashFlying    CrashPhase = "flying"
	CrashCrashed   CrashPhase = "crashed"
	CrashCashedOut CrashPhase = "cashed_out"
)

// CrashBet is one player's stake in a crash round.
type CrashBet struct {
	Player            string  `json:"player"`
	Amount            float64 `json:"amount"`
	AutoCashOut       float64 `json:"autoCashOut,omitempty"` // 0 = disabled
	CashedOut         bool    `json:"cashedOut"`
	CashOutMultiplier float64 `json:"cashOutMultiplier,omitempty"`
	Payout            float64 `json:"payout,omitempty"`
}

// CrashTick reports the outcome of one tick of the flight.
type CrashTick struct {
	Multiplier float64  `json:"multiplier"`
	Crashed    bool     `json:"crashed"`
	AutoCashed []string `json:"autoCashed,omitempty"` // players auto-cashed this tick
	CrashPoint float64  `json:"crashPoint,omitempty"` // revealed on crash
	ServerSeed string   `json:"serverSeed,omitempty"` // revealed on crash
}

// CrashGame is the state machine for one crash round. The crash point is
// fixed when the round is created (derived from the server seed) and stays
// hidden until the round ends.
type CrashGame struct {
	mu sync.RWMutex

	GameID         string
	ServerSeedHash string

	serverSeed string
	phase      CrashPhase
	multiplier float64
	crashPoint float64
	bets       map[string]*CrashBet

	ledger Ledger
}

// NewCrashRound creates a round in the betting phase with a committed
// server seed and a hidden crash point.
func NewCrashRound(ledger Ledger) *CrashGame {
	seed, hash := NewServerSeed()
	gameID := uuid.NewString()
	rng := NewSeededRNG(seed + "-" + gameID)

	return &CrashGame{
		GameID:         gameID,
		ServerSeedHash: hash,
		serverSeed:     seed,
		phase:          CrashBetting,
		multiplier:     1.0,
		crashPoint:     GenerateCrashMultiplier(rng),
		bets:           make(map[string]*CrashBet),
		ledger:         ledger,
	}
}

// PlaceBet debits the stake and registers the bet. At most one bet per
// player per round; only accepted while betting is open.
func (g *CrashGame) PlaceBet(ctx context.Context, player string, amount, autoCashOut float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != CrashBetting {
		return ErrBetsClosed
	}
	if _, exists := g.bets[player]; exists {
		return ErrBetAlreadyPlaced
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	balance, err := g.ledger.Balance(ctx, player)
	if err != nil {
		return err
	}
	if amount > balance {
		return ErrInsufficientFunds
	}

	if err := g.ledger.Debit(ctx, player, amount); err != nil {
		return err
	}

	g.bets[player] = &CrashBet{
		Player:      player,
		Amount:      amount,
		AutoCashOut: autoCashOut,
	}
	return nil
}

// StartFlight closes betting and begins the flight at 1.00x.
func (g *CrashGame) StartFlight() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != CrashBetting {
		return
	}
	g.phase = CrashFlying
	g.multiplier = 1.0
}

// Tick advances the multiplier by one step. The multiplier is
// non-decreasing and the flight terminates the instant it reaches the
// crash point; no further ticks have any effect. Auto-cash-out thresholds
// are checked on every tick with at-most-once semantics.
func (g *CrashGame) Tick(ctx context.Context) CrashTick {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != CrashFlying && g.phase != CrashCashedOut {
		return CrashTick{Multiplier: g.multiplier, Crashed: g.phase == CrashCrashed}
	}

	g.multiplier = round2(g.multiplier + config.CrashTickIncrement)

	if g.multiplier >= g.crashPoint {
		g.multiplier = g.crashPoint
		g.phase = CrashCrashed
		return CrashTick{
			Multiplier: g.multiplier,
			Crashed:    true,
			CrashPoint: g.crashPoint,
			ServerSeed: g.serverSeed,
		}
	}

	var autoCashed []string
	for player, bet := range g.bets {
		if bet.CashedOut || bet.AutoCashOut <= 0 {
			continue
		}
		if g.multiplier >= bet.AutoCashOut {
			g.settleCashOut(ctx, bet)
			autoCashed = append(autoCashed, player)
		}
	}
	g.updateCashedOutPhase()

	return CrashTick{Multiplier: g.multiplier, AutoCashed: autoCashed}
}

// CashOut locks in the current multiplier for the player's bet. Allowed
// only mid-flight, before the crash, at most once per bet.
func (g *CrashGame) CashOut(ctx context.Context, player string) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != CrashFlying {
		return 0, ErrCannotCashOut
	}
	bet, ok := g.bets[player]
	if !ok {
		return 0, ErrBetNotFound
	}
	if bet.CashedOut {
		return 0, ErrCannotCashOut
	}

	g.settleCashOut(ctx, bet)
	g.updateCashedOutPhase()
	return bet.Payout, nil
}

// settleCashOut credits bet * multiplier and marks the bet cashed out.
// Caller holds g.mu.
func (g *CrashGame) settleCashOut(ctx context.Context, bet *CrashBet) {
	bet.CashedOut = true
	bet.CashOutMultiplier = g.multiplier
	bet.Payout = round2(bet.Amount * g.multiplier)
	if err := g.ledger.Credit(ctx, bet.Player, bet.Payout); err != nil {
		log.Printf("⚠️  Failed to credit cashout for %s: %v", bet.Player, err)
	}
}

// updateCashedOutPhase moves the round to cashed_out once every bet has
// cashed. Ticks keep running so the crash point is still revealed.
// Caller holds g.mu.
func (g *CrashGame) updateCashedOutPhase() {
	if g.phase != CrashFlying || len(g.bets) == 0 {
		return
	}
	for _, bet := range g.bets {
		if !bet.CashedOut {
			return
		}
	}
	g.phase = CrashCashedOut
}

// Phase returns the current round phase.
func (g *CrashGame) Phase() CrashPhase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

// Multiplier returns the current multiplier.
func (g *CrashGame) Multiplier() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.multiplier
}

// Bet returns the player's bet, or nil.
func (g *CrashGame) Bet(player string) *CrashBet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if bet, ok := g.bets[player]; ok {
		copied := *bet
		return &copied
	}
	return nil
}

// Bets returns a snapshot of all bets in the round.
func (g *CrashGame) Bets() []CrashBet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]CrashBet, 0, len(g.bets))
	for _, bet := range g.bets {
		out = append(out, *bet)
	}
	return out
}

// Reveal returns the crash point and server seed once the round is over.
func (g *CrashGame) Reveal() (crashPoint float64, serverSeed string, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.phase != CrashCrashed {
		return 0, "", false
	}
	return g.crashPoint, g.serverSeed, true
}

func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
