package game

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
)

// fakeLedger is the in-memory balance store used across game tests.
type fakeLedger struct {
	mu        sync.Mutex
	balances  map[string]float64
	creditErr error
}

func newFakeLedger(balances map[string]float64) *fakeLedger {
	return &fakeLedger{balances: balances}
}

func (l *fakeLedger) Balance(ctx context.Context, player string) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[player], nil
}

func (l *fakeLedger) Debit(ctx context.Context, player string, amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[player] < amount {
		return ErrInsufficientFunds
	}
	l.balances[player] -= amount
	return nil
}

func (l *fakeLedger) Credit(ctx context.Context, player string, amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.creditErr != nil {
		return l.creditErr
	}
	l.balances[player] += amount
	return nil
}

// failCredits makes every subsequent Credit return err.
func (l *fakeLedger) failCredits(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.creditErr = err
}

func (l *fakeLedger) balance(player string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[player]
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCrashRoundCashout(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]float64{"alice": 100})

	round := NewCrashRound(ledger)
	round.crashPoint = 2.50

	if err := round.PlaceBet(ctx, "alice", 10, 0); err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}
	if got := ledger.balance("alice"); !almostEqual(got, 90) {
		t.Fatalf("Balance after bet = %f, want 90", got)
	}

	round.StartFlight()

	// Ten ticks of +0.10 bring 1.00 to 2.00
	for i := 0; i < 10; i++ {
		tick := round.Tick(ctx)
		if tick.Crashed {
			t.Fatalf("Crashed early at tick %d (%.2f)", i+1, tick.Multiplier)
		}
	}
	if got := round.Multiplier(); !almostEqual(got, 2.00) {
		t.Fatalf("Multiplier after 10 ticks = %f, want 2.00", got)
	}

	payout, err := round.CashOut(ctx, "alice")
	if err != nil {
		t.Fatalf("CashOut failed: %v", err)
	}
	if !almostEqual(payout, 20) {
		t.Errorf("Payout = %f, want 20", payout)
	}
	if got := ledger.balance("alice"); !almostEqual(got, 110) {
		t.Errorf("Balance after cashout = %f, want 110", got)
	}

	// Second cashout is rejected
	if _, err := round.CashOut(ctx, "alice"); !errors.Is(err, ErrCannotCashOut) {
		t.Errorf("Double cashout error = %v, want CANNOT_CASH_OUT", err)
	}
}

func TestCrashRoundRide(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]float64{"bob": 100})

	round := NewCrashRound(ledger)
	round.crashPoint = 2.50

	if err := round.PlaceBet(ctx, "bob", 10, 0); err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}
	round.StartFlight()

	var last CrashTick
	ticks := 0
	for !last.Crashed {
		last = round.Tick(ctx)
		ticks++
		if ticks > 100 {
			t.Fatal("Round never crashed")
		}
	}

	if ticks != 15 {
		t.Errorf("Crashed after %d ticks, want 15", ticks)
	}
	if !almostEqual(last.Multiplier, 2.50) || !almostEqual(last.CrashPoint, 2.50) {
		t.Errorf("Crash at %f (point %f), want 2.50", last.Multiplier, last.CrashPoint)
	}
	if last.ServerSeed == "" {
		t.Error("Crash tick did not reveal the server seed")
	}
	if !VerifyServerSeed(last.ServerSeed, round.ServerSeedHash) {
		t.Error("Revealed seed does not match commitment")
	}

	// Stake stays lost
	if got := ledger.balance("bob"); !almostEqual(got, 90) {
		t.Errorf("Balance after crash = %f, want 90", got)
	}

	// Cashing out after the crash is rejected
	if _, err := round.CashOut(ctx, "bob"); !errors.Is(err, ErrCannotCashOut) {
		t.Errorf("Post-crash cashout error = %v, want CANNOT_CASH_OUT", err)
	}

	// Further ticks are inert
	again := round.Tick(ctx)
	if !again.Crashed || !almostEqual(again.Multiplier, 2.50) {
		t.Errorf("Tick after crash changed state: %+v", again)
	}

	crashPoint, seed, ok := round.Reveal()
	if !ok || !almostEqual(crashPoint, 2.50) || seed != last.ServerSeed {
		t.Errorf("Reveal = (%f, %q, %v)", crashPoint, seed, ok)
	}
}

func TestCrashAutoCashout(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]float64{"carol": 100})

	round := NewCrashRound(ledger)
	round.crashPoint = 3.00

	if err := round.PlaceBet(ctx, "carol", 10, 1.50); err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}
	round.StartFlight()

	cashedAt := 0.0
	for i := 0; i < 5; i++ {
		tick := round.Tick(ctx)
		for _, player := range tick.AutoCashed {
			if player == "carol" {
				cashedAt = tick.Multiplier
			}
		}
	}

	if !almostEqual(cashedAt, 1.50) {
		t.Fatalf("Auto-cashed at %f, want 1.50", cashedAt)
	}
	if got := ledger.balance("carol"); !almostEqual(got, 105) {
		t.Errorf("Balance after auto-cashout = %f, want 105", got)
	}

	bet := round.Bet("carol")
	if bet == nil || !bet.CashedOut || !almostEqual(bet.Payout, 15) {
		t.Errorf("Bet state after auto-cashout: %+v", bet)
	}
}

func TestCrashBettingRules(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]float64{"dave": 50})
	round := NewCrashRound(ledger)

	if err := round.PlaceBet(ctx, "dave", 0, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Zero bet error = %v, want INVALID_AMOUNT", err)
	}
	if err := round.PlaceBet(ctx, "dave", 100, 0); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Oversized bet error = %v, want INSUFFICIENT_FUNDS", err)
	}

	if err := round.PlaceBet(ctx, "dave", 10, 0); err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}
	if err := round.PlaceBet(ctx, "dave", 10, 0); !errors.Is(err, ErrBetAlreadyPlaced) {
		t.Errorf("Duplicate bet error = %v, want BET_ALREADY_PLACED", err)
	}

	// Cashing out before the flight is rejected
	if _, err := round.CashOut(ctx, "dave"); !errors.Is(err, ErrCannotCashOut) {
		t.Errorf("Pre-flight cashout error = %v, want CANNOT_CASH_OUT", err)
	}

	round.StartFlight()
	if err := round.PlaceBet(ctx, "erin", 10, 0); !errors.Is(err, ErrBetsClosed) {
		t.Errorf("Mid-flight bet error = %v, want BETS_CLOSED", err)
	}

	// Cashout for a player with no bet
	if _, err := round.CashOut(ctx, "erin"); !errors.Is(err, ErrBetNotFound) {
		t.Errorf("No-bet cashout error = %v, want BET_NOT_FOUND", err)
	}
}

func TestCrashRevealHiddenWhileLive(t *testing.T) {
	ledger := newFakeLedger(map[string]float64{})
	round := NewCrashRound(ledger)

	if _, _, ok := round.Reveal(); ok {
		t.Error("Reveal succeeded before the round ended")
	}
	round.StartFlight()
	if _, _, ok := round.Reveal(); ok {
		t.Error("Reveal succeeded mid-flight")
	}
}

func TestCrashCashoutSettlesWhenCreditFails(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]float64{"frank": 100})

	round := NewCrashRound(ledger)
	round.crashPoint = 2.50

	if err := round.PlaceBet(ctx, "frank", 10, 0); err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}
	round.StartFlight()
	for i := 0; i < 5; i++ {
		round.Tick(ctx)
	}

	ledger.failCredits(errors.New("balance store down"))

	// The cashout still settles at the current multiplier; the failed
	// credit is logged, not propagated.
	payout, err := round.CashOut(ctx, "frank")
	if err != nil {
		t.Fatalf("CashOut failed: %v", err)
	}
	if !almostEqual(payout, 15) {
		t.Errorf("Payout = %f, want 15", payout)
	}
	if got := round.Phase(); got != CrashCashedOut {
		t.Errorf("Phase = %s, want cashed_out", got)
	}
	if _, err := round.CashOut(ctx, "frank"); !errors.Is(err, ErrCannotCashOut) {
		t.Errorf("Double cashout error = %v, want CANNOT_CASH_OUT", err)
	}
	if got := ledger.balance("frank"); !almostEqual(got, 90) {
		t.Errorf("Balance = %f, want 90 (credit failed)", got)
	}
}
