package game

import (
	"context"
	"errors"
	"testing"
)

func TestRouletteBetWins(t *testing.T) {
	cases := []struct {
		name   string
		bet    RouletteBet
		number int
		want   bool
	}{
		{"StraightHit", RouletteBet{Type: BetStraight, Numbers: []int{17}}, 17, true},
		{"StraightMiss", RouletteBet{Type: BetStraight, Numbers: []int{17}}, 18, false},
		{"StraightMulti", RouletteBet{Type: BetStraight, Numbers: []int{2, 4, 6}}, 4, true},
		{"StraightZero", RouletteBet{Type: BetStraight, Numbers: []int{0}}, 0, true},
		{"RedOnRed", RouletteBet{Type: BetRed}, 32, true},
		{"RedOnBlack", RouletteBet{Type: BetRed}, 15, false},
		{"BlackOnBlack", RouletteBet{Type: BetBlack}, 15, true},
		{"EvenHit", RouletteBet{Type: BetEven}, 18, true},
		{"OddHit", RouletteBet{Type: BetOdd}, 19, true},
		{"LowHit", RouletteBet{Type: BetLow}, 1, true},
		{"LowMiss", RouletteBet{Type: BetLow}, 19, false},
		{"HighHit", RouletteBet{Type: BetHigh}, 36, true},
		{"Dozen1", RouletteBet{Type: BetDozen1}, 12, true},
		{"Dozen2", RouletteBet{Type: BetDozen2}, 13, true},
		{"Dozen3", RouletteBet{Type: BetDozen3}, 25, true},
		{"Column1", RouletteBet{Type: BetColumn1}, 4, true},
		{"Column2", RouletteBet{Type: BetColumn2}, 5, true},
		{"Column3", RouletteBet{Type: BetColumn3}, 6, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bet.Wins(tc.number); got != tc.want {
				t.Errorf("Wins(%d) = %v, want %v", tc.number, got, tc.want)
			}
		})
	}
}

func TestRouletteZeroLosesCategoryBets(t *testing.T) {
	categories := []BetType{
		BetRed, BetBlack, BetEven, BetOdd, BetLow, BetHigh,
		BetDozen1, BetDozen2, BetDozen3, BetColumn1, BetColumn2, BetColumn3,
	}
	for _, betType := range categories {
		if (RouletteBet{Type: betType}).Wins(0) {
			t.Errorf("Bet type %s won on zero", betType)
		}
	}
}

func TestRouletteColors(t *testing.T) {
	if IsRed(0) || IsBlack(0) {
		t.Error("Zero has a color")
	}

	reds := 0
	for n := 1; n <= 36; n++ {
		if IsRed(n) == IsBlack(n) {
			t.Errorf("Number %d is both or neither color", n)
		}
		if IsRed(n) {
			reds++
		}
	}
	if reds != 18 {
		t.Errorf("Expected 18 red numbers, got %d", reds)
	}
}

func TestRouletteFullCoverageSpin(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]float64{"alice": 100})
	table := NewRouletteGame("alice", ledger, NewSeededRNG("spin"))

	// One straight bet on every number: exactly one wins 36x regardless
	// of where the ball lands, so the spin nets -1 overall.
	for n := 0; n <= 36; n++ {
		if _, err := table.PlaceBet(ctx, BetStraight, 1, []int{n}); err != nil {
			t.Fatalf("PlaceBet(%d) failed: %v", n, err)
		}
	}
	if got := ledger.balance("alice"); !almostEqual(got, 63) {
		t.Fatalf("Balance after 37 bets = %f, want 63", got)
	}

	result, err := table.Spin(ctx)
	if err != nil {
		t.Fatalf("Spin failed: %v", err)
	}

	if result.WinningNumber < 0 || result.WinningNumber > 36 {
		t.Fatalf("Winning number %d out of range", result.WinningNumber)
	}
	if !almostEqual(result.TotalWager, 37) {
		t.Errorf("TotalWager = %f, want 37", result.TotalWager)
	}
	if !almostEqual(result.TotalWin, 36) {
		t.Errorf("TotalWin = %f, want 36 (straight pays 35:1 plus stake)", result.TotalWin)
	}
	if got := ledger.balance("alice"); !almostEqual(got, 99) {
		t.Errorf("Balance after spin = %f, want 99", got)
	}

	wins := 0
	for _, br := range result.BetResults {
		if br.Win {
			wins++
			if br.Numbers[0] != result.WinningNumber {
				t.Errorf("Winning bet on %d but ball landed on %d", br.Numbers[0], result.WinningNumber)
			}
		}
	}
	if wins != 1 {
		t.Errorf("Expected exactly 1 winning bet, got %d", wins)
	}

	// Table reopens for the next round
	if table.Phase() != RouletteSettled {
		t.Errorf("Phase after spin = %s, want settled", table.Phase())
	}
	table.NextRound()
	if table.Phase() != RouletteAcceptingBets {
		t.Errorf("Phase after NextRound = %s, want accepting_bets", table.Phase())
	}
}

func TestRouletteBetManagement(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]float64{"bob": 100})
	table := NewRouletteGame("bob", ledger, NewSeededRNG("manage"))

	if _, err := table.Spin(ctx); !errors.Is(err, ErrNoBets) {
		t.Errorf("Empty spin error = %v, want NO_BETS", err)
	}

	if _, err := table.PlaceBet(ctx, "sideways", 5, nil); !errors.Is(err, ErrInvalidBetType) {
		t.Errorf("Bad type error = %v, want INVALID_BET_TYPE", err)
	}
	if _, err := table.PlaceBet(ctx, BetStraight, 5, nil); !errors.Is(err, ErrNoNumbersSelected) {
		t.Errorf("Straight without numbers error = %v, want NO_NUMBERS_SELECTED", err)
	}
	if _, err := table.PlaceBet(ctx, BetRed, 0, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Zero amount error = %v, want INVALID_AMOUNT", err)
	}
	if _, err := table.PlaceBet(ctx, BetRed, 500, nil); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Oversized bet error = %v, want INSUFFICIENT_FUNDS", err)
	}

	betID, err := table.PlaceBet(ctx, BetRed, 10, nil)
	if err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}
	if got := ledger.balance("bob"); !almostEqual(got, 90) {
		t.Fatalf("Balance after bet = %f, want 90", got)
	}

	// Removing refunds the stake
	if err := table.RemoveBet(ctx, betID); err != nil {
		t.Fatalf("RemoveBet failed: %v", err)
	}
	if got := ledger.balance("bob"); !almostEqual(got, 100) {
		t.Errorf("Balance after remove = %f, want 100", got)
	}
	if err := table.RemoveBet(ctx, betID); !errors.Is(err, ErrBetNotFound) {
		t.Errorf("Removing twice error = %v, want BET_NOT_FOUND", err)
	}

	// Clearing refunds everything
	table.PlaceBet(ctx, BetRed, 10, nil)
	table.PlaceBet(ctx, BetOdd, 15, nil)
	table.ClearBets(ctx)
	if got := ledger.balance("bob"); !almostEqual(got, 100) {
		t.Errorf("Balance after clear = %f, want 100", got)
	}
	if len(table.Bets()) != 0 {
		t.Errorf("Bets remain after clear: %d", len(table.Bets()))
	}
}

func TestRouletteSpinSettlesWhenCreditFails(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger(map[string]float64{"carol": 100})
	table := NewRouletteGame("carol", ledger, NewSeededRNG("outage"))

	// Cover the whole wheel so the spin always pays out.
	for n := 0; n <= 36; n++ {
		if _, err := table.PlaceBet(ctx, BetStraight, 1, []int{n}); err != nil {
			t.Fatalf("PlaceBet %d failed: %v", n, err)
		}
	}

	ledger.failCredits(errors.New("balance store down"))

	result, err := table.Spin(ctx)
	if err != nil {
		t.Fatalf("Spin failed: %v", err)
	}
	if !almostEqual(result.TotalWin, 36) {
		t.Errorf("TotalWin = %f, want 36", result.TotalWin)
	}

	// The round settles even though the credit never landed, so the
	// table is not stuck in spinning.
	if got := table.Phase(); got != RouletteSettled {
		t.Fatalf("Phase after failed credit = %s, want settled", got)
	}
	if len(table.Bets()) != 0 {
		t.Errorf("Bets retained after spin: %d", len(table.Bets()))
	}
	table.NextRound()
	if got := table.Phase(); got != RouletteAcceptingBets {
		t.Errorf("Phase after NextRound = %s, want accepting_bets", got)
	}

	ledger.failCredits(nil)
	if _, err := table.PlaceBet(ctx, BetRed, 5, nil); err != nil {
		t.Errorf("PlaceBet after reopened round failed: %v", err)
	}
}
