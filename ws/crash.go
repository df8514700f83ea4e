package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"nexalisServer/config"
	"nexalisServer/db"
	"nexalisServer/game"
)

// CrashRoundHistory stores the public record of a finished crash round
type CrashRoundHistory struct {
	GameID         string    `json:"gameId"`
	CrashPoint     float64   `json:"crashPoint"`
	ServerSeed     string    `json:"serverSeed"`
	ServerSeedHash string    `json:"serverSeedHash"`
	Timestamp      time.Time `json:"timestamp"`
}

// CrashSnapshot is the public view of the round in progress
type CrashSnapshot struct {
	GameID         string           `json:"gameId"`
	ServerSeedHash string           `json:"serverSeedHash"`
	Phase          game.CrashPhase  `json:"phase"`
	Multiplier     float64          `json:"multiplier"`
	Bets           []game.CrashBet  `json:"bets"`
}

var (
	crashHistory      []CrashRoundHistory
	crashHistoryMutex sync.RWMutex

	currentCrash      *game.CrashGame
	currentCrashMutex sync.RWMutex

	crashLoopOnce sync.Once
)

// StartCrashLoop launches the shared crash round loop. All connected
// players bet into the same round.
func StartCrashLoop(ledger game.Ledger) {
	crashLoopOnce.Do(func() {
		go runCrashLoop(ledger)
	})
}

func runCrashLoop(ledger game.Ledger) {
	log.Println("🎰 Crash round loop started")

	for {
		round := game.NewCrashRound(ledger)

		currentCrashMutex.Lock()
		currentCrash = round
		currentCrashMutex.Unlock()

		crashBroadcast <- map[string]interface{}{
			"type": "game_start",
			"data": map[string]interface{}{
				"gameId":         round.GameID,
				"serverSeedHash": round.ServerSeedHash,
				"bettingMs":      config.CrashBettingDuration.Milliseconds(),
			},
		}

		// Betting window with per-second countdown
		for i := int(config.CrashBettingDuration.Seconds()); i > 0; i-- {
			crashBroadcast <- map[string]interface{}{
				"type": "countdown",
				"data": map[string]interface{}{
					"countdown": i,
				},
			}
			time.Sleep(1 * time.Second)
		}

		round.StartFlight()
		crashBroadcast <- map[string]interface{}{
			"type": "flight_start",
			"data": map[string]interface{}{
				"gameId": round.GameID,
			},
		}

		// Flight: advance every tick until the hidden point is hit
		ticker := time.NewTicker(config.CrashTickInterval)
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			tick := round.Tick(ctx)
			cancel()

			if tick.Crashed {
				crashBroadcast <- map[string]interface{}{
					"type": "game_crash",
					"data": map[string]interface{}{
						"gameId":         round.GameID,
						"crashPoint":     tick.CrashPoint,
						"serverSeed":     tick.ServerSeed,
						"serverSeedHash": round.ServerSeedHash,
					},
				}
				break
			}

			message := map[string]interface{}{
				"type": "multiplier_update",
				"data": map[string]interface{}{
					"gameId":     round.GameID,
					"multiplier": tick.Multiplier,
				},
			}
			if len(tick.AutoCashed) > 0 {
				message["data"].(map[string]interface{})["autoCashed"] = tick.AutoCashed
			}

			select {
			case crashBroadcast <- message:
			default:
				// Buffer full, skip this tick
			}
		}
		ticker.Stop()

		finishCrashRound(round)

		time.Sleep(config.CrashCooldown)
	}
}

// finishCrashRound records history and persists per-player results.
func finishCrashRound(round *game.CrashGame) {
	crashPoint, serverSeed, ok := round.Reveal()
	if !ok {
		return
	}

	crashHistoryMutex.Lock()
	crashHistory = append(crashHistory, CrashRoundHistory{
		GameID:         round.GameID,
		CrashPoint:     crashPoint,
		ServerSeed:     serverSeed,
		ServerSeedHash: round.ServerSeedHash,
		Timestamp:      time.Now(),
	})
	if len(crashHistory) > config.MaxGameHistory {
		crashHistory = crashHistory[len(crashHistory)-config.MaxGameHistory:]
	}
	crashHistoryMutex.Unlock()

	bets := round.Bets()
	go func() {
		storeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, bet := range bets {
			result := "lose"
			if bet.CashedOut {
				result = "win"
			}
			record := &db.GameResultRecord{
				UserID:     bet.Player,
				GameType:   string(game.GameTypeCrash),
				GameID:     round.GameID,
				Wager:      bet.Amount,
				WinAmount:  bet.Payout,
				Multiplier: bet.CashOutMultiplier,
				Result:     result,
				CreatedAt:  time.Now(),
			}
			if err := db.SaveGameResult(storeCtx, record); err != nil {
				log.Printf("⚠️  Failed to store crash result for %s: %v", bet.Player, err)
			}
		}
	}()

	log.Printf("🎲 Crash round %s finished at %.2fx (%d bets)", round.GameID, crashPoint, len(bets))

	crashBroadcast <- map[string]interface{}{
		"type":    "crash_history",
		"history": GetCrashHistory(),
	}
}

// PlaceCrashBet places a bet on the current round.
func PlaceCrashBet(ctx context.Context, player string, amount float64) error {
	return PlaceCrashBetAuto(ctx, player, amount, 0)
}

// PlaceCrashBetAuto places a bet with an optional auto-cash-out target.
func PlaceCrashBetAuto(ctx context.Context, player string, amount, autoCashOut float64) error {
	currentCrashMutex.RLock()
	round := currentCrash
	currentCrashMutex.RUnlock()

	if round == nil {
		return game.ErrGameNotFound
	}
	return round.PlaceBet(ctx, player, amount, autoCashOut)
}

// CrashCashout cashes out the player's bet at the current multiplier.
func CrashCashout(ctx context.Context, player string) (payout, multiplier float64, err error) {
	currentCrashMutex.RLock()
	round := currentCrash
	currentCrashMutex.RUnlock()

	if round == nil {
		return 0, 0, game.ErrGameNotFound
	}
	payout, err = round.CashOut(ctx, player)
	if err != nil {
		return 0, 0, err
	}
	return payout, round.Multiplier(), nil
}

// CurrentCrashSnapshot returns the public view of the round in
// progress, or nil before the first round starts.
func CurrentCrashSnapshot() *CrashSnapshot {
	currentCrashMutex.RLock()
	round := currentCrash
	currentCrashMutex.RUnlock()

	if round == nil {
		return nil
	}
	return &CrashSnapshot{
		GameID:         round.GameID,
		ServerSeedHash: round.ServerSeedHash,
		Phase:          round.Phase(),
		Multiplier:     round.Multiplier(),
		Bets:           round.Bets(),
	}
}

// GetCrashHistory returns recent finished rounds, newest last.
func GetCrashHistory() []CrashRoundHistory {
	crashHistoryMutex.RLock()
	defer crashHistoryMutex.RUnlock()

	out := make([]CrashRoundHistory, len(crashHistory))
	copy(out, crashHistory)
	return out
}
