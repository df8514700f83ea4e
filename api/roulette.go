package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nexalisServer/db"
	"nexalisServer/game"
)

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

type RouletteNewRequest struct {
	PlayerID string `json:"playerId"`
}

type RouletteBetPlaceRequest struct {
	GameID  string  `json:"gameId"`
	BetType string  `json:"betType"`
	Amount  float64 `json:"amount"`
	Numbers []int   `json:"numbers,omitempty"`
}

type RouletteBetRemoveRequest struct {
	GameID string `json:"gameId"`
	BetID  string `json:"betId"`
}

type RouletteSpinRequest struct {
	GameID string `json:"gameId"`
}

/* =========================
   ROULETTE ENDPOINTS
========================= */

// HandleRouletteNew opens a fresh roulette table for the player
// POST /api/roulette/new
func (s *Server) HandleRouletteNew(w http.ResponseWriter, r *http.Request) {
	var req RouletteNewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		sendError(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	seed, _ := game.NewServerSeed()
	table := game.NewRouletteGame(req.PlayerID, s.wallet.Ledger(), game.NewSeededRNG(seed))
	s.games.putRoulette(table.GameID, table)

	log.Printf("🎡 Roulette table opened - Game: %s, Player: %s", table.GameID, req.PlayerID)
	sendJSON(w, map[string]interface{}{
		"success": true,
		"gameId":  table.GameID,
	})
}

// HandleRouletteBet places a bet on a pending spin
// POST /api/roulette/bet
func (s *Server) HandleRouletteBet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RouletteBetPlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	table, err := s.games.getRoulette(req.GameID)
	if err != nil {
		sendGameError(w, err)
		return
	}

	betID, err := table.PlaceBet(ctx, game.BetType(req.BetType), req.Amount, req.Numbers)
	if err != nil {
		sendGameError(w, err)
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"betId":   betID,
	})
}

// HandleRouletteRemove refunds and drops one pending bet
// POST /api/roulette/remove
func (s *Server) HandleRouletteRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RouletteBetRemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	table, err := s.games.getRoulette(req.GameID)
	if err != nil {
		sendGameError(w, err)
		return
	}
	if err := table.RemoveBet(ctx, req.BetID); err != nil {
		sendGameError(w, err)
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
	})
}

// HandleRouletteClear refunds and drops all pending bets
// POST /api/roulette/clear
func (s *Server) HandleRouletteClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RouletteSpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	table, err := s.games.getRoulette(req.GameID)
	if err != nil {
		sendGameError(w, err)
		return
	}
	table.ClearBets(ctx)

	sendJSON(w, map[string]interface{}{
		"success": true,
	})
}

// HandleRouletteSpin draws the winning number and settles every bet
// POST /api/roulette/spin
func (s *Server) HandleRouletteSpin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RouletteSpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	table, err := s.games.getRoulette(req.GameID)
	if err != nil {
		sendGameError(w, err)
		return
	}

	result, err := table.Spin(ctx)
	if err != nil {
		sendGameError(w, err)
		return
	}

	go saveRouletteResult(table.Player, result)
	table.NextRound()

	log.Printf("🎡 Roulette spin - Game: %s, Number: %d, Wager: %.2f, Win: %.2f",
		result.GameID, result.WinningNumber, result.TotalWager, result.TotalWin)
	sendJSON(w, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// HandleRouletteState returns the table's pending bets and phase
// GET /api/roulette/state?gameId=...
func (s *Server) HandleRouletteState(w http.ResponseWriter, r *http.Request) {
	table, err := s.games.getRoulette(r.URL.Query().Get("gameId"))
	if err != nil {
		sendGameError(w, err)
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"gameId":  table.GameID,
		"player":  table.Player,
		"phase":   table.Phase(),
		"bets":    table.Bets(),
	})
}

func saveRouletteResult(player string, result *game.RouletteSpinResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	outcome := "lose"
	if result.TotalWin > result.TotalWager {
		outcome = "win"
	} else if result.TotalWin == result.TotalWager && result.TotalWin > 0 {
		outcome = "push"
	}

	record := &db.GameResultRecord{
		UserID:    player,
		GameType:  string(game.GameTypeRoulette),
		GameID:    result.GameID,
		Wager:     result.TotalWager,
		WinAmount: result.TotalWin,
		Result:    outcome,
		CreatedAt: time.Now(),
	}
	if err := db.SaveGameResult(ctx, record); err != nil {
		log.Printf("⚠️  Failed to store roulette result: %v", err)
	}
}
