package api

import (
	"encoding/json"
	"log"
	"net/http"

	"nexalisServer/game"
	"nexalisServer/ws"
)

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

type CrashBetRequest struct {
	PlayerID    string  `json:"playerId"`
	Amount      float64 `json:"amount"`
	AutoCashOut float64 `json:"autoCashOut,omitempty"`
}

type CrashCashoutRequest struct {
	PlayerID string `json:"playerId"`
}

type CrashCashoutResponse struct {
	Success    bool    `json:"success"`
	Payout     float64 `json:"payout"`
	Multiplier float64 `json:"multiplier"`
}

/* =========================
   CRASH ENDPOINTS
========================= */

// HandleCrashBet places a bet on the current shared round
// POST /api/crash/bet
func (s *Server) HandleCrashBet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CrashBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		sendError(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	if err := ws.PlaceCrashBetAuto(ctx, req.PlayerID, req.Amount, req.AutoCashOut); err != nil {
		sendGameError(w, err)
		return
	}

	log.Printf("✅ Crash bet placed - Player: %s, Amount: %.2f", req.PlayerID, req.Amount)
	sendJSON(w, map[string]interface{}{
		"success": true,
	})
}

// HandleCrashCashout cashes out at the current multiplier
// POST /api/crash/cashout
func (s *Server) HandleCrashCashout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CrashCashoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		sendError(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	payout, multiplier, err := ws.CrashCashout(ctx, req.PlayerID)
	if err != nil {
		sendGameError(w, err)
		return
	}

	log.Printf("✅ Crash cashout - Player: %s, Payout: %.2f @ %.2fx", req.PlayerID, payout, multiplier)
	sendJSON(w, CrashCashoutResponse{
		Success:    true,
		Payout:     payout,
		Multiplier: multiplier,
	})
}

// HandleCrashState returns the public view of the round in progress
// GET /api/crash/state
func (s *Server) HandleCrashState(w http.ResponseWriter, r *http.Request) {
	snapshot := ws.CurrentCrashSnapshot()
	if snapshot == nil {
		sendError(w, http.StatusServiceUnavailable, "No crash round running yet")
		return
	}
	sendJSON(w, map[string]interface{}{
		"success": true,
		"state":   snapshot,
	})
}

// HandleCrashHistory returns recent finished rounds
// GET /api/crash/history
func (s *Server) HandleCrashHistory(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, map[string]interface{}{
		"success": true,
		"history": ws.GetCrashHistory(),
	})
}

// HandleCrashVerify checks a revealed seed against its commitment
// GET /api/crash/verify?seed=...&hash=...
func (s *Server) HandleCrashVerify(w http.ResponseWriter, r *http.Request) {
	seed := r.URL.Query().Get("seed")
	hash := r.URL.Query().Get("hash")
	if seed == "" || hash == "" {
		sendError(w, http.StatusBadRequest, "seed and hash are required")
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"valid":   game.VerifyServerSeed(seed, hash),
	})
}
