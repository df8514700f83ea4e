package api

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"nexalisServer/db"
	"nexalisServer/game"
)

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

type BlackjackNewRequest struct {
	PlayerID string `json:"playerId"`
}

type BlackjackDealRequest struct {
	GameID string  `json:"gameId"`
	Amount float64 `json:"amount"`
}

type BlackjackActionRequest struct {
	GameID string `json:"gameId"`
}

/* =========================
   BLACKJACK ENDPOINTS
========================= */

// HandleBlackjackNew opens a fresh blackjack table for the player
// POST /api/blackjack/new
func (s *Server) HandleBlackjackNew(w http.ResponseWriter, r *http.Request) {
	var req BlackjackNewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		sendError(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	seed, _ := game.NewServerSeed()
	table := game.NewBlackjackGame(req.PlayerID, s.wallet.Ledger(), game.NewSeededRNG(seed))
	s.games.putBlackjack(table.GameID, table)

	log.Printf("🃏 Blackjack table opened - Game: %s, Player: %s", table.GameID, req.PlayerID)
	sendJSON(w, map[string]interface{}{
		"success": true,
		"gameId":  table.GameID,
	})
}

// HandleBlackjackDeal debits the bet and deals the opening hands
// POST /api/blackjack/deal
func (s *Server) HandleBlackjackDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BlackjackDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	table, err := s.games.getBlackjack(req.GameID)
	if err != nil {
		sendGameError(w, err)
		return
	}
	if err := table.Deal(ctx, req.Amount); err != nil {
		sendGameError(w, err)
		return
	}

	s.respondBlackjack(w, table)
}

// HandleBlackjackHit draws one card for the player
// POST /api/blackjack/hit
func (s *Server) HandleBlackjackHit(w http.ResponseWriter, r *http.Request) {
	s.blackjackAction(w, r, func(ctx context.Context, table *game.BlackjackGame) error {
		return table.Hit(ctx)
	})
}

// HandleBlackjackStand ends the player's turn and runs the dealer
// POST /api/blackjack/stand
func (s *Server) HandleBlackjackStand(w http.ResponseWriter, r *http.Request) {
	s.blackjackAction(w, r, func(ctx context.Context, table *game.BlackjackGame) error {
		return table.Stand(ctx)
	})
}

// HandleBlackjackDouble doubles the bet, draws one card and stands
// POST /api/blackjack/double
func (s *Server) HandleBlackjackDouble(w http.ResponseWriter, r *http.Request) {
	s.blackjackAction(w, r, func(ctx context.Context, table *game.BlackjackGame) error {
		return table.DoubleDown(ctx)
	})
}

// HandleBlackjackState returns the table snapshot
// GET /api/blackjack/state?gameId=...
func (s *Server) HandleBlackjackState(w http.ResponseWriter, r *http.Request) {
	table, err := s.games.getBlackjack(r.URL.Query().Get("gameId"))
	if err != nil {
		sendGameError(w, err)
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"state":   table.Snapshot(),
	})
}

func (s *Server) blackjackAction(w http.ResponseWriter, r *http.Request, action func(context.Context, *game.BlackjackGame) error) {
	ctx := r.Context()

	var req BlackjackActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	table, err := s.games.getBlackjack(req.GameID)
	if err != nil {
		sendGameError(w, err)
		return
	}
	if err := action(ctx, table); err != nil {
		sendGameError(w, err)
		return
	}

	s.respondBlackjack(w, table)
}

// respondBlackjack sends the final snapshot of the action. A settled
// hand is persisted and the table reopened for the next hand, but the
// response still carries the settled state the player acted on.
func (s *Server) respondBlackjack(w http.ResponseWriter, table *game.BlackjackGame) {
	snap := table.Snapshot()
	if snap.Phase == game.BlackjackFinished {
		go persistBlackjackResult(table.Player, snap)
		table.NewHand()
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"state":   snap,
	})
}

func persistBlackjackResult(player string, snap game.BlackjackSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payout := 0.0
	switch snap.Result {
	case game.BlackjackWin:
		payout = snap.Bet * 2
	case game.BlackjackPush:
		payout = snap.Bet
	case game.BlackjackNatural:
		payout = snap.Bet + math.Floor(snap.Bet*1.5)
	}

	record := &db.GameResultRecord{
		UserID:    player,
		GameType:  string(game.GameTypeCards),
		GameID:    snap.GameID,
		Wager:     snap.Bet,
		WinAmount: payout,
		Result:    string(snap.Result),
		CreatedAt: time.Now(),
	}
	if err := db.SaveGameResult(ctx, record); err != nil {
		log.Printf("⚠️  Failed to store blackjack result: %v", err)
	}
}
