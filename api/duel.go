package api

import (
	"encoding/json"
	"log"
	"net/http"

	"nexalisServer/game"
)

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

type DuelStartRequest struct {
	PlayerID string `json:"playerId"`
}

type DuelPlayRequest struct {
	GameID string `json:"gameId"`
	CardID string `json:"cardId"`
}

type DuelActionRequest struct {
	GameID string `json:"gameId"`
}

/* =========================
   DUEL ENDPOINTS
========================= */

// HandleDuelStart opens a duel against the AI opponent
// POST /api/duel/start
func (s *Server) HandleDuelStart(w http.ResponseWriter, r *http.Request) {
	var req DuelStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		sendError(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	seed, _ := game.NewServerSeed()
	duel := game.NewDuelGame(req.PlayerID, game.NewSeededRNG(seed))
	duel.Start()
	s.games.putDuel(duel.GameID, duel)

	log.Printf("⚔️  Duel started - Game: %s, Player: %s", duel.GameID, req.PlayerID)
	sendJSON(w, map[string]interface{}{
		"success": true,
		"gameId":  duel.GameID,
		"state":   duel.Snapshot(),
	})
}

// HandleDuelPlay plays one card from the player's hand
// POST /api/duel/play
func (s *Server) HandleDuelPlay(w http.ResponseWriter, r *http.Request) {
	var req DuelPlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	duel, err := s.games.getDuel(req.GameID)
	if err != nil {
		sendGameError(w, err)
		return
	}

	snap, err := duel.PlayCard(req.CardID)
	if err != nil {
		sendGameError(w, err)
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"state":   snap,
	})
}

// HandleDuelEndTurn passes the turn and runs the opponent's move
// POST /api/duel/endturn
func (s *Server) HandleDuelEndTurn(w http.ResponseWriter, r *http.Request) {
	var req DuelActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	duel, err := s.games.getDuel(req.GameID)
	if err != nil {
		sendGameError(w, err)
		return
	}
	if err := duel.EndTurn(); err != nil {
		sendGameError(w, err)
		return
	}

	snap, err := duel.OpponentTurn()
	if err != nil {
		sendGameError(w, err)
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"state":   snap,
	})
}

// HandleDuelState returns the duel snapshot
// GET /api/duel/state?gameId=...
func (s *Server) HandleDuelState(w http.ResponseWriter, r *http.Request) {
	duel, err := s.games.getDuel(r.URL.Query().Get("gameId"))
	if err != nil {
		sendGameError(w, err)
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"state":   duel.Snapshot(),
	})
}
