package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nexalisServer/coordinator"
	"nexalisServer/db"
	"nexalisServer/game"
)

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

type SessionStartRequest struct {
	PlayerID string `json:"playerId"`
	GameType string `json:"gameType"`
}

type SessionStartResponse struct {
	Success bool                   `json:"success"`
	GameID  string                 `json:"gameId"`
	Timing  coordinator.TimingInfo `json:"timing"`
}

type SessionEndRequest struct {
	PlayerID      string  `json:"playerId"`
	GameType      string  `json:"gameType"`
	GameID        string  `json:"gameId,omitempty"`
	BalanceChange float64 `json:"balanceChange"`
}

/* =========================
   SESSION ENDPOINTS
========================= */

// HandleSessionStart requests a game session slot from the coordinator
// POST /api/session/start
func (s *Server) HandleSessionStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SessionStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		sendError(w, http.StatusBadRequest, "Player ID is required")
		return
	}
	gameType := game.GameType(req.GameType)
	if !gameType.Valid() {
		sendError(w, http.StatusBadRequest, "Unknown game type")
		return
	}

	gameID, timing, err := s.coord.RequestGameSession(ctx, gameType, req.PlayerID)
	if err != nil {
		sendGameError(w, err)
		return
	}

	// Mirror the session to Redis so it survives a restart
	record := &db.GameSessionRecord{
		PlayerID:  req.PlayerID,
		GameType:  req.GameType,
		GameID:    gameID,
		Status:    "active",
		CreatedAt: time.Now(),
	}
	if err := db.StoreGameSession(ctx, record); err != nil {
		log.Printf("⚠️  Failed to mirror session to Redis: %v", err)
	}

	sendJSON(w, SessionStartResponse{
		Success: true,
		GameID:  gameID,
		Timing:  timing,
	})
}

// HandleSessionEnd ends the player's active session
// POST /api/session/end
func (s *Server) HandleSessionEnd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SessionEndRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		sendError(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	result := coordinator.SessionResult{
		PlayerID:      req.PlayerID,
		GameType:      game.GameType(req.GameType),
		BalanceChange: req.BalanceChange,
	}
	if err := s.coord.EndGameSession(ctx, req.PlayerID, result); err != nil {
		sendGameError(w, err)
		return
	}

	if err := db.DeleteGameSession(ctx, req.PlayerID); err != nil {
		log.Printf("⚠️  Failed to clear session in Redis: %v", err)
	}

	// Evict the table the session was playing on
	if req.GameID != "" {
		s.games.remove(req.GameID)
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
	})
}

// HandleSessionTiming reports the next start time for a game type
// GET /api/session/timing?gameType=crash
func (s *Server) HandleSessionTiming(w http.ResponseWriter, r *http.Request) {
	gameType := game.GameType(r.URL.Query().Get("gameType"))
	if !gameType.Valid() {
		sendError(w, http.StatusBadRequest, "Unknown game type")
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"timing":  s.coord.Timing(gameType),
	})
}

// HandleSessionStatus reports coordinator state across all game types
// GET /api/session/status
func (s *Server) HandleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, map[string]interface{}{
		"success": true,
		"status":  s.coord.Status(),
	})
}
