package api

import (
	"net/http"
	"strconv"

	"nexalisServer/config"
	"nexalisServer/db"
)

// HandleGameHistory returns a player's recent game results
// GET /api/history?userId=...&gameType=crash&limit=50
func (s *Server) HandleGameHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		sendError(w, http.StatusBadRequest, "userId is required")
		return
	}
	gameType := r.URL.Query().Get("gameType")

	limit := config.MaxGameHistory
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			sendError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	history, err := db.GetGameHistory(ctx, userID, gameType, limit)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to fetch game history")
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"history": history,
		"count":   len(history),
	})
}

// HandleGameStats returns aggregate win/loss stats for a player
// GET /api/stats?userId=...
func (s *Server) HandleGameStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		sendError(w, http.StatusBadRequest, "userId is required")
		return
	}

	stats, err := db.GetGameStats(ctx, userID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to fetch game stats")
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// HandleLeaderboard returns the PnL leaderboard
// GET /api/leaderboard?limit=10
func (s *Server) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 100 {
			sendError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	leaderboard, err := db.GetWalletPnLLeaderboard(ctx, limit)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}

	sendJSON(w, map[string]interface{}{
		"success":     true,
		"leaderboard": leaderboard,
		"count":       len(leaderboard),
	})
}

// HandleRank returns one wallet's leaderboard entry and rank
// GET /api/rank?address=...
func (s *Server) HandleRank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	address := r.URL.Query().Get("address")
	if address == "" {
		sendError(w, http.StatusBadRequest, "address is required")
		return
	}

	record, err := db.GetWalletPnLRank(ctx, address)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to fetch rank")
		return
	}
	if record == nil {
		sendError(w, http.StatusNotFound, "Wallet has no recorded games")
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"rank":    record,
	})
}
