package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"nexalisServer/config"
	"nexalisServer/coordinator"
	"nexalisServer/game"
	"nexalisServer/wallet"
)

// Server wires the HTTP handlers to the coordinator, wallet, and the
// per-player game registry.
type Server struct {
	coord  *coordinator.Coordinator
	wallet *wallet.Facade
	games  *gameRegistry
}

// NewServer builds the API surface and starts the table sweep.
func NewServer(coord *coordinator.Coordinator, w *wallet.Facade) *Server {
	s := &Server{
		coord:  coord,
		wallet: w,
		games:  newGameRegistry(),
	}
	go s.sweepTables()
	return s
}

// sweepTables evicts per-player tables that outlived the retention
// window, catching sessions that ended without carrying a gameId.
func (s *Server) sweepTables() {
	ticker := time.NewTicker(config.TableSweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		if n := s.games.sweepStale(config.TableRetention); n > 0 {
			log.Printf("🕒 Swept %d stale game tables", n)
		}
	}
}

// Routes registers all API endpoints on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	// Session coordination
	mux.HandleFunc("/api/session/start", corsMiddleware(s.HandleSessionStart))
	mux.HandleFunc("/api/session/end", corsMiddleware(s.HandleSessionEnd))
	mux.HandleFunc("/api/session/timing", corsMiddleware(s.HandleSessionTiming))
	mux.HandleFunc("/api/session/status", corsMiddleware(s.HandleSessionStatus))

	// Crash (shared round, also reachable over WebSocket)
	mux.HandleFunc("/api/crash/bet", corsMiddleware(s.HandleCrashBet))
	mux.HandleFunc("/api/crash/cashout", corsMiddleware(s.HandleCrashCashout))
	mux.HandleFunc("/api/crash/state", corsMiddleware(s.HandleCrashState))
	mux.HandleFunc("/api/crash/history", corsMiddleware(s.HandleCrashHistory))
	mux.HandleFunc("/api/crash/verify", corsMiddleware(s.HandleCrashVerify))

	// Roulette (per-player tables)
	mux.HandleFunc("/api/roulette/new", corsMiddleware(s.HandleRouletteNew))
	mux.HandleFunc("/api/roulette/bet", corsMiddleware(s.HandleRouletteBet))
	mux.HandleFunc("/api/roulette/remove", corsMiddleware(s.HandleRouletteRemove))
	mux.HandleFunc("/api/roulette/clear", corsMiddleware(s.HandleRouletteClear))
	mux.HandleFunc("/api/roulette/spin", corsMiddleware(s.HandleRouletteSpin))
	mux.HandleFunc("/api/roulette/state", corsMiddleware(s.HandleRouletteState))

	// Blackjack (per-player tables)
	mux.HandleFunc("/api/blackjack/new", corsMiddleware(s.HandleBlackjackNew))
	mux.HandleFunc("/api/blackjack/deal", corsMiddleware(s.HandleBlackjackDeal))
	mux.HandleFunc("/api/blackjack/hit", corsMiddleware(s.HandleBlackjackHit))
	mux.HandleFunc("/api/blackjack/stand", corsMiddleware(s.HandleBlackjackStand))
	mux.HandleFunc("/api/blackjack/double", corsMiddleware(s.HandleBlackjackDouble))
	mux.HandleFunc("/api/blackjack/state", corsMiddleware(s.HandleBlackjackState))

	// Card duel
	mux.HandleFunc("/api/duel/start", corsMiddleware(s.HandleDuelStart))
	mux.HandleFunc("/api/duel/play", corsMiddleware(s.HandleDuelPlay))
	mux.HandleFunc("/api/duel/endturn", corsMiddleware(s.HandleDuelEndTurn))
	mux.HandleFunc("/api/duel/state", corsMiddleware(s.HandleDuelState))

	// History and leaderboard
	mux.HandleFunc("/api/history", corsMiddleware(s.HandleGameHistory))
	mux.HandleFunc("/api/stats", corsMiddleware(s.HandleGameStats))
	mux.HandleFunc("/api/leaderboard", corsMiddleware(s.HandleLeaderboard))
	mux.HandleFunc("/api/rank", corsMiddleware(s.HandleRank))

	// Wallet
	mux.HandleFunc("/api/wallet/balance", corsMiddleware(s.HandleWalletBalance))
	mux.HandleFunc("/api/wallet/refresh", corsMiddleware(s.HandleWalletRefresh))
	mux.HandleFunc("/api/wallet/stake", corsMiddleware(s.HandleWalletStake))
	mux.HandleFunc("/api/wallet/unstake", corsMiddleware(s.HandleWalletUnstake))
	mux.HandleFunc("/api/tokens", corsMiddleware(s.HandleTokens))

	mux.HandleFunc("/api/health", corsMiddleware(s.HandleHealthCheck))
}

/* =========================
   RESPONSE HELPERS
========================= */

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// sendError sends an error response
func sendError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error:   message,
	})
}

// sendGameError maps a coded game error to an HTTP response.
func sendGameError(w http.ResponseWriter, err error) {
	var gameErr *game.Error
	if !errors.As(err, &gameErr) {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusBadRequest
	switch gameErr.Code {
	case "GAME_NOT_FOUND":
		status = http.StatusNotFound
	case "ACTIVE_SESSION_EXISTS", "BET_ALREADY_PLACED":
		status = http.StatusConflict
	case "INSUFFICIENT_FUNDS":
		status = http.StatusPaymentRequired
	case "SESSION_START_FAILED", "SESSION_END_FAILED":
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error:   gameErr.Message,
		Code:    gameErr.Code,
	})
}

// sendJSON sends a success response
func sendJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		handler(w, r)
	}
}
