package api

import (
	"encoding/json"
	"net/http"

	"nexalisServer/db"
)

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

type StakeRequest struct {
	Address string  `json:"address"`
	Amount  float64 `json:"amount"`
}

/* =========================
   WALLET ENDPOINTS
========================= */

// HandleWalletBalance returns the mock NXL balance for an address
// GET /api/wallet/balance?address=...
func (s *Server) HandleWalletBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	address := r.URL.Query().Get("address")
	if address == "" {
		sendError(w, http.StatusBadRequest, "address is required")
		return
	}

	balance, err := s.wallet.GetBalance(ctx, address)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to fetch balance")
		return
	}

	staked, err := s.wallet.Ledger().Staked(ctx, address)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to fetch staked balance")
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
		"address": address,
		"balance": balance,
		"staked":  staked,
	})
}

// HandleWalletRefresh re-reads the on-chain AVAX balance alongside the
// mock NXL balance
// GET /api/wallet/refresh?address=...
func (s *Server) HandleWalletRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	address := r.URL.Query().Get("address")
	if address == "" {
		sendError(w, http.StatusBadRequest, "address is required")
		return
	}

	balances, err := s.wallet.RefreshBalances(ctx, address)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to refresh balances")
		return
	}

	sendJSON(w, map[string]interface{}{
		"success":  true,
		"address":  address,
		"balances": balances,
	})
}

// HandleWalletStake moves balance into the staked bucket
// POST /api/wallet/stake
func (s *Server) HandleWalletStake(w http.ResponseWriter, r *http.Request) {
	s.stakeAction(w, r, true)
}

// HandleWalletUnstake moves staked balance back to spendable
// POST /api/wallet/unstake
func (s *Server) HandleWalletUnstake(w http.ResponseWriter, r *http.Request) {
	s.stakeAction(w, r, false)
}

func (s *Server) stakeAction(w http.ResponseWriter, r *http.Request, stake bool) {
	ctx := r.Context()

	var req StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Address == "" {
		sendError(w, http.StatusBadRequest, "Address is required")
		return
	}

	var err error
	if stake {
		err = s.wallet.Ledger().Stake(ctx, req.Address, req.Amount)
	} else {
		err = s.wallet.Ledger().Unstake(ctx, req.Address, req.Amount)
	}
	if err != nil {
		sendGameError(w, err)
		return
	}

	sendJSON(w, map[string]interface{}{
		"success": true,
	})
}

// HandleTokens lists or registers deployed token records
// GET/POST /api/tokens
func (s *Server) HandleTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		tokens, err := db.GetDeployedTokens(ctx)
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to fetch tokens")
			return
		}
		sendJSON(w, map[string]interface{}{
			"success": true,
			"tokens":  tokens,
		})

	case http.MethodPost:
		var token db.DeployedToken
		if err := json.NewDecoder(r.Body).Decode(&token); err != nil {
			sendError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if token.Address == "" {
			sendError(w, http.StatusBadRequest, "Token address is required")
			return
		}
		if err := db.AddDeployedToken(ctx, token); err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to store token")
			return
		}
		sendJSON(w, map[string]interface{}{
			"success": true,
		})

	default:
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleHealthCheck reports datastore health
// GET /api/health
func (s *Server) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	services := map[string]string{
		"postgres": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := db.HealthCheckPostgres(ctx); err != nil {
		services["postgres"] = err.Error()
		healthy = false
	}
	if err := db.HealthCheckRedis(ctx); err != nil {
		services["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  healthy,
		"services": services,
	})
}
