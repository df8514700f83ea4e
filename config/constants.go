package config

import (
	"os"
	"time"
)

/* =========================
   GAME TIMING
========================= */

const (
	// Global cycle: the coordinator checks its queues every GameInterval,
	// with the first check after WaitPeriod.
	GameInterval = 30 * time.Second
	WaitPeriod   = 4 * time.Second

	// Per-type round durations
	CrashGameDuration    = 15 * time.Second
	RouletteGameDuration = 20 * time.Second
	CardsGameDuration    = 25 * time.Second

	// Extra time a player gets past the round duration before their
	// session is force-ended.
	SessionGracePeriod = 5 * time.Second

	// Finished per-player tables stay resolvable for late state reads,
	// then the registry sweep drops them.
	TableRetention     = 10 * time.Minute
	TableSweepInterval = time.Minute
)

/* =========================
   GAME MECHANICS - CRASH
========================= */

const (
	// Multiplier progression
	CrashTickInterval  = 100 * time.Millisecond
	CrashTickIncrement = 0.10 // multiplier step per tick

	// Crash point distribution
	InstantCrashChance = 0.01 // 1% chance the round ends at exactly 1.00x
	MinCrashPoint      = 1.0
	MaxCrashPoint      = 1000.0

	// Betting window before the flight starts
	CrashBettingDuration = 10 * time.Second

	// Delay before the next round after a crash
	CrashCooldown = 3 * time.Second
)

/* =========================
   GAME MECHANICS - ROULETTE
========================= */

const (
	RouletteMaxNumber = 36 // wheel numbers 0..36

	// Payout ratios (winnings = amount * (payout + 1), stake included)
	PayoutStraight = 35
	PayoutEvens    = 1 // red/black/even/odd/low/high
	PayoutDozens   = 2 // dozens and columns
)

/* =========================
   GAME MECHANICS - CARDS
========================= */

const (
	// Blackjack
	BlackjackTarget     = 21
	DealerStandScore    = 17
	BlackjackPayoutRate = 1.5

	// Duel variant
	DuelStartingHealth = 30
	DuelStartingMana   = 1
	DuelMaxMana        = 10
	DuelHandSize       = 3
)

/* =========================
   VALIDATION
========================= */

const (
	MinBetAmount = 0.01    // NXL
	MaxBetAmount = 10000.0 // NXL
)

/* =========================
   HISTORY LIMITS
========================= */

const (
	MaxGameHistory   = 50   // default history page size
	MaxStoredHistory = 1000 // per-user cap in Postgres
)

/* =========================
   REDIS KEY PATTERNS
========================= */

const (
	// Simulated token ledger (per address)
	RedisBalanceKey = "mock_nxl_balance_%s"
	RedisStakedKey  = "mock_nxl_staked_%s"

	// Arena auth token cache
	RedisAuthTokenKey = "arena_auth_token"

	// Deployed token registry
	RedisDeployedTokensKey = "deployedTokens"

	// Active player session
	RedisSessionKey = "session:%s" // session:{playerId}
)

const (
	// Session records expire on their own if the server dies mid-round.
	SessionTTL = 2 * time.Hour
)

/* =========================
   ARENA API
========================= */

const (
	DefaultArenaBaseURL = "https://api.star-arena.com/v1"
	ArenaRequestTimeout = 10 * time.Second
)

// ArenaBaseURL returns the Arena API base URL, overridable via env.
func ArenaBaseURL() string {
	if v := os.Getenv("ARENA_API_URL"); v != "" {
		return v
	}
	return DefaultArenaBaseURL
}

/* =========================
   CHAIN RPC
========================= */

const (
	// Avalanche C-Chain (mainnet)
	DefaultChainRPC = "https://api.avax.network/ext/bc/C/rpc"
	ChainID         = 43114
)

// ChainRPCURL returns the JSON-RPC endpoint, overridable via env.
func ChainRPCURL() string {
	if v := os.Getenv("CHAIN_RPC_URL"); v != "" {
		return v
	}
	return DefaultChainRPC
}

/* =========================
   SERVER
========================= */

const (
	ServerHost = "0.0.0.0"
	ServerPort = "8080"

	// WebSocket settings
	WSReadDeadline  = 60 * time.Second
	WSWriteDeadline = 10 * time.Second
	WSPingInterval  = 30 * time.Second

	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024
)

// ListenAddr returns host:port for the HTTP server, PORT env wins.
func ListenAddr() string {
	port := ServerPort
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}
	return ServerHost + ":" + port
}
