package main

import (
	"context"
	"log"
	"net/http"

	"nexalisServer/api"
	"nexalisServer/arena"
	"nexalisServer/config"
	"nexalisServer/coordinator"
	"nexalisServer/db"
	"nexalisServer/wallet"
	"nexalisServer/ws"

	"github.com/joho/godotenv"
)

// tokenCache adapts the Redis token helpers to the arena client.
type tokenCache struct{}

func (tokenCache) StoreAuthToken(ctx context.Context, token string) error {
	return db.StoreAuthToken(ctx, token)
}

func (tokenCache) GetAuthToken(ctx context.Context) (string, error) {
	return db.GetAuthToken(ctx)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables")
	} else {
		log.Println("✅ Loaded environment variables from .env")
	}

	// Initialize database connections
	if err := db.InitPostgres(); err != nil {
		log.Printf("⚠️  Warning: PostgreSQL initialization failed: %v", err)
		log.Println("   Game history and leaderboard features will be disabled")
	}
	defer db.ClosePostgres()

	if err := db.InitRedis(); err != nil {
		log.Printf("⚠️  Warning: Redis initialization failed: %v", err)
		log.Println("   Balances fall back to the in-memory cache")
	}
	defer db.CloseRedis()

	// Wallet: mock NXL ledger over Redis plus on-chain AVAX reads
	ledger := wallet.NewMockLedger(db.NewKVStore())

	chainClient, err := wallet.NewChainClient()
	if err != nil {
		log.Printf("⚠️  Warning: Chain client initialization failed: %v", err)
		log.Println("   On-chain balance reads will not work")
	} else {
		defer chainClient.Close()
	}
	walletFacade := wallet.NewFacade(ledger, chainClient)

	// Arena client handles auth and remote session bookkeeping
	arenaClient := arena.NewClient(tokenCache{})
	arenaClient.LoadToken(context.Background())

	// Session coordinator on the global game cycle
	coord := coordinator.New(arenaClient, coordinator.RealClock())
	coord.Subscribe(ws.PublishCoordinatorEvent)
	coord.Start()
	defer coord.Stop()

	// WebSocket hub and the shared crash round loop
	ws.StartHub()
	ws.StartCrashLoop(ledger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.HandleWS)

	server := api.NewServer(coord, walletFacade)
	server.Routes(mux)

	addr := config.ListenAddr()
	log.Printf("🚀 Server starting on %s", addr)
	log.Println("")
	log.Println("📡 WebSocket Endpoints:")
	log.Println("   ws://localhost:8080/ws - Unified WebSocket")
	log.Println("   - Subscribe to 'crash' for the shared crash round")
	log.Println("   - Subscribe to 'session' for global game timing events")
	log.Println("")
	log.Println("🔌 API Endpoints:")
	log.Println("   POST /api/session/start - Join the next global game")
	log.Println("   POST /api/session/end - End the active session")
	log.Println("   GET  /api/session/timing - Next start time per game")
	log.Println("   POST /api/crash/bet, /api/crash/cashout - Crash round")
	log.Println("   POST /api/roulette/* - Per-player roulette tables")
	log.Println("   POST /api/blackjack/* - Per-player blackjack tables")
	log.Println("   POST /api/duel/* - Card duel vs AI")
	log.Println("   GET  /api/history, /api/stats, /api/leaderboard")
	log.Println("   GET  /api/wallet/balance, /api/wallet/refresh")
	log.Println("   GET  /api/health - Health check (Redis + PostgreSQL)")
	log.Println("")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("❌ Server error:", err)
	}
}
