package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nexalisServer/config"
)

var (
	// PostgresPool is the global PostgreSQL connection pool
	PostgresPool *pgxpool.Pool
)

// GameResultRecord is one settled round in the per-user history.
type GameResultRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	GameType   string    `json:"gameType"`
	GameID     string    `json:"gameId"`
	Wager      float64   `json:"wager"`
	WinAmount  float64   `json:"winAmount"`
	Multiplier float64   `json:"multiplier,omitempty"`
	Result     string    `json:"result"` // win, lose, push, blackjack
	CreatedAt  time.Time `json:"createdAt"`
}

// GameStats are aggregate per-user statistics.
type GameStats struct {
	TotalGames   int     `json:"totalGames"`
	TotalWins    int     `json:"totalWins"`
	TotalLosses  int     `json:"totalLosses"`
	TotalWagered float64 `json:"totalWagered"`
	TotalWon     float64 `json:"totalWon"`
	WinRate      float64 `json:"winRate"`
}

// WalletPnLRecord is one row of the profit/loss leaderboard.
type WalletPnLRecord struct {
	WalletAddress string    `json:"walletAddress"`
	Amount        float64   `json:"amount"`
	Rank          int       `json:"rank"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// InitPostgres initializes the PostgreSQL connection pool
func InitPostgres() error {
	log.Println("🔌 Connecting to PostgreSQL...")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute

	PostgresPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := PostgresPool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ PostgreSQL connected successfully")

	if err := InitSchema(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// ClosePostgres closes the PostgreSQL connection pool
func ClosePostgres() {
	if PostgresPool != nil {
		log.Println("🔌 Closing PostgreSQL connection...")
		PostgresPool.Close()
	}
}

// InitSchema creates the database tables if they don't exist
func InitSchema(ctx context.Context) error {
	log.Println("📋 Initializing database schema...")

	gameHistorySchema := `
	CREATE TABLE IF NOT EXISTS game_history (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		game_type TEXT NOT NULL,
		game_id TEXT NOT NULL,
		wager DOUBLE PRECISION NOT NULL DEFAULT 0,
		win_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		multiplier DOUBLE PRECISION NOT NULL DEFAULT 0,
		result TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Per-user history queries, newest first
	CREATE INDEX IF NOT EXISTS idx_game_history_user ON game_history(user_id, created_at DESC);

	-- Per-user per-game filtering
	CREATE INDEX IF NOT EXISTS idx_game_history_user_type ON game_history(user_id, game_type, created_at DESC);
	`

	if _, err := PostgresPool.Exec(ctx, gameHistorySchema); err != nil {
		return fmt.Errorf("failed to create game_history table: %w", err)
	}

	walletPnLSchema := `
	CREATE TABLE IF NOT EXISTS wallet_pnl (
		wallet_address TEXT PRIMARY KEY,
		amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_wallet_pnl_amount ON wallet_pnl(amount DESC);
	`

	if _, err := PostgresPool.Exec(ctx, walletPnLSchema); err != nil {
		return fmt.Errorf("failed to create wallet_pnl table: %w", err)
	}

	log.Println("✅ Database schema initialized")
	return nil
}

/* =========================
   GAME HISTORY FUNCTIONS
========================= */

// SaveGameResult inserts a settled round and trims the user's history to
// the stored cap.
func SaveGameResult(ctx context.Context, record *GameResultRecord) error {
	if PostgresPool == nil {
		return fmt.Errorf("postgres not initialized")
	}
	query := `
		INSERT INTO game_history (id, user_id, game_type, game_id, wager, win_amount, multiplier, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := PostgresPool.Exec(ctx, query,
		record.ID, record.UserID, record.GameType, record.GameID,
		record.Wager, record.WinAmount, record.Multiplier, record.Result, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save game result: %w", err)
	}

	// Keep only the newest MaxStoredHistory rows per user.
	trim := `
		DELETE FROM game_history
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM game_history
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		)
	`
	if _, err := PostgresPool.Exec(ctx, trim, record.UserID, config.MaxStoredHistory); err != nil {
		log.Printf("⚠️  Failed to trim history for %s: %v", record.UserID, err)
	}

	// Feed the running PnL leaderboard
	if record.WinAmount > 0 {
		if err := AddWalletPnL(ctx, record.UserID, record.WinAmount); err != nil {
			log.Printf("⚠️  Failed to record payout pnl for %s: %v", record.UserID, err)
		}
	}
	if record.Wager > 0 {
		if err := SubtractWalletPnL(ctx, record.UserID, record.Wager); err != nil {
			log.Printf("⚠️  Failed to record wager pnl for %s: %v", record.UserID, err)
		}
	}

	return nil
}

// GetGameHistory returns the user's most recent rounds, optionally
// filtered by game type. gameType "" means all games.
func GetGameHistory(ctx context.Context, userID, gameType string, limit int) ([]*GameResultRecord, error) {
	if PostgresPool == nil {
		return nil, fmt.Errorf("postgres not initialized")
	}
	if limit <= 0 || limit > config.MaxStoredHistory {
		limit = config.MaxGameHistory
	}

	var rows pgx.Rows
	var err error
	if gameType == "" {
		rows, err = PostgresPool.Query(ctx, `
			SELECT id, user_id, game_type, game_id, wager, win_amount, multiplier, result, created_at
			FROM game_history
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, userID, limit)
	} else {
		rows, err = PostgresPool.Query(ctx, `
			SELECT id, user_id, game_type, game_id, wager, win_amount, multiplier, result, created_at
			FROM game_history
			WHERE user_id = $1 AND game_type = $2
			ORDER BY created_at DESC
			LIMIT $3
		`, userID, gameType, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	defer rows.Close()

	var records []*GameResultRecord
	for rows.Next() {
		record := &GameResultRecord{}
		if err := rows.Scan(&record.ID, &record.UserID, &record.GameType, &record.GameID,
			&record.Wager, &record.WinAmount, &record.Multiplier, &record.Result, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game history row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetGameStats aggregates the user's lifetime statistics.
func GetGameStats(ctx context.Context, userID string) (*GameStats, error) {
	if PostgresPool == nil {
		return nil, fmt.Errorf("postgres not initialized")
	}
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE result IN ('win', 'blackjack')),
			COUNT(*) FILTER (WHERE result = 'lose'),
			COALESCE(SUM(wager), 0),
			COALESCE(SUM(win_amount), 0)
		FROM game_history
		WHERE user_id = $1
	`

	stats := &GameStats{}
	err := PostgresPool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalGames, &stats.TotalWins, &stats.TotalLosses,
		&stats.TotalWagered, &stats.TotalWon)
	if err != nil {
		return nil, fmt.Errorf("failed to query game stats: %w", err)
	}

	if stats.TotalGames > 0 {
		stats.WinRate = float64(stats.TotalWins) / float64(stats.TotalGames) * 100
	}
	return stats, nil
}

/* =========================
   WALLET PNL FUNCTIONS
========================= */

// SubtractWalletPnL records a loss against the wallet's running PnL.
func SubtractWalletPnL(ctx context.Context, walletAddress string, betAmount float64) error {
	if PostgresPool == nil {
		return fmt.Errorf("postgres not initialized")
	}
	query := `
		INSERT INTO wallet_pnl (wallet_address, amount, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (wallet_address)
		DO UPDATE SET amount = wallet_pnl.amount - $3, updated_at = NOW()
	`
	_, err := PostgresPool.Exec(ctx, query, walletAddress, -betAmount, betAmount)
	if err != nil {
		return fmt.Errorf("failed to subtract wallet pnl: %w", err)
	}
	return nil
}

// AddWalletPnL records a payout toward the wallet's running PnL.
func AddWalletPnL(ctx context.Context, walletAddress string, payoutAmount float64) error {
	if PostgresPool == nil {
		return fmt.Errorf("postgres not initialized")
	}
	query := `
		INSERT INTO wallet_pnl (wallet_address, amount, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (wallet_address)
		DO UPDATE SET amount = wallet_pnl.amount + $2, updated_at = NOW()
	`
	_, err := PostgresPool.Exec(ctx, query, walletAddress, payoutAmount)
	if err != nil {
		return fmt.Errorf("failed to add wallet pnl: %w", err)
	}
	return nil
}

// GetWalletPnLLeaderboard returns the top wallets by profit.
func GetWalletPnLLeaderboard(ctx context.Context, limit int) ([]*WalletPnLRecord, error) {
	if PostgresPool == nil {
		return nil, fmt.Errorf("postgres not initialized")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := PostgresPool.Query(ctx, `
		SELECT wallet_address, amount, updated_at,
		       RANK() OVER (ORDER BY amount DESC) AS rank
		FROM wallet_pnl
		ORDER BY amount DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var records []*WalletPnLRecord
	for rows.Next() {
		record := &WalletPnLRecord{}
		if err := rows.Scan(&record.WalletAddress, &record.Amount, &record.UpdatedAt, &record.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetWalletPnLRank returns one wallet's PnL and leaderboard rank;
// nil when the wallet has no recorded rounds.
func GetWalletPnLRank(ctx context.Context, walletAddress string) (*WalletPnLRecord, error) {
	if PostgresPool == nil {
		return nil, fmt.Errorf("postgres not initialized")
	}
	record := &WalletPnLRecord{}
	err := PostgresPool.QueryRow(ctx, `
		SELECT wallet_address, amount, updated_at, rank FROM (
			SELECT wallet_address, amount, updated_at,
			       RANK() OVER (ORDER BY amount DESC) AS rank
			FROM wallet_pnl
		) ranked
		WHERE wallet_address = $1
	`, walletAddress).Scan(&record.WalletAddress, &record.Amount, &record.UpdatedAt, &record.Rank)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet pnl: %w", err)
	}
	return record, nil
}

// HealthCheckPostgres pings the database.
func HealthCheckPostgres(ctx context.Context) error {
	if PostgresPool == nil {
		return fmt.Errorf("postgres not initialized")
	}
	return PostgresPool.Ping(ctx)
}
