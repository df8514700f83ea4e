package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"nexalisServer/db"
	"nexalisServer/wallet"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env not found")
	}

	if os.Getenv("DATABASE_URL") == "" {
		log.Fatal("DATABASE_URL not set")
	}

	// Init postgres
	if err := db.InitPostgres(); err != nil {
		log.Fatalf("Failed to init postgres: %v", err)
	}
	defer db.ClosePostgres()

	if err := db.InitRedis(); err != nil {
		log.Fatalf("Failed to init redis: %v", err)
	}
	defer db.CloseRedis()

	ctx := context.Background()

	// Demo wallets with various PnL and starting balances
	demoWallets := []struct {
		addr    string
		pnl     float64
		balance float64
	}{
		{"0x1234567890123456789012345678901234567890", 250.75, 1500},
		{"0xABCDEF0123456789ABCDEF0123456789ABCDEF01", 185.50, 1200},
		{"0x9876543210987654321098765432109876543210", 120.25, 1100},
		{"0xDEADBEEF00000000000000000000000DEADBEEF", 95.00, 1050},
		{"0xCAFEBABE00000000000000000000000CAFEBABE", 67.50, 1000},
		{"0xFEEDFACE00000000000000000000000FEEDFACE", 45.25, 980},
		{"0xBAADF00D00000000000000000000000BAADF00D", 32.00, 950},
		{"0x8BADF00D00000000000000000000000000000000", 18.75, 900},
		{"0xDEFEC8ED00000000000000000000000000000000", -5.50, 850},
		{"0xB16B00B500000000000000000000000000000000", -25.00, 800},
	}

	fmt.Println("Seeding demo wallets...")

	ledger := wallet.NewMockLedger(db.NewKVStore())

	for _, w := range demoWallets {
		// Reset PnL row
		db.PostgresPool.Exec(ctx, "DELETE FROM wallet_pnl WHERE wallet_address = $1", w.addr)

		_, err := db.PostgresPool.Exec(ctx,
			"INSERT INTO wallet_pnl (wallet_address, amount) VALUES ($1, $2)",
			w.addr, w.pnl)
		if err != nil {
			log.Printf("Failed to insert %s: %v", w.addr[:10], err)
			continue
		}

		// Seed the mock NXL balance: reading initializes the key, then
		// adjust to the target amount.
		current, err := ledger.Balance(ctx, w.addr)
		if err != nil {
			log.Printf("Failed to read balance %s: %v", w.addr[:10], err)
			continue
		}
		if delta := w.balance - current; delta > 0 {
			err = ledger.Credit(ctx, w.addr, delta)
		} else if delta < 0 {
			err = ledger.Debit(ctx, w.addr, -delta)
		}
		if err != nil {
			log.Printf("Failed to set balance %s: %v", w.addr[:10], err)
			continue
		}

		fmt.Printf("  %s... -> pnl %.2f, balance %.2f\n", w.addr[:10], w.pnl, w.balance)
	}

	fmt.Println("\nDone! Testing leaderboard...")

	records, err := db.GetWalletPnLLeaderboard(ctx, 20)
	if err != nil {
		log.Fatalf("Failed to get leaderboard: %v", err)
	}

	fmt.Printf("\nLeaderboard (%d entries):\n", len(records))
	for _, r := range records {
		fmt.Printf("  #%d %s... %.2f\n", r.Rank, r.WalletAddress[:10], r.Amount)
	}
}
