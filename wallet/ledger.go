package wallet

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"nexalisServer/config"
	"nexalisServer/game"
)

// New addresses are seeded with this balance the first time they are read.
const DefaultStartingBalance = 1000.0

// KV is the key-value cache backing the simulated ledger: Redis in
// production, an in-memory map in tests. The ledger treats it as an
// opaque cache, not a source of truth.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MockLedger keeps per-address NXL balances under mock_nxl_balance_<addr>
// keys, updated optimistically on every settlement. When the store is
// unreachable the last known cached value is served; no retries.
type MockLedger struct {
	kv KV

	mu    sync.RWMutex
	cache map[string]float64
}

// NewMockLedger builds a ledger over the given store.
func NewMockLedger(kv KV) *MockLedger {
	return &MockLedger{
		kv:    kv,
		cache: make(map[string]float64),
	}
}

// Balance returns the player's NXL balance, seeding new addresses.
func (l *MockLedger) Balance(ctx context.Context, player string) (float64, error) {
	key := fmt.Sprintf(config.RedisBalanceKey, player)

	raw, found, err := l.kv.Get(ctx, key)
	if err != nil {
		l.mu.RLock()
		cached, ok := l.cache[player]
		l.mu.RUnlock()
		if ok {
			log.Printf("⚠️  Balance store unavailable for %s, serving cached value: %v", player, err)
			return cached, nil
		}
		return 0, err
	}

	var balance float64
	if !found {
		balance = DefaultStartingBalance
		l.write(ctx, key, player, balance)
		return balance, nil
	}

	balance, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt balance for %s: %w", player, err)
	}

	l.mu.Lock()
	l.cache[player] = balance
	l.mu.Unlock()
	return balance, nil
}

// Debit removes amount from the player's balance.
func (l *MockLedger) Debit(ctx context.Context, player string, amount float64) error {
	if amount <= 0 {
		return game.ErrInvalidAmount
	}
	balance, err := l.Balance(ctx, player)
	if err != nil {
		return err
	}
	if amount > balance {
		return game.ErrInsufficientFunds
	}
	l.write(ctx, fmt.Sprintf(config.RedisBalanceKey, player), player, balance-amount)
	return nil
}

// Credit adds amount to the player's balance.
func (l *MockLedger) Credit(ctx context.Context, player string, amount float64) error {
	if amount <= 0 {
		return game.ErrInvalidAmount
	}
	balance, err := l.Balance(ctx, player)
	if err != nil {
		return err
	}
	l.write(ctx, fmt.Sprintf(config.RedisBalanceKey, player), player, balance+amount)
	return nil
}

// write updates the cache first, then the store; a store failure is
// logged and the cached value stands until the next successful read.
func (l *MockLedger) write(ctx context.Context, key, player string, balance float64) {
	l.mu.Lock()
	l.cache[player] = balance
	l.mu.Unlock()

	if err := l.kv.Set(ctx, key, strconv.FormatFloat(balance, 'f', -1, 64)); err != nil {
		log.Printf("⚠️  Failed to persist balance for %s: %v", player, err)
	}
}

// Staked returns the player's staked NXL amount.
func (l *MockLedger) Staked(ctx context.Context, player string) (float64, error) {
	key := fmt.Sprintf(config.RedisStakedKey, player)
	raw, found, err := l.kv.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// Stake moves amount from the player's balance into the staked pot.
func (l *MockLedger) Stake(ctx context.Context, player string, amount float64) error {
	if err := l.Debit(ctx, player, amount); err != nil {
		return err
	}
	staked, err := l.Staked(ctx, player)
	if err != nil {
		return err
	}
	return l.kv.Set(ctx, fmt.Sprintf(config.RedisStakedKey, player),
		strconv.FormatFloat(staked+amount, 'f', -1, 64))
}

// Unstake moves amount from the staked pot back to the balance.
func (l *MockLedger) Unstake(ctx context.Context, player string, amount float64) error {
	staked, err := l.Staked(ctx, player)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return game.ErrInvalidAmount
	}
	if amount > staked {
		return game.ErrInsufficientFunds
	}
	if err := l.kv.Set(ctx, fmt.Sprintf(config.RedisStakedKey, player),
		strconv.FormatFloat(staked-amount, 'f', -1, 64)); err != nil {
		return err
	}
	return l.Credit(ctx, player, amount)
}
