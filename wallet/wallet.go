package wallet

import (
	"context"
	"log"
	"strconv"
	"sync"
)

// Balances is one refresh snapshot: native chain balance plus the
// simulated NXL token balance.
type Balances struct {
	AVAX string `json:"avax"`
	NXL  string `json:"nxl"`
}

// Facade is what game settlement talks to: get/refresh balances and
// apply win/loss deltas. Chain reads degrade to the last known cached
// value when the RPC node is unreachable; no retries.
type Facade struct {
	ledger *MockLedger
	chain  *ChainClient // nil when unconfigured

	mu        sync.RWMutex
	lastChain map[string]string
}

// NewFacade builds the facade. chain may be nil; native balances then
// read as zero.
func NewFacade(ledger *MockLedger, chain *ChainClient) *Facade {
	return &Facade{
		ledger:    ledger,
		chain:     chain,
		lastChain: make(map[string]string),
	}
}

// Ledger exposes the simulated NXL ledger for game settlement.
func (f *Facade) Ledger() *MockLedger { return f.ledger }

// GetBalance returns the address's native balance as a decimal string.
func (f *Facade) GetBalance(ctx context.Context, address string) (string, error) {
	if f.chain == nil {
		return "0", nil
	}

	balance, err := f.chain.GetBalance(ctx, address)
	if err != nil {
		f.mu.RLock()
		cached, ok := f.lastChain[address]
		f.mu.RUnlock()
		if ok {
			log.Printf("⚠️  Chain RPC unavailable for %s, serving cached balance: %v", address, err)
			return cached, nil
		}
		return "", err
	}

	f.mu.Lock()
	f.lastChain[address] = balance
	f.mu.Unlock()
	return balance, nil
}

// RefreshBalances re-reads both balances for the address.
func (f *Facade) RefreshBalances(ctx context.Context, address string) (Balances, error) {
	avax, err := f.GetBalance(ctx, address)
	if err != nil {
		avax = "0"
	}

	nxl, err := f.ledger.Balance(ctx, address)
	if err != nil {
		return Balances{}, err
	}

	return Balances{
		AVAX: avax,
		NXL:  strconv.FormatFloat(nxl, 'f', -1, 64),
	}, nil
}

// ApplyDelta settles a round: positive credits, negative debits,
// zero is a no-op.
func (f *Facade) ApplyDelta(ctx context.Context, address string, delta float64) error {
	switch {
	case delta > 0:
		return f.ledger.Credit(ctx, address, delta)
	case delta < 0:
		return f.ledger.Debit(ctx, address, -delta)
	}
	return nil
}
