package wallet

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"nexalisServer/config"
)

// ChainClient is a read-only wrapper over the chain's JSON-RPC node:
// balances, transactions, receipts and gas price. Nothing here signs or
// sends; the hub never moves real funds.
type ChainClient struct {
	client *ethclient.Client
}

// NewChainClient connects to the configured RPC endpoint.
func NewChainClient() (*ChainClient, error) {
	rpcURL := config.ChainRPCURL()
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain RPC: %w", err)
	}
	log.Printf("✅ Chain RPC client connected - %s", rpcURL)
	return &ChainClient{client: client}, nil
}

// Close releases the underlying RPC connection.
func (c *ChainClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// GetBalance returns the address's native balance in AVAX as a decimal
// string (eth_getBalance).
func (c *ChainClient) GetBalance(ctx context.Context, address string) (string, error) {
	wei, err := c.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return "", fmt.Errorf("failed to get balance for %s: %w", address, err)
	}
	return formatWei(wei), nil
}

// GetTransaction looks up a transaction by hash (eth_getTransactionByHash).
func (c *ChainClient) GetTransaction(ctx context.Context, hash string) (*types.Transaction, bool, error) {
	tx, pending, err := c.client.TransactionByHash(ctx, common.HexToHash(hash))
	if err != nil {
		return nil, false, fmt.Errorf("failed to get transaction %s: %w", hash, err)
	}
	return tx, pending, nil
}

// GetTransactionReceipt looks up a mined transaction's receipt
// (eth_getTransactionReceipt).
func (c *ChainClient) GetTransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt %s: %w", hash, err)
	}
	return receipt, nil
}

// GasPrice returns the node's suggested gas price in wei (eth_gasPrice).
func (c *ChainClient) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return price, nil
}

// formatWei converts wei to a decimal native-token string.
func formatWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	weiFloat := new(big.Float).SetInt(wei)
	divisor := new(big.Float).SetFloat64(1e18)
	return new(big.Float).Quo(weiFloat, divisor).Text('f', 6)
}
