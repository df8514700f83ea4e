package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"nexalisServer/config"
)

var (
	// RedisClient is the global Redis client instance
	RedisClient *redis.Client
)

// InitRedis initializes the Redis client connection
func InitRedis() error {
	log.Println("🔌 Connecting to Redis...")

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         redisURL,
		Password:     redisPassword,
		DB:           redisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("✅ Redis connected successfully - URL: %s", redisURL)
	return nil
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		log.Println("🔌 Closing Redis connection...")
		return RedisClient.Close()
	}
	return nil
}

// HealthCheckRedis pings the Redis server.
func HealthCheckRedis(ctx context.Context) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not initialized")
	}
	return RedisClient.Ping(ctx).Err()
}

/* =========================
   KEY-VALUE STORE
   Backs the simulated wallet ledger and auth token cache.
========================= */

// KVStore adapts the global Redis client to the plain get/set interface
// the wallet ledger consumes.
type KVStore struct{}

// NewKVStore returns a store over the global Redis client.
func NewKVStore() *KVStore { return &KVStore{} }

// Get fetches a key. The second return is false when the key is absent.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if RedisClient == nil {
		return "", false, fmt.Errorf("redis not initialized")
	}
	value, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes a key with no expiry.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := RedisClient.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

/* =========================
   GAME SESSION FUNCTIONS
   Redis Key: session:{playerId}
========================= */

// GameSessionRecord mirrors the coordinator's view of a player session.
// Kept in Redis with a TTL so stale sessions age out if the server dies
// mid-round; the coordinator's in-memory state stays authoritative.
type GameSessionRecord struct {
	PlayerID  string    `json:"playerId"`
	GameType  string    `json:"gameType"`
	GameID    string    `json:"gameId"`
	Status    string    `json:"status"` // queued, active, ended, forced_end
	CreatedAt time.Time `json:"createdAt"`
}

// StoreGameSession writes the player's session record.
func StoreGameSession(ctx context.Context, record *GameSessionRecord) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not initialized")
	}
	key := fmt.Sprintf(config.RedisSessionKey, record.PlayerID)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := RedisClient.Set(ctx, key, data, config.SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	log.Printf("✅ Stored session - Player: %s, Game: %s (%s)",
		record.PlayerID, record.GameID, record.GameType)
	return nil
}

// GetGameSession reads the player's session record; nil when absent.
func GetGameSession(ctx context.Context, playerID string) (*GameSessionRecord, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not initialized")
	}
	key := fmt.Sprintf(config.RedisSessionKey, playerID)

	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var record GameSessionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &record, nil
}

// DeleteGameSession removes the player's session record.
func DeleteGameSession(ctx context.Context, playerID string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not initialized")
	}
	key := fmt.Sprintf(config.RedisSessionKey, playerID)
	if err := RedisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

/* =========================
   AUTH TOKEN CACHE
========================= */

// StoreAuthToken caches the Arena bearer token.
func StoreAuthToken(ctx context.Context, token string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not initialized")
	}
	return RedisClient.Set(ctx, config.RedisAuthTokenKey, token, 0).Err()
}

// GetAuthToken reads the cached Arena bearer token; empty when absent.
func GetAuthToken(ctx context.Context) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("redis not initialized")
	}
	token, err := RedisClient.Get(ctx, config.RedisAuthTokenKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return token, err
}

/* =========================
   DEPLOYED TOKEN REGISTRY
========================= */

// DeployedToken is one entry of the local token registry.
type DeployedToken struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

// GetDeployedTokens reads the token registry.
func GetDeployedTokens(ctx context.Context) ([]DeployedToken, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not initialized")
	}
	data, err := RedisClient.Get(ctx, config.RedisDeployedTokensKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deployed tokens: %w", err)
	}

	var tokens []DeployedToken
	if err := json.Unmarshal([]byte(data), &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deployed tokens: %w", err)
	}
	return tokens, nil
}

// AddDeployedToken appends to the token registry.
func AddDeployedToken(ctx context.Context, token DeployedToken) error {
	tokens, err := GetDeployedTokens(ctx)
	if err != nil {
		return err
	}
	tokens = append(tokens, token)

	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal deployed tokens: %w", err)
	}
	return RedisClient.Set(ctx, config.RedisDeployedTokensKey, data, 0).Err()
}
