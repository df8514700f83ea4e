package game

import (
	cryptorand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/rand"
)

// NewSeededRNG derives a deterministic RNG from an arbitrary seed string.
// The same seed always produces the same outcome stream, which is what
// makes round results replayable from the revealed server seed.
func NewSeededRNG(seed string) *rand.Rand {
	hash := sha256.Sum256([]byte(seed))
	seedInt := int64(binary.BigEndian.Uint64(hash[:8]))
	return rand.New(rand.NewSource(seedInt))
}

// NewServerSeed returns a fresh random server seed and its sha256 hash.
// The hash is published before betting closes; the seed is revealed after
// the round so players can recompute the outcome.
func NewServerSeed() (seed string, hash string) {
	bytes := make([]byte, 32)
	cryptorand.Read(bytes)

	seed = hex.EncodeToString(bytes)

	h := sha256.Sum256([]byte(seed))
	hash = hex.EncodeToString(h[:])

	return
}

// VerifyServerSeed checks a revealed seed against its published hash.
func VerifyServerSeed(seed, hash string) bool {
	h := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(h[:]) == hash
}
