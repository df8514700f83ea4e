package api

import (
	"sync"
	"time"

	"nexalisServer/game"
)

// gameRegistry tracks live per-player tables by game ID. Finished
// tables stay resolvable until evicted so late state reads still work;
// unknown IDs always come back as GAME_NOT_FOUND. Tables are evicted
// when the owning session ends, or by the age sweep once they outlive
// the retention window.
type gameRegistry struct {
	mu        sync.RWMutex
	roulette  map[string]*game.RouletteGame
	blackjack map[string]*game.BlackjackGame
	duels     map[string]*game.DuelGame
	created   map[string]time.Time
}

func newGameRegistry() *gameRegistry {
	return &gameRegistry{
		roulette:  make(map[string]*game.RouletteGame),
		blackjack: make(map[string]*game.BlackjackGame),
		duels:     make(map[string]*game.DuelGame),
		created:   make(map[string]time.Time),
	}
}

func (r *gameRegistry) putRoulette(id string, g *game.RouletteGame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roulette[id] = g
	r.created[id] = time.Now()
}

func (r *gameRegistry) getRoulette(id string) (*game.RouletteGame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.roulette[id]; ok {
		return g, nil
	}
	return nil, game.ErrGameNotFound
}

func (r *gameRegistry) putBlackjack(id string, g *game.BlackjackGame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blackjack[id] = g
	r.created[id] = time.Now()
}

func (r *gameRegistry) getBlackjack(id string) (*game.BlackjackGame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.blackjack[id]; ok {
		return g, nil
	}
	return nil, game.ErrGameNotFound
}

func (r *gameRegistry) putDuel(id string, g *game.DuelGame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duels[id] = g
	r.created[id] = time.Now()
}

func (r *gameRegistry) getDuel(id string) (*game.DuelGame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.duels[id]; ok {
		return g, nil
	}
	return nil, game.ErrGameNotFound
}

func (r *gameRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roulette, id)
	delete(r.blackjack, id)
	delete(r.duels, id)
	delete(r.created, id)
}

// sweepStale evicts every table older than maxAge and reports how many
// were dropped.
func (r *gameRegistry) sweepStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, at := range r.created {
		if at.Before(cutoff) {
			delete(r.roulette, id)
			delete(r.blackjack, id)
			delete(r.duels, id)
			delete(r.created, id)
			evicted++
		}
	}
	return evicted
}
