package api

import (
	"errors"
	"testing"
	"time"

	"nexalisServer/game"
)

func TestRegistrySweepEvictsStaleTables(t *testing.T) {
	reg := newGameRegistry()

	stale := game.NewRouletteGame("alice", nil, game.NewSeededRNG("stale"))
	reg.putRoulette(stale.GameID, stale)
	reg.created[stale.GameID] = time.Now().Add(-time.Hour)

	staleDuel := game.NewDuelGame("alice", game.NewSeededRNG("stale-duel"))
	reg.putDuel(staleDuel.GameID, staleDuel)
	reg.created[staleDuel.GameID] = time.Now().Add(-time.Hour)

	fresh := game.NewBlackjackGame("bob", nil, game.NewSeededRNG("fresh"))
	reg.putBlackjack(fresh.GameID, fresh)

	if n := reg.sweepStale(10 * time.Minute); n != 2 {
		t.Fatalf("sweepStale evicted %d tables, want 2", n)
	}

	if _, err := reg.getRoulette(stale.GameID); !errors.Is(err, game.ErrGameNotFound) {
		t.Errorf("Stale roulette lookup error = %v, want GAME_NOT_FOUND", err)
	}
	if _, err := reg.getDuel(staleDuel.GameID); !errors.Is(err, game.ErrGameNotFound) {
		t.Errorf("Stale duel lookup error = %v, want GAME_NOT_FOUND", err)
	}
	if _, err := reg.getBlackjack(fresh.GameID); err != nil {
		t.Errorf("Fresh table was swept: %v", err)
	}

	// A second sweep finds nothing left to drop.
	if n := reg.sweepStale(10 * time.Minute); n != 0 {
		t.Errorf("Second sweep evicted %d tables, want 0", n)
	}
}

func TestRegistryRemoveDropsAllRecords(t *testing.T) {
	reg := newGameRegistry()

	table := game.NewRouletteGame("carol", nil, game.NewSeededRNG("remove"))
	reg.putRoulette(table.GameID, table)

	reg.remove(table.GameID)
	if _, err := reg.getRoulette(table.GameID); !errors.Is(err, game.ErrGameNotFound) {
		t.Errorf("Removed table lookup error = %v, want GAME_NOT_FOUND", err)
	}
	if len(reg.created) != 0 {
		t.Errorf("Creation records remain after remove: %d", len(reg.created))
	}
}
