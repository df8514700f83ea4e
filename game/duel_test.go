package game

import (
	"errors"
	"strconv"
	"testing"
)

func TestDuelStart(t *testing.T) {
	duel := NewDuelGame("alice", NewSeededRNG("start"))
	if duel.Phase() != DuelWaiting {
		t.Fatalf("New duel phase = %s, want waiting", duel.Phase())
	}
	if _, err := duel.PlayCard("anything"); !errors.Is(err, ErrGameNotActive) {
		t.Errorf("PlayCard before start error = %v, want GAME_NOT_ACTIVE", err)
	}

	duel.Start()
	snap := duel.Snapshot()

	if snap.Phase != DuelPlaying {
		t.Errorf("Phase = %s, want playing", snap.Phase)
	}
	if len(snap.PlayerHand) != 3 {
		t.Errorf("Hand size = %d, want 3", len(snap.PlayerHand))
	}
	if snap.OpponentCards != 3 {
		t.Errorf("Opponent card count = %d, want 3", snap.OpponentCards)
	}
	if snap.PlayerMana != 1 || snap.OpponentMana != 1 {
		t.Errorf("Starting mana = %d/%d, want 1/1", snap.PlayerMana, snap.OpponentMana)
	}
	if snap.PlayerHealth != 30 || snap.OpponentHealth != 30 {
		t.Errorf("Starting health = %d/%d, want 30/30", snap.PlayerHealth, snap.OpponentHealth)
	}
	if snap.CurrentTurn != TurnPlayer {
		t.Errorf("First turn = %s, want player", snap.CurrentTurn)
	}
	if snap.Winner != "" {
		t.Errorf("Winner set while playing: %s", snap.Winner)
	}

	// Starting twice is a no-op
	duel.Start()
	if again := duel.Snapshot(); len(again.PlayerHand) != len(snap.PlayerHand) || again.CurrentTurn != TurnPlayer {
		t.Error("Second Start changed a running duel")
	}
}

func TestDuelPlayCard(t *testing.T) {
	duel := NewDuelGame("alice", NewSeededRNG("play"))
	duel.Start()

	if _, err := duel.PlayCard("no-such-card"); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("Unknown card error = %v, want CARD_NOT_FOUND", err)
	}

	// Every dealt card either plays within mana or is rejected for cost.
	snap := duel.Snapshot()
	var playedID string
	for _, card := range snap.PlayerHand {
		before := duel.Snapshot()
		after, err := duel.PlayCard(card.ID)
		if card.Cost > before.PlayerMana {
			if !errors.Is(err, ErrNotEnoughMana) {
				t.Errorf("Card %s (cost %d, mana %d) error = %v, want NOT_ENOUGH_MANA",
					card.Name, card.Cost, before.PlayerMana, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("PlayCard(%s) failed: %v", card.Name, err)
		}
		playedID = card.ID

		if after.PlayerMana != before.PlayerMana-card.Cost {
			t.Errorf("Mana after %s = %d, want %d", card.Name, after.PlayerMana, before.PlayerMana-card.Cost)
		}
		if len(after.PlayerHand) != len(before.PlayerHand)-1 {
			t.Errorf("Hand size after play = %d, want %d", len(after.PlayerHand), len(before.PlayerHand)-1)
		}
		if card.Type == "spell" {
			switch card.Name {
			case "Fire Bolt", "Lightning":
				if after.OpponentHealth != before.OpponentHealth-card.Attack {
					t.Errorf("%s left opponent at %d, want %d", card.Name, after.OpponentHealth, before.OpponentHealth-card.Attack)
				}
			case "Heal":
				if after.PlayerHealth > 30 {
					t.Errorf("Heal pushed health to %d, above the cap", after.PlayerHealth)
				}
			}
		}
	}

	// Played cards leave the hand for good
	if playedID != "" {
		if _, err := duel.PlayCard(playedID); !errors.Is(err, ErrCardNotFound) {
			t.Errorf("Replaying a spent card error = %v, want CARD_NOT_FOUND", err)
		}
	}
}

func TestDuelTurnCycle(t *testing.T) {
	duel := NewDuelGame("alice", NewSeededRNG("turns"))
	duel.Start()

	if _, err := duel.OpponentTurn(); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("OpponentTurn on player's turn error = %v, want NOT_YOUR_TURN", err)
	}

	if err := duel.EndTurn(); err != nil {
		t.Fatalf("EndTurn failed: %v", err)
	}
	snap := duel.Snapshot()
	if snap.CurrentTurn != TurnOpponent {
		t.Fatalf("Turn after EndTurn = %s, want opponent", snap.CurrentTurn)
	}
	// Mana refills to the turn number, capped at 10
	if snap.PlayerMana != 2 {
		t.Errorf("Player mana on turn 2 = %d, want 2", snap.PlayerMana)
	}

	if err := duel.EndTurn(); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("EndTurn on opponent's turn error = %v, want NOT_YOUR_TURN", err)
	}
	if _, err := duel.PlayCard("anything"); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("PlayCard on opponent's turn error = %v, want NOT_YOUR_TURN", err)
	}

	after, err := duel.OpponentTurn()
	if err != nil {
		t.Fatalf("OpponentTurn failed: %v", err)
	}
	if after.CurrentTurn != TurnPlayer {
		t.Errorf("Turn after opponent = %s, want player", after.CurrentTurn)
	}
	if after.OpponentMana != 2 {
		t.Errorf("Opponent mana on turn 2 = %d, want 2", after.OpponentMana)
	}
}

func TestDuelManaCap(t *testing.T) {
	duel := NewDuelGame("alice", NewSeededRNG("cap"))
	duel.Start()

	for i := 0; i < 20; i++ {
		if duel.Phase() != DuelPlaying {
			return // a spell war ended it early, cap already exercised
		}
		if err := duel.EndTurn(); err != nil {
			t.Fatalf("EndTurn %d failed: %v", i, err)
		}
		if _, err := duel.OpponentTurn(); err != nil {
			t.Fatalf("OpponentTurn %d failed: %v", i, err)
		}
	}

	snap := duel.Snapshot()
	if snap.PlayerMana > 10 || snap.OpponentMana > 10 {
		t.Errorf("Mana exceeded cap: %d/%d", snap.PlayerMana, snap.OpponentMana)
	}
	if snap.PlayerMana != 10 {
		t.Errorf("Player mana after 20 turns = %d, want 10", snap.PlayerMana)
	}
}

func TestDuelSnapshotHidesOpponentHand(t *testing.T) {
	for i := 0; i < 10; i++ {
		duel := NewDuelGame("alice", NewSeededRNG("hide-"+strconv.Itoa(i)))
		duel.Start()
		snap := duel.Snapshot()
		if snap.OpponentCards != 3 {
			t.Errorf("Opponent card count = %d, want 3", snap.OpponentCards)
		}
		// Card IDs are per-instance, so the player's hand never contains
		// an opponent card even when the pool deals duplicates.
		seen := make(map[string]bool)
		for _, card := range snap.PlayerHand {
			if seen[card.ID] {
				t.Errorf("Duplicate card ID %s in hand", card.ID)
			}
			seen[card.ID] = true
		}
	}
}
