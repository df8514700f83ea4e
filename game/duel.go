package game

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"nexalisServer/config"
)

type DuelPhase string

const (
	DuelWaiting DuelPhase = "waiting"
	DuelPlaying DuelPhase = "playing"
	DuelEnded   DuelPhase = "ended"
)

const (
	TurnPlayer   = "player"
	TurnOpponent = "opponent"
)

// DuelCard is a card in the mana/health duel variant.
type DuelCard struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Cost   int    `json:"cost"`
	Attack int    `json:"attack"`
	Health int    `json:"health"`
	Type   string `json:"type"` // spell or minion
}

var duelCardPool = []DuelCard{
	{Name: "Fire Bolt", Cost: 1, Attack: 3, Health: 0, Type: "spell"},
	{Name: "Warrior", Cost: 2, Attack: 2, Health: 3, Type: "minion"},
	{Name: "Mage", Cost: 3, Attack: 2, Health: 4, Type: "minion"},
	{Name: "Lightning", Cost: 2, Attack: 4, Health: 0, Type: "spell"},
	{Name: "Knight", Cost: 4, Attack: 4, Health: 5, Type: "minion"},
	{Name: "Archer", Cost: 3, Attack: 3, Health: 2, Type: "minion"},
	{Name: "Heal", Cost: 1, Attack: 0, Health: 5, Type: "spell"},
	{Name: "Dragon", Cost: 8, Attack: 8, Health: 8, Type: "minion"},
	{Name: "Goblin", Cost: 1, Attack: 1, Health: 1, Type: "minion"},
	{Name: "Wizard", Cost: 5, Attack: 4, Health: 6, Type: "minion"},
}

// DuelGame is the mana/health card duel against a simple AI opponent.
// The game ends the instant either side's health reaches zero.
type DuelGame struct {
	mu sync.Mutex

	GameID string
	Player string

	phase          DuelPhase
	playerHand     []DuelCard
	opponentHand   []DuelCard
	playerMana     int
	opponentMana   int
	playerHealth   int
	opponentHealth int
	turn           string
	turnNumber     int
	winner         string

	rng *rand.Rand
}

// NewDuelGame creates a duel in the waiting phase.
func NewDuelGame(player string, rng *rand.Rand) *DuelGame {
	return &DuelGame{
		GameID: uuid.NewString(),
		Player: player,
		phase:  DuelWaiting,
		rng:    rng,
	}
}

// Start deals both hands and opens the player's first turn.
func (g *DuelGame) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != DuelWaiting {
		return
	}
	g.playerHand = g.drawHand()
	g.opponentHand = g.drawHand()
	g.playerMana = config.DuelStartingMana
	g.opponentMana = config.DuelStartingMana
	g.playerHealth = config.DuelStartingHealth
	g.opponentHealth = config.DuelStartingHealth
	g.turn = TurnPlayer
	g.turnNumber = 1
	g.phase = DuelPlaying
}

func (g *DuelGame) drawHand() []DuelCard {
	hand := make([]DuelCard, 0, config.DuelHandSize)
	for i := 0; i < config.DuelHandSize; i++ {
		card := duelCardPool[g.rng.Intn(len(duelCardPool))]
		card.ID = uuid.NewString()
		hand = append(hand, card)
	}
	return hand
}

// PlayCard spends mana and applies the card's effect. Only legal on the
// player's turn with enough mana.
func (g *DuelGame) PlayCard(cardID string) (*DuelSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != DuelPlaying {
		return nil, ErrGameNotActive
	}
	if g.turn != TurnPlayer {
		return nil, ErrNotYourTurn
	}

	idx := -1
	for i, card := range g.playerHand {
		if card.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrCardNotFound
	}

	card := g.playerHand[idx]
	if card.Cost > g.playerMana {
		return nil, ErrNotEnoughMana
	}

	g.playerMana -= card.Cost
	g.playerHand = append(g.playerHand[:idx], g.playerHand[idx+1:]...)
	g.applyEffect(card, TurnPlayer)

	if g.opponentHealth <= 0 {
		g.phase = DuelEnded
		g.winner = TurnPlayer
	}
	snap := g.snapshotLocked()
	return &snap, nil
}

// EndTurn hands the turn to the opponent and refills the player's mana
// for the next turn.
func (g *DuelGame) EndTurn() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != DuelPlaying {
		return ErrGameNotActive
	}
	if g.turn != TurnPlayer {
		return ErrNotYourTurn
	}

	g.turn = TurnOpponent
	g.turnNumber++
	g.playerMana = min(config.DuelMaxMana, g.turnNumber)
	return nil
}

// OpponentTurn plays the AI: one random affordable card, then the turn
// returns to the player.
func (g *DuelGame) OpponentTurn() (*DuelSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != DuelPlaying {
		return nil, ErrGameNotActive
	}
	if g.turn != TurnOpponent {
		return nil, ErrNotYourTurn
	}

	var playable []int
	for i, card := range g.opponentHand {
		if card.Cost <= g.opponentMana {
			playable = append(playable, i)
		}
	}
	if len(playable) > 0 {
		idx := playable[g.rng.Intn(len(playable))]
		card := g.opponentHand[idx]
		g.opponentMana -= card.Cost
		g.opponentHand = append(g.opponentHand[:idx], g.opponentHand[idx+1:]...)
		g.applyEffect(card, TurnOpponent)
	}

	g.turn = TurnPlayer
	g.opponentMana = min(config.DuelMaxMana, g.turnNumber)

	if g.playerHealth <= 0 {
		g.phase = DuelEnded
		g.winner = TurnOpponent
	}
	snap := g.snapshotLocked()
	return &snap, nil
}

// applyEffect resolves a spell: damage to the opposing side or a heal
// capped at starting health. Minions have no board in this variant.
// Caller holds g.mu.
func (g *DuelGame) applyEffect(card DuelCard, side string) {
	if card.Type != "spell" {
		return
	}
	switch card.Name {
	case "Fire Bolt", "Lightning":
		if side == TurnPlayer {
			g.opponentHealth -= card.Attack
		} else {
			g.playerHealth -= card.Attack
		}
	case "Heal":
		if side == TurnPlayer {
			g.playerHealth = min(config.DuelStartingHealth, g.playerHealth+card.Health)
		} else {
			g.opponentHealth = min(config.DuelStartingHealth, g.opponentHealth+card.Health)
		}
	}
}

// DuelSnapshot is the duel state sent to clients; opponent cards are
// hidden while the game is live.
type DuelSnapshot struct {
	GameID         string     `json:"gameId"`
	Phase          DuelPhase  `json:"phase"`
	PlayerHand     []DuelCard `json:"playerHand"`
	OpponentCards  int        `json:"opponentCards"`
	PlayerMana     int        `json:"playerMana"`
	OpponentMana   int        `json:"opponentMana"`
	PlayerHealth   int        `json:"playerHealth"`
	OpponentHealth int        `json:"opponentHealth"`
	CurrentTurn    string     `json:"currentTurn"`
	Winner         string     `json:"winner,omitempty"`
}

// Snapshot returns the current duel state.
func (g *DuelGame) Snapshot() DuelSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *DuelGame) snapshotLocked() DuelSnapshot {
	return DuelSnapshot{
		GameID:         g.GameID,
		Phase:          g.phase,
		PlayerHand:     append([]DuelCard(nil), g.playerHand...),
		OpponentCards:  len(g.opponentHand),
		PlayerMana:     g.playerMana,
		OpponentMana:   g.opponentMana,
		PlayerHealth:   g.playerHealth,
		OpponentHealth: g.opponentHealth,
		CurrentTurn:    g.turn,
		Winner:         g.winner,
	}
}

// Phase returns the current duel phase.
func (g *DuelGame) Phase() DuelPhase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Winner returns which side won once the duel has ended.
func (g *DuelGame) Winner() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner
}
