package game

import (
	"context"
	"log"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"nexalisServer/config"
)

type BlackjackPhase string

const (
	BlackjackBetting  BlackjackPhase = "betting"
	BlackjackPlaying  BlackjackPhase = "playing"
	BlackjackFinished BlackjackPhase = "finished"
)

type BlackjackResult string

const (
	BlackjackWin     BlackjackResult = "win"
	BlackjackLose    BlackjackResult = "lose"
	BlackjackPush    BlackjackResult = "push"
	BlackjackNatural BlackjackResult = "blackjack"
)

// HandScore totals a hand with soft/hard ace handling: aces count 11,
// then drop to 1 one at a time while the total busts. Recomputing from
// the same hand always yields the same score.
func HandScore(hand []Card) int {
	score := 0
	aces := 0
	for _, card := range hand {
		if card.Value == "A" {
			aces++
		}
		score += card.Numeric()
	}
	for score > config.BlackjackTarget && aces > 0 {
		score -= 10
		aces--
	}
	return score
}

// BlackjackGame is one player's blackjack table against the dealer.
// The stake is debited at the deal; settlement credits back stake plus
// winnings for winning hands.
type BlackjackGame struct {
	mu sync.Mutex

	GameID string
	Player string

	phase      BlackjackPhase
	deck       *Deck
	playerHand []Card
	dealerHand []Card
	bet        float64
	canDouble  bool
	result     BlackjackResult

	ledger Ledger
}

// NewBlackjackGame creates a table in the betting phase.
func NewBlackjackGame(player string, ledger Ledger, rng *rand.Rand) *BlackjackGame {
	return &BlackjackGame{
		GameID: uuid.NewString(),
		Player: player,
		phase:  BlackjackBetting,
		deck:   NewDeck(rng),
		ledger: ledger,
	}
}

// Deal debits the bet and deals two cards each. Naturals settle
// immediately: both blackjack pushes, player blackjack pays 1.5x.
func (g *BlackjackGame) Deal(ctx context.Context, bet float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != BlackjackBetting {
		return ErrBetsClosed
	}
	if bet <= 0 {
		return ErrInvalidAmount
	}

	balance, err := g.ledger.Balance(ctx, g.Player)
	if err != nil {
		return err
	}
	if bet > balance {
		return ErrInsufficientFunds
	}
	if err := g.ledger.Debit(ctx, g.Player, bet); err != nil {
		return err
	}

	g.bet = bet
	g.playerHand = []Card{g.deck.Draw(), g.deck.Draw()}
	g.dealerHand = []Card{g.deck.Draw(), g.deck.Draw()}
	g.phase = BlackjackPlaying
	g.canDouble = true

	playerBJ := HandScore(g.playerHand) == config.BlackjackTarget
	dealerBJ := HandScore(g.dealerHand) == config.BlackjackTarget
	switch {
	case playerBJ && dealerBJ:
		g.settle(ctx, BlackjackPush)
	case playerBJ:
		g.settle(ctx, BlackjackNatural)
	case dealerBJ:
		g.settle(ctx, BlackjackLose)
	}
	return nil
}

// Hit draws one card. A bust loses immediately; hitting 21 stands.
func (g *BlackjackGame) Hit(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != BlackjackPlaying {
		return ErrGameNotActive
	}

	g.playerHand = append(g.playerHand, g.deck.Draw())
	g.canDouble = false

	score := HandScore(g.playerHand)
	if score > config.BlackjackTarget {
		g.settle(ctx, BlackjackLose)
	} else if score == config.BlackjackTarget {
		g.dealerPlay(ctx)
	}
	return nil
}

// Stand ends the player's turn; the dealer draws to 17 and the hands
// are compared.
func (g *BlackjackGame) Stand(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != BlackjackPlaying {
		return ErrGameNotActive
	}
	g.canDouble = false
	g.dealerPlay(ctx)
	return nil
}

// DoubleDown debits a second stake, draws exactly one card and stands.
// Only allowed on the first two cards.
func (g *BlackjackGame) DoubleDown(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != BlackjackPlaying || !g.canDouble {
		return ErrGameNotActive
	}

	balance, err := g.ledger.Balance(ctx, g.Player)
	if err != nil {
		return err
	}
	if g.bet > balance {
		return ErrInsufficientFunds
	}
	if err := g.ledger.Debit(ctx, g.Player, g.bet); err != nil {
		return err
	}
	g.bet *= 2
	g.canDouble = false

	g.playerHand = append(g.playerHand, g.deck.Draw())
	if HandScore(g.playerHand) > config.BlackjackTarget {
		g.settle(ctx, BlackjackLose)
		return nil
	}
	g.dealerPlay(ctx)
	return nil
}

// dealerPlay runs the dealer (hits under 17) and settles. Caller holds g.mu.
func (g *BlackjackGame) dealerPlay(ctx context.Context) {
	for HandScore(g.dealerHand) < config.DealerStandScore {
		g.dealerHand = append(g.dealerHand, g.deck.Draw())
	}

	playerScore := HandScore(g.playerHand)
	dealerScore := HandScore(g.dealerHand)

	switch {
	case dealerScore > config.BlackjackTarget:
		g.settle(ctx, BlackjackWin)
	case dealerScore > playerScore:
		g.settle(ctx, BlackjackLose)
	case playerScore > dealerScore:
		g.settle(ctx, BlackjackWin)
	default:
		g.settle(ctx, BlackjackPush)
	}
}

// settle credits the payout for the result and finishes the hand.
// The stake was debited at the deal, so: win returns 2x bet, push
// returns the bet, a natural returns bet + floor(1.5 * bet), and a
// loss credits nothing. Caller holds g.mu.
func (g *BlackjackGame) settle(ctx context.Context, result BlackjackResult) {
	g.phase = BlackjackFinished
	g.result = result

	var payout float64
	switch result {
	case BlackjackWin:
		payout = g.bet * 2
	case BlackjackPush:
		payout = g.bet
	case BlackjackNatural:
		payout = g.bet + math.Floor(g.bet*config.BlackjackPayoutRate)
	}
	if payout > 0 {
		if err := g.ledger.Credit(ctx, g.Player, payout); err != nil {
			log.Printf("⚠️  Failed to credit payout for %s: %v", g.Player, err)
		}
	}
}

// NewHand returns the table to the betting phase for another hand.
func (g *BlackjackGame) NewHand() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != BlackjackFinished {
		return
	}
	g.phase = BlackjackBetting
	g.playerHand = nil
	g.dealerHand = nil
	g.bet = 0
	g.result = ""
	g.canDouble = false
}

// BlackjackSnapshot is the table state sent to clients. The dealer's
// hole card is hidden while the hand is live.
type BlackjackSnapshot struct {
	GameID      string          `json:"gameId"`
	Phase       BlackjackPhase  `json:"phase"`
	PlayerHand  []Card          `json:"playerHand"`
	DealerHand  []Card          `json:"dealerHand"`
	PlayerScore int             `json:"playerScore"`
	DealerScore int             `json:"dealerScore"`
	Bet         float64         `json:"bet"`
	CanDouble   bool            `json:"canDouble"`
	Result      BlackjackResult `json:"result,omitempty"`
}

// Snapshot returns the current table state.
func (g *BlackjackGame) Snapshot() BlackjackSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := BlackjackSnapshot{
		GameID:      g.GameID,
		Phase:       g.phase,
		PlayerHand:  append([]Card(nil), g.playerHand...),
		PlayerScore: HandScore(g.playerHand),
		Bet:         g.bet,
		CanDouble:   g.canDouble,
		Result:      g.result,
	}

	if g.phase == BlackjackPlaying && len(g.dealerHand) > 0 {
		// Upcard only
		snap.DealerHand = []Card{g.dealerHand[0]}
		snap.DealerScore = HandScore(snap.DealerHand)
	} else {
		snap.DealerHand = append([]Card(nil), g.dealerHand...)
		snap.DealerScore = HandScore(g.dealerHand)
	}
	return snap
}

// Result returns the hand result once finished.
func (g *BlackjackGame) Result() BlackjackResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

// Phase returns the current table phase.
func (g *BlackjackGame) Phase() BlackjackPhase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}
