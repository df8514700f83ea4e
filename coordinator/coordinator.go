package coordinator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"nexalisServer/config"
	"nexalisServer/game"
)

var (
	ErrActiveSessionExists = &game.Error{Code: "ACTIVE_SESSION_EXISTS", Message: "you already have an active game session, finish your current game first"}
	ErrNoActiveSession     = &game.Error{Code: "NO_ACTIVE_SESSION", Message: "no active game session for player"}
	ErrSessionStartFailed  = &game.Error{Code: "SESSION_START_FAILED", Message: "failed to start game session"}
	ErrSessionEndFailed    = &game.Error{Code: "SESSION_END_FAILED", Message: "failed to end game session"}
)

// SessionAPI is the remote Arena session boundary. Failures are surfaced
// once to the caller; no retries.
type SessionAPI interface {
	StartGameSession(ctx context.Context, gameType game.GameType) error
	EndGameSession(ctx context.Context, result SessionResult) error
}

// SessionResult is reported to the Arena API when a session ends.
type SessionResult struct {
	PlayerID      string        `json:"playerId"`
	GameType      game.GameType `json:"gameType"`
	BalanceChange float64       `json:"balanceChange"`
	Forced        bool          `json:"forced,omitempty"`
	Reason        string        `json:"reason,omitempty"`
}

// GlobalGame is one shared round that queued players join.
type GlobalGame struct {
	ID        string        `json:"id"`
	Type      game.GameType `json:"type"`
	Players   []string      `json:"players"`
	CreatedAt time.Time     `json:"createdAt"`
	StartTime time.Time     `json:"startTime,omitempty"`
	Duration  time.Duration `json:"-"`

	timer Timer
}

type playerSession struct {
	playerID  string
	gameType  game.GameType
	gameID    string
	createdAt time.Time
	deadline  Timer
}

// TimingInfo reports when the next round of a game type starts.
type TimingInfo struct {
	CurrentTime       time.Time     `json:"currentTime"`
	NextGameStart     time.Time     `json:"nextGameStart"`
	TimeUntilNextGame time.Duration `json:"timeUntilNextGame"`
	GameDuration      time.Duration `json:"gameDuration"`
	GameInterval      time.Duration `json:"gameInterval"`
	WaitPeriod        time.Duration `json:"waitPeriod"`
}

// Status is a snapshot of the coordinator's queues and sessions.
type Status struct {
	CurrentGames   []*GlobalGame `json:"currentGames"`
	QueueLength    int           `json:"queueLength"`
	ActiveSessions int           `json:"activeSessions"`
	Timing         TimingInfo    `json:"timing"`
}

// Coordinator serializes global game rounds per game type and guards
// against abandoned player sessions. It is an explicitly constructed
// service; all timers go through the injected Clock.
type Coordinator struct {
	mu sync.Mutex

	clock Clock
	arena SessionAPI

	queues   map[game.GameType][]*GlobalGame
	current  map[game.GameType]*GlobalGame
	sessions map[string]*playerSession

	listeners []func(Event)

	started   bool
	stopped   bool
	nextCycle Timer
}

// New builds a coordinator. Call Start to begin the global cycle.
func New(arena SessionAPI, clock Clock) *Coordinator {
	return &Coordinator{
		clock:    clock,
		arena:    arena,
		queues:   make(map[game.GameType][]*GlobalGame),
		current:  make(map[game.GameType]*GlobalGame),
		sessions: make(map[string]*playerSession),
	}
}

// GameDuration returns the round duration for a game type.
func GameDuration(t game.GameType) time.Duration {
	switch t {
	case game.GameTypeCrash:
		return config.CrashGameDuration
	case game.GameTypeRoulette:
		return config.RouletteGameDuration
	case game.GameTypeCards:
		return config.CardsGameDuration
	}
	return config.CrashGameDuration
}

// Subscribe registers a listener for coordinator events. Listeners are
// invoked outside the coordinator lock.
func (c *Coordinator) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Coordinator) emit(events ...Event) {
	c.mu.Lock()
	listeners := make([]func(Event), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, e := range events {
		for _, fn := range listeners {
			fn(e)
		}
	}
}

// Start schedules the first queue check after the wait period; after that
// the cycle repeats every game interval.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.stopped {
		return
	}
	c.started = true
	c.nextCycle = c.clock.AfterFunc(config.WaitPeriod, c.runCycle)
	log.Println("🕒 Game timing coordinator started")
}

// Stop cancels all timers. Pending sessions are dropped without a remote
// end call; the backend owns the authoritative state.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.nextCycle != nil {
		c.nextCycle.Stop()
	}
	for _, g := range c.current {
		if g.timer != nil {
			g.timer.Stop()
		}
	}
	for _, s := range c.sessions {
		if s.deadline != nil {
			s.deadline.Stop()
		}
	}
}

func (c *Coordinator) runCycle() {
	var events []Event

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	for gameType, queue := range c.queues {
		if len(queue) == 0 || c.current[gameType] != nil {
			continue
		}
		events = append(events, c.startNextLocked(gameType))
	}
	c.nextCycle = c.clock.AfterFunc(config.GameInterval, c.runCycle)
	c.mu.Unlock()

	c.emit(events...)
}

// startNextLocked dequeues the next global game of the type and arms its
// duration timer. Caller holds c.mu.
func (c *Coordinator) startNextLocked(gameType game.GameType) Event {
	queue := c.queues[gameType]
	next := queue[0]
	c.queues[gameType] = queue[1:]

	next.StartTime = c.clock.Now()
	next.Duration = GameDuration(gameType)
	c.current[gameType] = next
	next.timer = c.clock.AfterFunc(next.Duration, func() { c.endGlobalGame(next) })

	log.Printf("🎮 Starting global %s game %s (%d players)", gameType, next.ID, len(next.Players))

	return Event{
		Type:       EventGlobalGameStart,
		GameType:   gameType,
		GameID:     next.ID,
		Time:       next.StartTime,
		DurationMs: next.Duration.Milliseconds(),
	}
}

func (c *Coordinator) endGlobalGame(g *GlobalGame) {
	var events []Event

	c.mu.Lock()
	if c.stopped || c.current[g.Type] != g {
		c.mu.Unlock()
		return
	}
	if g.timer != nil {
		g.timer.Stop()
	}
	delete(c.current, g.Type)
	now := c.clock.Now()
	events = append(events, Event{
		Type:     EventGlobalGameEnd,
		GameType: g.Type,
		GameID:   g.ID,
		Time:     now,
	})

	// Short beat, then announce the wait period before the next cycle.
	c.clock.AfterFunc(100*time.Millisecond, func() {
		waitStart := c.clock.Now()
		c.emit(Event{
			Type:         EventWaitPeriodStart,
			Time:         waitStart,
			DurationMs:   config.WaitPeriod.Milliseconds(),
			NextGameTime: waitStart.Add(config.WaitPeriod),
		})
	})
	c.mu.Unlock()

	log.Printf("🏁 Ending global %s game %s", g.Type, g.ID)
	c.emit(events...)
}

// RequestGameSession starts a remote Arena session, places the player in
// the current or next global game of the type, and arms the per-player
// deadline timer. At most one active session per player.
func (c *Coordinator) RequestGameSession(ctx context.Context, gameType game.GameType, playerID string) (string, TimingInfo, error) {
	c.mu.Lock()
	if _, exists := c.sessions[playerID]; exists {
		c.mu.Unlock()
		return "", TimingInfo{}, ErrActiveSessionExists
	}
	c.mu.Unlock()

	// Remote call without the lock; surfaced once, no retry.
	if err := c.arena.StartGameSession(ctx, gameType); err != nil {
		log.Printf("⚠️  Arena session start failed for %s: %v", playerID, err)
		return "", TimingInfo{}, ErrSessionStartFailed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check: the player may have won a race with themselves.
	if _, exists := c.sessions[playerID]; exists {
		return "", TimingInfo{}, ErrActiveSessionExists
	}

	gameID := c.joinGlobalGameLocked(gameType, playerID)

	deadline := GameDuration(gameType) + config.SessionGracePeriod
	session := &playerSession{
		playerID:  playerID,
		gameType:  gameType,
		gameID:    gameID,
		createdAt: c.clock.Now(),
	}
	session.deadline = c.clock.AfterFunc(deadline, func() {
		c.ForceEndPlayerSession(playerID, "TIME_LIMIT_EXCEEDED")
	})
	c.sessions[playerID] = session

	return gameID, c.timingLocked(gameType), nil
}

// joinGlobalGameLocked places the player into the running game of the
// type, a queued one, or a fresh queue entry. Caller holds c.mu.
func (c *Coordinator) joinGlobalGameLocked(gameType game.GameType, playerID string) string {
	if cur := c.current[gameType]; cur != nil {
		if !containsPlayer(cur.Players, playerID) {
			cur.Players = append(cur.Players, playerID)
		}
		return cur.ID
	}
	for _, queued := range c.queues[gameType] {
		if !containsPlayer(queued.Players, playerID) {
			queued.Players = append(queued.Players, playerID)
		}
		return queued.ID
	}

	next := &GlobalGame{
		ID:        uuid.NewString(),
		Type:      gameType,
		Players:   []string{playerID},
		CreatedAt: c.clock.Now(),
	}
	c.queues[gameType] = append(c.queues[gameType], next)
	return next.ID
}

// EndGameSession reports the result to the Arena API, stops the deadline
// timer and removes the player from current and queued games.
func (c *Coordinator) EndGameSession(ctx context.Context, playerID string, result SessionResult) error {
	c.mu.Lock()
	session, ok := c.sessions[playerID]
	c.mu.Unlock()
	if !ok {
		return ErrNoActiveSession
	}

	result.PlayerID = playerID
	result.GameType = session.gameType
	if err := c.arena.EndGameSession(ctx, result); err != nil {
		log.Printf("⚠️  Arena session end failed for %s: %v", playerID, err)
		return ErrSessionEndFailed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupSessionLocked(playerID)
	return nil
}

// ForceEndPlayerSession ends an overrun session with no balance change.
// Invoked by the deadline timer; local state is cleaned up even when the
// remote call fails, since the timer has already fired.
func (c *Coordinator) ForceEndPlayerSession(playerID, reason string) {
	c.mu.Lock()
	session, ok := c.sessions[playerID]
	if !ok {
		c.mu.Unlock()
		return
	}
	gameType := session.gameType
	c.cleanupSessionLocked(playerID)
	c.mu.Unlock()

	log.Printf("⏱️  Force ending session for player %s: %s", playerID, reason)

	ctx, cancel := context.WithTimeout(context.Background(), config.ArenaRequestTimeout)
	defer cancel()
	if err := c.arena.EndGameSession(ctx, SessionResult{
		PlayerID:      playerID,
		GameType:      gameType,
		BalanceChange: 0,
		Forced:        true,
		Reason:        reason,
	}); err != nil {
		log.Printf("⚠️  Arena force-end failed for %s: %v", playerID, err)
	}

	c.emit(Event{
		Type:     EventSessionForceEnded,
		PlayerID: playerID,
		Reason:   reason,
		Time:     c.clock.Now(),
	})
}

// cleanupSessionLocked stops the deadline timer and removes the player
// from every game. Caller holds c.mu.
func (c *Coordinator) cleanupSessionLocked(playerID string) {
	if session := c.sessions[playerID]; session != nil && session.deadline != nil {
		session.deadline.Stop()
	}
	delete(c.sessions, playerID)

	for _, g := range c.current {
		g.Players = removePlayer(g.Players, playerID)
	}
	for _, queue := range c.queues {
		for _, g := range queue {
			g.Players = removePlayer(g.Players, playerID)
		}
	}
}

// HasActiveSession reports whether the player holds an unexpired session.
func (c *Coordinator) HasActiveSession(playerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[playerID]
	return ok
}

// Timing reports when the next round of the game type starts.
func (c *Coordinator) Timing(gameType game.GameType) TimingInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timingLocked(gameType)
}

func (c *Coordinator) timingLocked(gameType game.GameType) TimingInfo {
	now := c.clock.Now()
	var nextGameStart time.Time

	if cur := c.current[gameType]; cur != nil {
		nextGameStart = cur.StartTime.Add(cur.Duration + config.GameInterval)
	} else {
		nextGameStart = now.Add(config.WaitPeriod)
	}

	until := nextGameStart.Sub(now)
	if until < 0 {
		until = 0
	}
	return TimingInfo{
		CurrentTime:       now,
		NextGameStart:     nextGameStart,
		TimeUntilNextGame: until,
		GameDuration:      GameDuration(gameType),
		GameInterval:      config.GameInterval,
		WaitPeriod:        config.WaitPeriod,
	}
}

// Status returns a snapshot of running games, queue depth and sessions.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{
		ActiveSessions: len(c.sessions),
		Timing:         c.timingLocked(game.GameTypeCrash),
	}
	for _, g := range c.current {
		copied := *g
		copied.Players = append([]string(nil), g.Players...)
		status.CurrentGames = append(status.CurrentGames, &copied)
	}
	for _, queue := range c.queues {
		status.QueueLength += len(queue)
	}
	return status
}

func containsPlayer(players []string, playerID string) bool {
	for _, p := range players {
		if p == playerID {
			return true
		}
	}
	return false
}

func removePlayer(players []string, playerID string) []string {
	for i, p := range players {
		if p == playerID {
			return append(players[:i], players[i+1:]...)
		}
	}
	return players
}
