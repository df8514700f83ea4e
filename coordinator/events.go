package coordinator

import (
	"time"

	"nexalisServer/game"
)

type EventType string

const (
	EventGlobalGameStart   EventType = "globalGameStart"
	EventGlobalGameEnd     EventType = "globalGameEnd"
	EventWaitPeriodStart   EventType = "waitPeriodStart"
	EventSessionForceEnded EventType = "sessionForceEnded"
	EventTimingUpdate      EventType = "timingUpdate"
)

// Event is a coordinator notification, broadcast to websocket clients.
type Event struct {
	Type         EventType     `json:"type"`
	GameType     game.GameType `json:"gameType,omitempty"`
	GameID       string        `json:"gameId,omitempty"`
	PlayerID     string        `json:"playerId,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	Time         time.Time     `json:"time"`
	DurationMs   int64         `json:"durationMs,omitempty"`
	NextGameTime time.Time     `json:"nextGameTime,omitempty"`
}
