package engine

import (
	"context"
	"time"
)

// EventKind - тип записи в журнале партии.
type EventKind string

const (
	EventJoin      EventKind = "join"
	EventLeave     EventKind = "leave"
	EventPickup    EventKind = "pickup"
	EventDrop      EventKind = "drop"
	EventDestroyed EventKind = "destroyed"
	EventGoal      EventKind = "goal"
	EventVictory   EventKind = "victory"
	EventSaved     EventKind = "saved"
)

// MatchEvent - одна запись журнала партии.
type MatchEvent struct {
	MatchID    string    `json:"match_id"`
	Tick       int       `json:"tick"`
	Kind       EventKind `json:"kind"`
	Seat       int       `json:"seat,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// EventSink принимает события партии (sqlite-журнал, redis и т.п.).
// Record вызывается из горутины тика и не должен блокироваться надолго.
type EventSink interface {
	Record(ctx context.Context, ev MatchEvent) error
	Close() error
}
