package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("store: lobby not found")
	// ErrConflict means a compare-and-set lost a race with a concurrent
	// transition. Callers re-read before deciding anything.
	ErrConflict = errors.New("store: state changed concurrently")
)

// State is the persisted lifecycle of a lobby. Transitions are monotonic:
// waiting -> playing -> finished.
type State string

const (
	StateWaiting  State = "waiting"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// LobbySession is the durable lobby document. The live membership is not
// here; it is derived from connections. Players is a best-effort mirror of
// everyone who ever joined, kept for history.
type LobbySession struct {
	ID      string   `json:"id"`
	State   State    `json:"state"`
	Players []string `json:"players,omitempty"`
}

// Store is the durable source of truth for lobby state. The state machine
// never caches reads from it.
type Store interface {
	Create(ctx context.Context, sess LobbySession) error
	FindByID(ctx context.Context, id string) (LobbySession, error)
	List(ctx context.Context) ([]LobbySession, error)
	// CompareAndSetState transitions id from expected to next, failing with
	// ErrConflict if the current state no longer matches expected.
	CompareAndSetState(ctx context.Context, id string, expected, next State) (LobbySession, error)
	// AppendPlayer records playerID on the lobby's roster; appending an
	// already-present player is a no-op.
	AppendPlayer(ctx context.Context, id, playerID string) error
}
