package lobby

import "errors"

var (
	// ErrIdentityRejected: register was called without a verified identity.
	ErrIdentityRejected = errors.New("lobby: identity not verified")

	// ErrUnknownConn: the connection was never registered (or already released).
	ErrUnknownConn = errors.New("lobby: unknown connection")

	// ErrNotInLobby: the operation requires a prior join.
	ErrNotInLobby = errors.New("lobby: connection has not joined a lobby")

	// Start rejections. User-facing conditions, not transient faults; callers
	// must not retry automatically.
	ErrNotWaiting  = errors.New("lobby: game can only be started while waiting")
	ErrNoPlayers   = errors.New("lobby: no players connected")
	ErrNotAllReady = errors.New("lobby: not every player is ready")

	// ErrInvalidTransition: finish was requested outside the playing state.
	ErrInvalidTransition = errors.New("lobby: invalid state transition")
)
