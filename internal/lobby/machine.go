package lobby

import (
	"context"
	"errors"
	"fmt"

	"github.com/phxgg/geohub-sockets/internal/store"
)

// The state machine reads persisted state on every decision and transitions
// it with a conditional update. It holds no cached copy; the store is the
// single source of truth across restarts.

// TryStart transitions waiting -> playing, gated on every present player
// being ready. The whole unit, snapshot membership -> evaluate -> persist ->
// broadcast, runs under the lobby's room lock so a player un-readying a
// moment earlier can never be missed.
func (c *Coordinator) TryStart(ctx context.Context, lobbyID string) (store.LobbySession, error) {
	rm := c.reg.ensureRoom(lobbyID)
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sess, err := c.store.FindByID(ctx, lobbyID)
	if err != nil {
		return store.LobbySession{}, fmt.Errorf("start lobby %s: %w", lobbyID, err)
	}
	if sess.State != store.StateWaiting {
		return store.LobbySession{}, ErrNotWaiting
	}

	players := Aggregate(c.reg.membersLocked(rm))
	if len(players) == 0 {
		return store.LobbySession{}, ErrNoPlayers
	}
	if !AllReady(players) {
		return store.LobbySession{}, ErrNotAllReady
	}

	updated, err := c.store.CompareAndSetState(ctx, lobbyID, store.StateWaiting, store.StatePlaying)
	if errors.Is(err, store.ErrConflict) {
		// Lost a race with another process. Re-read once to report why.
		if cur, ferr := c.store.FindByID(ctx, lobbyID); ferr == nil && cur.State != store.StateWaiting {
			return store.LobbySession{}, ErrNotWaiting
		}
		return store.LobbySession{}, fmt.Errorf("start lobby %s: %w", lobbyID, err)
	}
	if err != nil {
		return store.LobbySession{}, fmt.Errorf("start lobby %s: %w", lobbyID, err)
	}

	c.publishLocked(updated, players)
	return updated, nil
}

// Finish transitions playing -> finished, guarded symmetrically with
// TryStart. Finished is terminal.
func (c *Coordinator) Finish(ctx context.Context, lobbyID string) (store.LobbySession, error) {
	rm := c.reg.ensureRoom(lobbyID)
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sess, err := c.store.FindByID(ctx, lobbyID)
	if err != nil {
		return store.LobbySession{}, fmt.Errorf("finish lobby %s: %w", lobbyID, err)
	}
	if sess.State != store.StatePlaying {
		return store.LobbySession{}, ErrInvalidTransition
	}

	updated, err := c.store.CompareAndSetState(ctx, lobbyID, store.StatePlaying, store.StateFinished)
	if errors.Is(err, store.ErrConflict) {
		return store.LobbySession{}, ErrInvalidTransition
	}
	if err != nil {
		return store.LobbySession{}, fmt.Errorf("finish lobby %s: %w", lobbyID, err)
	}

	c.publishLocked(updated, Aggregate(c.reg.membersLocked(rm)))
	return updated, nil
}
