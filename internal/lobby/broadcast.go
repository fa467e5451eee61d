package lobby

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/phxgg/geohub-sockets/internal/store"
)

// Publish assembles a fresh LobbyView and fans it out to the room. It runs
// under the lobby's lock so broadcasts for the same lobby are totally
// ordered; two triggers can never race out inconsistent membership.
//
// A store failure aborts the publish before anything is sent: no partial
// broadcast. An empty room is not an error; the send simply reaches nobody.
func (c *Coordinator) Publish(ctx context.Context, lobbyID string) error {
	rm := c.reg.ensureRoom(lobbyID)
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sess, err := c.store.FindByID(ctx, lobbyID)
	if err != nil {
		return fmt.Errorf("publish lobby %s: %w", lobbyID, err)
	}
	c.publishLocked(sess, Aggregate(c.reg.membersLocked(rm)))
	return nil
}

// publishLocked sends the view built from an already-consistent session and
// membership. Callers hold the room lock.
func (c *Coordinator) publishLocked(sess store.LobbySession, players []Presence) {
	view := newView(sess, players)
	payload, err := json.Marshal(view)
	if err != nil {
		c.log.Error("marshal lobby view", zap.String("lobby", sess.ID), zap.Error(err))
		return
	}
	c.sender.SendToRoom(sess.ID, payload)
	c.log.Debug("lobby view published",
		zap.String("lobby", sess.ID),
		zap.String("state", string(sess.State)),
		zap.Int("players", len(players)),
		zap.Bool("allReady", view.AllReady))
}
