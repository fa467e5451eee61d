package lobby

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/phxgg/geohub-sockets/internal/identity"
	"github.com/phxgg/geohub-sockets/internal/store"
)

// Sender is the narrow slice of the transport the coordinator needs: room
// subscription and fan-out. The transport owns the sockets.
type Sender interface {
	JoinRoom(connID, lobbyID string)
	LeaveRoom(connID, lobbyID string)
	SendToRoom(lobbyID string, payload []byte)
	SendToConn(connID string, payload []byte)
}

// Coordinator is the lobby coordination engine: it owns the connection
// registry, drives the lobby state machine against the session store, and
// republishes a fresh consistent view after every change. It never diffs;
// every trigger re-derives and re-broadcasts the whole view.
type Coordinator struct {
	reg    *Registry
	store  store.Store
	sender Sender
	log    *zap.Logger
}

func NewCoordinator(st store.Store, sender Sender, log *zap.Logger) *Coordinator {
	return &Coordinator{
		reg:    NewRegistry(),
		store:  st,
		sender: sender,
		log:    log,
	}
}

// Register creates the connection record. Identity must already be verified;
// an empty player id means the caller skipped verification.
func (c *Coordinator) Register(connID string, ident identity.Identity) error {
	if ident.PlayerID == "" {
		return ErrIdentityRejected
	}
	c.reg.register(connID, ident)
	c.log.Info("connection registered",
		zap.String("conn", connID),
		zap.String("player", ident.PlayerID))
	return nil
}

// Join attaches the connection to a lobby and republishes. Re-joining the
// same lobby only re-broadcasts. Switching lobbies also republishes the lobby
// left behind so its members see the departure.
func (c *Coordinator) Join(ctx context.Context, connID, lobbyID string) error {
	if _, err := c.store.FindByID(ctx, lobbyID); err != nil {
		return fmt.Errorf("join lobby %s: %w", lobbyID, err)
	}

	prev, rejoin, err := c.reg.attach(connID, lobbyID)
	if err != nil {
		return err
	}
	c.sender.JoinRoom(connID, lobbyID)

	if prev != "" && prev != lobbyID {
		c.sender.LeaveRoom(connID, prev)
		if len(c.reg.MembersOf(prev)) > 0 {
			if err := c.Publish(ctx, prev); err != nil {
				c.log.Warn("republish after lobby switch failed",
					zap.String("lobby", prev), zap.Error(err))
			}
		}
	}

	if !rejoin {
		// Best-effort roster mirror; live membership never depends on it.
		if conn, ok := c.reg.get(connID); ok {
			if err := c.store.AppendPlayer(ctx, lobbyID, conn.Identity.PlayerID); err != nil {
				c.log.Warn("roster append failed",
					zap.String("lobby", lobbyID), zap.Error(err))
			}
		}
	}

	return c.Publish(ctx, lobbyID)
}

// SetReady flips the connection's ready flag and republishes its lobby.
func (c *Coordinator) SetReady(ctx context.Context, connID string, ready bool) error {
	lobbyID, err := c.reg.setReady(connID, ready)
	if err != nil {
		return err
	}
	return c.Publish(ctx, lobbyID)
}

// Leave drops the connection's lobby membership but keeps it registered.
// Cleanup never raises: failures are logged and swallowed.
func (c *Coordinator) Leave(ctx context.Context, connID string) {
	lobbyID, remaining, ok := c.reg.detach(connID)
	if !ok {
		return
	}
	c.sender.LeaveRoom(connID, lobbyID)
	if remaining > 0 {
		if err := c.Publish(ctx, lobbyID); err != nil {
			c.log.Warn("republish after leave failed",
				zap.String("lobby", lobbyID), zap.Error(err))
		}
	}
}

// Disconnect releases the connection entirely. Idempotent: transports may
// fire disconnect more than once for the same connection, and the second call
// must not broadcast again.
func (c *Coordinator) Disconnect(ctx context.Context, connID string) {
	lobbyID, remaining, had := c.reg.remove(connID)
	if !had {
		return
	}
	if lobbyID != "" {
		c.sender.LeaveRoom(connID, lobbyID)
		if remaining > 0 {
			if err := c.Publish(ctx, lobbyID); err != nil {
				c.log.Warn("republish after disconnect failed",
					zap.String("lobby", lobbyID), zap.Error(err))
			}
		}
	}
	c.log.Info("connection released", zap.String("conn", connID))
}

// LobbyOf reports the lobby the connection is currently joined to.
func (c *Coordinator) LobbyOf(connID string) (string, bool) {
	return c.reg.lobbyOf(connID)
}

// MembersOf exposes the registry snapshot, mainly for the aggregator and
// tests.
func (c *Coordinator) MembersOf(lobbyID string) []Conn {
	return c.reg.MembersOf(lobbyID)
}

