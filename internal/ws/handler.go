package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phxgg/geohub-sockets/internal/identity"
	"github.com/phxgg/geohub-sockets/internal/lobby"
	"github.com/phxgg/geohub-sockets/internal/store"
	"github.com/phxgg/geohub-sockets/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the connection, verifies the credential, and pumps
// commands into the coordinator. Identity is checked before the upgrade: a
// bad token is a refused connection, never a registered one.
func Handler(verifier identity.Verifier, coord *lobby.Coordinator, h *Hub, st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := verifier.Verify(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "invalid credential", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		out := h.Register(connID)

		// The one and only disconnect path for this connection. Both calls
		// are idempotent, so a duplicate close event is harmless. The request
		// context is dead by the time this runs.
		defer func() {
			coord.Disconnect(context.Background(), connID)
			h.Unregister(connID)
		}()

		if err := coord.Register(connID, ident); err != nil {
			return
		}

		sendLobbyList(r.Context(), h, st, connID, log)

		// Writer goroutine: drains the outbox until Unregister closes it.
		writeCtx, writeCancel := context.WithCancel(context.Background())
		defer writeCancel()
		go func() {
			for payload := range out {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				sendError(r.Context(), conn, "BadRequest", "bad json")
				continue
			}
			if err := dispatch(r.Context(), coord, connID, cm); err != nil {
				log.Info("command rejected",
					zap.String("conn", connID),
					zap.String("type", cm.Type),
					zap.Error(err))
				sendError(r.Context(), conn, errorCode(err), err.Error())
			}
		}
	}
}

var errUnknownCommand = errors.New("unknown command type")

func dispatch(ctx context.Context, coord *lobby.Coordinator, connID string, cm types.ClientMessage) error {
	switch cm.Type {
	case "join":
		return coord.Join(ctx, connID, cm.LobbyID)
	case "ready":
		return coord.SetReady(ctx, connID, cm.Ready)
	case "start":
		lobbyID, err := resolveLobby(coord, connID, cm.LobbyID)
		if err != nil {
			return err
		}
		_, err = coord.TryStart(ctx, lobbyID)
		return err
	case "finish":
		lobbyID, err := resolveLobby(coord, connID, cm.LobbyID)
		if err != nil {
			return err
		}
		_, err = coord.Finish(ctx, lobbyID)
		return err
	case "leave":
		coord.Leave(ctx, connID)
		return nil
	default:
		return errUnknownCommand
	}
}

// resolveLobby lets start/finish omit lobbyId and act on the lobby the
// connection is joined to.
func resolveLobby(coord *lobby.Coordinator, connID, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	lobbyID, ok := coord.LobbyOf(connID)
	if !ok {
		return "", lobby.ErrNotInLobby
	}
	return lobbyID, nil
}

// sendLobbyList pushes the current lobby list to a freshly connected client.
func sendLobbyList(ctx context.Context, h *Hub, st store.Store, connID string, log *zap.Logger) {
	sessions, err := st.List(ctx)
	if err != nil {
		log.Warn("lobby list unavailable", zap.String("conn", connID), zap.Error(err))
		return
	}
	payload, err := json.Marshal(types.LobbyList{Type: "onlineLobbies", Lobbies: sessions})
	if err != nil {
		return
	}
	h.SendToConn(connID, payload)
}

func sendError(ctx context.Context, conn *websocket.Conn, code, message string) {
	payload, _ := json.Marshal(types.ErrorMessage{Type: "Error", Code: code, Message: message})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, lobby.ErrNotInLobby), errors.Is(err, lobby.ErrUnknownConn):
		return "NotInLobby"
	case errors.Is(err, lobby.ErrNotWaiting):
		return "NotWaiting"
	case errors.Is(err, lobby.ErrNoPlayers):
		return "NoPlayers"
	case errors.Is(err, lobby.ErrNotAllReady):
		return "NotAllReady"
	case errors.Is(err, lobby.ErrInvalidTransition):
		return "InvalidTransition"
	case errors.Is(err, store.ErrNotFound):
		return "NotFound"
	case errors.Is(err, store.ErrConflict):
		return "Conflict"
	case errors.Is(err, errUnknownCommand):
		return "BadRequest"
	default:
		return "StoreUnavailable"
	}
}
