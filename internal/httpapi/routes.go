package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/phxgg/geohub-sockets/internal/identity"
	"github.com/phxgg/geohub-sockets/internal/lobby"
	"github.com/phxgg/geohub-sockets/internal/store"
	"github.com/phxgg/geohub-sockets/internal/ws"
)

func SetupRoutes(verifier identity.Verifier, coord *lobby.Coordinator, hub *ws.Hub, st store.Store, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/lobbies", CreateLobby(st, log))
	r.Get("/lobbies", ListLobbies(st))
	r.Get("/lobbies/{code}", GetLobby(st))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(verifier, coord, hub, st, log))
	return r
}
