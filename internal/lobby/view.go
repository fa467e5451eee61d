package lobby

import "github.com/phxgg/geohub-sockets/internal/store"

// View is the consolidated snapshot broadcast to every room member after any
// membership or state change. Field names are the wire contract; clients key
// off them.
type View struct {
	ID          string      `json:"id"`
	State       store.State `json:"state"`
	Players     []Presence  `json:"players"`
	GameStarted bool        `json:"gameStarted"`
	AllReady    bool        `json:"allReady"`
}

func newView(sess store.LobbySession, players []Presence) View {
	if players == nil {
		players = []Presence{}
	}
	return View{
		ID:          sess.ID,
		State:       sess.State,
		Players:     players,
		GameStarted: sess.State == store.StatePlaying,
		AllReady:    AllReady(players),
	}
}
