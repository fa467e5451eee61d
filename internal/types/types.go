package types

import "github.com/phxgg/geohub-sockets/internal/store"

// ClientMessage is every command a connection can send over the socket.
type ClientMessage struct {
	Type    string `json:"type"` // "join" | "ready" | "start" | "finish" | "leave"
	LobbyID string `json:"lobbyId,omitempty"`
	Ready   bool   `json:"ready,omitempty"`
}

// ErrorMessage is sent to the acting connection only; failed commands are
// never broadcast.
type ErrorMessage struct {
	Type    string `json:"type"` // always "Error"
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LobbyList is pushed to each connection right after it registers.
type LobbyList struct {
	Type    string               `json:"type"` // always "onlineLobbies"
	Lobbies []store.LobbySession `json:"lobbies"`
}
