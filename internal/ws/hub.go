package ws

import (
	"sync"

	"go.uber.org/zap"
)

// Hub owns the transport-level rooms: which outboxes get a payload sent to a
// lobby. It knows nothing about lobby semantics; the coordinator drives it
// through the lobby.Sender interface.
type Hub struct {
	log *zap.Logger

	mu      sync.RWMutex
	clients map[string]chan []byte
	rooms   map[string]map[string]chan []byte
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[string]chan []byte),
		rooms:   make(map[string]map[string]chan []byte),
	}
}

// Register allocates the connection's outbox. The returned channel is closed
// on Unregister; the connection's writer ranges over it until then.
func (h *Hub) Register(connID string) <-chan []byte {
	out := make(chan []byte, 16)
	h.mu.Lock()
	h.clients[connID] = out
	h.mu.Unlock()
	return out
}

// Unregister drops the connection from every room and closes its outbox.
// Safe to call twice.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out, ok := h.clients[connID]
	if !ok {
		return
	}
	delete(h.clients, connID)
	for roomID, members := range h.rooms {
		if _, in := members[connID]; in {
			delete(members, connID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	close(out)
}

func (h *Hub) JoinRoom(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out, ok := h.clients[connID]
	if !ok {
		return
	}
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]chan []byte)
		h.rooms[roomID] = members
	}
	members[connID] = out
}

func (h *Hub) LeaveRoom(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// SendToRoom fans the payload out to every member. Sends never block: a
// member whose outbox is full loses this payload but the rest of the room
// still gets it, and the next broadcast carries the full view anyway.
func (h *Hub) SendToRoom(roomID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID, out := range h.rooms[roomID] {
		select {
		case out <- payload:
		default:
			h.log.Warn("outbox full, dropping payload",
				zap.String("conn", connID),
				zap.String("room", roomID))
		}
	}
}

func (h *Hub) SendToConn(connID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case out <- payload:
	default:
		h.log.Warn("outbox full, dropping payload", zap.String("conn", connID))
	}
}
