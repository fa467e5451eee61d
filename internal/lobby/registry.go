package lobby

import (
	"sync"

	"github.com/phxgg/geohub-sockets/internal/identity"
)

// Conn is a point-in-time copy of one live connection's state, as handed to
// the aggregator and to callers of MembersOf.
type Conn struct {
	ID       string
	Identity identity.Identity
	LobbyID  string
	Ready    bool
}

// entry is the live record behind one connection. The registry owns it
// exclusively; it is destroyed on disconnect.
type entry struct {
	id       string
	identity identity.Identity

	// moveMu serializes membership moves (join, leave, disconnect) for this
	// connection, so a disconnect racing an in-flight join can never lose the
	// removal.
	moveMu sync.Mutex

	// lobbyID and ready are guarded by the registry index lock.
	lobbyID string
	ready   bool
}

// room groups the connections joined to one lobby. Its mutex is the per-lobby
// critical section: membership mutation and the whole
// snapshot -> evaluate -> persist -> broadcast unit run under it, so
// unrelated lobbies never block each other.
type room struct {
	mu    sync.Mutex
	conns map[string]*entry
}

// Registry tracks live connections and their lobby membership. The outer
// RWMutex only guards the two indexes and per-connection fields; it is taken
// briefly and released before waiting on any room mutex, so a lobby pinned on
// slow store I/O cannot stall operations against other lobbies.
//
// Lock order: entry.moveMu, then room.mu, then Registry.mu. Each level is
// optional but never acquired in reverse.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*entry
	rooms map[string]*room
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*entry),
		rooms: make(map[string]*room),
	}
}

func (r *Registry) register(connID string, ident identity.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = &entry{id: connID, identity: ident}
}

// ensureRoom returns the room for lobbyID, creating it on first use. Rooms
// are never removed: a later rejoin must serialize on the same mutex as any
// in-flight operation for that lobby.
func (r *Registry) ensureRoom(lobbyID string) *room {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[lobbyID]
	if !ok {
		rm = &room{conns: make(map[string]*entry)}
		r.rooms[lobbyID] = rm
	}
	return rm
}

// attach moves the connection into lobbyID and reports the lobby it came
// from. Re-joining the current lobby is a no-op (rejoin=true). Switching or
// first joining resets the ready flag: presence on a fresh connection always
// starts not-ready.
func (r *Registry) attach(connID, lobbyID string) (prev string, rejoin bool, err error) {
	r.mu.RLock()
	c, ok := r.conns[connID]
	r.mu.RUnlock()
	if !ok {
		return "", false, ErrUnknownConn
	}

	c.moveMu.Lock()
	defer c.moveMu.Unlock()

	// Re-check under the move lock: a disconnect may have won the race and
	// released the connection while we waited.
	r.mu.RLock()
	_, alive := r.conns[connID]
	prev = c.lobbyID
	oldRoom := r.rooms[prev]
	r.mu.RUnlock()
	if !alive {
		return "", false, ErrUnknownConn
	}
	if prev == lobbyID {
		return prev, true, nil
	}

	if prev != "" && oldRoom != nil {
		oldRoom.mu.Lock()
		delete(oldRoom.conns, connID)
		oldRoom.mu.Unlock()
	}

	rm := r.ensureRoom(lobbyID)
	rm.mu.Lock()
	r.mu.Lock()
	c.lobbyID = lobbyID
	c.ready = false
	r.mu.Unlock()
	rm.conns[connID] = c
	rm.mu.Unlock()

	return prev, false, nil
}

// setReady flips the connection's ready flag and reports which lobby needs a
// re-broadcast. If the connection detached concurrently, last write wins and
// the call reports ErrNotInLobby.
func (r *Registry) setReady(connID string, ready bool) (string, error) {
	r.mu.RLock()
	c, ok := r.conns[connID]
	var lobbyID string
	if ok {
		lobbyID = c.lobbyID
	}
	rm := r.rooms[lobbyID]
	r.mu.RUnlock()
	if !ok {
		return "", ErrUnknownConn
	}
	if lobbyID == "" || rm == nil {
		return "", ErrNotInLobby
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if _, in := rm.conns[connID]; !in {
		return "", ErrNotInLobby
	}
	r.mu.Lock()
	c.ready = ready
	r.mu.Unlock()
	return lobbyID, nil
}

// detach removes the connection's lobby membership, keeping the connection
// registered. Reports the lobby left and how many members remain in it.
func (r *Registry) detach(connID string) (lobbyID string, remaining int, ok bool) {
	r.mu.RLock()
	c, found := r.conns[connID]
	r.mu.RUnlock()
	if !found {
		return "", 0, false
	}

	c.moveMu.Lock()
	defer c.moveMu.Unlock()

	r.mu.RLock()
	_, alive := r.conns[connID]
	lobbyID = c.lobbyID
	rm := r.rooms[lobbyID]
	r.mu.RUnlock()
	if !alive || lobbyID == "" {
		return "", 0, false
	}

	if rm != nil {
		rm.mu.Lock()
		delete(rm.conns, connID)
		remaining = len(rm.conns)
		rm.mu.Unlock()
	}
	r.mu.Lock()
	c.lobbyID = ""
	c.ready = false
	r.mu.Unlock()
	return lobbyID, remaining, true
}

// remove releases the connection entirely. Safe to call more than once:
// disconnect handlers can fire repeatedly for the same connection.
func (r *Registry) remove(connID string) (lobbyID string, remaining int, had bool) {
	r.mu.RLock()
	c, found := r.conns[connID]
	r.mu.RUnlock()
	if !found {
		return "", 0, false
	}

	c.moveMu.Lock()
	defer c.moveMu.Unlock()

	r.mu.Lock()
	if _, alive := r.conns[connID]; !alive {
		r.mu.Unlock()
		return "", 0, false
	}
	delete(r.conns, connID)
	lobbyID = c.lobbyID
	rm := r.rooms[lobbyID]
	r.mu.Unlock()

	if lobbyID != "" && rm != nil {
		rm.mu.Lock()
		delete(rm.conns, connID)
		remaining = len(rm.conns)
		rm.mu.Unlock()
	}
	return lobbyID, remaining, true
}

// lobbyOf reports which lobby the connection is currently joined to.
func (r *Registry) lobbyOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connID]
	if !ok || c.lobbyID == "" {
		return "", false
	}
	return c.lobbyID, true
}

// get returns a copy of the connection's current state.
func (r *Registry) get(connID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connID]
	if !ok {
		return Conn{}, false
	}
	return Conn{ID: c.id, Identity: c.identity, LobbyID: c.lobbyID, Ready: c.ready}, true
}

// membersLocked copies the room's members. Callers hold rm.mu; the index
// lock is only taken briefly to read connection fields.
func (r *Registry) membersLocked(rm *room) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conn, 0, len(rm.conns))
	for _, c := range rm.conns {
		out = append(out, Conn{ID: c.id, Identity: c.identity, LobbyID: c.lobbyID, Ready: c.ready})
	}
	return out
}

// MembersOf returns a point-in-time copy of the lobby's connections.
func (r *Registry) MembersOf(lobbyID string) []Conn {
	r.mu.RLock()
	rm := r.rooms[lobbyID]
	r.mu.RUnlock()
	if rm == nil {
		return nil
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return r.membersLocked(rm)
}
