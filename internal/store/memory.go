package store

import (
	"context"
	"slices"
	"sort"
	"sync"
)

// Memory is an in-process Store used in tests and when no DATABASE_URL is
// configured.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]*LobbySession
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]*LobbySession)}
}

func (m *Memory) Create(_ context.Context, sess LobbySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := sess
	cp.Players = slices.Clone(sess.Players)
	m.sessions[sess.ID] = &cp
	return nil
}

func (m *Memory) FindByID(_ context.Context, id string) (LobbySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return LobbySession{}, ErrNotFound
	}
	return snapshot(sess), nil
}

func (m *Memory) List(_ context.Context) ([]LobbySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LobbySession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, snapshot(sess))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CompareAndSetState(_ context.Context, id string, expected, next State) (LobbySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return LobbySession{}, ErrNotFound
	}
	if sess.State != expected {
		return LobbySession{}, ErrConflict
	}
	sess.State = next
	return snapshot(sess), nil
}

func (m *Memory) AppendPlayer(_ context.Context, id, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if !slices.Contains(sess.Players, playerID) {
		sess.Players = append(sess.Players, playerID)
	}
	return nil
}

func snapshot(sess *LobbySession) LobbySession {
	cp := *sess
	cp.Players = slices.Clone(sess.Players)
	return cp
}
