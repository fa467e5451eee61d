package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CompareAndSetState(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Create(ctx, LobbySession{ID: "ABC123", State: StateWaiting}))

	sess, err := m.CompareAndSetState(ctx, "ABC123", StateWaiting, StatePlaying)
	require.NoError(t, err)
	assert.Equal(t, StatePlaying, sess.State)

	// Same transition again loses: expected state no longer matches.
	_, err = m.CompareAndSetState(ctx, "ABC123", StateWaiting, StatePlaying)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = m.CompareAndSetState(ctx, "NOPE", StateWaiting, StatePlaying)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_AppendPlayerDedupes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Create(ctx, LobbySession{ID: "ABC123", State: StateWaiting}))

	require.NoError(t, m.AppendPlayer(ctx, "ABC123", "p1"))
	require.NoError(t, m.AppendPlayer(ctx, "ABC123", "p1"))
	require.NoError(t, m.AppendPlayer(ctx, "ABC123", "p2"))

	sess, err := m.FindByID(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, sess.Players)

	assert.ErrorIs(t, m.AppendPlayer(ctx, "NOPE", "p1"), ErrNotFound)
}

func TestMemory_SnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Create(ctx, LobbySession{ID: "ABC123", State: StateWaiting}))
	require.NoError(t, m.AppendPlayer(ctx, "ABC123", "p1"))

	sess, err := m.FindByID(ctx, "ABC123")
	require.NoError(t, err)
	sess.Players[0] = "mutated"

	again, err := m.FindByID(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, again.Players)
}
