package lobby

import (
	"testing"

	"github.com/phxgg/geohub-sockets/internal/identity"
)

func conn(id, playerID string, ready bool) Conn {
	return Conn{
		ID:       id,
		Identity: identity.Identity{PlayerID: playerID, DisplayName: "p-" + playerID},
		Ready:    ready,
	}
}

func TestAggregate_DedupesByPlayer(t *testing.T) {
	got := Aggregate([]Conn{
		conn("c1", "alice", true),
		conn("c2", "alice", true),
		conn("c3", "bob", false),
	})

	if len(got) != 2 {
		t.Fatalf("want 2 presences, got %d: %+v", len(got), got)
	}
	if got[0].PlayerID != "alice" || got[1].PlayerID != "bob" {
		t.Fatalf("unexpected players: %+v", got)
	}
}

func TestAggregate_ReadyRequiresEveryConnection(t *testing.T) {
	// Two tabs, only one ready: the player is not ready.
	got := Aggregate([]Conn{
		conn("c1", "alice", true),
		conn("c2", "alice", false),
	})
	if len(got) != 1 || got[0].Ready {
		t.Fatalf("want alice not ready, got %+v", got)
	}

	// Both tabs ready: now the player is ready.
	got = Aggregate([]Conn{
		conn("c1", "alice", true),
		conn("c2", "alice", true),
	})
	if len(got) != 1 || !got[0].Ready {
		t.Fatalf("want alice ready, got %+v", got)
	}
}

func TestAllReady(t *testing.T) {
	if AllReady(nil) {
		t.Fatal("empty membership must not be all-ready")
	}
	if AllReady([]Presence{{PlayerID: "a", Ready: true}, {PlayerID: "b"}}) {
		t.Fatal("one unready player must veto")
	}
	if !AllReady([]Presence{{PlayerID: "a", Ready: true}, {PlayerID: "b", Ready: true}}) {
		t.Fatal("everyone ready should pass")
	}
}
