package lobby

import "sort"

// Presence is the derived per-player view of a lobby's membership: one entry
// per distinct player no matter how many connections they hold.
type Presence struct {
	PlayerID string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Ready    bool   `json:"ready"`
}

// Aggregate collapses a connection snapshot into presences. A player counts
// as ready only when every one of their connections is ready; "any" would
// let a stale second tab mark a player ready behind their back.
func Aggregate(conns []Conn) []Presence {
	byPlayer := make(map[string]*Presence, len(conns))
	for _, c := range conns {
		p, ok := byPlayer[c.Identity.PlayerID]
		if !ok {
			byPlayer[c.Identity.PlayerID] = &Presence{
				PlayerID: c.Identity.PlayerID,
				Name:     c.Identity.DisplayName,
				Avatar:   c.Identity.AvatarRef,
				Ready:    c.Ready,
			}
			continue
		}
		p.Ready = p.Ready && c.Ready
	}

	out := make([]Presence, 0, len(byPlayer))
	for _, p := range byPlayer {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// AllReady reports whether the lobby may start: somebody is present and
// nobody is still unready.
func AllReady(players []Presence) bool {
	if len(players) == 0 {
		return false
	}
	for _, p := range players {
		if !p.Ready {
			return false
		}
	}
	return true
}
