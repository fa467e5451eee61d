package identity

import "errors"

// ErrAuth covers every credential failure: missing token, bad signature,
// expired claims. Connections failing verification are refused before any
// registry state exists.
var ErrAuth = errors.New("identity: credential rejected")

// Identity is the verified player behind a connection.
type Identity struct {
	PlayerID    string
	DisplayName string
	AvatarRef   string
}

// Verifier validates an opaque credential presented at connection time.
type Verifier interface {
	Verify(credential string) (Identity, error)
}
