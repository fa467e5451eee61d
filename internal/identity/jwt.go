package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the token payload issued by the auth service. The subject claim
// carries the player id.
type Claims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"name"`
	AvatarRef   string `json:"avatar,omitempty"`
}

// JWTVerifier verifies HMAC-signed tokens shared with the auth service.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrAuth
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrAuth)
	}

	return Identity{
		PlayerID:    claims.Subject,
		DisplayName: claims.DisplayName,
		AvatarRef:   claims.AvatarRef,
	}, nil
}
