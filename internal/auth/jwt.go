package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the canonical JWT claims payload: subject is the user ID,
// role drives access decisions
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256-signed tokens
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given shared secret
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(strings.TrimSpace(secret))}
}

// Verify parses and validates the token and returns the identity it
// carries
func (v *JWTVerifier) Verify(credential string) (*Identity, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{Subject: claims.Subject, Role: claims.Role}, nil
}

// IssueToken signs a token for a subject and role. Used by tests and
// local tooling; production tokens come from the user service.
func (v *JWTVerifier) IssueToken(subject string, role Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
