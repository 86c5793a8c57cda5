package auth

import "errors"

// Role is the access role carried in a verified credential
type Role string

const (
	RoleDriver    Role = "DRIVER"
	RolePassenger Role = "PASSENGER"
	RoleAdmin     Role = "ADMIN"
)

// Identity is the result of verifying a credential
type Identity struct {
	Subject string
	Role    Role
}

// Verifier maps a supplied credential to an identity. Implementations
// must fail closed: any doubt about the credential is an error.
type Verifier interface {
	Verify(credential string) (*Identity, error)
}

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingToken  = errors.New("credential missing")
	ErrRoleForbidden = errors.New("role not allowed")
)
