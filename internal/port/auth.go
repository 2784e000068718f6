package port

import (
	"github.com/google/uuid"

	"jobkaart/internal/domain"
)

// AuthClaims holds the verified claims of a session token.
type AuthClaims struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Role     domain.UserRole
}

// TokenVerifier validates session tokens issued by the hosted auth platform.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*AuthClaims, error)
}
