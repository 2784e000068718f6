package jwt

import (
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jobkaart/internal/config"
	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

// Claims is the session token payload issued by the hosted auth platform.
type Claims struct {
	jwtlib.RegisteredClaims
	TenantID uuid.UUID       `json:"tenant_id"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
}

type verifier struct {
	secret []byte
	opts   []jwtlib.ParserOption
}

// NewVerifier creates an HS256 TokenVerifier. Issuer and audience are checked
// only when configured.
func NewVerifier(cfg config.AuthConfig) port.TokenVerifier {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(cfg.Audience))
	}
	return &verifier{secret: []byte(cfg.JWTSecret), opts: opts}
}

func (v *verifier) VerifyToken(tokenString string) (*port.AuthClaims, error) {
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenString, claims, func(token *jwtlib.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", domain.ErrInvalidToken)
	}
	if claims.TenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing tenant_id", domain.ErrInvalidToken)
	}
	role := claims.Role
	if role == "" {
		role = domain.RoleMember
	}
	if role != domain.RoleOwner && role != domain.RoleMember {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidToken, role)
	}

	return &port.AuthClaims{
		UserID:   userID,
		TenantID: claims.TenantID,
		Email:    claims.Email,
		Role:     role,
	}, nil
}
