// Package auth issues and verifies the bearer tokens carried in x-auth-token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the fixed lifetime of an issued token; there is no refresh.
const TokenTTL = time.Hour

var ErrInvalidToken = errors.New("token is not valid")

// Identity is the caller carried inside a token
type Identity struct {
	ID   uuid.UUID   `json:"id"`
	Role models.Role `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Claims is the JWT payload: {"user": {"id", "role"}} plus expiry
type Claims struct {
	User Identity `json:"user"`
	jwt.RegisteredClaims
}

// Issuer signs and parses HS256 tokens with one secret
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer using TokenTTL
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// Generate signs a token for user
func (i *Issuer) Generate(user *models.User) (string, error) {
	now := i.now()
	claims := &Claims{
		User: Identity{ID: user.ID, Role: user.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// Parse verifies signature and expiry and returns the carried identity
func (i *Issuer) Parse(tokenStr string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.User.ID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return &claims.User, nil
}
