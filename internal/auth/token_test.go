package auth

import (
	"testing"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	issuer := NewIssuer("secret")
	user := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	token, err := issuer.Generate(user)
	require.NoError(t, err)

	id, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.ID)
	assert.True(t, id.IsAdmin())
}

func TestTokenExpiresAfterOneHour(t *testing.T) {
	issuer := NewIssuer("secret")
	start := time.Now()
	issuer.now = func() time.Time { return start }

	token, err := issuer.Generate(&models.User{ID: uuid.New(), Role: models.RoleUser})
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(59 * time.Minute) }
	_, err = issuer.Parse(token)
	assert.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(61 * time.Minute) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	token, err := NewIssuer("other").Generate(&models.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = NewIssuer("secret").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewIssuer("secret").Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		User:             Identity{ID: uuid.New(), Role: models.RoleAdmin},
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
