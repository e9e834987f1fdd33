package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "schooldesk-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService()

	pair, err := svc.GenerateTokenPair(Subject{UserID: 7, Email: "a@school.test", RoleType: "ADMIN", SessionID: "sess-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 900, pair.ExpiresIn)
	assert.Equal(t, 86400, pair.RefreshExpiresIn)

	claims, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ADMIN", claims.RoleType)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	pair, err := svc.GenerateTokenPair(Subject{UserID: 1, Email: "x@y.z", RoleType: "STAFF", SessionID: "s"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecretOrIssuer(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GenerateTokenPair(Subject{UserID: 1, Email: "x@y.z", RoleType: "STAFF", SessionID: "s"})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute, TokenIssuer: "schooldesk-test"})
	_, err = other.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherIssuer := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Minute, TokenIssuer: "elsewhere"})
	_, err = otherIssuer.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAndExtractClaims_RequiresSession(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GenerateTokenPair(Subject{UserID: 3, Email: "x@y.z", RoleType: "STAFF"})
	require.NoError(t, err)

	_, err = svc.ValidateAndExtractClaims(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	for _, header := range []string{"", "Bearer ", "Basic xyz", "abc.def"} {
		_, err := ExtractBearerToken(header)
		assert.ErrorIs(t, err, ErrInvalidFormat, header)
	}
}

func TestPasswordHelpers(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	defer func() { BcryptCost = 12 }()

	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))

	pw, err := GenerateTemporaryPassword(4)
	require.NoError(t, err)
	assert.Len(t, pw, 8)

	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
