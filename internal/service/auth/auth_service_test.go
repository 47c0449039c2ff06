package auth

import (
	"context"
	"testing"
	"time"

	"intervue-api/internal/domain"
	"intervue-api/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestAuth() *Service {
	return &Service{
		clientID:    "client-id",
		jwtSecret:   []byte(testSecret),
		tokenExpiry: time.Hour,
		logger:      logger.NewNop(),
	}
}

func testUser() *domain.User {
	return &domain.User{
		ID:    "google-sub-123",
		Email: "user@example.com",
		Name:  "Test User",
		Role:  domain.RoleUser,
	}
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newTestAuth()

	resp, err := svc.IssueToken(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "google-sub-123", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestValidateToken_AdminRole(t *testing.T) {
	svc := newTestAuth()

	user := testUser()
	user.Role = domain.RoleAdmin

	resp, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestValidateToken_Rejections(t *testing.T) {
	svc := newTestAuth()

	expired := func() string {
		claims := sessionClaims{
			Email: "user@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return token
	}

	wrongSecret := func() string {
		claims := sessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		require.NoError(t, err)
		return token
	}

	noSubject := func() string {
		claims := sessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
		{name: "expired", token: expired()},
		{name: "wrong secret", token: wrongSecret()},
		{name: "missing subject", token: noSubject()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(context.Background(), tt.token)
			assert.Error(t, err)
		})
	}
}

func TestSignInWithGoogle_RequiresCredential(t *testing.T) {
	svc := newTestAuth()

	_, err := svc.SignInWithGoogle(context.Background(), &domain.GoogleSignInRequest{})
	assert.Error(t, err, "a request with neither code nor access token is rejected")
}
