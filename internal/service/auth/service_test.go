package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/notihub/notification-backend-go/internal/domain/auth"
	"github.com/notihub/notification-backend-go/internal/pkg/jwt"
	"github.com/notihub/notification-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessExp = "1h"
	testSecret    = "test-secret-key-for-jwt"
)

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	jwtService := jwt.NewJWTService(testSecret, testAccessExp)
	svc := NewAuthService(jwtService)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{OwnerID: "user_123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotZero(t, resp.ExpiresAt)

	ownerID, err := jwtService.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", ownerID)
}

func TestLogin_InvalidOwnerID(t *testing.T) {
	svc := NewAuthService(jwt.NewJWTService(testSecret, testAccessExp))

	for _, ownerID := range []string{"", "ab", "bad id!"} {
		_, err := svc.Login(context.Background(), auth.LoginRequest{OwnerID: ownerID})
		var verrs validator.ValidationErrors
		assert.True(t, errors.As(err, &verrs), "ownerID %q", ownerID)
	}
}

func TestLogin_BadExpiration(t *testing.T) {
	svc := NewAuthService(jwt.NewJWTService(testSecret, "forever"))

	_, err := svc.Login(context.Background(), auth.LoginRequest{OwnerID: "user_123"})
	assert.Error(t, err)
}
