package auth

import (
	"context"
	"fmt"

	"github.com/notihub/notification-backend-go/internal/domain/auth"
	"github.com/notihub/notification-backend-go/internal/pkg/jwt"
)

type AuthServiceImpl struct {
	jwt.Service
}

func NewAuthService(jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{Service: jwtService}
}

// Login implements auth.AuthService.
// There is no identity check: any well-formed owner ID gets a token.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	token, expiresAt, err := a.Service.GenerateAccessToken(req.OwnerID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return auth.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}
