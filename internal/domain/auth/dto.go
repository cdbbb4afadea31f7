package auth

import "github.com/notihub/notification-backend-go/internal/pkg/validator"

// LoginRequest asks the mock issuer for a token bound to ownerId.
// No credential is checked.
type LoginRequest struct {
	OwnerID string `json:"ownerId"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors
	validator.CheckOwnerID(&errs, "ownerId", r.OwnerID, 3)
	return errs.Err()
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
