package auth

import "errors"

var (
	ErrTokenMissing = errors.New("token not provided")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenExpired = errors.New("token has expired")
)
