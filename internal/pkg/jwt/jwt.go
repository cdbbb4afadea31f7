package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/notihub/notification-backend-go/internal/domain/auth"
)

const accessTokenType = "access"

// Service issues and verifies the opaque bearer credential.
// Identity is not checked: whoever asks for an owner gets a token for it.
type Service interface {
	GenerateAccessToken(ownerID string) (token string, expiresAt int64, err error)
	Verify(tokenString string) (ownerID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(ownerID string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	now := j.now()
	expiresAt = now.Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  ownerID,
		"type": accessTokenType,
		"iat":  now.Unix(),
		"exp":  expiresAt,
	})
	return tokenString, expiresAt, err
}

// Verify validates signature, expiry and token type and returns the owner ID
func (j *JWTService) Verify(tokenString string) (ownerID string, err error) {
	if tokenString == "" {
		return "", auth.ErrTokenMissing
	}

	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return "", auth.ErrTokenExpired
		}
		return "", auth.ErrInvalidToken
	}

	return OwnerIDFromToken(token)
}

// OwnerIDFromToken checks the claims of an already verified token
func OwnerIDFromToken(token jwt.Token) (string, error) {
	if token == nil {
		return "", auth.ErrInvalidToken
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != accessTokenType {
		return "", auth.ErrInvalidToken
	}

	ownerID := token.Subject()
	if ownerID == "" {
		return "", auth.ErrInvalidToken
	}

	return ownerID, nil
}
