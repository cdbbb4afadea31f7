package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/notihub/notification-backend-go/internal/domain/auth"
	"github.com/notihub/notification-backend-go/internal/handler/http/response"
	"github.com/notihub/notification-backend-go/internal/pkg/jwt"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// AuthRequired rejects requests whose verified token is missing, expired or not an access token.
// It must run after a jwtauth verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				switch {
				case errors.Is(err, jwtauth.ErrNoTokenFound):
					response.HandleError(w, auth.ErrTokenMissing)
				case errors.Is(err, jwtauth.ErrExpired):
					response.HandleError(w, auth.ErrTokenExpired)
				default:
					response.HandleError(w, auth.ErrInvalidToken)
				}
				return
			}

			ownerID, err := jwt.OwnerIDFromToken(token)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// OwnerIDFromContext returns the owner the request's token was issued to
func OwnerIDFromContext(ctx context.Context) string {
	ownerID, _ := ctx.Value(ownerIDKey).(string)
	return ownerID
}

// TokenFromQuery reads the token from the "token" query parameter.
// EventSource cannot set an Authorization header.
func TokenFromQuery(r *http.Request) string {
	return r.URL.Query().Get("token")
}
