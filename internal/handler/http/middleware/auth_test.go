package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/notihub/notification-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(jwtService jwt.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Use(jwtauth.Verify(jwtService.JWTAuth(), jwtauth.TokenFromHeader, TokenFromQuery))
	r.Use(AuthRequired(jwtService.JWTAuth()))
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(OwnerIDFromContext(r.Context())))
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	router := newProtectedRouter(jwtService)

	token, _, err := jwtService.GenerateAccessToken("user_123")
	require.NoError(t, err)

	_, wrongType, err := jwtService.JWTAuth().Encode(map[string]interface{}{
		"sub": "user_123", "type": "refresh", "exp": time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	cases := []struct {
		name       string
		target     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"bearer header", "/whoami", "Bearer " + token, http.StatusOK, "user_123"},
		{"query token", "/whoami?token=" + token, "", http.StatusOK, "user_123"},
		{"missing token", "/whoami", "", http.StatusUnauthorized, "Token not provided"},
		{"garbage token", "/whoami", "Bearer nope", http.StatusUnauthorized, "Invalid token"},
		{"wrong token type", "/whoami", "Bearer " + wrongType, http.StatusUnauthorized, "Invalid token"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, c.target, nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, c.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), c.wantBody)
		})
	}
}

func TestAuthRequired_Expired(t *testing.T) {
	jwtService := jwt.NewJWTService("test-secret-key-for-jwt", "-1h")
	router := newProtectedRouter(jwtService)

	token, _, err := jwtService.GenerateAccessToken("user_123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token expired")
}
