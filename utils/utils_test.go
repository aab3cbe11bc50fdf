package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"menufic/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokens(now time.Time) *Tokens {
	t := NewTokens(config.AuthConfig{JWTSecret: "test-secret", AccessTTL: 15 * time.Minute, RefreshTTL: 12 * time.Hour})
	t.now = func() time.Time { return now }
	return t
}

func TestGenerateAndValidate(t *testing.T) {
	tokens := newTokens(time.Now())
	access, refresh, err := tokens.GenerateTokens("01HUSER")
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "01HUSER", claims.Subject)

	_, err = tokens.ValidateToken(refresh, AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = tokens.ValidateToken(access, RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateRejectsExpiredAndForeign(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	access, _, err := newTokens(issued).GenerateTokens("u1")
	require.NoError(t, err)

	_, err = newTokens(time.Now()).ValidateToken(access, AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewTokens(config.AuthConfig{JWTSecret: "other", AccessTTL: time.Minute, RefreshTTL: time.Minute})
	fresh, _, err := other.GenerateTokens("u1")
	require.NoError(t, err)
	_, err = newTokens(time.Now()).ValidateToken(fresh, AccessToken)
	assert.Error(t, err)
}

func TestOwnerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := newTokens(time.Now())
	access, refresh, err := tokens.GenerateTokens("u42")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", OwnerMiddleware(tokens), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id)
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", access, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"access token", "Bearer " + access, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "u42", w.Body.String())
			}
		})
	}
}
