package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-parking-system/internal/repository"
	"github.com/iliyamo/vehicle-parking-system/internal/utils"
)

const jwtTestSecret = "jwt-test-secret"

func authRequest(t *testing.T, tokens *repository.TokenRepo, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen echo.Context
	h := JWTAuth(jwtTestSecret, tokens)(func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	if seen == nil {
		seen = c
	}
	return rec, seen
}

func TestJWTAuthAcceptsValidAccessToken(t *testing.T) {
	tok, err := utils.NewAccessToken(jwtTestSecret, utils.Identity{
		Subject: "42", Role: "user", Username: "alice", Email: "alice@example.com",
	}, time.Minute)
	require.NoError(t, err)

	rec, c := authRequest(t, repository.NewTokenRepo(nil), "Bearer "+tok.Value)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", c.Get("user_id"))
	assert.Equal(t, "user", c.Get("role"))
	assert.Equal(t, "alice", c.Get("username"))
	assert.Equal(t, tok.JTI, c.Get("jti"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := authRequest(t, repository.NewTokenRepo(nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")
}

func TestJWTAuthRejectsRefreshToken(t *testing.T) {
	tok, err := utils.NewRefreshToken(jwtTestSecret, utils.Identity{Subject: "42", Role: "user"}, 1)
	require.NoError(t, err)

	rec, _ := authRequest(t, repository.NewTokenRepo(nil), "Bearer "+tok.Value)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "access token required")
}

func TestJWTAuthRejectsRevokedToken(t *testing.T) {
	tok, err := utils.NewAccessToken(jwtTestSecret, utils.Identity{Subject: "42", Role: "user"}, time.Minute)
	require.NoError(t, err)

	tokens := repository.NewTokenRepo(nil)
	require.NoError(t, tokens.Revoke(context.Background(), tok.JTI, tok.Exp))

	rec, _ := authRequest(t, tokens, "Bearer "+tok.Value)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")
}

func TestJWTAuthRejectsForeignSignature(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", utils.Identity{Subject: "42", Role: "user"}, time.Minute)
	require.NoError(t, err)

	rec, _ := authRequest(t, repository.NewTokenRepo(nil), "Bearer "+tok.Value)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}
