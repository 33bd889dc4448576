package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-parking-system/internal/config"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
	"github.com/iliyamo/vehicle-parking-system/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "handler-test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
		AdminEmail:     "admin@example.com",
		AdminPassword:  "admin-pass",
	}
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(&strings.Builder{})
	return NewAuthHandler(repository.NewUserRepo(db), repository.NewTokenRepo(nil), testConfig(), log), mock
}

func postJSON(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing fields", `{"username":"a"}`, "required"},
		{"short password", `{"username":"a","email":"a@b.com","password":"abc"}`, "at least 6"},
		{"bad email", `{"username":"a","email":"nope","password":"secret1"}`, "invalid email"},
		{"reserved admin email", `{"username":"a","email":"admin@example.com","password":"secret1"}`, "already registered"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, mock := newAuthHandler(t)
			c, rec := postJSON(t, "/api/auth/register", tc.body)

			require.NoError(t, h.Register(c))
			assert.GreaterOrEqual(t, rec.Code, 400)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Contains(t, body["error"], tc.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdminLoginShortCircuit(t *testing.T) {
	h, mock := newAuthHandler(t)
	c, rec := postJSON(t, "/api/auth/login",
		`{"email":"Admin@Example.com","password":"admin-pass"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	// the configured credentials never touch the users table
	require.NoError(t, mock.ExpectationsWereMet())

	body := decode(t, rec)
	require.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "admin", data["role"])

	parsed, err := utils.ParseToken(testConfig().JWTSecret, data["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, utils.AdminSubject, parsed.Subject)
	assert.Equal(t, "admin", parsed.Role)
	assert.Equal(t, utils.TokenTypeAccess, parsed.Type)

	refresh, err := utils.ParseToken(testConfig().JWTSecret, data["refresh_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, utils.TokenTypeRefresh, refresh.Type)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	h, mock := newAuthHandler(t)

	// wrong admin password falls through to the user lookup, which misses
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT .+ FROM users WHERE username=?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := postJSON(t, "/api/auth/login",
		`{"email":"admin@example.com","password":"wrong"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h, _ := newAuthHandler(t)

	tok, err := utils.NewAccessToken(testConfig().JWTSecret,
		utils.Identity{Subject: "42", Role: "user"}, 15*time.Minute)
	require.NoError(t, err)

	c, rec := postJSON(t, "/api/auth/refresh", `{"refresh_token":"`+tok.Value+`"}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
}

func TestAdminRefreshSkipsUserLookup(t *testing.T) {
	h, mock := newAuthHandler(t)

	tok, err := utils.NewRefreshToken(testConfig().JWTSecret, utils.Identity{
		Subject: utils.AdminSubject, Role: "admin", Username: "admin", Email: "admin@example.com",
	}, 7)
	require.NoError(t, err)

	c, rec := postJSON(t, "/api/auth/refresh", `{"refresh_token":"`+tok.Value+`"}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())

	data := decode(t, rec)["data"].(map[string]interface{})
	parsed, err := utils.ParseToken(testConfig().JWTSecret, data["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, utils.AdminSubject, parsed.Subject)
	assert.Equal(t, utils.TokenTypeAccess, parsed.Type)
}
