package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"caa_portal_backend/internal/config"
	"caa_portal_backend/internal/middleware"
	"caa_portal_backend/pkg/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "registry-secret"

func signStaffToken(t *testing.T, role string) string {
	t.Helper()
	claims := utils.StaffClaims{
		UserID: 3,
		Email:  "officer@caa.example",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestEngine(t *testing.T, secret string) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: secret}}
	engine := gin.New()
	Setup(engine, db, cfg, nil)
	return engine, mock
}

func do(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSetup_OperationalRoutes(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	w := do(engine, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = do(engine, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetup_OptionsByCategory(t *testing.T) {
	engine, mock := newTestEngine(t, "")
	now := time.Now()

	mock.ExpectQuery(`FROM system_options\s+WHERE category = \$1`).
		WithArgs("gender").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "category", "key", "value", "label", "is_active", "sort_order", "metadata", "created_at", "updated_at",
		}).AddRow(1, "gender", nil, "female", "Female", true, 1, nil, now, now))

	w := do(engine, http.MethodGet, "/api/options/gender")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"category":"gender","data":[{"value":"female","label":"Female","key":null}]}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetup_StaffRoutesRequireTokenWhenSecretSet(t *testing.T) {
	engine, mock := newTestEngine(t, testSecret)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/options"},
		{http.MethodDelete, "/api/options/1"},
		{http.MethodPatch, "/api/applications/1/status"},
		{http.MethodGet, "/api/organizations"},
		{http.MethodPost, "/api/organizations"},
		{http.MethodGet, "/api/organizations/1"},
		{http.MethodPut, "/api/organizations/1"},
		{http.MethodGet, "/api/organizations/1/users"},
		{http.MethodPost, "/api/organizations/1/archive"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/1"},
		{http.MethodPut, "/api/users/1"},
		{http.MethodPost, "/api/users/1/archive"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := do(engine, rt.method, rt.path)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetup_RegistryArchiveNeedsManager(t *testing.T) {
	engine, mock := newTestEngine(t, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/users/1/archive", nil)
	req.Header.Set("Authorization", "Bearer "+signStaffToken(t, middleware.RoleOfficer))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetup_UserRegistrationStaysPublic(t *testing.T) {
	engine, mock := newTestEngine(t, testSecret)

	// reaches the handler, which rejects the empty body
	w := do(engine, http.MethodPost, "/api/users")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetup_StaffRoutesOpenWithoutSecret(t *testing.T) {
	engine, mock := newTestEngine(t, "")

	// reaches the handler, which rejects the empty body
	w := do(engine, http.MethodPost, "/api/options")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
