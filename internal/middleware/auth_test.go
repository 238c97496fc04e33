package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurawell/aurawell-api/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestRouter() (*gin.Engine, *uuid.UUID, *string) {
	gin.SetMode(gin.TestMode)
	var gotID uuid.UUID
	var gotRole string
	r := gin.New()
	r.GET("/me", AuthRequired(testSecret), func(c *gin.Context) {
		gotID = GetUserID(c)
		gotRole = GetUserRole(c)
		c.Status(http.StatusOK)
	})
	r.GET("/admin", AuthRequired(testSecret), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, &gotID, &gotRole
}

func TestAuthRequired_SetsIdentityFromToken(t *testing.T) {
	r, gotID, gotRole := newTestRouter()
	userID := uuid.New()
	token := signToken(t, testSecret, userID.String(), model.RoleCustomer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, *gotID)
	assert.Equal(t, model.RoleCustomer, *gotRole)
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	r, _, _ := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_MalformedHeader(t *testing.T) {
	r, _, _ := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_BadSignature(t *testing.T) {
	r, _, _ := newTestRouter()
	token := signToken(t, "other-secret", uuid.New().String(), model.RoleCustomer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_NonUUIDSubject(t *testing.T) {
	r, _, _ := newTestRouter()
	token := signToken(t, testSecret, "not-a-uuid", model.RoleCustomer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	r, _, _ := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, uuid.New().String(), model.RoleCustomer))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, uuid.New().String(), model.RoleAdmin))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
