package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/emre/learnhub/internal/app/models"
	"github.com/emre/learnhub/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService(exp time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: exp,
		TokenIssuer:    "learnhub.test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role models.RoleType) string {
	t.Helper()
	token, _, err := svc.GenerateToken(&models.User{
		ID:    42,
		Email: "gopher@learnhub.app",
		Role:  role,
	})
	require.NoError(t, err)
	return token
}

func newTestRouter(jwtService *auth.JWTService, requiredRole models.RoleType) *gin.Engine {
	m := NewAuthMiddleware(jwtService)

	router := gin.New()
	group := router.Group("/protected")
	group.Use(m.JWTAuth())
	group.GET("", func(c *gin.Context) {
		userID, role, ok := CallerIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userID": userID, "role": string(role)})
	})

	roleGated := group.Group("/gated")
	roleGated.Use(m.RoleRequired(requiredRole))
	roleGated.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	router := newTestRouter(newTestJWTService(time.Hour), models.RoleInstructor)

	w := doRequest(router, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_004")
}

func TestJWTAuth_MalformedToken(t *testing.T) {
	router := newTestRouter(newTestJWTService(time.Hour), models.RoleInstructor)

	w := doRequest(router, "/protected", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_002")
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	jwtService := newTestJWTService(-time.Minute)
	token := issueToken(t, jwtService, models.RoleStudent)
	router := newTestRouter(jwtService, models.RoleInstructor)

	w := doRequest(router, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_003")
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := newTestJWTService(time.Hour)
	token := issueToken(t, jwtService, models.RoleStudent)
	router := newTestRouter(jwtService, models.RoleInstructor)

	w := doRequest(router, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":42`)
	assert.Contains(t, w.Body.String(), `"role":"student"`)
}

func TestJWTAuth_UnprefixedHeader(t *testing.T) {
	jwtService := newTestJWTService(time.Hour)
	token := issueToken(t, jwtService, models.RoleStudent)
	router := newTestRouter(jwtService, models.RoleInstructor)

	// A valid token without an accepted scheme prefix is a malformed header
	w := doRequest(router, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_004")
}

func TestJWTAuth_LegacyPrefix(t *testing.T) {
	jwtService := newTestJWTService(time.Hour)
	token := issueToken(t, jwtService, models.RoleStudent)
	router := newTestRouter(jwtService, models.RoleInstructor)

	w := doRequest(router, "/protected", "JWT "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleRequired(t *testing.T) {
	jwtService := newTestJWTService(time.Hour)
	router := newTestRouter(jwtService, models.RoleInstructor)

	studentToken := issueToken(t, jwtService, models.RoleStudent)
	w := doRequest(router, "/protected/gated", "Bearer "+studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005")

	instructorToken := issueToken(t, jwtService, models.RoleInstructor)
	w = doRequest(router, "/protected/gated", "Bearer "+instructorToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
