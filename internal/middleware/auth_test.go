package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"job-board-api/internal/auth"
	"job-board-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthMiddleware_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware())
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	token, err := auth.GenerateToken("user-1", "alice", models.RoleCandidate)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware())
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(), RequireRole(models.RoleRecruiter))
	r.GET("/recruiter-only", func(c *gin.Context) { c.Status(http.StatusOK) })

	recruiterToken, err := auth.GenerateToken("r-1", "rina", models.RoleRecruiter)
	require.NoError(t, err)
	candidateToken, err := auth.GenerateToken("c-1", "candra", models.RoleCandidate)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/recruiter-only", nil)
	req.Header.Set("Authorization", "Bearer "+recruiterToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/recruiter-only", nil)
	req.Header.Set("Authorization", "Bearer "+candidateToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
