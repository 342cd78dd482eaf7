package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingpost/pingpost-backend/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("CONFIG_PATH", "testdata/no-such-config.json")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func authTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthRequired(), func(ctx *gin.Context) {
		id, _ := ctx.Get(ContextUserIDKey)
		utils.Success(ctx, gin.H{"user_id": id})
	})
	r.GET("/open", AuthOptional(), func(ctx *gin.Context) {
		if id, ok := ctx.Get(ContextUserIDKey); ok {
			utils.Success(ctx, gin.H{"user_id": id})
			return
		}
		utils.Success(ctx, gin.H{"anonymous": true})
	})
	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	r := authTestRouter()
	w := get(r, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredBadFormat(t *testing.T) {
	r := authTestRouter()
	for _, header := range []string{"tokenonly", "Basic abc", "Bearer "} {
		w := get(r, "/protected", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	r := authTestRouter()
	w := get(r, "/protected", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredValidToken(t *testing.T) {
	r := authTestRouter()
	token, err := utils.GenerateToken(9, "carol", time.Hour)
	require.NoError(t, err)

	w := get(r, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":9`)
}

func TestAuthOptional(t *testing.T) {
	r := authTestRouter()

	w := get(r, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	// a broken token degrades to anonymous instead of rejecting
	w = get(r, "/open", "Bearer broken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")

	token, err := utils.GenerateToken(9, "carol", time.Hour)
	require.NoError(t, err)
	w = get(r, "/open", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":9`)
}
