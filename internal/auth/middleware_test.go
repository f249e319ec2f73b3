package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"cuisinehub/pkg/database"
)

func newGuardedRouter(t *testing.T) (*gin.Engine, *Repo, TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	repo := NewRepo(db)
	ts := testTokenService()

	r := gin.New()
	r.GET("/whoami", AuthMiddleware(ts, repo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": MustGetClaims(c).UserID})
	})
	return r, repo, ts
}

func doWhoami(r *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r, repo, ts := newGuardedRouter(t)

	u := User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(context.Background(), u))

	token, _, err := ts.Sign(&u)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, doWhoami(r, "Bearer "+token).Code)
	// scheme casing is not significant
	require.Equal(t, http.StatusOK, doWhoami(r, "bearer "+token).Code)
}

func TestAuthMiddlewareRejectsBadHeaders(t *testing.T) {
	r, _, _ := newGuardedRouter(t)

	for _, header := range []string{"", "Token abc", "Bearer", "Bearer   "} {
		require.Equal(t, http.StatusUnauthorized, doWhoami(r, header).Code, "header: %q", header)
	}
}

func TestAuthMiddlewareRejectsBumpedTokenVersion(t *testing.T) {
	r, repo, ts := newGuardedRouter(t)
	ctx := context.Background()

	u := User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(ctx, u))

	token, _, err := ts.Sign(&u)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, doWhoami(r, "Bearer "+token).Code)

	// logout bumps the version; the old token is dead
	require.NoError(t, repo.BumpTokenVersion(ctx, "u1"))
	require.Equal(t, http.StatusUnauthorized, doWhoami(r, "Bearer "+token).Code)
}

func TestAuthMiddlewareRejectsUnknownUser(t *testing.T) {
	r, _, ts := newGuardedRouter(t)

	token, _, err := ts.Sign(&User{ID: "ghost", Username: "ghost"})
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, doWhoami(r, "Bearer "+token).Code)
}
