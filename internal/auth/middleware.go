package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxClaimsKey is where AuthMiddleware stores the verified *Claims.
const CtxClaimsKey = "auth_claims"

// AuthMiddleware verifies the bearer token and checks it against the
// user's current token_version, so logout and password changes cut off
// tokens issued before them. The token also dies with its user: a
// deleted account fails the lookup even when the signature is valid.
func AuthMiddleware(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		if repo != nil {
			u, err := repo.GetByID(c.Request.Context(), claims.UserID)
			if err != nil || u == nil {
				abortUnauthorized(c, "invalid token")
				return
			}
			if u.TokenVersion != claims.TokenVersion {
				abortUnauthorized(c, "token revoked")
				return
			}
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// bearerToken extracts the credential from an Authorization header,
// accepting any casing of the "Bearer" scheme.
func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// MustGetClaims returns the claims installed by AuthMiddleware, or nil
// when the request skipped it.
func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
