package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	commonauth "reno_server/server/common/auth"
	"reno_server/server/common/transport/httpresp"
)

const (
	ctxUserID = "auth_user_id"
	ctxEmail  = "auth_email"
)

type tokenVerifier interface {
	Verify(token string) *commonauth.Claims
}

// AuthRequired extracts the Bearer token from the Authorization header
// (header lookup is case-insensitive) and attaches the principal to the
// request context. Failures are single-shot 401s, never retried.
func AuthRequired(verifier tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrNoToken))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		claims := verifier.Verify(token)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpresp.Unauthorized(httpresp.ErrInvalidToken))
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

// Principal returns the authenticated identity set by AuthRequired.
func Principal(c *gin.Context) (userID, email string, ok bool) {
	rawID, okID := c.Get(ctxUserID)
	rawEmail, okEmail := c.Get(ctxEmail)
	if !okID || !okEmail {
		return "", "", false
	}
	userID, okID = rawID.(string)
	email, okEmail = rawEmail.(string)
	if !okID || !okEmail || userID == "" {
		return "", "", false
	}
	return userID, email, true
}
