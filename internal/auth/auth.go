package auth

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"tokenhub/internal/db"
	"tokenhub/internal/model"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key carrying the acting user's id.
const ContextUserID = "id"

// ContextToken is the gin context key carrying the authenticated token.
const ContextToken = "token"

// AdminAuthMiddleware guards the management API with basic auth. The acting
// user is taken from the X-User-Id header so records stay scoped per user;
// it defaults to 1 for single-tenant deployments.
func AdminAuthMiddleware(adminPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, password, hasAuth := c.Request.BasicAuth()
		if !hasAuth || user != "admin" || password != adminPassword {
			c.Header("WWW-Authenticate", `Basic realm="Restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}
		userID := 1
		if raw := c.GetHeader("X-User-Id"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				userID = parsed
			}
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// BearerKey extracts the token key from an Authorization header, accepting
// the conventional "sk-" prefix.
func BearerKey(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimPrefix(parts[1], "sk-"), true
}

// TokenAuthMiddleware authenticates data-plane requests with a token key.
// A deferred-expiration token gets its first-use timestamp recorded here,
// which fixes its absolute expiration server-side.
func TokenAuthMiddleware(dbService db.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := BearerKey(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "token key is required"})
			return
		}

		token, err := dbService.GetTokenByKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token key"})
			return
		}
		if token.Status != model.StatusEnabled {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "token is not enabled"})
			return
		}
		now := time.Now().Unix()
		if token.StartOnFirstUse && token.FirstUsedTime == 0 {
			if err := dbService.TouchFirstUse(token.ID, now); err == nil {
				if refreshed, err := dbService.GetTokenByKey(key); err == nil {
					token = refreshed
				}
			}
		}
		if token.ExpiredTime != model.ExpiryNever && token.ExpiredTime <= now {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "token has expired"})
			return
		}
		if !token.UnlimitedQuota && token.RemainQuota <= 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "token quota exhausted"})
			return
		}

		c.Set(ContextToken, token)
		c.Set(ContextUserID, token.UserID)
		c.Next()
	}
}
