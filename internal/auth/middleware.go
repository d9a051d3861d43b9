package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RoleScanner is the role claim carried by scanner device tokens.
const RoleScanner = "scanner"

// ScannerAuth enforces bearer JWT tokens signed with HS256 and issued to
// scanner devices.
func ScannerAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.Role != RoleScanner {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "scanner role required"})
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}
