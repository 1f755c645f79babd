package middleware

import (
	"net/http"
	"strings"

	"hotelbot/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware admits bearer tokens signed with JWT_SECRET and carrying the admin role.
func JWTAuthAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, role, err := utils.ExtractClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if role != utils.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized admin access"})
			return
		}

		c.Set("adminID", subject)
		c.Set("isAdmin", true)
		c.Next()
	}
}
