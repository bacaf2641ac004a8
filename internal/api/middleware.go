package api

import (
	"net/http"
	"strings"

	"orders-api/internal/service"

	"github.com/gin-gonic/gin"
)

// adminAuth guards administrative routes with a bearer token carrying the
// admin role.
func (h *Handler) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := h.authService.ParseToken(token)
		if err != nil || claims.Role != service.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("adminID", claims.UserID)
		c.Next()
	}
}
