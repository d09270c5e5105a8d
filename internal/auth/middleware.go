package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/entities"
)

// Context keys for authenticated request data.
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyEmail  = "auth_email"
	ContextKeyRole   = "auth_role"
)

// unauthorized matches the backend envelope: failure is an absent data
// field plus a message.
func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
}

// Middleware authenticates requests carrying "Authorization: Bearer".
func Middleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "authentication required")
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			unauthorized(c, "malformed authorization header")
			return
		}

		claims, err := service.ParseToken(tokenString)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates mutating admin endpoints on the ADMIN role. It must
// run after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != entities.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "admin role required"})
			return
		}
		c.Next()
	}
}

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	if id, ok := c.Get(ContextKeyUserID); ok {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetRole extracts the authenticated user's role from the Gin context.
func GetRole(c *gin.Context) entities.UserRole {
	if role, ok := c.Get(ContextKeyRole); ok {
		if r, ok := role.(entities.UserRole); ok {
			return r
		}
	}
	return ""
}
