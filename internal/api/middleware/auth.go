package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-hr-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates JWT tokens and sets member context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Printf("❌ [Auth] Missing Authorization header - Path: %s", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Printf("❌ [Auth] Invalid header format - Path: %s", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := parts[1]

		token, err := authService.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			log.Printf("❌ [Auth] Invalid token - Path: %s, Error: %v", c.Request.URL.Path, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		memberID, err := authService.GetMemberIDFromToken(token)
		if err != nil {
			log.Printf("❌ [Auth] Failed to extract memberID - Path: %s, Error: %v", c.Request.URL.Path, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set("memberID", memberID)
		c.Next()
	}
}

// RequirePermission gates a route on a role permission key. Runs after
// AuthMiddleware; the permission lookup hits the role tables, not the JWT.
func RequirePermission(roleService service.RoleService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := RequireMemberID(c)
		if !ok {
			c.Abort()
			return
		}

		has, err := roleService.HasPermission(c.Request.Context(), memberID, permission)
		if err != nil {
			log.Printf("❌ [Auth] Permission check failed - Member: %s, Permission: %s, Error: %v", memberID, permission, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission check failed"})
			c.Abort()
			return
		}
		if !has {
			log.Printf("⚠️ [Auth] Permission denied - Member: %s, Permission: %s, Path: %s", memberID, permission, c.Request.URL.Path)
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequestLogger logs all incoming requests with details
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		statusEmoji := "✅"
		if status >= 400 && status < 500 {
			statusEmoji = "⚠️"
		} else if status >= 500 {
			statusEmoji = "❌"
		}

		log.Printf("%s [%s] %s %d - %v", statusEmoji, method, path, status, duration)

		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				log.Printf("❌ [Error] %v", e.Err)
			}
		}
	}
}

// GetMemberID extracts member ID from gin context
func GetMemberID(c *gin.Context) string {
	memberID, exists := c.Get("memberID")
	if !exists {
		return ""
	}
	return memberID.(string)
}

// RequireMemberID returns error if member ID is not in context
func RequireMemberID(c *gin.Context) (string, bool) {
	memberID := GetMemberID(c)
	if memberID == "" {
		log.Printf("❌ [Auth] Member not authenticated - Path: %s", c.Request.URL.Path)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Member not authenticated"})
		return "", false
	}
	return memberID, true
}
