package middleware

import (
	"net/http"
	"strings"

	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

const userKey = "currentUser"

// Identify resolves the Authorization header into a user and stores it in
// the request context. Requests without a header pass through anonymous;
// a presented token that fails validation aborts with 401.
func Identify(authService service.AuthService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		userID, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Identify, or nil for
// anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(userKey)
	if !exists {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous requests with 401 and authenticated
// non-admins with 403. Superusers count as admins whatever their role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin permission required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
