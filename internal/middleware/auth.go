package middleware

import (
	"net/http"
	"strings"

	"device-checkout/internal/config"
	domainUser "device-checkout/internal/domain/user"
	"device-checkout/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the caller identity from the bearer token and
// places it in the request context. The account behind the token is looked
// up on every request, so a deleted or deactivated account is rejected even
// while its token is still unexpired. Everything past this point treats the
// user id as an opaque, already-authenticated value.
func AuthMiddleware(cfg *config.Config, users domainUser.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWT.Secret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Account no longer valid")
			c.Abort()
			return
		}
		if !user.IsActive {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Account is inactive")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)

		c.Next()
	}
}
