package security

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nexus-migrator/pkg/response"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	jwtManager *JWTManager
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtManager *JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// RequireAuth creates a middleware that requires authentication
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, response.UnauthorizedResponse(
				"Authorization header is required",
				am.getCorrelationID(c),
			))
			c.Abort()
			return
		}

		token, err := am.jwtManager.ExtractTokenFromHeader(authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.UnauthorizedResponse(
				err.Error(),
				am.getCorrelationID(c),
			))
			c.Abort()
			return
		}

		claims, err := am.jwtManager.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.UnauthorizedResponse(
				"Invalid or expired token",
				am.getCorrelationID(c),
			))
			c.Abort()
			return
		}

		// Store claims in context
		c.Set("user_claims", claims)
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)

		c.Next()
	}
}

// RequireRole creates a middleware that requires authentication plus a role.
// Install runs are destructive enough to gate behind an operator role.
func (am *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	requireAuth := am.RequireAuth()
	return func(c *gin.Context) {
		requireAuth(c)
		if c.IsAborted() {
			return
		}

		claims, _ := c.Get("user_claims")
		userClaims, ok := claims.(*Claims)
		if !ok || !userClaims.HasRole(role) {
			c.JSON(http.StatusForbidden, response.ErrorResponse(
				"FORBIDDEN",
				"Insufficient permissions",
				"",
				am.getCorrelationID(c),
			))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (am *AuthMiddleware) getCorrelationID(c *gin.Context) string {
	if correlationID, exists := c.Get("correlation_id"); exists {
		if id, ok := correlationID.(string); ok {
			return id
		}
	}
	return ""
}
