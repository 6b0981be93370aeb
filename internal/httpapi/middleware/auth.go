package middleware

import (
	"net/http"
	"strings"

	"yamdb/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

// Authenticate is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a JWT token in the Authorization header.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, authService)
		if !ok {
			return
		}
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// AuthenticateOptional resolves the caller's identity when a token is
// supplied but lets anonymous requests through. A malformed or expired
// token is still rejected rather than silently downgraded to anonymous.
func AuthenticateOptional(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, authService)
		if !ok {
			return
		}
		if claims != nil {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// parseBearer extracts and validates the bearer token. A nil claims
// result with ok=true means no Authorization header was sent.
func parseBearer(c *gin.Context, authService service.AuthService) (*service.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, true
	}

	// format: "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		c.Abort()
		return nil, false
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return nil, false
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims *service.Claims) {
	c.Set("claims", claims)
	c.Set("userID", claims.UserID)
	c.Set("username", claims.Username)
	c.Set("role", claims.Role)
}
