package handler

import (
	"net/http"

	"yamdb/internal/httpapi/middleware"
	"yamdb/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Category *CategoryHandler
	Genre    *GenreHandler
	Title    *TitleHandler
	Review   *ReviewHandler
	Comment  *CommentHandler
}

// SetupRouter wires all endpoint groups under /v1. Write endpoints on
// public resources run the optional authenticator so a valid token
// upgrades the subject while anonymous requests still reach the
// permission check (and get a 401 there instead of at the transport).
func SetupRouter(r *gin.Engine, h Handlers, authService service.AuthService, authLimiter *middleware.RateLimiter) {
	authRequired := middleware.Authenticate(authService)
	authOptional := middleware.AuthenticateOptional(authService)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	authGroup := v1.Group("/auth", authLimiter.Middleware())
	h.Auth.RegisterRoutes(authGroup)

	h.User.RegisterRoutes(v1.Group("/users", authRequired))
	h.Category.RegisterRoutes(v1.Group("/categories"), authOptional)
	h.Genre.RegisterRoutes(v1.Group("/genres"), authOptional)
	h.Title.RegisterRoutes(v1.Group("/titles"), authOptional)
	h.Review.RegisterRoutes(v1.Group("/titles/:title_id/reviews"), authRequired)
	h.Comment.RegisterRoutes(v1.Group("/titles/:title_id/reviews/:review_id/comments"), authRequired)
}
