package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/marketbay/storefront-api/auth"
	"github.com/marketbay/storefront-api/middleware"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, s Stores) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register(s.Users))
		authGroup.POST("/login", auth.Login(s.Users, s.Tokens))
		authGroup.POST("/refresh", auth.Refresh(s.Users, s.Tokens))

		// Logout revokes the caller's refresh tokens, so it needs identity.
		authGroup.POST("/logout", middleware.ValidateToken, auth.Logout(s.Tokens))
	}
}
