package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/marketbay/storefront-api/controllers/cart"
	userControllers "github.com/marketbay/storefront-api/controllers/user"
	"github.com/marketbay/storefront-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, s Stores) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetUser(s.Users))    // GET /user/
		userGroup.PUT("/", userControllers.UpdateUser(s.Users)) // PUT /user/

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetCart(s.Carts))                        // GET /user/cart
			cartGroup.POST("/", cartControllers.UpsertItem(s.Carts))                    // POST /user/cart
			cartGroup.PUT("/", cartControllers.ReplaceCart(s.Carts))                    // PUT /user/cart
			cartGroup.PUT("/:product_id", cartControllers.SetItemQuantity(s.Carts))     // PUT /user/cart/:product_id
			cartGroup.DELETE("/:product_id", cartControllers.DeleteItem(s.Carts))       // DELETE /user/cart/:product_id
			cartGroup.DELETE("/", cartControllers.ClearCart(s.Carts))                   // DELETE /user/cart
		}
	}
}
