package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/marketbay/storefront-api/store"
)

// Stores bundles every persistence handle the handlers need. Acquired once in
// main and passed down explicitly; no package-level state.
type Stores struct {
	Users    *store.UserStore
	Carts    *store.CartStore
	Contacts *store.ContactStore
	Tokens   *store.RefreshTokenStore
}

// SetupRoutes is the single entry-point that wires up Auth, User and Contact
// route groups.
func SetupRoutes(r *gin.Engine, s Stores) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, s)

	// User routes (JWT-protected): profile + shopping cart
	SetupUserRoutes(r, s)

	// Public contact form
	SetupContactRoutes(r, s)
}
