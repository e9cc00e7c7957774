package routes

import (
	"github.com/gin-gonic/gin"

	contactControllers "github.com/marketbay/storefront-api/controllers/contact"
)

// SetupContactRoutes registers the public contact-form endpoint.
func SetupContactRoutes(r *gin.Engine, s Stores) {
	r.POST("/contact", contactControllers.SubmitContact(s.Contacts))
}
