package contactControllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketbay/storefront-api/store"
)

const storeTimeout = 5 * time.Second

type ContactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// POST /contact
func SubmitContact(contacts *store.ContactStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ContactInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()

		msg, err := contacts.Create(ctx, input.Name, input.Email, input.Message)
		if err != nil {
			if errors.Is(err, store.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}
