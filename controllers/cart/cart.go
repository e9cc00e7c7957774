package cartControllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketbay/storefront-api/models"
	"github.com/marketbay/storefront-api/store"
)

const storeTimeout = 5 * time.Second

type CartItemInput struct {
	ProductID uint    `json:"productId" binding:"required"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

type ReplaceCartInput struct {
	Items []CartItemInput `json:"items" binding:"required"`
}

type SetQuantityInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

// identity pulls the authenticated caller out of the gin context.
func identity(c *gin.Context) (uint, string, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, "", false
	}
	email, _ := c.Get("user_email")
	emailStr, _ := email.(string)
	return userIDVal.(uint), emailStr, true
}

// respondWithSnapshot returns the full authoritative cart. Every mutation
// ends here so one round trip is enough for the client to resynchronize.
func respondWithSnapshot(ctx context.Context, c *gin.Context, carts *store.CartStore, userID uint) {
	lines, err := carts.ListByUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}
	if lines == nil {
		lines = []models.CartLine{} // never serialize null
	}
	c.JSON(http.StatusOK, gin.H{"items": lines})
}

// GET /user/cart
func GetCart(carts *store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, ok := identity(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()
		respondWithSnapshot(ctx, c, carts, userID)
	}
}

// POST /user/cart
//
// Insert-or-increment: quantity is additive against any existing line,
// title/price/image are last-writer-wins. Omitted or non-positive quantity
// defaults to 1.
func UpsertItem(carts *store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, email, ok := identity(c)
		if !ok {
			return
		}

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()

		_, err := carts.Upsert(ctx, userID, email, store.CartItem{
			ProductID: input.ProductID,
			Title:     input.Title,
			Price:     input.Price,
			Image:     input.Image,
			Quantity:  input.Quantity,
		})
		if err != nil {
			if errors.Is(err, store.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		respondWithSnapshot(ctx, c, carts, userID)
	}
}

// PUT /user/cart
//
// Full replace: the supplied set becomes the cart, atomically.
func ReplaceCart(carts *store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, email, ok := identity(c)
		if !ok {
			return
		}

		var input ReplaceCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		items := make([]store.CartItem, 0, len(input.Items))
		for _, it := range input.Items {
			items = append(items, store.CartItem{
				ProductID: it.ProductID,
				Title:     it.Title,
				Price:     it.Price,
				Image:     it.Image,
				Quantity:  it.Quantity,
			})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()

		if err := carts.ReplaceAll(ctx, userID, email, items); err != nil {
			if errors.Is(err, store.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		respondWithSnapshot(ctx, c, carts, userID)
	}
}

// PUT /user/cart/:product_id
//
// Absolute quantity set. Rejects non-positive quantities before any store
// call; 404 when the user has no line for the product.
func SetItemQuantity(carts *store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, ok := identity(c)
		if !ok {
			return
		}

		productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
		if err != nil || productID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}

		var input SetQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil || input.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be a positive integer"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()

		changed, err := carts.SetQuantity(ctx, userID, uint(productID), input.Quantity)
		if err != nil {
			if errors.Is(err, store.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be a positive integer"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		if !changed {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		respondWithSnapshot(ctx, c, carts, userID)
	}
}

// DELETE /user/cart/:product_id
func DeleteItem(carts *store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, ok := identity(c)
		if !ok {
			return
		}

		productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
		if err != nil || productID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()

		removed, err := carts.RemoveLine(ctx, userID, uint(productID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		respondWithSnapshot(ctx, c, carts, userID)
	}
}

// DELETE /user/cart
//
// Clearing an already-empty cart is still a success.
func ClearCart(carts *store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, ok := identity(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()

		if _, err := carts.Clear(ctx, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		respondWithSnapshot(ctx, c, carts, userID)
	}
}
