package handlers

import (
	"errors"
	"net/http"

	"storefront-backend/cart"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
)

// CartHandler exposes the guest cart. The guest id in the path is a bearer
// capability generated client-side; no authentication backs it.
type CartHandler struct {
	Cart *cart.Service
	// WhatsAppPhone is the store's number for checkout handoff links,
	// digits only with country code.
	WhatsAppPhone string
}

func (h *CartHandler) GetCart(c *gin.Context) {
	guestID := c.Param("guestId")

	view, err := h.Cart.GetCart(c.Request.Context(), guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cart"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	guestID := c.Param("guestId")

	var req struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	item, err := h.Cart.AddToCart(c.Request.Context(), guestID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, cart.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
		}
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	guestID := c.Param("guestId")
	productID := c.Param("productId")

	if err := h.Cart.RemoveFromCart(c.Request.Context(), guestID, productID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item from cart"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	guestID := c.Param("guestId")

	if err := h.Cart.ClearCart(c.Request.Context(), guestID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.Status(http.StatusNoContent)
}

// WhatsAppCheckout renders the current cart as an order message plus a wa.me
// deep link the frontend can open directly.
func (h *CartHandler) WhatsAppCheckout(c *gin.Context) {
	guestID := c.Param("guestId")

	view, err := h.Cart.GetCart(c.Request.Context(), guestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": cart.WhatsAppMessage(view),
		"link":    cart.WhatsAppLink(h.WhatsAppPhone, view),
	})
}
