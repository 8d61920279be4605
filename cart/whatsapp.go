package cart

import (
	"fmt"
	"net/url"
	"strings"

	"storefront-backend/models"
)

// WhatsAppMessage formats the cart view as a human-readable order summary.
// Lines are priced at the locked add-time price, the same numbers the view's
// totals are built from.
func WhatsAppMessage(cart *models.Cart) string {
	var b strings.Builder
	b.WriteString("Hi! I'd like to place an order:\n\n")

	for i, line := range cart.Items {
		fmt.Fprintf(&b, "%d. %s", i+1, line.Title)
		if line.Brand != "" {
			fmt.Fprintf(&b, " (%s)", line.Brand)
		}
		fmt.Fprintf(&b, " x%d - $%.2f\n", line.Quantity, line.Subtotal)
	}

	fmt.Fprintf(&b, "\nTotal (%d items): $%.2f", cart.TotalItems, cart.TotalAmount)
	return b.String()
}

// WhatsAppLink builds a wa.me deep link that opens a chat with the store
// prefilled with the order summary. phone is digits only, with country code.
func WhatsAppLink(phone string, cart *models.Cart) string {
	text := url.QueryEscape(WhatsAppMessage(cart))
	if phone == "" {
		return "https://wa.me/?text=" + text
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", phone, text)
}
