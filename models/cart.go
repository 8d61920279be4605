package models

import "time"

// CartItem is one product line of a guest's cart, stored as a document in the
// cart_items collection. Lines are never deleted: removal and quantity merges
// deactivate the old document and (for merges) write a replacement, so every
// mutation stays visible in the collection history.
//
// For a given (guestId, productId) pair at most one document has isActive=true.
type CartItem struct {
	ID        string    `firestore:"-" json:"id"`
	GuestID   string    `firestore:"guestId" json:"guestId"`
	ProductID string    `firestore:"productId" json:"productId"`
	Quantity  int       `firestore:"quantity" json:"quantity"`
	Price     float64   `firestore:"price" json:"price"` // unit price captured at add time
	AddedAt   time.Time `firestore:"addedAt" json:"addedAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
	Active    bool      `firestore:"isActive" json:"isActive"`
	// StoredAt is assigned by the store on write, independent of the
	// domain-level AddedAt/UpdatedAt above.
	StoredAt time.Time `firestore:"storedAt,serverTimestamp" json:"-"`
}

// CartLine is a CartItem merged with a snapshot of its product's display
// fields. PriceAtTime repeats the stored unit price; Price carries the
// product's current catalog price, which may differ.
type CartLine struct {
	ItemID      string    `json:"id"`
	ProductID   string    `json:"productId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Brand       string    `json:"brand"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	PriceAtTime float64   `json:"priceAtTime"`
	Subtotal    float64   `json:"subtotal"`
	AddedAt     time.Time `json:"addedAt"`
}

// Cart is the materialized view of a guest's active items. It is recomputed on
// every read and never persisted.
type Cart struct {
	GuestID     string     `json:"guestId"`
	Items       []CartLine `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	TotalItems  int        `json:"totalItems"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
