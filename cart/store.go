package cart

import (
	"context"
	"errors"
	"time"

	"storefront-backend/models"
)

// Store persists cart line items. Implementations give single-document
// atomicity only; multi-step sequences in the service are not serialized.
type Store interface {
	// ActiveItems returns every active item for the guest, in no particular order.
	ActiveItems(ctx context.Context, guestID string) ([]models.CartItem, error)
	// ActiveItem returns the active item for (guestID, productID), or nil when none exists.
	ActiveItem(ctx context.Context, guestID, productID string) (*models.CartItem, error)
	// Create writes a new document and fills in item.ID.
	Create(ctx context.Context, item *models.CartItem) error
	// Deactivate soft-deletes a single document.
	Deactivate(ctx context.Context, itemID string, at time.Time) error
	// DeactivateAll soft-deletes the given documents in one atomic batch.
	DeactivateAll(ctx context.Context, itemIDs []string, at time.Time) error
}

// ErrIndexRequired is returned by Store queries that the backing store rejects
// because a composite index has not been provisioned. GetCart treats it as an
// empty result rather than failing the read path.
var ErrIndexRequired = errors.New("cart: store query requires a missing index")
