package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"storefront-backend/logger"
	"storefront-backend/models"
)

var (
	// ErrProductNotFound is returned by AddToCart when the product id does not
	// resolve in the catalog.
	ErrProductNotFound = errors.New("cart: product not found")
	// ErrItemNotFound is returned by RemoveFromCart when the guest has no
	// active line for the product.
	ErrItemNotFound = errors.New("cart: item not found")
	// ErrInvalidQuantity is returned by AddToCart for quantities below 1.
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
)

// ProductLookup resolves catalog products referenced by cart lines. The cart
// never writes to the catalog.
type ProductLookup interface {
	// ByID returns the product, or nil when it does not exist.
	ByID(ctx context.Context, id string) (*models.Product, error)
	// ByIDs resolves a batch of ids; missing ids are simply absent from the map.
	ByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
}

// Service owns the cart-item lifecycle for guest identifiers and materializes
// the priced, product-enriched cart view. A guest identifier is a bearer
// capability supplied by the client; no account backs it.
type Service struct {
	store   Store
	catalog ProductLookup
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(store Store, catalog ProductLookup) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		log:     logger.Log.With().Str("component", "cart").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetCart returns the materialized view of the guest's active items: lines
// sorted most-recently-added first, enriched with catalog display fields, and
// totaled at the price each line was added at. An empty cart is a valid
// result, including when the store's composite index is missing.
func (s *Service) GetCart(ctx context.Context, guestID string) (*models.Cart, error) {
	items, err := s.store.ActiveItems(ctx, guestID)
	if err != nil {
		if errors.Is(err, ErrIndexRequired) {
			// An index provisioning gap must not surface as a 500 on the
			// read path; serve an empty cart instead.
			s.log.Warn().Err(err).Str("guest_id", guestID).Msg("cart query needs a missing index, returning empty cart")
			return s.emptyCart(guestID), nil
		}
		s.log.Error().Err(err).Str("guest_id", guestID).Msg("failed to query cart items")
		return nil, fmt.Errorf("retrieve cart: %w", err)
	}

	if len(items) == 0 {
		return s.emptyCart(guestID), nil
	}

	// Sort here rather than in the store query: composite store-side ordering
	// needs an index that is not guaranteed to exist.
	sort.Slice(items, func(i, j int) bool {
		return items[i].AddedAt.After(items[j].AddedAt)
	})

	products, err := s.catalog.ByIDs(ctx, distinctProductIDs(items))
	if err != nil {
		s.log.Error().Err(err).Str("guest_id", guestID).Msg("failed to resolve cart products")
		return nil, fmt.Errorf("retrieve cart: %w", err)
	}

	lines := make([]models.CartLine, 0, len(items))
	var total float64
	var count int
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			// The product was removed from the catalog after this line was
			// added. Drop the line from the view; the stored document stays.
			s.log.Warn().
				Str("guest_id", guestID).
				Str("product_id", item.ProductID).
				Str("item_id", item.ID).
				Msg("cart line references a product no longer in the catalog")
			continue
		}

		subtotal := item.Price * float64(item.Quantity)
		lines = append(lines, models.CartLine{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			Title:       product.Title,
			Description: product.Description,
			Image:       product.PrimaryImageURL(),
			Brand:       product.Brand,
			Quantity:    item.Quantity,
			Price:       product.Price,
			PriceAtTime: item.Price,
			Subtotal:    round2(subtotal),
			AddedAt:     item.AddedAt,
		})
		total += subtotal
		count += item.Quantity
	}

	return &models.Cart{
		GuestID:     guestID,
		Items:       lines,
		TotalAmount: round2(total),
		TotalItems:  count,
		UpdatedAt:   s.now(),
	}, nil
}

// AddToCart adds quantity units of a product to the guest's cart, locking the
// product's current price into the line. When an active line for the pair
// already exists it is deactivated and replaced by a fresh document carrying
// the summed quantity and the original line's addedAt, so the line keeps its
// position in the view. The retired document id is never reused.
//
// Two concurrent adds for the same pair can both miss the existing line and
// leave two active documents; nothing serializes the read-then-write sequence.
func (s *Service) AddToCart(ctx context.Context, guestID, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.ByID(ctx, productID)
	if err != nil {
		s.log.Error().Err(err).Str("guest_id", guestID).Str("product_id", productID).Msg("product lookup failed")
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	existing, err := s.store.ActiveItem(ctx, guestID, productID)
	if err != nil {
		s.log.Error().Err(err).Str("guest_id", guestID).Str("product_id", productID).Msg("failed to query existing cart item")
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	now := s.now()
	item := &models.CartItem{
		GuestID:   guestID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     product.Price,
		AddedAt:   now,
		UpdatedAt: now,
		Active:    true,
	}

	if existing != nil {
		if err := s.store.Deactivate(ctx, existing.ID, now); err != nil {
			s.log.Error().Err(err).Str("guest_id", guestID).Str("item_id", existing.ID).Msg("failed to retire cart item")
			return nil, fmt.Errorf("add to cart: %w", err)
		}
		item.Quantity = existing.Quantity + quantity
		item.AddedAt = existing.AddedAt
	}

	if err := s.store.Create(ctx, item); err != nil {
		s.log.Error().Err(err).Str("guest_id", guestID).Str("product_id", productID).Msg("failed to create cart item")
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	return item, nil
}

// RemoveFromCart deactivates the guest's active line for the product. The
// document is kept; only its active flag drops.
func (s *Service) RemoveFromCart(ctx context.Context, guestID, productID string) error {
	existing, err := s.store.ActiveItem(ctx, guestID, productID)
	if err != nil {
		s.log.Error().Err(err).Str("guest_id", guestID).Str("product_id", productID).Msg("failed to query cart item for removal")
		return fmt.Errorf("remove from cart: %w", err)
	}
	if existing == nil {
		return ErrItemNotFound
	}

	if err := s.store.Deactivate(ctx, existing.ID, s.now()); err != nil {
		s.log.Error().Err(err).Str("guest_id", guestID).Str("item_id", existing.ID).Msg("failed to deactivate cart item")
		return fmt.Errorf("remove from cart: %w", err)
	}

	return nil
}

// ClearCart deactivates every active line for the guest in one atomic batch.
// Clearing an empty cart is a no-op success.
func (s *Service) ClearCart(ctx context.Context, guestID string) error {
	items, err := s.store.ActiveItems(ctx, guestID)
	if err != nil {
		s.log.Error().Err(err).Str("guest_id", guestID).Msg("failed to query cart items for clear")
		return fmt.Errorf("clear cart: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	if err := s.store.DeactivateAll(ctx, ids, s.now()); err != nil {
		s.log.Error().Err(err).Str("guest_id", guestID).Int("items", len(ids)).Msg("failed to clear cart")
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

func (s *Service) emptyCart(guestID string) *models.Cart {
	return &models.Cart{
		GuestID:     guestID,
		Items:       []models.CartLine{},
		TotalAmount: 0,
		TotalItems:  0,
		UpdatedAt:   s.now(),
	}
}

func distinctProductIDs(items []models.CartItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
