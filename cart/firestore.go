package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront-backend/models"
)

// Collection is the Firestore collection holding cart line documents.
const Collection = "cart_items"

// FirestoreStore implements Store on a Firestore collection. Documents are
// keyed by auto-generated ids; domain timestamps are set by the service while
// storedAt is assigned server-side on write.
type FirestoreStore struct {
	Client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{Client: client}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.Client.Collection(Collection)
}

func (s *FirestoreStore) ActiveItems(ctx context.Context, guestID string) ([]models.CartItem, error) {
	iter := s.col().
		Where("guestId", "==", guestID).
		Where("isActive", "==", true).
		Documents(ctx)
	defer iter.Stop()

	var items []models.CartItem
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if isIndexRequired(err) {
				return nil, fmt.Errorf("%w: %v", ErrIndexRequired, err)
			}
			return nil, err
		}

		var item models.CartItem
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("decode cart item %s: %w", doc.Ref.ID, err)
		}
		item.ID = doc.Ref.ID
		items = append(items, item)
	}

	return items, nil
}

func (s *FirestoreStore) ActiveItem(ctx context.Context, guestID, productID string) (*models.CartItem, error) {
	iter := s.col().
		Where("guestId", "==", guestID).
		Where("productId", "==", productID).
		Where("isActive", "==", true).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		if isIndexRequired(err) {
			return nil, fmt.Errorf("%w: %v", ErrIndexRequired, err)
		}
		return nil, err
	}

	var item models.CartItem
	if err := doc.DataTo(&item); err != nil {
		return nil, fmt.Errorf("decode cart item %s: %w", doc.Ref.ID, err)
	}
	item.ID = doc.Ref.ID
	return &item, nil
}

func (s *FirestoreStore) Create(ctx context.Context, item *models.CartItem) error {
	ref := s.col().NewDoc()
	if _, err := ref.Create(ctx, item); err != nil {
		return err
	}
	item.ID = ref.ID
	return nil
}

func (s *FirestoreStore) Deactivate(ctx context.Context, itemID string, at time.Time) error {
	_, err := s.col().Doc(itemID).Update(ctx, deactivateUpdates(at))
	return err
}

func (s *FirestoreStore) DeactivateAll(ctx context.Context, itemIDs []string, at time.Time) error {
	if len(itemIDs) == 0 {
		return nil
	}

	// WriteBatch commits all-or-nothing, which keeps clearCart atomic.
	batch := s.Client.Batch()
	for _, id := range itemIDs {
		batch.Update(s.col().Doc(id), deactivateUpdates(at))
	}
	_, err := batch.Commit(ctx)
	return err
}

func deactivateUpdates(at time.Time) []firestore.Update {
	return []firestore.Update{
		{Path: "isActive", Value: false},
		{Path: "updatedAt", Value: at},
	}
}

// isIndexRequired recognizes the FailedPrecondition Firestore returns when a
// composite query lacks its index.
func isIndexRequired(err error) bool {
	return status.Code(err) == codes.FailedPrecondition &&
		strings.Contains(strings.ToLower(err.Error()), "index")
}
