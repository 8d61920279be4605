package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-backend/models"
)

// Catalog adapts the relational product catalog to the ProductLookup the cart
// service needs. Ids arrive as opaque strings because cart documents store
// them that way; anything that is not a known product id resolves to nothing.
type Catalog struct {
	DB *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{DB: db}
}

func (c *Catalog) ByID(ctx context.Context, id string) (*models.Product, error) {
	// The products.id column is uuid typed; querying it with a malformed id
	// would fail with a type error instead of returning no rows.
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	var product models.Product
	err := c.DB.WithContext(ctx).
		Preload("Images").
		Where("id = ?", id).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Catalog) ByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return map[string]models.Product{}, nil
	}

	var products []models.Product
	if err := c.DB.WithContext(ctx).
		Preload("Images").
		Where("id IN ?", valid).
		Find(&products).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID.String()] = p
	}
	return byID, nil
}
