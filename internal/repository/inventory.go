package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storefront-demo/internal/model"
)

// ErrInsufficientStock means the guarded decrement matched no row: the
// product is gone or its stock dropped below the requested quantity since
// validation. The enclosing transaction must roll back whole.
var ErrInsufficientStock = errors.New("insufficient stock")

type InventoryRepository interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID string, quantity int64) error
}

type inventoryRepoImpl struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepoImpl{
		db: db,
	}
}

// Reserve decrements stock by quantity. The `stock >= ?` guard is the
// compare-and-swap that keeps two concurrent checkouts from both draining
// the same units: the losing update matches zero rows instead of driving
// stock negative. Must only ever run inside the transaction that also
// creates the order lines.
func (r *inventoryRepoImpl) Reserve(ctx context.Context, tx *gorm.DB, productID string, quantity int64) error {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}
