package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-demo/internal/model"
)

type CartRepository interface {
	Upsert(ctx context.Context, item *model.CartItem) error
	SetQuantity(ctx context.Context, buyerID, productID string, quantity int64) (bool, error)
	Delete(ctx context.Context, buyerID, productID string) error
	GetByBuyer(ctx context.Context, buyerID string) ([]*model.CartItem, error)
	ClearBuyer(ctx context.Context, tx *gorm.DB, buyerID string) (int64, error)
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

// Upsert adds quantity to an existing (buyer, product) line or creates it.
func (r *cartRepoImpl) Upsert(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "buyer_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", item.Quantity),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
}

// SetQuantity reports whether a line matched, so callers can surface a typo
// in the product id instead of silently updating nothing.
func (r *cartRepoImpl) SetQuantity(ctx context.Context, buyerID, productID string, quantity int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *cartRepoImpl) Delete(ctx context.Context, buyerID, productID string) error {
	return r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		Delete(&model.CartItem{}).Error
}

func (r *cartRepoImpl) GetByBuyer(ctx context.Context, buyerID string) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("product_id").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

// ClearBuyer runs inside the checkout/confirmation transaction only; the
// cart must survive intact when that transaction rolls back. The deleted-row
// count is the double-submission guard: a transaction that consumed the cart
// lines it snapshotted deletes exactly that many rows, any other count means
// a concurrent submission got there first.
func (r *cartRepoImpl) ClearBuyer(ctx context.Context, tx *gorm.DB, buyerID string) (int64, error) {
	result := tx.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Delete(&model.CartItem{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
