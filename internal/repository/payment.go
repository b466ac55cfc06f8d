package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storefront-demo/internal/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *model.PaymentSession) error
	CreatePaymentItems(ctx context.Context, tx *gorm.DB, items []*model.PaymentItem) error
	FindByID(ctx context.Context, buyerID, paymentID string) (*model.PaymentSession, error)
	GetPaymentItems(ctx context.Context, paymentID string) ([]*model.PaymentItem, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, paymentID, method string, paidAt time.Time) (bool, error)
	MarkExpired(ctx context.Context, paymentID string) (bool, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, session *model.PaymentSession) error {
	return tx.WithContext(ctx).Create(session).Error
}

func (r *paymentRepoImpl) CreatePaymentItems(ctx context.Context, tx *gorm.DB, items []*model.PaymentItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *paymentRepoImpl) FindByID(ctx context.Context, buyerID, paymentID string) (*model.PaymentSession, error) {
	var session model.PaymentSession
	err := r.db.WithContext(ctx).
		Where("payment_id = ? AND buyer_id = ?", paymentID, buyerID).
		First(&session).Error

	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *paymentRepoImpl) GetPaymentItems(ctx context.Context, paymentID string) ([]*model.PaymentItem, error) {
	var items []*model.PaymentItem
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

// MarkCompleted leaves `pending` exactly once: the status guard makes a
// second completion (or a completion racing an expiry) match zero rows.
func (r *paymentRepoImpl) MarkCompleted(ctx context.Context, tx *gorm.DB, paymentID, method string, paidAt time.Time) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.PaymentSession{}).
		Where("payment_id = ? AND status = ?", paymentID, model.PaymentPending).
		Updates(map[string]interface{}{
			"status":     model.PaymentCompleted,
			"method":     method,
			"paid_at":    paidAt,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// MarkExpired is the lazy-expiry write, guarded the same way.
func (r *paymentRepoImpl) MarkExpired(ctx context.Context, paymentID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.PaymentSession{}).
		Where("payment_id = ? AND status = ?", paymentID, model.PaymentPending).
		Updates(map[string]interface{}{
			"status":     model.PaymentExpired,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
