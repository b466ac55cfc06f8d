package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-demo/internal/dto"
	"storefront-demo/internal/errs"
	"storefront-demo/internal/model"
	"storefront-demo/internal/repository"
)

type PaymentService interface {
	// Confirm settles a pending session: the session completes, an order is
	// created from its line snapshot, stock is reserved and the buyer's cart
	// cleared, all in one transaction. The cart must still hold exactly the
	// lines the session snapshotted; anything else rolls the unit back.
	Confirm(ctx context.Context, buyerID, paymentID, method string) (string, error)
	// Get returns the session scoped to the requesting buyer. Expiry is
	// evaluated lazily here as well, so a stale pending row flips to expired
	// the first time anyone looks at it.
	Get(ctx context.Context, buyerID, paymentID string) (*dto.PaymentResponse, error)
}

type paymentServiceImpl struct {
	db              *gorm.DB
	logger          *zap.Logger
	processingDelay time.Duration
	paymentRepo     repository.PaymentRepository
	orderRepo       repository.OrderRepository
	inventoryRepo   repository.InventoryRepository
	cartRepo        repository.CartRepository
	productRepo     repository.ProductRepository
}

func NewPaymentService(
	db *gorm.DB,
	logger *zap.Logger,
	processingDelay time.Duration,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	inventoryRepo repository.InventoryRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) PaymentService {
	return &paymentServiceImpl{
		db:              db,
		logger:          logger,
		processingDelay: processingDelay,
		paymentRepo:     paymentRepo,
		orderRepo:       orderRepo,
		inventoryRepo:   inventoryRepo,
		cartRepo:        cartRepo,
		productRepo:     productRepo,
	}
}

func (s *paymentServiceImpl) Confirm(ctx context.Context, buyerID, paymentID, method string) (string, error) {
	session, err := s.paymentRepo.FindByID(ctx, buyerID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errs.PaymentNotFound(paymentID)
		}
		return "", fmt.Errorf("load payment session: %w", err)
	}
	if session.Status != model.PaymentPending {
		// completed and expired are terminal; confirming again never
		// produces a second order
		return "", errs.PaymentNotFound(paymentID)
	}

	if time.Now().After(session.ExpiresAt) {
		if _, err := s.paymentRepo.MarkExpired(ctx, paymentID); err != nil {
			return "", fmt.Errorf("expire payment session: %w", err)
		}
		s.logger.Info("payment session expired on confirm",
			zap.String("buyer_id", buyerID),
			zap.String("payment_id", paymentID),
		)
		return "", errs.PaymentExpired(paymentID)
	}

	items, err := s.paymentRepo.GetPaymentItems(ctx, paymentID)
	if err != nil {
		return "", fmt.Errorf("load payment items: %w", err)
	}

	productNames, err := s.productNames(ctx, items)
	if err != nil {
		return "", err
	}

	// Simulated provider round-trip. Runs before the transaction opens so
	// no session or inventory row is held locked while we wait.
	if s.processingDelay > 0 {
		timer := time.NewTimer(s.processingDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	orderID := uuid.NewString()
	orderItems := make([]*model.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = &model.OrderItem{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Currency:  item.Currency,
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		completed, err := s.paymentRepo.MarkCompleted(ctx, tx, paymentID, method, time.Now())
		if err != nil {
			return fmt.Errorf("complete payment session: %w", err)
		}
		if !completed {
			// lost a race with another confirm or an expiry sweep
			return errs.PaymentNotFound(paymentID)
		}

		if err := s.orderRepo.Create(ctx, tx, &model.Order{
			OrderID:   orderID,
			BuyerID:   buyerID,
			Status:    model.StatusPending,
			Total:     session.Amount,
			Currency:  session.Currency,
			PaymentID: paymentID,
		}); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		if err := s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		for _, item := range items {
			if err := s.inventoryRepo.Reserve(ctx, tx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return errs.InsufficientStock(productNames[item.ProductID])
				}
				return fmt.Errorf("reserve stock for %s: %w", item.ProductID, err)
			}
		}

		deleted, err := s.cartRepo.ClearBuyer(ctx, tx, buyerID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		// the cart must still match the session's line snapshot; a
		// concurrent checkout (or a cart edit since initiation) means this
		// confirmation would double-charge or charge for the wrong lines
		if deleted != int64(len(items)) {
			return errs.CartChanged()
		}

		return nil
	})
	if err != nil {
		if _, known := errs.KindOf(err); known {
			return "", err
		}
		return "", errs.CheckoutFailed(err)
	}

	s.logger.Info("payment confirmed",
		zap.String("buyer_id", buyerID),
		zap.String("payment_id", paymentID),
		zap.String("order_id", orderID),
		zap.String("method", method),
		zap.Int64("amount", session.Amount),
	)

	return orderID, nil
}

func (s *paymentServiceImpl) Get(ctx context.Context, buyerID, paymentID string) (*dto.PaymentResponse, error) {
	session, err := s.paymentRepo.FindByID(ctx, buyerID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.PaymentNotFound(paymentID)
		}
		return nil, fmt.Errorf("load payment session: %w", err)
	}

	if session.Status == model.PaymentPending && time.Now().After(session.ExpiresAt) {
		if _, err := s.paymentRepo.MarkExpired(ctx, paymentID); err != nil {
			return nil, fmt.Errorf("expire payment session: %w", err)
		}
		session.Status = model.PaymentExpired
	}

	return &dto.PaymentResponse{
		PaymentID: session.PaymentID,
		Amount:    session.Amount,
		Currency:  session.Currency,
		Status:    string(session.Status),
		Method:    session.Method,
		ExpiresAt: session.ExpiresAt,
		PaidAt:    session.PaidAt,
	}, nil
}

func (s *paymentServiceImpl) productNames(ctx context.Context, items []*model.PaymentItem) (map[string]string, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products for payment: %w", err)
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	// a product deleted since initiation still fails its reservation; fall
	// back to the id in that message
	for _, item := range items {
		if _, ok := names[item.ProductID]; !ok {
			names[item.ProductID] = item.ProductID
		}
	}

	return names, nil
}
