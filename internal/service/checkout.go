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

type CheckoutService interface {
	// Checkout turns the buyer's cart into a committed order in one
	// transaction: order + order items + stock decrements + cart clear.
	Checkout(ctx context.Context, buyerID string) (string, error)
	// InitiatePayment is the payment-first sibling: it fixes the amount and
	// line snapshot in a pending session without touching stock or cart.
	InitiatePayment(ctx context.Context, buyerID string) (*dto.InitiatePaymentResponse, error)
}

type checkoutServiceImpl struct {
	db            *gorm.DB
	logger        *zap.Logger
	sessionTTL    time.Duration
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	orderRepo     repository.OrderRepository
	inventoryRepo repository.InventoryRepository
	paymentRepo   repository.PaymentRepository
}

func NewCheckoutService(
	db *gorm.DB,
	logger *zap.Logger,
	sessionTTL time.Duration,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	inventoryRepo repository.InventoryRepository,
	paymentRepo repository.PaymentRepository,
) CheckoutService {
	return &checkoutServiceImpl{
		db:            db,
		logger:        logger,
		sessionTTL:    sessionTTL,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		paymentRepo:   paymentRepo,
	}
}

// snapshotLine pairs a cart quantity with the product row read at snapshot
// time; the price on it is the one the order will record.
type snapshotLine struct {
	product  *model.Product
	quantity int64
}

type cartSnapshot struct {
	lines    []*snapshotLine
	total    int64
	currency string
}

// loadCartSnapshot re-reads cart and products server-side (client-supplied
// prices are never trusted) and runs the advisory validations. Stock can
// still change before commit; the guarded decrement re-verifies there.
func (s *checkoutServiceImpl) loadCartSnapshot(ctx context.Context, buyerID string) (*cartSnapshot, error) {
	items, err := s.cartRepo.GetByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, errs.EmptyCart()
	}

	productIDs := make([]string, len(items))
	quantityByID := make(map[string]int64, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
		quantityByID[item.ProductID] = item.Quantity
	}

	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get products for cart: %w", err)
	}
	if len(products) != len(items) {
		seen := make(map[string]bool, len(products))
		for _, p := range products {
			seen[p.ID] = true
		}
		for _, id := range productIDs {
			if !seen[id] {
				return nil, errs.ProductNotFound(id)
			}
		}
	}

	snapshot := &cartSnapshot{lines: make([]*snapshotLine, len(products))}
	for i, product := range products {
		quantity := quantityByID[product.ID]
		if quantity > product.Stock {
			return nil, errs.InsufficientStock(product.Name)
		}
		// totals only make sense within one currency
		if snapshot.currency != "" && snapshot.currency != product.Currency {
			return nil, errs.MixedCurrency()
		}

		snapshot.lines[i] = &snapshotLine{product: product, quantity: quantity}
		snapshot.total += quantity * product.Price
		snapshot.currency = product.Currency
	}

	return snapshot, nil
}

func (s *checkoutServiceImpl) Checkout(ctx context.Context, buyerID string) (string, error) {
	snapshot, err := s.loadCartSnapshot(ctx, buyerID)
	if err != nil {
		return "", err
	}

	orderID := uuid.NewString()
	orderItems := make([]*model.OrderItem, len(snapshot.lines))
	for i, line := range snapshot.lines {
		orderItems[i] = &model.OrderItem{
			OrderID:   orderID,
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			UnitPrice: line.product.Price,
			Currency:  line.product.Currency,
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, &model.Order{
			OrderID:  orderID,
			BuyerID:  buyerID,
			Status:   model.StatusPending,
			Total:    snapshot.total,
			Currency: snapshot.currency,
		}); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		if err := s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		for _, line := range snapshot.lines {
			if err := s.inventoryRepo.Reserve(ctx, tx, line.product.ID, line.quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return errs.InsufficientStock(line.product.Name)
				}
				return fmt.Errorf("reserve stock for %s: %w", line.product.ID, err)
			}
		}

		deleted, err := s.cartRepo.ClearBuyer(ctx, tx, buyerID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		// the cart must still be the one we snapshotted; a concurrent
		// checkout of the same cart already consumed some or all of its
		// lines, so this submission must not charge the buyer again
		if deleted != int64(len(snapshot.lines)) {
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

	s.logger.Info("checkout committed",
		zap.String("buyer_id", buyerID),
		zap.String("order_id", orderID),
		zap.Int64("total", snapshot.total),
		zap.Int("lines", len(orderItems)),
	)

	return orderID, nil
}

func (s *checkoutServiceImpl) InitiatePayment(ctx context.Context, buyerID string) (*dto.InitiatePaymentResponse, error) {
	snapshot, err := s.loadCartSnapshot(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	paymentID := uuid.NewString()
	expiresAt := time.Now().Add(s.sessionTTL)

	paymentItems := make([]*model.PaymentItem, len(snapshot.lines))
	for i, line := range snapshot.lines {
		paymentItems[i] = &model.PaymentItem{
			PaymentID: paymentID,
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			UnitPrice: line.product.Price,
			Currency:  line.product.Currency,
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(ctx, tx, &model.PaymentSession{
			PaymentID: paymentID,
			BuyerID:   buyerID,
			Amount:    snapshot.total,
			Currency:  snapshot.currency,
			Status:    model.PaymentPending,
			ExpiresAt: expiresAt,
		}); err != nil {
			return fmt.Errorf("store payment session: %w", err)
		}

		return s.paymentRepo.CreatePaymentItems(ctx, tx, paymentItems)
	})
	if err != nil {
		return nil, errs.CheckoutFailed(err)
	}

	s.logger.Info("payment session opened",
		zap.String("buyer_id", buyerID),
		zap.String("payment_id", paymentID),
		zap.Int64("amount", snapshot.total),
		zap.Time("expires_at", expiresAt),
	)

	return &dto.InitiatePaymentResponse{
		PaymentID: paymentID,
		Amount:    snapshot.total,
		Currency:  snapshot.currency,
		ExpiresAt: expiresAt,
	}, nil
}
