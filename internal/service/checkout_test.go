package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-demo/internal/errs"
	"storefront-demo/internal/model"
	"storefront-demo/internal/repository"
)

func TestCheckout_Success(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.seedProduct(t, "p1", "Black T-Shirt", 10000, 5)
	e.addCartLine(t, "buyer-1", "p1", 2)

	orderID, err := e.checkoutSvc.Checkout(ctx, "buyer-1")
	require.NoError(t, err)
	require.NotEmpty(t, orderID)

	order, err := e.orders.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), order.Total)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, "buyer-1", order.BuyerID)

	items, err := e.orders.GetOrderItems(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, int64(10000), items[0].UnitPrice)

	assert.Equal(t, int64(3), e.stock(t, "p1"))
	assert.Empty(t, e.cartLines(t, "buyer-1"))
}

func TestCheckout_Conservation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.seedProduct(t, "p1", "Black T-Shirt", 19900, 10)
	e.seedProduct(t, "p2", "Grey Hoodie", 49900, 10)
	e.seedProduct(t, "p3", "Logo Mug", 9900, 10)
	e.addCartLine(t, "buyer-1", "p1", 3)
	e.addCartLine(t, "buyer-1", "p2", 1)
	e.addCartLine(t, "buyer-1", "p3", 4)

	orderID, err := e.checkoutSvc.Checkout(ctx, "buyer-1")
	require.NoError(t, err)

	order, err := e.orders.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	items, err := e.orders.GetOrderItems(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 3)

	var sum int64
	for _, item := range items {
		sum += item.Quantity * item.UnitPrice
	}
	assert.Equal(t, order.Total, sum)
	assert.Equal(t, int64(3*19900+49900+4*9900), order.Total)
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEngine(t)

	_, err := e.checkoutSvc.Checkout(context.Background(), "buyer-1")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
	assert.Equal(t, "empty_cart", errs.CodeOf(err))
	assert.Zero(t, e.countOrders(t))
}

func TestCheckout_InsufficientStock(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.seedProduct(t, "p1", "Black T-Shirt", 10000, 5)
	e.addCartLine(t, "buyer-1", "p1", 10)

	_, err := e.checkoutSvc.Checkout(ctx, "buyer-1")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConflict))
	assert.Equal(t, "insufficient_stock", errs.CodeOf(err))
	assert.Contains(t, err.Error(), "Black T-Shirt")

	// nothing moved
	assert.Equal(t, int64(5), e.stock(t, "p1"))
	assert.Len(t, e.cartLines(t, "buyer-1"), 1)
	assert.Zero(t, e.countOrders(t))
}

// failOnProduct lets a reservation succeed for every product except one,
// simulating concurrent depletion striking the last line of the checkout.
type failOnProduct struct {
	repository.InventoryRepository
	failID string
}

func (f *failOnProduct) Reserve(ctx context.Context, tx *gorm.DB, productID string, quantity int64) error {
	if productID == f.failID {
		return repository.ErrInsufficientStock
	}
	return f.InventoryRepository.Reserve(ctx, tx, productID, quantity)
}

func TestCheckout_AtomicRollback(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.seedProduct(t, "p1", "Black T-Shirt", 10000, 5)
	e.seedProduct(t, "p2", "Grey Hoodie", 20000, 5)
	e.addCartLine(t, "buyer-1", "p1", 2)
	e.addCartLine(t, "buyer-1", "p2", 1)

	failing := &failOnProduct{InventoryRepository: e.inventory, failID: "p2"}
	svc := NewCheckoutService(e.db, zap.NewNop(), 30*time.Minute, e.products, e.carts, e.orders, failing, e.payments)

	_, err := svc.Checkout(ctx, "buyer-1")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConflict))

	// the whole unit rolled back: no order, no items, stock and cart intact
	assert.Zero(t, e.countOrders(t))
	assert.Zero(t, e.countOrderItems(t))
	assert.Equal(t, int64(5), e.stock(t, "p1"))
	assert.Equal(t, int64(5), e.stock(t, "p2"))
	assert.Len(t, e.cartLines(t, "buyer-1"), 2)
}

// staleCartRepo serves a snapshot taken before a competing checkout
// committed, while the real cart rows are already consumed underneath.
type staleCartRepo struct {
	repository.CartRepository
	lines []*model.CartItem
}

func (s *staleCartRepo) GetByBuyer(ctx context.Context, buyerID string) ([]*model.CartItem, error) {
	return s.lines, nil
}

func TestCheckout_DoubleSubmissionRollsBack(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.seedProduct(t, "p1", "Black T-Shirt", 10000, 5)
	e.addCartLine(t, "buyer-1", "p1", 2)

	// the second submission snapshotted the cart before the first committed
	stale := &staleCartRepo{
		CartRepository: e.carts,
		lines:          e.cartLines(t, "buyer-1"),
	}
	second := NewCheckoutService(e.db, zap.NewNop(), 30*time.Minute, e.products, stale, e.orders, e.inventory, e.payments)

	_, err := e.checkoutSvc.Checkout(ctx, "buyer-1")
	require.NoError(t, err)

	_, err = second.Checkout(ctx, "buyer-1")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConflict))
	assert.Equal(t, "cart_changed", errs.CodeOf(err))

	// a single cart produced a single order and a single decrement
	assert.Equal(t, int64(1), e.countOrders(t))
	assert.Equal(t, int64(1), e.countOrderItems(t))
	assert.Equal(t, int64(3), e.stock(t, "p1"))
}

func TestCheckout_ConcurrentDoubleSubmission(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.seedProduct(t, "p1", "Black T-Shirt", 10000, 5)
	e.addCartLine(t, "buyer-1", "p1", 2)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = e.checkoutSvc.Checkout(ctx, "buyer-1")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		// the loser either found the cart consumed mid-commit or already
		// empty when it snapshotted
		assert.Contains(t, []string{"cart_changed", "empty_cart"}, errs.CodeOf(err))
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), e.countOrders(t))
	assert.Equal(t, int64(3), e.stock(t, "p1"))
	assert.Empty(t, e.cartLines(t, "buyer-1"))
}

func TestCheckout_MixedCurrencyCart(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	e.seedProduct(t, "p1", "Black T-Shirt", 10000, 5)
	require.NoError(t, e.db.Create(&model.Product{
		ID:       "p2",
		Name:     "Euro Hoodie",
		Price:    20000,
		Currency: "EUR",
		Stock:    5,
	}).Error)
	e.addCartLine(t, "buyer-1", "p1", 1)
	e.addCartLine(t, "buyer-1", "p2", 1)

	_, err := e.checkoutSvc.Checkout(ctx, "buyer-1")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
	assert.Equal(t, "mixed_currency", errs.CodeOf(err))

	assert.Zero(t, e.countOrders(t))
	assert.Equal(t, int64(5), e.stock(t, "p1"))
	assert.Len(t, e.cartLines(t, "buyer-1"), 2)
}

func TestCheckout_ConcurrentNoOversell(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	const stock = 5
	const buyers = 4
	const perBuyer = 2

	e.seedProduct(t, "p1", "Black T-Shirt", 10000, stock)
	buyerIDs := []string{"buyer-1", "buyer-2", "buyer-3", "buyer-4"}
	for _, buyerID := range buyerIDs {
		e.addCartLine(t, buyerID, "p1", perBuyer)
	}

	var wg sync.WaitGroup
	results := make([]error, buyers)
	for i, buyerID := range buyerIDs {
		wg.Add(1)
		go func(i int, buyerID string) {
			defer wg.Done()
			_, results[i] = e.checkoutSvc.Checkout(ctx, buyerID)
		}(i, buyerID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, "insufficient_stock", errs.CodeOf(err))
	}

	// demand (8) exceeds stock (5): committed decrements never pass stock
	// and somebody must have been refused
	assert.LessOrEqual(t, succeeded, stock/perBuyer)
	assert.Less(t, succeeded, buyers)
	assert.Equal(t, int64(stock-succeeded*perBuyer), e.stock(t, "p1"))
	assert.Equal(t, int64(succeeded), e.countOrders(t))
}
