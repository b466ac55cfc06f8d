package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"storefront-demo/internal/model"
	"storefront-demo/internal/repository"
)

// newTestDB opens a throwaway sqlite store with the full schema. One open
// connection keeps concurrent tests on sqlite's single-writer model instead
// of fighting SQLITE_BUSY.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentSession{},
		&model.PaymentItem{},
	))

	return db
}

type engine struct {
	db        *gorm.DB
	products  repository.ProductRepository
	carts     repository.CartRepository
	orders    repository.OrderRepository
	inventory repository.InventoryRepository
	payments  repository.PaymentRepository

	cartSvc     CartService
	checkoutSvc CheckoutService
	paymentSvc  PaymentService
	orderSvc    OrderService
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	db := newTestDB(t)
	logger := zap.NewNop()

	e := &engine{
		db:        db,
		products:  repository.NewProductRepository(db),
		carts:     repository.NewCartRepository(db),
		orders:    repository.NewOrderRepository(db),
		inventory: repository.NewInventoryRepository(db),
		payments:  repository.NewPaymentRepository(db),
	}

	e.cartSvc = NewCartService(e.carts, e.products)
	e.checkoutSvc = NewCheckoutService(db, logger, 30*time.Minute, e.products, e.carts, e.orders, e.inventory, e.payments)
	// zero processing delay keeps confirmation deterministic under test
	e.paymentSvc = NewPaymentService(db, logger, 0, e.payments, e.orders, e.inventory, e.carts, e.products)
	e.orderSvc = NewOrderService(logger, e.orders)

	return e
}

func (e *engine) seedProduct(t *testing.T, id, name string, price, stock int64) {
	t.Helper()
	require.NoError(t, e.db.Create(&model.Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Currency: "USD",
		Stock:    stock,
	}).Error)
}

func (e *engine) addCartLine(t *testing.T, buyerID, productID string, quantity int64) {
	t.Helper()
	require.NoError(t, e.carts.Upsert(context.Background(), &model.CartItem{
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
	}))
}

func (e *engine) stock(t *testing.T, productID string) int64 {
	t.Helper()
	product, err := e.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return product.Stock
}

func (e *engine) cartLines(t *testing.T, buyerID string) []*model.CartItem {
	t.Helper()
	items, err := e.carts.GetByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	return items
}

func (e *engine) countOrders(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.Order{}).Count(&count).Error)
	return count
}

func (e *engine) countOrderItems(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.OrderItem{}).Count(&count).Error)
	return count
}

func (e *engine) session(t *testing.T, paymentID string) *model.PaymentSession {
	t.Helper()
	var session model.PaymentSession
	require.NoError(t, e.db.Where("payment_id = ?", paymentID).First(&session).Error)
	return &session
}

func (e *engine) createOrder(t *testing.T, buyerID string, status model.OrderStatus, total int64) string {
	t.Helper()
	orderID := "order-" + string(status) + "-" + buyerID
	require.NoError(t, e.db.Create(&model.Order{
		OrderID:  orderID,
		BuyerID:  buyerID,
		Status:   status,
		Total:    total,
		Currency: "USD",
	}).Error)
	require.NoError(t, e.db.Create(&model.OrderItem{
		OrderID:   orderID,
		ProductID: "seed",
		Quantity:  1,
		UnitPrice: total,
		Currency:  "USD",
	}).Error)
	return orderID
}
