package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-demo/internal/dto"
	"storefront-demo/internal/errs"
	"storefront-demo/internal/model"
	"storefront-demo/internal/repository"
)

type OrderService interface {
	GetOrder(ctx context.Context, orderID string) (*dto.OrderDetail, error)
	ListOrders(ctx context.Context, buyerID string) ([]*dto.OrderDetail, error)
	ListAllOrders(ctx context.Context) ([]*dto.OrderDetail, error)
	// SetStatus enforces the lifecycle graph: pending → processing → shipped
	// → delivered, cancellable until shipped, terminal states frozen.
	SetStatus(ctx context.Context, orderID, status string) (*dto.OrderDetail, error)
	// SetStatusBulk is the admin override. It deliberately skips the
	// transition check: every order in the set gets the target status no
	// matter where it currently is. Returns rows actually changed.
	SetStatusBulk(ctx context.Context, orderIDs []string, status string) (int64, error)
}

type orderServiceImpl struct {
	logger    *zap.Logger
	orderRepo repository.OrderRepository
}

func NewOrderService(logger *zap.Logger, orderRepo repository.OrderRepository) OrderService {
	return &orderServiceImpl{
		logger:    logger,
		orderRepo: orderRepo,
	}
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID string) (*dto.OrderDetail, error) {
	return s.orderDetail(ctx, orderID)
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, buyerID string) ([]*dto.OrderDetail, error) {
	orders, err := s.orderRepo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrderSummaries(orders), nil
}

func (s *orderServiceImpl) ListAllOrders(ctx context.Context) ([]*dto.OrderDetail, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return toOrderSummaries(orders), nil
}

func (s *orderServiceImpl) SetStatus(ctx context.Context, orderID, status string) (*dto.OrderDetail, error) {
	to, ok := model.ParseOrderStatus(status)
	if !ok {
		return nil, errs.BadStatus(status)
	}

	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.OrderNotFound(orderID)
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	if !order.Status.CanTransition(to) {
		return nil, errs.InvalidTransition(string(order.Status), string(to))
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, to)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !updated {
		// the order moved under us between load and write
		return nil, errs.InvalidTransition(string(order.Status), string(to))
	}

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(to)),
	)

	return s.orderDetail(ctx, orderID)
}

func (s *orderServiceImpl) SetStatusBulk(ctx context.Context, orderIDs []string, status string) (int64, error) {
	to, ok := model.ParseOrderStatus(status)
	if !ok {
		return 0, errs.BadStatus(status)
	}
	if len(orderIDs) == 0 {
		return 0, errs.MissingField("order_ids")
	}

	count, err := s.orderRepo.UpdateStatusBulk(ctx, orderIDs, to)
	if err != nil {
		return 0, fmt.Errorf("bulk update order status: %w", err)
	}

	s.logger.Info("bulk order status override",
		zap.Int("requested", len(orderIDs)),
		zap.Int64("updated", count),
		zap.String("to", string(to)),
	)

	return count, nil
}

func (s *orderServiceImpl) orderDetail(ctx context.Context, orderID string) (*dto.OrderDetail, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.OrderNotFound(orderID)
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}

	detail := toOrderSummary(order)
	detail.Items = make([]*dto.OrderLine, len(items))
	for i, item := range items {
		detail.Items[i] = &dto.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Currency:  item.Currency,
		}
	}

	return detail, nil
}

func toOrderSummary(order *model.Order) *dto.OrderDetail {
	return &dto.OrderDetail{
		OrderID:   order.OrderID,
		BuyerID:   order.BuyerID,
		Status:    string(order.Status),
		Total:     order.Total,
		Currency:  order.Currency,
		PaymentID: order.PaymentID,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func toOrderSummaries(orders []*model.Order) []*dto.OrderDetail {
	summaries := make([]*dto.OrderDetail, len(orders))
	for i, order := range orders {
		summaries[i] = toOrderSummary(order)
	}
	return summaries
}
