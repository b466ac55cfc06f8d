package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront-demo/internal/dto"
	"storefront-demo/internal/errs"
	"storefront-demo/internal/model"
	"storefront-demo/internal/repository"
)

type CartService interface {
	// AddItem accumulates quantity onto the buyer's line for the product.
	AddItem(ctx context.Context, buyerID, productID string, quantity int64) error
	// SetQuantity replaces the line's quantity; zero or less deletes the line.
	SetQuantity(ctx context.Context, buyerID, productID string, quantity int64) error
	GetCart(ctx context.Context, buyerID string) (*dto.CartResponse, error)
}

type cartServiceImpl struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartServiceImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, buyerID, productID string, quantity int64) error {
	if quantity <= 0 {
		return errs.BadQuantity()
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ProductNotFound(productID)
		}
		return fmt.Errorf("load product: %w", err)
	}

	return s.cartRepo.Upsert(ctx, &model.CartItem{
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

func (s *cartServiceImpl) SetQuantity(ctx context.Context, buyerID, productID string, quantity int64) error {
	if quantity <= 0 {
		return s.cartRepo.Delete(ctx, buyerID, productID)
	}

	updated, err := s.cartRepo.SetQuantity(ctx, buyerID, productID, quantity)
	if err != nil {
		return err
	}
	if !updated {
		return errs.CartLineNotFound(productID)
	}

	return nil
}

func (s *cartServiceImpl) GetCart(ctx context.Context, buyerID string) (*dto.CartResponse, error) {
	items, err := s.cartRepo.GetByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}

	response := &dto.CartResponse{Items: make([]*dto.CartLine, 0, len(items))}
	if len(items) == 0 {
		return response, nil
	}

	productIDs := make([]string, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}
	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get products for cart: %w", err)
	}
	productByID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	for _, item := range items {
		product, ok := productByID[item.ProductID]
		if !ok {
			// product removed from catalog; line stays until the buyer
			// clears it, but it cannot be priced
			continue
		}
		line := &dto.CartLine{
			ProductID: item.ProductID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Subtotal:  item.Quantity * product.Price,
		}
		response.Items = append(response.Items, line)
		response.Total += line.Subtotal
	}

	return response, nil
}
