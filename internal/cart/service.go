package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iarleylcs/cartify-flow/internal/domain"
	"github.com/iarleylcs/cartify-flow/internal/notify"
)

// Service applies cart mutations for a session: load the current
// snapshot, apply the pure domain mutation, replace the stored value.
// Each mutation reports a user-facing notice alongside the new cart.
type Service struct {
	store  Store
	logger *zap.Logger
}

type Result struct {
	Cart   domain.Cart
	Notice notify.Notice
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Cart(ctx context.Context, sessionID string) (domain.Cart, error) {
	return s.store.Get(ctx, sessionID)
}

// AddToCart adds the product with quantity 1. Products without a display
// name are refused with a warning and no state change; a product already
// in the cart leaves the cart as-is.
func (s *Service) AddToCart(ctx context.Context, sessionID string, product domain.Product) (Result, error) {
	if product.Name == "" {
		s.logger.Warn("rejected add of invalid product",
			zap.String("session_id", sessionID),
			zap.Int64("product_id", product.ID))
		cart, err := s.store.Get(ctx, sessionID)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Cart:   cart,
			Notice: notify.Warning("Invalid product", "This product has no description and cannot be added"),
		}, nil
	}

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	updated, added := cart.AddItem(product)
	if !added {
		return Result{
			Cart:   updated,
			Notice: notify.Warning("Already in cart", fmt.Sprintf("%s is already in the cart", product.Name)),
		}, nil
	}

	if err := s.store.Put(ctx, sessionID, updated); err != nil {
		return Result{}, err
	}

	s.logger.Info("item added",
		zap.String("session_id", sessionID),
		zap.Int64("product_id", product.ID))

	return Result{
		Cart:   updated,
		Notice: notify.Success("Product added", fmt.Sprintf("%s was added to the cart", product.Name)),
	}, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (Result, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, sessionID, productID)
	}

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	updated := cart.UpdateQuantity(productID, quantity)
	if err := s.store.Put(ctx, sessionID, updated); err != nil {
		return Result{}, err
	}

	return Result{
		Cart:   updated,
		Notice: notify.Success("Quantity updated", ""),
	}, nil
}

// UpdatePrice sets a line's unit price. No lower bound is enforced here;
// the catalog price is only the starting value.
func (s *Service) UpdatePrice(ctx context.Context, sessionID string, productID int64, price decimal.Decimal) (Result, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	updated := cart.UpdatePrice(productID, price)
	if err := s.store.Put(ctx, sessionID, updated); err != nil {
		return Result{}, err
	}

	return Result{
		Cart:   updated,
		Notice: notify.Success("Price updated", ""),
	}, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (Result, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	updated := cart.RemoveItem(productID)
	if err := s.store.Put(ctx, sessionID, updated); err != nil {
		return Result{}, err
	}

	s.logger.Info("item removed",
		zap.String("session_id", sessionID),
		zap.Int64("product_id", productID))

	return Result{
		Cart:   updated,
		Notice: notify.Success("Product removed", "The product was removed from the cart"),
	}, nil
}

// ClearCart resets the session's cart after a successful submission.
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
