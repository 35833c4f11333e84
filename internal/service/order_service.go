package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookline/internal/domain"
	"bookline/internal/inventory"
	"bookline/internal/pricing"
	"bookline/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
)

// OrderService defines the interface for order business logic
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	ledger      *inventory.Ledger
	logger      *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	ledger *inventory.Ledger,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

// PlaceOrder runs a checkout: validate the cart, price every line from the
// current product snapshot and the customer's fixed discount, reserve stock
// line by line, persist the immutable order, then clear the cart.
//
// Reservation is all-or-nothing: when a line fails with insufficient stock,
// reservations already taken for earlier lines of this attempt are released
// before the error is returned. Placement is not idempotent; duplicate
// submissions create duplicate orders.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	// Validating
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// Pricing: read-only pass over current product snapshots. The product
	// discount is always computed from the snapshot, never read from the
	// stored current_discount_rate.
	orderID := uuid.New()
	lines := make([]domain.OrderLine, 0, len(items))
	var total float64

	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if err == repository.ErrProductNotFound {
				return nil, err
			}
			return nil, fmt.Errorf("failed to load product %s: %w", item.ProductID, err)
		}

		productRate := pricing.ProductDiscountRate(product)
		unitPrice := pricing.FinalUnitPrice(product.BasePrice, productRate, user.DiscountRate)

		lines = append(lines, domain.OrderLine{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
		})
		total += unitPrice * float64(item.Quantity)
	}
	total = pricing.RoundHalfUp2(total)

	// Reserving: same order as pricing. On any shortage, undo the
	// reservations of earlier lines before surfacing the error.
	for i, item := range items {
		if err := s.ledger.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			s.releaseReserved(ctx, items[:i])
			return nil, err
		}
	}

	// Committing
	order := &domain.Order{
		ID:          orderID,
		UserID:      userID,
		Lines:       lines,
		TotalAmount: total,
		Status:      domain.OrderStatusPlaced,
		CreatedAt:   time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.releaseReserved(ctx, items)
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	// Done: clearing the cart is best-effort cleanup, not part of the
	// commit. The order stands even if it fails.
	if err := s.cartRepo.DeleteByUser(ctx, userID); err != nil {
		s.logger.Warn("Order placed but cart clear failed",
			zap.String("order_id", order.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("lines", len(order.Lines)),
		zap.Float64("total", order.TotalAmount),
	)

	return order, nil
}

// releaseReserved compensates reservations taken earlier in a failed
// placement attempt. Best-effort: a failed release is logged, not returned,
// since the placement error is already on its way to the caller.
func (s *orderService) releaseReserved(ctx context.Context, reserved []*domain.CartItem) {
	for _, item := range reserved {
		if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to release reserved stock",
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

// ListOrders retrieves a user's order history, newest first
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAllOrders retrieves every order across all users, newest first.
// Callers are responsible for restricting this to admins.
func (s *orderService) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list all orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves a single order. Orders belonging to other users are
// reported as not found.
func (s *orderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}
