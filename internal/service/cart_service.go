package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookline/internal/domain"
	"bookline/internal/inventory"
	"bookline/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrQuantityUnavailable = errors.New("requested quantity is not available in stock")
)

// CartService defines the interface for pending selection management.
// Stock checks here are advisory; the authoritative check happens during
// order placement.
type CartService interface {
	GetItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Validate(ctx context.Context, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type cartService struct {
	cartRepo repository.CartRepository
	ledger   *inventory.Ledger
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, ledger *inventory.Ledger) CartService {
	return &cartService{
		cartRepo: cartRepo,
		ledger:   ledger,
	}
}

// GetItems retrieves all pending selections for a user
func (s *cartService) GetItems(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	return items, nil
}

// Add puts quantity units of a product in the cart, merging with an existing
// line for the same product. The combined quantity must currently be in stock.
func (s *cartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	available, err := s.ledger.IsAvailable(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrQuantityUnavailable
	}

	existing, err := s.cartRepo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil && err != repository.ErrCartItemNotFound {
		return nil, fmt.Errorf("failed to check existing cart item: %w", err)
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity

		available, err := s.ledger.IsAvailable(ctx, productID, newQuantity)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, ErrQuantityUnavailable
		}

		if err := s.cartRepo.UpdateQuantity(ctx, userID, productID, newQuantity); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		existing.Quantity = newQuantity
		return existing, nil
	}

	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.cartRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return item, nil
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line and returns nil.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		if err := s.Remove(ctx, userID, productID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	available, err := s.ledger.IsAvailable(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrQuantityUnavailable
	}

	item, err := s.cartRepo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.UpdateQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	item.Quantity = quantity

	return item, nil
}

// Remove deletes a single line from the cart
func (s *cartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.cartRepo.Delete(ctx, userID, productID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// Clear deletes every line from the cart
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Validate reports whether every line in the cart is currently satisfiable
func (s *cartService) Validate(ctx context.Context, userID uuid.UUID) (bool, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load cart: %w", err)
	}

	for _, item := range items {
		available, err := s.ledger.IsAvailable(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return false, err
		}
		if !available {
			return false, nil
		}
	}

	return true, nil
}

// Count returns the total number of units across all cart lines
func (s *cartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load cart: %w", err)
	}

	total := 0
	for _, item := range items {
		total += item.Quantity
	}

	return total, nil
}
