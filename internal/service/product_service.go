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
)

// ProductService defines the interface for catalog reads and pricing lookups
type ProductService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListByBusinessLine(ctx context.Context, businessLineID uuid.UUID) ([]*domain.Product, error)
	ListBusinessLines(ctx context.Context) ([]*domain.BusinessLine, error)
	CreateBusinessLine(ctx context.Context, name, description string) (*domain.BusinessLine, error)
	Availability(ctx context.Context, productID uuid.UUID, quantity int) (available bool, inStock int, err error)
	CurrentPrice(ctx context.Context, productID, userID uuid.UUID) (float64, error)
}

type productService struct {
	productRepo      repository.ProductRepository
	businessLineRepo repository.BusinessLineRepository
	userRepo         repository.UserRepository
	ledger           *inventory.Ledger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	businessLineRepo repository.BusinessLineRepository,
	userRepo repository.UserRepository,
	ledger *inventory.Ledger,
) ProductService {
	return &productService{
		productRepo:      productRepo,
		businessLineRepo: businessLineRepo,
		userRepo:         userRepo,
		ledger:           ledger,
	}
}

// GetProduct retrieves a product with its discount rate recomputed from the
// current stock level, so the returned rate can never be stale.
func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.CurrentDiscountRate = pricing.ProductDiscountRate(product)
	return product, nil
}

// ListProducts retrieves all products with fresh discount rates
func (s *productService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	refreshDiscountRates(products)
	return products, nil
}

// ListByBusinessLine retrieves a business line's products with fresh
// discount rates. An unknown business line is an error, not an empty list.
func (s *productService) ListByBusinessLine(ctx context.Context, businessLineID uuid.UUID) ([]*domain.Product, error) {
	if _, err := s.businessLineRepo.FindByID(ctx, businessLineID); err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListByBusinessLine(ctx, businessLineID)
	if err != nil {
		return nil, err
	}
	refreshDiscountRates(products)
	return products, nil
}

// ListBusinessLines retrieves all catalog segments, ordered by name
func (s *productService) ListBusinessLines(ctx context.Context) ([]*domain.BusinessLine, error) {
	lines, err := s.businessLineRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list business lines: %w", err)
	}
	return lines, nil
}

// CreateBusinessLine adds a new catalog segment. Names are unique; the
// lookup surfaces a duplicate before the insert so callers get a clean
// conflict instead of a constraint error.
func (s *productService) CreateBusinessLine(ctx context.Context, name, description string) (*domain.BusinessLine, error) {
	_, err := s.businessLineRepo.FindByName(ctx, name)
	if err == nil {
		return nil, repository.ErrBusinessLineAlreadyExists
	}
	if !errors.Is(err, repository.ErrBusinessLineNotFound) {
		return nil, fmt.Errorf("failed to check business line name: %w", err)
	}

	line := &domain.BusinessLine{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.businessLineRepo.Create(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// Availability reports whether quantity units can currently be reserved,
// along with the current stock level. Advisory: only a reservation
// guarantees availability.
func (s *productService) Availability(ctx context.Context, productID uuid.UUID, quantity int) (bool, int, error) {
	inStock, err := s.ledger.Available(ctx, productID)
	if err != nil {
		return false, 0, err
	}
	return inStock >= quantity, inStock, nil
}

// CurrentPrice computes the final per-unit price a customer would pay for a
// product right now: dynamic product discount first, then the customer's
// fixed discount.
func (s *productService) CurrentPrice(ctx context.Context, productID, userID uuid.UUID) (float64, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return 0, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user: %w", err)
	}

	productRate := pricing.ProductDiscountRate(product)
	return pricing.FinalUnitPrice(product.BasePrice, productRate, user.DiscountRate), nil
}

func refreshDiscountRates(products []*domain.Product) {
	for _, product := range products {
		product.CurrentDiscountRate = pricing.ProductDiscountRate(product)
	}
}
