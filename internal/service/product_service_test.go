package service

import (
	"context"
	"errors"
	"testing"

	"bookline/internal/domain"
	"bookline/internal/inventory"
	"bookline/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memBusinessLineRepository struct {
	lines map[uuid.UUID]*domain.BusinessLine
}

func newMemBusinessLineRepository(lines ...*domain.BusinessLine) *memBusinessLineRepository {
	r := &memBusinessLineRepository{lines: make(map[uuid.UUID]*domain.BusinessLine)}
	for _, line := range lines {
		r.lines[line.ID] = line
	}
	return r
}

func (r *memBusinessLineRepository) Create(ctx context.Context, line *domain.BusinessLine) error {
	for _, existing := range r.lines {
		if existing.Name == line.Name {
			return repository.ErrBusinessLineAlreadyExists
		}
	}
	r.lines[line.ID] = line
	return nil
}

func (r *memBusinessLineRepository) List(ctx context.Context) ([]*domain.BusinessLine, error) {
	out := make([]*domain.BusinessLine, 0, len(r.lines))
	for _, line := range r.lines {
		out = append(out, line)
	}
	return out, nil
}

func (r *memBusinessLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.BusinessLine, error) {
	line, ok := r.lines[id]
	if !ok {
		return nil, repository.ErrBusinessLineNotFound
	}
	return line, nil
}

func (r *memBusinessLineRepository) FindByName(ctx context.Context, name string) (*domain.BusinessLine, error) {
	for _, line := range r.lines {
		if line.Name == name {
			return line, nil
		}
	}
	return nil, repository.ErrBusinessLineNotFound
}

func newProductFixture(products ...*domain.Product) (ProductService, *mockUserRepository, *memProductRepository) {
	userRepo := newMockUserRepository()
	productRepo := newMemProductRepository(products...)
	businessLineRepo := newMemBusinessLineRepository()
	ledger := inventory.NewLedger(productRepo, zap.NewNop())
	return NewProductService(productRepo, businessLineRepo, userRepo, ledger), userRepo, productRepo
}

func TestProductService_GetProduct_RefreshesDiscountRate(t *testing.T) {
	product := catalogProduct("PhilosophyBooks", 25.99, 90, 100, 10.0)
	// Simulate a stale stored rate.
	product.CurrentDiscountRate = 10.0
	svc, _, _ := newProductFixture(product)

	got, err := svc.GetProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got.CurrentDiscountRate != 8.0 {
		t.Errorf("CurrentDiscountRate = %v, want 8.0 (recomputed from stock)", got.CurrentDiscountRate)
	}
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	svc, _, _ := newProductFixture()

	_, err := svc.GetProduct(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_Availability(t *testing.T) {
	product := catalogProduct("StringTheory", 52.99, 3, 25, 4.0)
	svc, _, _ := newProductFixture(product)
	ctx := context.Background()

	available, inStock, err := svc.Availability(ctx, product.ID, 3)
	if err != nil {
		t.Fatalf("Availability failed: %v", err)
	}
	if !available || inStock != 3 {
		t.Errorf("Availability(3) = %v, %d, want true, 3", available, inStock)
	}

	available, inStock, err = svc.Availability(ctx, product.ID, 4)
	if err != nil {
		t.Fatalf("Availability failed: %v", err)
	}
	if available || inStock != 3 {
		t.Errorf("Availability(4) = %v, %d, want false, 3", available, inStock)
	}
}

func TestProductService_CurrentPrice(t *testing.T) {
	// 100.00 base, 20% depletion -> product rate 10 * (1 - 0.4) = 6%.
	// 100 -> 94 after product discount -> 79.90 after the 15% customer discount.
	product := catalogProduct("HistoryBooks", 100.00, 80, 100, 10.0)
	svc, userRepo, _ := newProductFixture(product)

	user := &domain.User{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		DiscountRate: 15.0,
	}
	userRepo.users[user.Email] = user

	price, err := svc.CurrentPrice(context.Background(), product.ID, user.ID)
	if err != nil {
		t.Fatalf("CurrentPrice failed: %v", err)
	}
	if price != 79.90 {
		t.Errorf("CurrentPrice = %v, want 79.90", price)
	}
}

func TestProductService_ListBusinessLines(t *testing.T) {
	businessLineRepo := newMemBusinessLineRepository(
		&domain.BusinessLine{ID: uuid.New(), Name: "Buss1"},
		&domain.BusinessLine{ID: uuid.New(), Name: "Buss2"},
	)
	productRepo := newMemProductRepository()
	ledger := inventory.NewLedger(productRepo, zap.NewNop())
	svc := NewProductService(productRepo, businessLineRepo, newMockUserRepository(), ledger)

	lines, err := svc.ListBusinessLines(context.Background())
	if err != nil {
		t.Fatalf("ListBusinessLines failed: %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("len(lines) = %d, want 2", len(lines))
	}
}

func TestProductService_ListByBusinessLine_UnknownLineIsNotFound(t *testing.T) {
	svc, _, _ := newProductFixture()

	_, err := svc.ListByBusinessLine(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrBusinessLineNotFound) {
		t.Errorf("expected ErrBusinessLineNotFound, got %v", err)
	}
}

func TestProductService_ListByBusinessLine_FiltersProducts(t *testing.T) {
	line := &domain.BusinessLine{ID: uuid.New(), Name: "Buss2"}
	inLine := catalogProduct("QuantumMathsBook", 45.99, 50, 50, 5.0)
	inLine.BusinessLineID = line.ID
	other := catalogProduct("HistoryBooks", 27.99, 90, 90, 15.0)

	businessLineRepo := newMemBusinessLineRepository(line)
	productRepo := newMemProductRepository(inLine, other)
	ledger := inventory.NewLedger(productRepo, zap.NewNop())
	svc := NewProductService(productRepo, businessLineRepo, newMockUserRepository(), ledger)

	products, err := svc.ListByBusinessLine(context.Background(), line.ID)
	if err != nil {
		t.Fatalf("ListByBusinessLine failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != inLine.ID {
		t.Errorf("got %d products, want just %s", len(products), inLine.Name)
	}
}

func TestProductService_CreateBusinessLine(t *testing.T) {
	businessLineRepo := newMemBusinessLineRepository(
		&domain.BusinessLine{ID: uuid.New(), Name: "Buss1"},
	)
	productRepo := newMemProductRepository()
	ledger := inventory.NewLedger(productRepo, zap.NewNop())
	svc := NewProductService(productRepo, businessLineRepo, newMockUserRepository(), ledger)
	ctx := context.Background()

	line, err := svc.CreateBusinessLine(ctx, "Buss3", "Computer Science Books")
	if err != nil {
		t.Fatalf("CreateBusinessLine failed: %v", err)
	}
	if line.ID == uuid.Nil {
		t.Error("created line has no ID")
	}
	if stored, err := businessLineRepo.FindByName(ctx, "Buss3"); err != nil || stored.ID != line.ID {
		t.Errorf("stored line = %v, %v, want %v", stored, err, line.ID)
	}

	// The same name again must surface a conflict, not a second segment.
	if _, err := svc.CreateBusinessLine(ctx, "Buss1", "duplicate"); !errors.Is(err, repository.ErrBusinessLineAlreadyExists) {
		t.Errorf("expected ErrBusinessLineAlreadyExists, got %v", err)
	}
}

func TestProductService_ListProducts_RefreshesAllRates(t *testing.T) {
	fresh := catalogProduct("SpiritualityBooks", 29.99, 80, 80, 12.0)
	depleted := catalogProduct("SociologyBooks", 34.99, 30, 60, 8.0)
	svc, _, _ := newProductFixture(fresh, depleted)

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2", len(products))
	}

	for _, p := range products {
		switch p.ID {
		case fresh.ID:
			if p.CurrentDiscountRate != 12.0 {
				t.Errorf("fresh rate = %v, want 12.0", p.CurrentDiscountRate)
			}
		case depleted.ID:
			// 50% depletion exhausts the discount.
			if p.CurrentDiscountRate != 0 {
				t.Errorf("depleted rate = %v, want 0", p.CurrentDiscountRate)
			}
		}
	}
}
