package repository

import (
	"context"
	"testing"
	"time"

	"bookline/internal/domain"

	"github.com/google/uuid"
)

func seededUserID(t *testing.T) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := testDB.QueryRow("SELECT id FROM users WHERE email = 'userA@example.com'").Scan(&id)
	if err != nil {
		t.Fatalf("seeded user not found: %v", err)
	}
	return id
}

func TestOrderRepository_CreateAndFindByID(t *testing.T) {
	orderRepo := NewOrderRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	userID := seededUserID(t)
	product := newStoredProduct(t, productRepo, 50, 50, 5.0)

	orderID := uuid.New()
	order := &domain.Order{
		ID:     orderID,
		UserID: userID,
		Lines: []domain.OrderLine{
			{
				ID:          uuid.New(),
				OrderID:     orderID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    2,
				UnitPrice:   18.99,
			},
		},
		TotalAmount: 37.98,
		Status:      domain.OrderStatusPlaced,
		CreatedAt:   time.Now(),
	}
	if err := orderRepo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM orders WHERE id = $1", orderID)
	})

	found, err := orderRepo.FindByID(ctx, orderID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	if found.UserID != userID {
		t.Errorf("UserID = %s, want %s", found.UserID, userID)
	}
	if found.TotalAmount != 37.98 {
		t.Errorf("TotalAmount = %v, want 37.98", found.TotalAmount)
	}
	if found.Status != domain.OrderStatusPlaced {
		t.Errorf("Status = %q, want %q", found.Status, domain.OrderStatusPlaced)
	}
	if len(found.Lines) != 1 {
		t.Fatalf("len(Lines) = %d, want 1", len(found.Lines))
	}
	line := found.Lines[0]
	if line.ProductID != product.ID || line.Quantity != 2 || line.UnitPrice != 18.99 {
		t.Errorf("line = %+v, want product %s, qty 2, price 18.99", line, product.ID)
	}
	if line.ProductName != product.Name {
		t.Errorf("ProductName = %q, want %q", line.ProductName, product.Name)
	}
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	repo := NewOrderRepository(testDB)

	_, err := repo.FindByID(context.Background(), uuid.New())
	if err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByUser_NewestFirst(t *testing.T) {
	orderRepo := NewOrderRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	userID := seededUserID(t)
	product := newStoredProduct(t, productRepo, 50, 50, 5.0)

	var orderIDs []uuid.UUID
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		orderID := uuid.New()
		order := &domain.Order{
			ID:     orderID,
			UserID: userID,
			Lines: []domain.OrderLine{
				{
					ID:          uuid.New(),
					OrderID:     orderID,
					ProductID:   product.ID,
					ProductName: product.Name,
					Quantity:    1,
					UnitPrice:   18.99,
				},
			},
			TotalAmount: 18.99,
			Status:      domain.OrderStatusPlaced,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		orderIDs = append(orderIDs, orderID)
	}
	t.Cleanup(func() {
		for _, id := range orderIDs {
			_, _ = testDB.Exec("DELETE FROM orders WHERE id = $1", id)
		}
	})

	orders, err := orderRepo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(orders) < 3 {
		t.Fatalf("len(orders) = %d, want at least 3", len(orders))
	}

	for i := 1; i < len(orders); i++ {
		if orders[i].CreatedAt.After(orders[i-1].CreatedAt) {
			t.Errorf("orders not sorted newest first at index %d", i)
		}
	}
	for _, order := range orders {
		if order.UserID != userID {
			t.Errorf("order %s belongs to %s, want %s", order.ID, order.UserID, userID)
		}
		if len(order.Lines) == 0 {
			t.Errorf("order %s has no lines attached", order.ID)
		}
	}
}
