package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookline/internal/domain"
	"bookline/internal/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InsufficientStockError is returned when a reservation asks for more units
// than a product has available. It carries both amounts so the caller can
// retry with a smaller quantity.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// ProductStore is the slice of the catalog store the ledger needs
type ProductStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
}

// Ledger owns the stock counters of all products. Every stock mutation goes
// through Reserve or Release; each product has its own mutex so unrelated
// products never contend. Mutexes are created lazily on first access and
// retained for the process lifetime.
type Ledger struct {
	store  ProductStore
	logger *zap.Logger
	locks  sync.Map // productID -> *sync.Mutex
}

// NewLedger creates a Ledger over the given product store
func NewLedger(store ProductStore, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
	}
}

func (l *Ledger) productLock(productID uuid.UUID) *sync.Mutex {
	lock, ok := l.locks.Load(productID)
	if !ok {
		lock, _ = l.locks.LoadOrStore(productID, &sync.Mutex{})
	}
	return lock.(*sync.Mutex)
}

// Reserve atomically checks that the product has at least quantity units and
// decrements its stock by that amount. The check-and-decrement is serialized
// per product: no other Reserve or Release on the same product interleaves
// between the check and the write. On shortage the product is left untouched
// and an *InsufficientStockError is returned; the request is never clamped.
func (l *Ledger) Reserve(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	lock := l.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := l.store.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load product for reservation: %w", err)
	}

	if product.Quantity < quantity {
		return &InsufficientStockError{
			ProductID: productID,
			Available: product.Quantity,
			Requested: quantity,
		}
	}

	product.Quantity -= quantity
	product.CurrentDiscountRate = pricing.ProductDiscountRate(product)
	product.UpdatedAt = time.Now()

	if err := l.store.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to persist reservation: %w", err)
	}

	l.logger.Info("Stock reserved",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
		zap.Int("remaining", product.Quantity),
		zap.Float64("discount_rate", product.CurrentDiscountRate),
	)

	return nil
}

// Release restores previously reserved units. It is the compensating
// operation used when a later line of a multi-line order fails, so that an
// order reserves all of its lines or none. Same lock discipline as Reserve.
func (l *Ledger) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("release quantity must be positive, got %d", quantity)
	}

	lock := l.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := l.store.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load product for release: %w", err)
	}

	product.Quantity += quantity
	product.CurrentDiscountRate = pricing.ProductDiscountRate(product)
	product.UpdatedAt = time.Now()

	if err := l.store.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to persist release: %w", err)
	}

	l.logger.Info("Stock released",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
		zap.Int("available", product.Quantity),
	)

	return nil
}

// IsAvailable reports whether the product currently has at least quantity
// units. The answer is advisory and may be stale the instant it returns;
// only Reserve guarantees availability.
func (l *Ledger) IsAvailable(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	product, err := l.store.FindByID(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("failed to load product for availability check: %w", err)
	}
	return product.Quantity >= quantity, nil
}

// Available returns the product's current stock level. Advisory, like IsAvailable.
func (l *Ledger) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	product, err := l.store.FindByID(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to load product: %w", err)
	}
	return product.Quantity, nil
}
