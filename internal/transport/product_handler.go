package transport

import (
	"errors"
	"net/http"
	"strconv"

	"bookline/internal/middleware"
	"bookline/internal/repository"
	"bookline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityResponse reports a point-in-time stock check
type AvailabilityResponse struct {
	Available         bool   `json:"available"`
	AvailableQuantity int    `json:"available_quantity"`
	Message           string `json:"message"`
}

// PriceResponse carries the final per-unit price for the requesting customer
type PriceResponse struct {
	ProductID string  `json:"product_id"`
	UnitPrice float64 `json:"unit_price"`
}

// CreateBusinessLineRequest represents the admin payload for a new catalog segment
type CreateBusinessLineRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description"`
}

// ProductHandler handles HTTP requests for catalog reads
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	// Public: registration asks the customer to pick a business line
	r.Get("/api/business-lines", h.ListBusinessLines)
	r.With(authMiddleware, middleware.RequireAdmin(h.logger)).Post("/api/business-lines", h.CreateBusinessLine)

	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Get("/business-line/{businessLineId}", h.ListByBusinessLine)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/availability", h.Availability)
		r.Get("/{id}/price", h.Price)
	})
}

// ListBusinessLines returns all catalog segments
func (h *ProductHandler) ListBusinessLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.productService.ListBusinessLines(r.Context())
	if err != nil {
		h.logger.Error("Failed to list business lines", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list business lines")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, lines)
}

// CreateBusinessLine adds a catalog segment. Admin surface only.
func (h *ProductHandler) CreateBusinessLine(w http.ResponseWriter, r *http.Request) {
	var req CreateBusinessLineRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Business line validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	line, err := h.productService.CreateBusinessLine(r.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessLineAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "business line with this name already exists")
			return
		}
		h.logger.Error("Failed to create business line", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create business line")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, line)
}

// List returns all products with current discount rates
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ListByBusinessLine returns all products within a business line
func (h *ProductHandler) ListByBusinessLine(w http.ResponseWriter, r *http.Request) {
	businessLineID, err := uuid.Parse(chi.URLParam(r, "businessLineId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid business line ID")
		return
	}

	products, err := h.productService.ListByBusinessLine(r.Context(), businessLineID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessLineNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "business line not found")
			return
		}
		h.logger.Error("Failed to list products by business line", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns a single product with its current discount rate
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Availability reports whether the requested quantity is currently in stock
func (h *ProductHandler) Availability(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity < 1 {
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	available, inStock, err := h.productService.Availability(r.Context(), productID, quantity)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to check availability", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to check availability")
		return
	}

	message := "Stock available"
	if !available {
		message = "Insufficient stock"
	}

	middleware.RespondWithJSON(w, http.StatusOK, AvailabilityResponse{
		Available:         available,
		AvailableQuantity: inStock,
		Message:           message,
	})
}

// Price returns the final per-unit price for the authenticated customer
func (h *ProductHandler) Price(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	price, err := h.productService.CurrentPrice(r.Context(), productID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to compute price", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute price")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PriceResponse{
		ProductID: productID.String(),
		UnitPrice: price,
	})
}
