package transport

import (
	"errors"
	"net/http"

	"bookline/internal/middleware"
	"bookline/internal/repository"
	"bookline/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartItemRequest represents an add/update cart payload
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// CartUpdateRequest allows zero quantity, which removes the line
type CartUpdateRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// CartCountResponse carries the total unit count across cart lines
type CartCountResponse struct {
	Count int `json:"count"`
}

// CartValidationResponse reports whether every cart line is satisfiable
type CartValidationResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetItems)
		r.Post("/add", h.Add)
		r.Put("/update", h.Update)
		r.Delete("/remove/{productId}", h.Remove)
		r.Delete("/clear", h.Clear)
		r.Get("/count", h.Count)
		r.Get("/validate", h.Validate)
	})
}

// GetItems returns all cart lines for the authenticated user
func (h *CartHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	items, err := h.cartService.GetItems(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get cart items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get cart items")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// Add puts a product in the cart, merging with an existing line
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	item, err := h.cartService.Add(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "failed to add item to cart")
		return
	}

	h.logger.Info("Item added to cart",
		zap.String("user_id", userID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", req.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// Update sets a cart line's quantity; zero removes it
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req CartUpdateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	item, err := h.cartService.UpdateQuantity(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "failed to update cart item")
		return
	}

	if item == nil {
		middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item removed from cart"})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// Remove deletes a single line from the cart
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.cartService.Remove(r.Context(), userID, productID); err != nil {
		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item removed from cart"})
}

// Clear empties the user's cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

// Count returns the total number of units in the cart
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	count, err := h.cartService.Count(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to count cart items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to count cart items")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartCountResponse{Count: count})
}

// Validate reports whether every line in the cart is currently in stock
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r, h.logger)
	if !ok {
		return
	}

	valid, err := h.cartService.Validate(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to validate cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to validate cart")
		return
	}

	message := "Cart is valid"
	if !valid {
		message = "Some items in cart are out of stock"
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartValidationResponse{Valid: valid, Message: message})
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrQuantityUnavailable):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrCartItemNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
