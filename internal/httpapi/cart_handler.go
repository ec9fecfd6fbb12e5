package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iarleylcs/cartify-flow/internal/cart"
	"github.com/iarleylcs/cartify-flow/internal/catalog"
	"github.com/iarleylcs/cartify-flow/internal/domain"
	"github.com/iarleylcs/cartify-flow/internal/notify"
)

type CartHandler struct {
	carts   *cart.Service
	catalog *catalog.Service
}

func NewCartHandler(carts *cart.Service, cat *catalog.Service) *CartHandler {
	return &CartHandler{carts: carts, catalog: cat}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type UpdatePriceRequestDTO struct {
	Price decimal.Decimal `json:"price"`
}

type CartResponseDTO struct {
	Cart   domain.Cart    `json:"cart"`
	Notice *notify.Notice `json:"notice,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "no session id")
		return
	}

	snapshot, err := h.carts.Cart(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "could not load cart")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: snapshot})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "no session id")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "unknown product")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load product")
		return
	}

	result, err := h.carts.AddToCart(r.Context(), sessionID, product)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "could not update cart")
		return
	}

	status := http.StatusCreated
	if result.Notice.Level == notify.LevelWarning {
		status = http.StatusOK
	}
	respondJSON(w, status, CartResponseDTO{Cart: result.Cart, Notice: &result.Notice})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "no session id")
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.carts.UpdateQuantity(r.Context(), sessionID, productID, req.Quantity)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "could not update cart")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: result.Cart, Notice: &result.Notice})
}

func (h *CartHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "no session id")
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	var req UpdatePriceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.carts.UpdatePrice(r.Context(), sessionID, productID, req.Price)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "could not update cart")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: result.Cart, Notice: &result.Notice})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "no session id")
		return
	}

	productID, ok := productIDFromURL(w, r)
	if !ok {
		return
	}

	result, err := h.carts.RemoveFromCart(r.Context(), sessionID, productID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "could not update cart")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: result.Cart, Notice: &result.Notice})
}

func productIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
