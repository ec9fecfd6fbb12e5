package httpapi

import (
	"net/http"
	"strconv"

	"github.com/iarleylcs/cartify-flow/internal/catalog"
	"github.com/iarleylcs/cartify-flow/internal/domain"
)

type ProductHandler struct {
	catalog *catalog.Service
}

func NewProductHandler(svc *catalog.Service) *ProductHandler {
	return &ProductHandler{catalog: svc}
}

type ProductPageDTO struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
	TotalCount int              `json:"total_count"`
}

// List serves the browse view: optional free-text search plus pagination.
// The page is session-scoped; a search change snaps it back to 1.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "missing_session", "no session id")
		return
	}

	term := r.URL.Query().Get("search")
	page := intQueryParam(r, "page", 0)
	size := intQueryParam(r, "page_size", catalog.DefaultPageSize)

	result, err := h.catalog.Browse(r.Context(), sessionID, term, page, size)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not load products")
		return
	}

	respondJSON(w, http.StatusOK, ProductPageDTO{
		Products:   result.Products,
		Page:       result.Number,
		PageSize:   result.Size,
		TotalPages: result.TotalPages,
		TotalCount: result.TotalCount,
	})
}

func intQueryParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
