package catalog

import (
	"strconv"
	"strings"

	"github.com/iarleylcs/cartify-flow/internal/domain"
)

// Filter narrows the catalog by a free-text term. A product matches when
// its name contains the trimmed term (case-insensitive) or the decimal
// string of its id contains it. A blank term returns the input unchanged,
// preserving catalog order. The source slice is never mutated.
func Filter(products []domain.Product, term string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}

	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strconv.FormatInt(p.ID, 10), term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Page is one contiguous slice of a filtered catalog.
type Page struct {
	Products   []domain.Product
	Number     int
	Size       int
	TotalPages int
	TotalCount int
}

// Paginate slices the filtered list into the 1-based page of the given
// size. Pages outside [1, TotalPages] are clamped into range so a stale
// page number from a larger result set never produces an empty view.
func Paginate(products []domain.Product, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}

	totalCount := len(products)
	totalPages := (totalCount + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	return Page{
		Products:   products[start:end],
		Number:     page,
		Size:       size,
		TotalPages: totalPages,
		TotalCount: totalCount,
	}
}
