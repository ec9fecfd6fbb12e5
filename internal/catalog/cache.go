package catalog

import (
	"context"
	"errors"

	"github.com/iarleylcs/cartify-flow/internal/domain"
)

var ErrCacheMiss = errors.New("catalog not found in cache")

// ProductCache holds the full catalog list between repository reads.
type ProductCache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product) error
	Delete(ctx context.Context) error
}
