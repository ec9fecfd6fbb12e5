package cart

import (
	"context"

	"github.com/iarleylcs/cartify-flow/internal/domain"
)

// Store keeps one cart per session. Get returns an empty cart for an
// unknown session; Put replaces the whole snapshot.
type Store interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	Put(ctx context.Context, sessionID string, cart domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
