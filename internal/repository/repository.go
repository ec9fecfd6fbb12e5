package repository

import (
	"context"
	"errors"

	"github.com/iarleylcs/cartify-flow/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OrderRepository persists submitted orders. Header and lines are written
// by separate calls on purpose: a line failure leaves the header behind
// for reconciliation instead of rolling the whole submission back.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	CreateOrderLines(ctx context.Context, order *domain.Order) error
	GetOrderByCode(ctx context.Context, code string) (*domain.Order, error)
	RunMigrations(*Credentials) error
	Close() error
}
