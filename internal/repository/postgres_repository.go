package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "github.com/lib/pq"

	"github.com/iarleylcs/cartify-flow/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// CreateOrder inserts the order header only. Lines follow in a second
// call; see OrderRepository for why the two are not one transaction.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO orders (id, order_code, total_amount, created_at)
	          VALUES ($1, $2, $3, $4)`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.Code,
		order.TotalAmount,
		order.CreatedAt)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

// CreateOrderLines inserts the frozen line snapshots referencing the
// order header.
func (r *Repository) CreateOrderLines(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO order_items
	          (id, order_id, product_code, product_description, unit_code, quantity, unit_price, total_price, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	for _, line := range order.Lines {
		_, err := r.db.ExecContext(ctx, query,
			uuid.New(),
			order.ID,
			line.ProductID,
			line.Description,
			line.Unit,
			line.Quantity,
			line.UnitPrice,
			line.LineTotal)
		if err != nil {
			return fmt.Errorf("insert order line for product %d: %w", line.ProductID, err)
		}
	}
	return nil
}

func (r *Repository) GetOrderByCode(ctx context.Context, code string) (*domain.Order, error) {
	query := `SELECT id, order_code, total_amount, created_at
	          FROM orders WHERE order_code = $1`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&order.ID,
		&order.Code,
		&order.TotalAmount,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by code: %w", err)
	}

	lines, err := r.orderLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines

	return &order, nil
}

func (r *Repository) orderLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	query := `SELECT product_code, product_description, unit_code, quantity, unit_price, total_price
	          FROM order_items WHERE order_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ProductID,
			&line.Description,
			&line.Unit,
			&line.Quantity,
			&line.UnitPrice,
			&line.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lines, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
