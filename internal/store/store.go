package store

import (
	"context"
	"errors"
	"time"

	"warungpos/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Repository is the shared persistent store behind both the reconciliation
// engine and the order lifecycle. Products, purchases and transfers are
// append-only from the store's point of view; orders are the only entities
// mutated after creation.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)

	ListPurchases(ctx context.Context, from *time.Time, to *time.Time) ([]domain.Purchase, error)
	CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)

	ListTransfers(ctx context.Context, from *time.Time, to *time.Time) ([]domain.Transfer, error)
	CreateTransfer(ctx context.Context, transfer domain.Transfer) (*domain.Transfer, error)

	// CreateOrder persists the order row and its normalized item rows
	// together. Implementations backed by a transactional store must write
	// both in a single transaction.
	CreateOrder(ctx context.Context, order domain.Order, items []domain.OrderItem) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersInWindow(ctx context.Context, from *time.Time, to *time.Time) ([]domain.Order, error)
	ListSales(ctx context.Context) ([]domain.SaleRecord, error)
	UpdateOrderStatus(ctx context.Context, id string, status string) (*domain.Order, error)
	// DeleteOrder removes the order's item rows before the order row itself.
	// Deleting an unknown id returns ErrNotFound, which makes retries after a
	// partial failure safe.
	DeleteOrder(ctx context.Context, id string) error

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
