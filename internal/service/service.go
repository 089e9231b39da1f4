package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/inventory"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrStoreWriteFailed = errors.New("store write failed")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Service owns the order lifecycle and fronts the reconciliation engine.
// Every call is an independent unit of work against the shared store; there
// is no in-process mutable state.
type Service struct {
	repo   store.Repository
	engine *inventory.Engine
}

func New(repo store.Repository, engine *inventory.Engine) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

// Reconcile parses the requested date window and runs the movement report.
// Dates arrive as calendar days ("2006-01-02") from the report UI; RFC3339
// timestamps are accepted too. An empty bound is open on that side.
func (s *Service) Reconcile(ctx context.Context, req domain.ReconcileRequest) ([]domain.MovementRow, error) {
	window, err := parseWindow(req)
	if err != nil {
		return nil, err
	}
	return s.engine.Reconcile(ctx, window)
}

// Checkout creates an order from a cart. The caller-supplied total is stored
// verbatim; it is cross-checked against the line items and a mismatch is
// logged, never rejected, because the embedded copy is the display source of
// truth downstream.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	order := domain.Order{
		ID:            uuid.NewString(),
		Customer:      strings.TrimSpace(req.Name),
		Phone:         strings.TrimSpace(req.Phone),
		Address:       strings.TrimSpace(req.Address),
		PaymentMethod: normalizePaymentMethod(req.PaymentMethod),
		Items:         req.Cart,
		Total:         req.Total,
		Status:        domain.OrderStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	if computed := cartTotal(req.Cart); !computed.Equal(req.Total) {
		log.Printf("[service] WARN: checkout total %s does not match line items %s (order %s), storing as supplied",
			req.Total.String(), computed.String(), order.ID)
	}

	items := make([]domain.OrderItem, 0, len(req.Cart))
	for _, line := range req.Cart {
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		items = append(items, domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  qty,
			Price:     line.Price,
		})
	}

	created, err := s.repo.CreateOrder(ctx, order, items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: create order: %w", ErrStoreWriteFailed, err)
	}
	return *created, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx)
}

func (s *Service) ListSales(ctx context.Context) ([]domain.SaleRecord, error) {
	return s.repo.ListSales(ctx)
}

// UpdateOrderStatus sets the order status unconditionally. Any of the three
// states may move to any other; there is no terminality guard, matching the
// back office's manual correction workflow.
func (s *Service) UpdateOrderStatus(ctx context.Context, req domain.StatusUpdateRequest) (domain.Order, error) {
	if req.OrderID == "" || req.NewStatus == "" {
		return domain.Order{}, fmt.Errorf("%w: orderId and newStatus are required", ErrValidation)
	}
	if !isOrderStatus(req.NewStatus) {
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", ErrValidation, req.NewStatus)
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, req.OrderID, req.NewStatus)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("%w: update status: %w", ErrStoreWriteFailed, err)
	}
	return *updated, nil
}

// DeleteOrder cascades: item rows go before the order row. A repeat call on
// the same id reports ErrNotFound, which callers treat as already-deleted.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return fmt.Errorf("%w: order id is required", ErrValidation)
	}

	err := s.repo.DeleteOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete order: %w", ErrStoreWriteFailed, err)
	}
	return nil
}

func (s *Service) RecordPurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.Purchase, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Purchase{}, fmt.Errorf("admin role required")
	}

	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if sku == "" {
		return domain.Purchase{}, fmt.Errorf("%w: sku is required", ErrValidation)
	}

	created, err := s.repo.CreatePurchase(ctx, domain.Purchase{
		ID:        xid.New("pur"),
		SKU:       sku,
		Quantity:  req.Quantity,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("%w: create purchase: %w", ErrStoreWriteFailed, err)
	}
	return *created, nil
}

func (s *Service) RecordTransfer(ctx context.Context, req domain.TransferCreateRequest) (domain.Transfer, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Transfer{}, fmt.Errorf("admin role required")
	}

	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if sku == "" || req.Quantity < 0 {
		return domain.Transfer{}, fmt.Errorf("%w: sku and non-negative quantity are required", ErrValidation)
	}
	if req.Type != domain.TransferTypeIn && req.Type != domain.TransferTypeOut {
		return domain.Transfer{}, fmt.Errorf("%w: transfer type must be In or Out", ErrValidation)
	}

	created, err := s.repo.CreateTransfer(ctx, domain.Transfer{
		ID:        xid.New("trf"),
		SKU:       sku,
		Quantity:  req.Quantity,
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("%w: create transfer: %w", ErrStoreWriteFailed, err)
	}
	return *created, nil
}

// normalizePaymentMethod collapses checkout labels to the stored enumerated
// set, notably "Cash on Delivery" to "Cash".
func normalizePaymentMethod(method string) string {
	method = strings.TrimSpace(method)
	if strings.EqualFold(method, domain.PaymentCashOnDelivery) {
		return domain.PaymentCash
	}
	if method == "" {
		return domain.PaymentCash
	}
	return method
}

func isOrderStatus(status string) bool {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusCompleted, domain.OrderStatusCancelled:
		return true
	}
	return false
}

func cartTotal(cart []domain.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range cart {
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

func parseWindow(req domain.ReconcileRequest) (domain.ReconcileWindow, error) {
	var window domain.ReconcileWindow

	if raw := strings.TrimSpace(req.DateFrom); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return domain.ReconcileWindow{}, fmt.Errorf("%w: dateFrom: %v", ErrValidation, err)
		}
		window.From = &from
	}
	if raw := strings.TrimSpace(req.DateTo); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return domain.ReconcileWindow{}, fmt.Errorf("%w: dateTo: %v", ErrValidation, err)
		}
		window.To = &to
	}

	return window, nil
}

func parseDate(raw string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("not an ISO date: %q", raw)
	}
	return parsed.UTC(), nil
}
