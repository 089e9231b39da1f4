package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/inventory"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/store/memory"
)

func newTestService() *Service {
	repo := memory.NewSeeded()
	engine := inventory.NewEngine(repo, nil, 0)
	return New(repo, engine)
}

func adminContext() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func sampleCheckout() domain.CheckoutRequest {
	price := decimal.NewFromInt(3500)
	return domain.CheckoutRequest{
		Name:          "Budi Santoso",
		Phone:         "0812-0000-0000",
		Address:       "Jl. Melati 12",
		PaymentMethod: domain.PaymentCashOnDelivery,
		Cart: []domain.OrderLine{
			{ProductID: "prd-1", SKU: "SKU-MIE-01", Name: "Mie Goreng Instan", Price: price, Quantity: 2},
		},
		Total: price.Mul(decimal.NewFromInt(2)),
	}
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	svc := newTestService()

	order, err := svc.Checkout(context.Background(), sampleCheckout())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.ID == "" {
		t.Fatalf("expected order id to be assigned")
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected Pending, got %s", order.Status)
	}
	if order.PaymentMethod != domain.PaymentCash {
		t.Fatalf("expected Cash on Delivery to normalize to Cash, got %s", order.PaymentMethod)
	}

	orders, err := svc.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("expected created order to be listed, got %+v", orders)
	}
	if len(orders[0].Items) != 1 {
		t.Fatalf("expected embedded items to survive, got %+v", orders[0].Items)
	}
}

func TestCheckoutStoresCallerTotalVerbatim(t *testing.T) {
	svc := newTestService()

	req := sampleCheckout()
	req.Total = decimal.NewFromInt(999)

	order, err := svc.Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !order.Total.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("expected caller total to be stored verbatim, got %s", order.Total)
	}
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	svc := newTestService()

	_, err := svc.UpdateOrderStatus(context.Background(), domain.StatusUpdateRequest{
		OrderID:   "missing",
		NewStatus: domain.OrderStatusCompleted,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateOrderStatusMissingFields(t *testing.T) {
	svc := newTestService()

	_, err := svc.UpdateOrderStatus(context.Background(), domain.StatusUpdateRequest{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestService()

	order, err := svc.Checkout(context.Background(), sampleCheckout())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	_, err = svc.UpdateOrderStatus(context.Background(), domain.StatusUpdateRequest{
		OrderID:   order.ID,
		NewStatus: "Shipped",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}

// There is no terminality guard: any status may move to any other, and
// re-applying the same status yields the same stored order.
func TestUpdateOrderStatusUnguardedAndIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, sampleCheckout())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	completed, err := svc.UpdateOrderStatus(ctx, domain.StatusUpdateRequest{OrderID: order.ID, NewStatus: domain.OrderStatusCompleted})
	if err != nil {
		t.Fatalf("transition to Completed: %v", err)
	}
	again, err := svc.UpdateOrderStatus(ctx, domain.StatusUpdateRequest{OrderID: order.ID, NewStatus: domain.OrderStatusCompleted})
	if err != nil {
		t.Fatalf("repeat transition: %v", err)
	}
	if completed.Status != again.Status || completed.ID != again.ID {
		t.Fatalf("expected idempotent transition, got %+v then %+v", completed, again)
	}

	back, err := svc.UpdateOrderStatus(ctx, domain.StatusUpdateRequest{OrderID: order.ID, NewStatus: domain.OrderStatusPending})
	if err != nil {
		t.Fatalf("expected Completed -> Pending to be permitted, got %v", err)
	}
	if back.Status != domain.OrderStatusPending {
		t.Fatalf("expected Pending, got %s", back.Status)
	}
}

func TestDeleteOrderTwice(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	order, err := svc.Checkout(ctx, sampleCheckout())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if err := svc.DeleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	err = svc.DeleteOrder(ctx, order.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected second delete to report ErrNotFound, got %v", err)
	}
}

func TestDeleteOrderRequiresID(t *testing.T) {
	svc := newTestService()

	err := svc.DeleteOrder(context.Background(), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// The sales view excludes Cancelled orders; the inventory view does not.
// Both behaviors are intentional and must stay distinct per endpoint.
func TestCancelledOrdersExcludedFromSalesButNotInventory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	kept, err := svc.Checkout(ctx, sampleCheckout())
	if err != nil {
		t.Fatalf("checkout kept: %v", err)
	}
	cancelled, err := svc.Checkout(ctx, sampleCheckout())
	if err != nil {
		t.Fatalf("checkout cancelled: %v", err)
	}
	if _, err := svc.UpdateOrderStatus(ctx, domain.StatusUpdateRequest{OrderID: cancelled.ID, NewStatus: domain.OrderStatusCancelled}); err != nil {
		t.Fatalf("cancel order: %v", err)
	}

	sales, err := svc.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 || sales[0].ID != kept.ID {
		t.Fatalf("expected only the non-cancelled order in sales, got %+v", sales)
	}

	rows, err := svc.Reconcile(ctx, domain.ReconcileRequest{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	for _, row := range rows {
		if row.SKU == "SKU-MIE-01" {
			if row.Sales != 4 {
				t.Fatalf("expected both orders (2+2) in inventory sales, got %d", row.Sales)
			}
			return
		}
	}
	t.Fatalf("SKU-MIE-01 missing from reconciliation rows")
}

func TestReconcileRejectsMalformedDates(t *testing.T) {
	svc := newTestService()

	_, err := svc.Reconcile(context.Background(), domain.ReconcileRequest{DateFrom: "yesterday"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReconcileWindowsOutOrders(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Checkout(ctx, sampleCheckout()); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// A window entirely in the past must not see today's order.
	rows, err := svc.Reconcile(ctx, domain.ReconcileRequest{DateFrom: "2020-01-01", DateTo: "2020-01-31"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	for _, row := range rows {
		if row.Sales != 0 {
			t.Fatalf("expected no sales inside a past window, got %+v", row)
		}
	}
}

func TestRecordPurchaseRequiresAdmin(t *testing.T) {
	svc := newTestService()

	_, err := svc.RecordPurchase(context.Background(), domain.PurchaseCreateRequest{SKU: "sku-mie-01", Quantity: 5})
	if err == nil {
		t.Fatalf("expected purchase without admin actor to fail")
	}

	purchase, err := svc.RecordPurchase(adminContext(), domain.PurchaseCreateRequest{SKU: "sku-mie-01", Quantity: 5})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if purchase.SKU != "SKU-MIE-01" {
		t.Fatalf("expected SKU to be upper-cased, got %s", purchase.SKU)
	}
}

func TestRecordTransferValidatesType(t *testing.T) {
	svc := newTestService()

	_, err := svc.RecordTransfer(adminContext(), domain.TransferCreateRequest{SKU: "SKU-MIE-01", Quantity: 3, Type: "Sideways"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad transfer type, got %v", err)
	}

	transfer, err := svc.RecordTransfer(adminContext(), domain.TransferCreateRequest{SKU: "SKU-MIE-01", Quantity: 3, Type: domain.TransferTypeIn})
	if err != nil {
		t.Fatalf("record transfer: %v", err)
	}
	if transfer.Type != domain.TransferTypeIn {
		t.Fatalf("expected In transfer, got %s", transfer.Type)
	}
}
