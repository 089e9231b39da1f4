package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warungpos/backend/internal/cache"
	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
)

// ErrComputationFailed marks a reconciliation run that aborted because one of
// the source loads failed. There is no partial-result mode.
var ErrComputationFailed = errors.New("reconciliation failed")

// Engine derives a per-product movement ledger over a date window by joining
// the product catalog with three independent transaction logs. It is
// stateless between calls and has no write path; the only shared resource is
// the repository it reads from.
type Engine struct {
	repo     store.Repository
	cache    cache.ReportCache
	cacheTTL time.Duration
}

func NewEngine(repo store.Repository, cacheStore cache.ReportCache, cacheTTL time.Duration) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopReportCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &Engine{
		repo:     repo,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
	}
}

// Reconcile emits one movement row per catalog product, in catalog order.
// Products with no matching transactions appear with zero movement. The
// window is inclusive on both bounds; a nil bound is unbounded on that side.
//
// Closing stock is opening + purchases + transfers in - sales - transfers
// out. Quantities are summed as-is, so closing may go negative when the
// source logs are inconsistent; that is surfaced, not clamped. Cancelled
// orders still count toward sales here, unlike the sales-report view.
func (e *Engine) Reconcile(ctx context.Context, window domain.ReconcileWindow) ([]domain.MovementRow, error) {
	cacheKey := buildCacheKey(window)
	if cached, ok, err := e.cache.Get(ctx, cacheKey); err == nil && ok {
		return cached, nil
	}

	products, err := e.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load products: %w", ErrComputationFailed, err)
	}
	purchases, err := e.repo.ListPurchases(ctx, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("%w: load purchases: %w", ErrComputationFailed, err)
	}
	transfers, err := e.repo.ListTransfers(ctx, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("%w: load transfers: %w", ErrComputationFailed, err)
	}
	orders, err := e.repo.ListOrdersInWindow(ctx, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("%w: load orders: %w", ErrComputationFailed, err)
	}

	rows := reconcile(products, purchases, transfers, orders)
	_ = e.cache.Set(ctx, cacheKey, rows, e.cacheTTL)
	return rows, nil
}

// reconcile is the pure join. Transactions are grouped into SKU-keyed sums
// up front so the product loop stays linear instead of re-filtering every
// log per product.
func reconcile(
	products []domain.Product,
	purchases []domain.Purchase,
	transfers []domain.Transfer,
	orders []domain.Order,
) []domain.MovementRow {
	purchasedBySKU := make(map[string]int, len(purchases))
	for _, p := range purchases {
		purchasedBySKU[p.SKU] += p.Quantity
	}

	transferInBySKU := make(map[string]int, len(transfers))
	transferOutBySKU := make(map[string]int, len(transfers))
	for _, t := range transfers {
		switch t.Type {
		case domain.TransferTypeIn:
			transferInBySKU[t.SKU] += t.Quantity
		case domain.TransferTypeOut:
			transferOutBySKU[t.SKU] += t.Quantity
		}
	}

	soldBySKU := make(map[string]int)
	for _, order := range orders {
		for _, line := range order.Items {
			qty := line.Quantity
			if qty == 0 {
				qty = 1
			}
			soldBySKU[line.SKU] += qty
		}
	}

	rows := make([]domain.MovementRow, 0, len(products))
	for _, product := range products {
		sku := product.SKU
		row := domain.MovementRow{
			Product:     product.Name,
			SKU:         sku,
			Opening:     product.OpeningStock,
			Purchase:    purchasedBySKU[sku],
			Sales:       soldBySKU[sku],
			TransferIn:  transferInBySKU[sku],
			TransferOut: transferOutBySKU[sku],
		}
		row.Closing = row.Opening + row.Purchase + row.TransferIn - row.Sales - row.TransferOut
		rows = append(rows, row)
	}

	return rows
}

func buildCacheKey(window domain.ReconcileWindow) string {
	from := "open"
	if window.From != nil {
		from = window.From.UTC().Format(time.RFC3339)
	}
	to := "open"
	if window.To != nil {
		to = window.To.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("pos:inventory:%s|%s", from, to)
}
