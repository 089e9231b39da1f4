package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/xid"
)

// Store is an in-memory Repository for dev mode and tests. Catalog order is
// insertion order. All multi-step writes (order + items, cascading delete)
// run under one lock, so they are atomic within this process.
type Store struct {
	mu              sync.RWMutex
	products        []domain.Product
	productBySKU    map[string]int
	purchases       []domain.Purchase
	transfers       []domain.Transfer
	ordersByID      map[string]*domain.Order
	orderIDs        []string
	itemsByOrderID  map[string][]domain.OrderItem
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"staff", staffPwd, "staff"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func New() *Store {
	return &Store{
		productBySKU:    make(map[string]int),
		ordersByID:      make(map[string]*domain.Order),
		itemsByOrderID:  make(map[string][]domain.OrderItem),
		usersByUsername: seedUsers(),
	}
}

func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()
	seed := []domain.Product{
		{SKU: "SKU-MIE-01", Name: "Mie Goreng Instan", OpeningStock: 120},
		{SKU: "SKU-TELUR-01", Name: "Telur 10 Butir", OpeningStock: 60},
		{SKU: "SKU-SUSU-01", Name: "Susu UHT 1L", OpeningStock: 45},
		{SKU: "SKU-ROTI-01", Name: "Roti Tawar", OpeningStock: 30},
		{SKU: "SKU-KOPI-01", Name: "Kopi Sachet", OpeningStock: 200},
		{SKU: "SKU-GULA-01", Name: "Gula 1kg", OpeningStock: 80},
		{SKU: "SKU-TEH-01", Name: "Teh Celup", OpeningStock: 70},
		{SKU: "SKU-AIR-01", Name: "Air Mineral 600ml", OpeningStock: 150},
	}
	for _, p := range seed {
		p.ID = xid.New("prd")
		p.CreatedAt = now
		s.products = append(s.products, p)
		s.productBySKU[p.SKU] = len(s.products) - 1
	}
	return s
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.products), nil
}

func (s *Store) GetProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.productBySKU[sku]
	if !ok {
		return nil, store.ErrNotFound
	}
	product := s.products[idx]
	return &product, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.SKU == "" || product.Name == "" || product.OpeningStock < 0 {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.productBySKU[product.SKU]; exists {
		return nil, store.ErrInvalidInput
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	s.products = append(s.products, product)
	s.productBySKU[product.SKU] = len(s.products) - 1

	created := product
	return &created, nil
}

func (s *Store) ListPurchases(_ context.Context, from *time.Time, to *time.Time) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		if inWindow(p.CreatedAt, from, to) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if purchase.SKU == "" {
		return nil, store.ErrInvalidInput
	}
	if purchase.ID == "" {
		purchase.ID = xid.New("pur")
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}

	s.purchases = append(s.purchases, purchase)
	created := purchase
	return &created, nil
}

func (s *Store) ListTransfers(_ context.Context, from *time.Time, to *time.Time) ([]domain.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transfer, 0, len(s.transfers))
	for _, t := range s.transfers {
		if inWindow(t.CreatedAt, from, to) {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *Store) CreateTransfer(_ context.Context, transfer domain.Transfer) (*domain.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if transfer.SKU == "" || transfer.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if transfer.Type != domain.TransferTypeIn && transfer.Type != domain.TransferTypeOut {
		return nil, store.ErrInvalidInput
	}
	if transfer.ID == "" {
		transfer.ID = xid.New("trf")
	}
	if transfer.CreatedAt.IsZero() {
		transfer.CreatedAt = time.Now().UTC()
	}

	s.transfers = append(s.transfers, transfer)
	created := transfer
	return &created, nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.ordersByID[order.ID]; exists {
		return nil, store.ErrInvalidInput
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	stored := order
	stored.Items = slices.Clone(order.Items)
	s.ordersByID[order.ID] = &stored
	s.orderIDs = append(s.orderIDs, order.ID)
	s.itemsByOrderID[order.ID] = slices.Clone(items)

	created := stored
	return &created, nil
}

func (s *Store) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *order
	copied.Items = slices.Clone(order.Items)
	return &copied, nil
}

func (s *Store) ListOrders(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedOrdersLocked(), nil
}

func (s *Store) ListOrdersInWindow(_ context.Context, from *time.Time, to *time.Time) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		order := s.ordersByID[id]
		if inWindow(order.CreatedAt, from, to) {
			copied := *order
			copied.Items = slices.Clone(order.Items)
			result = append(result, copied)
		}
	}
	return result, nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.SaleRecord, 0, len(s.orderIDs))
	for _, order := range s.sortedOrdersLocked() {
		if order.Status == domain.OrderStatusCancelled {
			continue
		}
		sales = append(sales, domain.SaleRecord{
			ID:            order.ID,
			CreatedAt:     order.CreatedAt,
			PaymentMethod: order.PaymentMethod,
			Total:         order.Total,
			Status:        order.Status,
			Items:         order.Items,
		})
	}
	return sales, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, id string, status string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	order.Status = status

	copied := *order
	copied.Items = slices.Clone(order.Items)
	return &copied, nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ordersByID[id]; !ok {
		return store.ErrNotFound
	}

	// Items first, then the order. The store has no enforced cascade, so
	// the ordering keeps a failed delete from leaving orphaned item rows.
	delete(s.itemsByOrderID, id)
	delete(s.ordersByID, id)
	s.orderIDs = slices.DeleteFunc(s.orderIDs, func(existing string) bool {
		return existing == id
	})
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.TrimSpace(user.Username)
	if username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidInput
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Username = username
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

// sortedOrdersLocked returns orders newest-first. Callers must hold the lock.
func (s *Store) sortedOrdersLocked() []domain.Order {
	orders := make([]domain.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		order := s.ordersByID[id]
		copied := *order
		copied.Items = slices.Clone(order.Items)
		orders = append(orders, copied)
	}
	slices.SortFunc(orders, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return orders
}

func inWindow(at time.Time, from *time.Time, to *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}
	if to != nil && at.After(*to) {
		return false
	}
	return true
}
