package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	OpeningStock int       `json:"opening_stock"`
	CreatedAt    time.Time `json:"created_at"`
}

type Purchase struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type PurchaseCreateRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type Transfer struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type TransferCreateRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Type     string `json:"type"`
}

// OrderLine is the point-in-time copy of a cart line embedded in an order.
// It is captured at checkout and never refreshed from the catalog.
type OrderLine struct {
	ProductID string          `json:"id,omitempty"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type Order struct {
	ID            string          `json:"id"`
	Customer      string          `json:"customer"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"payment_method"`
	Items         []OrderLine     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderItem is the normalized duplicate of an embedded order line. The two
// are written together at checkout and never reconciled against each other.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CheckoutRequest struct {
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"paymentMethod"`
	Cart          []OrderLine     `json:"cart"`
	Total         decimal.Decimal `json:"total"`
}

type StatusUpdateRequest struct {
	OrderID   string `json:"orderId"`
	NewStatus string `json:"newStatus"`
}

// SaleRecord is the sales-report projection of an order. Cancelled orders
// are excluded from this view but not from inventory reconciliation.
type SaleRecord struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	Items         []OrderLine     `json:"items"`
}

type ReconcileRequest struct {
	DateFrom string `json:"dateFrom,omitempty"`
	DateTo   string `json:"dateTo,omitempty"`
}

// ReconcileWindow bounds a reconciliation run. A nil bound is open on that
// side; both bounds are inclusive.
type ReconcileWindow struct {
	From *time.Time
	To   *time.Time
}

// MovementRow is one reconciliation result per catalog product.
type MovementRow struct {
	Product     string `json:"product"`
	SKU         string `json:"sku"`
	Opening     int    `json:"opening"`
	Purchase    int    `json:"purchase"`
	Sales       int    `json:"sales"`
	TransferIn  int    `json:"transferIn"`
	TransferOut int    `json:"transferOut"`
	Closing     int    `json:"closing"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

const (
	TransferTypeIn  = "In"
	TransferTypeOut = "Out"
)

const (
	PaymentCash           = "Cash"
	PaymentCard           = "Card"
	PaymentQRIS           = "QRIS"
	PaymentCashOnDelivery = "Cash on Delivery"
)
