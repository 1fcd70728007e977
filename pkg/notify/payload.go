package notify

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the kind-specific data rendered into a notification.
// Each concrete type reports the Kind it belongs to.
type Payload interface {
	Kind() Kind
}

// LineItem is one ordered product.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Total is Quantity times UnitPrice.
func (i LineItem) Total() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// OrderConfirmation is sent to the customer when an order is placed.
type OrderConfirmation struct {
	OrderNumber       string     `json:"order_number"`
	CustomerName      string     `json:"customer_name"`
	Items             []LineItem `json:"items"`
	Subtotal          float64    `json:"subtotal"`
	Tax               float64    `json:"tax"`
	Total             float64    `json:"total"`
	EstimatedDelivery time.Time  `json:"estimated_delivery,omitzero"`
	OrderURL          string     `json:"order_url,omitempty"`
}

func (OrderConfirmation) Kind() Kind { return KindOrderConfirmation }

// OrderStatus tells the customer their order moved to a new status.
type OrderStatus struct {
	OrderNumber    string `json:"order_number"`
	CustomerName   string `json:"customer_name"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Status         string `json:"status"`
	Note           string `json:"note,omitempty"`
	OrderURL       string `json:"order_url,omitempty"`
}

func (OrderStatus) Kind() Kind { return KindOrderStatus }

// ProductionAlertType classifies production alerts.
type ProductionAlertType string

const (
	ProductionDelay ProductionAlertType = "delay"
	ProductionError ProductionAlertType = "error"
	ProductionInfo  ProductionAlertType = "info"
)

// Valid reports whether t is delay, error or info.
func (t ProductionAlertType) Valid() bool {
	switch t {
	case ProductionDelay, ProductionError, ProductionInfo:
		return true
	}
	return false
}

// ProductionAlert reports a delay, error or info event from the production floor.
type ProductionAlert struct {
	OrderRef   string              `json:"order_ref"`
	AlertType  ProductionAlertType `json:"alert_type"`
	Message    string              `json:"message"`
	ReportedAt time.Time           `json:"reported_at,omitzero"`
	BoardURL   string              `json:"board_url,omitempty"`
}

func (ProductionAlert) Kind() Kind { return KindProductionAlert }

// StockItem describes one SKU running low.
type StockItem struct {
	SKU          string `json:"sku" validate:"required"`
	Name         string `json:"name" validate:"required"`
	CurrentStock int    `json:"current_stock" validate:"gte=0"`
	MinimumStock int    `json:"minimum_stock" validate:"gte=0"`
	Unit         string `json:"unit,omitempty"`
}

// Shortfall is how many units are missing to reach MinimumStock.
func (s StockItem) Shortfall() int {
	return max(0, s.MinimumStock-s.CurrentStock)
}

// StockAlert lists items at or below their minimum stock level.
type StockAlert struct {
	Items        []StockItem `json:"items"`
	InventoryURL string      `json:"inventory_url,omitempty"`
}

func (StockAlert) Kind() Kind { return KindStockAlert }

// PaymentConfirmation acknowledges a payment received for an order.
type PaymentConfirmation struct {
	OrderNumber   string    `json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transaction_id,omitempty"`
	PaidAt        time.Time `json:"paid_at,omitzero"`
}

func (PaymentConfirmation) Kind() Kind { return KindPaymentConfirmation }

// ShippingNotification tells the customer their order was handed to a carrier.
type ShippingNotification struct {
	OrderNumber       string    `json:"order_number"`
	CustomerName      string    `json:"customer_name"`
	Carrier           string    `json:"carrier"`
	TrackingNumber    string    `json:"tracking_number"`
	TrackingURL       string    `json:"tracking_url,omitempty"`
	EstimatedDelivery time.Time `json:"estimated_delivery,omitzero"`
}

func (ShippingNotification) Kind() Kind { return KindShippingNotification }

// QualityIssue reports a failed quality check on an order.
type QualityIssue struct {
	OrderNumber string `json:"order_number"`
	TaskRef     string `json:"task_ref,omitempty"`
	IssueType   string `json:"issue_type"`
	Description string `json:"description"`
	ReportedBy  string `json:"reported_by,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

func (QualityIssue) Kind() Kind { return KindQualityIssue }

// CustomerNotification is a free-form message to a customer with an optional action button.
type CustomerNotification struct {
	CustomerName string `json:"customer_name"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	ActionLabel  string `json:"action_label,omitempty"`
	ActionURL    string `json:"action_url,omitempty"`
}

func (CustomerNotification) Kind() Kind { return KindCustomerNotification }

// Metric is a labelled value shown in admin digests.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AdminAlert is an operations summary for administrators, such as the daily digest.
type AdminAlert struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Metrics      []Metric `json:"metrics,omitempty"`
	DashboardURL string   `json:"dashboard_url,omitempty"`
}

func (AdminAlert) Kind() Kind { return KindAdminAlert }

// Severity grades system notifications.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is info, warning or critical.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// SystemNotification reports a system health event with a severity.
type SystemNotification struct {
	AlertType   string   `json:"alert_type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

func (SystemNotification) Kind() Kind { return KindSystemNotification }

// Welcome greets a newly registered customer.
type Welcome struct {
	Name     string `json:"name"`
	LoginURL string `json:"login_url,omitempty"`
}

func (Welcome) Kind() Kind { return KindWelcome }

// PasswordReset carries a password reset link.
type PasswordReset struct {
	Name             string `json:"name"`
	ResetURL         string `json:"reset_url"`
	ExpiresInMinutes int    `json:"expires_in_minutes,omitempty"`
}

func (PasswordReset) Kind() Kind { return KindPasswordReset }

type payloadDecoder func(raw json.RawMessage) (Payload, error)

var payloadDecoders = map[Kind]payloadDecoder{
	KindOrderConfirmation:    decodePayload[OrderConfirmation],
	KindOrderStatus:          decodePayload[OrderStatus],
	KindProductionAlert:      decodePayload[ProductionAlert],
	KindStockAlert:           decodePayload[StockAlert],
	KindPaymentConfirmation:  decodePayload[PaymentConfirmation],
	KindShippingNotification: decodePayload[ShippingNotification],
	KindQualityIssue:         decodePayload[QualityIssue],
	KindCustomerNotification: decodePayload[CustomerNotification],
	KindAdminAlert:           decodePayload[AdminAlert],
	KindSystemNotification:   decodePayload[SystemNotification],
	KindWelcome:              decodePayload[Welcome],
	KindPasswordReset:        decodePayload[PasswordReset],
}

func decodePayload[T Payload](raw json.RawMessage) (Payload, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodePayload parses raw JSON into the concrete payload type for kind.
// Empty input yields the zero payload.
func DecodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	decode, ok := payloadDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	p, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("notify: decode %s payload: %w", kind, err)
	}
	return p, nil
}

// zeroPayload returns the empty payload for kind, or nil for unknown kinds.
func zeroPayload(kind Kind) Payload {
	p, _ := DecodePayload(kind, nil)
	return p
}
