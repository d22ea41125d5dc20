package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OrderStatus is an open string enum; the backend may add values.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// StepStatus is the state of one order timeline step.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepCurrent   StepStatus = "current"
	StepUpcoming  StepStatus = "upcoming"
)

// OrderItem is one line of an order.
type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// UnmarshalJSON also accepts lines that nest the product instead of
// carrying a name.
func (i *OrderItem) UnmarshalJSON(data []byte) error {
	type plain OrderItem
	var wire struct {
		plain
		Product *ProductSummary `json:"product"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*i = OrderItem(wire.plain)
	if i.Name == "" && wire.Product != nil {
		i.Name = wire.Product.Name
	}
	return nil
}

// Order is an order as listed in the account area.
type Order struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"`
	Total  decimal.Decimal `json:"total"`
	Status OrderStatus     `json:"status"`
	Items  []OrderItem     `json:"items"`
}

// UnmarshalJSON maps the backend's order_id and created_at onto ID and
// Date when the short names are absent.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var wire struct {
		plain
		OrderID   string `json:"order_id"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*o = Order(wire.plain)
	if o.ID == "" {
		o.ID = wire.OrderID
	}
	if o.Date == "" {
		o.Date = wire.CreatedAt
	}
	return nil
}

// TimelineStep is one step of an order's progress.
type TimelineStep struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Timestamp   string     `json:"timestamp"`
}

// OrderDetail is the full order view.
type OrderDetail struct {
	Order
	ShippingAddress string         `json:"shipping_address"`
	ContactInfo     string         `json:"contact_info"`
	Timeline        []TimelineStep `json:"timeline"`
}

// UnmarshalJSON decodes the embedded Order with its aliases, then the
// detail-only fields.
func (d *OrderDetail) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &d.Order); err != nil {
		return err
	}
	var rest struct {
		ShippingAddress string         `json:"shipping_address"`
		ContactInfo     string         `json:"contact_info"`
		Timeline        []TimelineStep `json:"timeline"`
	}
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	d.ShippingAddress = rest.ShippingAddress
	d.ContactInfo = rest.ContactInfo
	d.Timeline = rest.Timeline
	return nil
}

// DeliveryTime is a selectable delivery slot.
type DeliveryTime struct {
	ID        int64  `json:"id"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// CheckoutRequest is the checkout payload.
type CheckoutRequest struct {
	AddressID     int64  `json:"address_id"`
	DeliveryTime  string `json:"delivery_time"`
	PaymentMethod string `json:"payment_method"`
	PromoCode     string `json:"promo_code,omitempty"`
}

// CheckoutResponse is returned by a successful checkout.
type CheckoutResponse struct {
	Message  string          `json:"message"`
	OrderID  string          `json:"order_id"`
	Total    decimal.Decimal `json:"total"`
	Discount decimal.Decimal `json:"discount"`
}

// OrderStatusUpdate is the admin payload for moving an order along.
type OrderStatusUpdate struct {
	ID     string      `json:"-"`
	Status OrderStatus `json:"status"`
}

// SpendingPoint is one month of the dashboard spending trend.
type SpendingPoint struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Dashboard aggregates the account's order history.
type Dashboard struct {
	TotalOrders    int             `json:"totalOrders"`
	TotalSpent     decimal.Decimal `json:"totalSpent"`
	RecentOrders   []Order         `json:"recentOrders"`
	SpendingTrends []SpendingPoint `json:"spendingTrends"`
}
